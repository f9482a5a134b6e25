package transport

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/basillal/LeadSphere-sub001/credstore"
)

// DefaultRenewPath is the credential renewal endpoint.
const DefaultRenewPath = "/api/auth/refresh"

// RenewCallbacks are the session manager's observation points on the renewal
// protocol. All callbacks are optional and must be safe for concurrent use.
type RenewCallbacks struct {
	// OnRenewed fires once per successful renewal with the fresh token.
	OnRenewed func(token string)
	// OnForcedLogout fires once per failed renewal, after the credential has
	// been cleared. The manager tears down the session and navigates to login.
	OnForcedLogout func(err error)
	// OnShared fires for each waiter that joined an in-flight renewal instead
	// of starting its own.
	OnShared func()
}

// RenewInterceptor implements the per-call renewal state machine:
//
//	NORMAL -> (401 ∧ not retried ∧ target != renew endpoint) -> RENEWING -> REPLAYED
//
// Any other path passes through untouched or terminates as a final failure.
type RenewInterceptor struct {
	client    *Client
	store     credstore.Store
	renewPath string
	callbacks RenewCallbacks

	// share collapses concurrent renewal attempts onto one in-flight request.
	share    bool
	mu       sync.Mutex
	inflight *renewAttempt
}

type renewAttempt struct {
	done  chan struct{}
	token string
	err   error
}

// NewRenewInterceptor creates the renewal interceptor. An empty renewPath
// selects [DefaultRenewPath]. share collapses concurrent renewals; passing
// false restores the legacy one-renewal-per-call behavior.
func NewRenewInterceptor(client *Client, store credstore.Store, renewPath string, share bool, cb RenewCallbacks) *RenewInterceptor {
	if renewPath == "" {
		renewPath = DefaultRenewPath
	}
	return &RenewInterceptor{
		client:    client,
		store:     store,
		renewPath: renewPath,
		callbacks: cb,
		share:     share,
	}
}

// Register attaches the interceptor to the chain and returns its handle.
func (r *RenewInterceptor) Register(c *Client) Handle {
	return c.UseResponse(r.Hook)
}

// Hook is the response hook implementing the state machine transitions.
func (r *RenewInterceptor) Hook(ctx context.Context, call *Call, resp *Response, err error) (*Response, error) {
	if err != nil || resp == nil {
		return resp, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}
	// The renewal endpoint itself never triggers renewal, and neither do calls
	// that opted out.
	if call.Path == r.renewPath || call.SkipRenewal {
		return resp, err
	}
	// Flag before renewal starts; a 401 on the replay lands here with the flag
	// already set and surfaces as a final failure.
	if !call.markRetried() {
		return resp, err
	}

	token, renewErr := r.renew(ctx)
	if renewErr != nil {
		// The original call fails with the renewal error, not its own 401.
		return nil, renewErr
	}

	call.Header.Set("Authorization", "Bearer "+token)
	return r.client.Do(ctx, call)
}

// renew obtains a fresh credential, joining the in-flight attempt when sharing
// is enabled.
func (r *RenewInterceptor) renew(ctx context.Context) (string, error) {
	r.mu.Lock()
	if r.share && r.inflight != nil {
		attempt := r.inflight
		r.mu.Unlock()
		if fn := r.callbacks.OnShared; fn != nil {
			fn()
		}
		select {
		case <-attempt.done:
			return attempt.token, attempt.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	attempt := &renewAttempt{done: make(chan struct{})}
	if r.share {
		r.inflight = attempt
	}
	r.mu.Unlock()

	attempt.token, attempt.err = r.renewOnce(ctx)

	r.mu.Lock()
	if r.inflight == attempt {
		r.inflight = nil
	}
	r.mu.Unlock()
	close(attempt.done)

	return attempt.token, attempt.err
}

// renewOnce performs one renewal round-trip and applies its side effects
// exactly once: persisting or clearing the credential, updating the chain's
// default header, and signaling the manager.
func (r *RenewInterceptor) renewOnce(ctx context.Context) (string, error) {
	call := NewCall(http.MethodPost, r.renewPath)
	call.SkipLoader = true

	resp, err := r.client.Do(ctx, call)
	if err != nil {
		return "", r.fail(errors.Join(ErrRenewalFailed, err))
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := resp.JSON(&payload); err != nil || payload.AccessToken == "" {
		return "", r.fail(ErrRenewalFailed)
	}

	_ = r.store.Set(credstore.Credential{BearerToken: payload.AccessToken})
	r.client.SetDefaultHeader("Authorization", "Bearer "+payload.AccessToken)
	if fn := r.callbacks.OnRenewed; fn != nil {
		fn(payload.AccessToken)
	}
	return payload.AccessToken, nil
}

func (r *RenewInterceptor) fail(err error) error {
	_ = r.store.Clear()
	r.client.SetDefaultHeader("Authorization", "")
	if fn := r.callbacks.OnForcedLogout; fn != nil {
		fn(err)
	}
	return err
}

// Renew exposes the shared renewal path for manual or early renewal.
func (r *RenewInterceptor) Renew(ctx context.Context) error {
	_, err := r.renew(ctx)
	return err
}
