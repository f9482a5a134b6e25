package transport

import (
	"encoding/json"
	"net/http"
	"net/url"
	"sync/atomic"
)

// Call describes one logical request through the pipeline.
//
// A Call is created per operation and must not be reused after [Client.Do]
// returns. The renewal interceptor resubmits the same Call when it replays, so
// Method, Path, Query, and Body survive a replay unchanged.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header

	// Body is the encoded request payload; nil sends no body. Bytes rather
	// than a reader so a replay can resend the identical payload.
	Body []byte

	// SkipLoader exempts this call from in-flight bookkeeping.
	SkipLoader bool

	// SkipRenewal exempts this call from the renewal protocol. Login and
	// logout set it: a 401 from those endpoints is an answer, not an expiry.
	SkipRenewal bool

	requestID string
	retried   atomic.Bool
}

// NewCall creates a Call for the given method and path.
func NewCall(method, path string) *Call {
	return &Call{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Header: http.Header{},
	}
}

// SetJSON encodes v as the call body and sets the JSON content type.
func (c *Call) SetJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.Body = data
	c.Header.Set("Content-Type", "application/json")
	return nil
}

// RequestID returns the correlation id stamped on the call, if any.
func (c *Call) RequestID() string {
	return c.requestID
}

// Retried reports whether this call has already been replayed.
func (c *Call) Retried() bool {
	return c.retried.Load()
}

// markRetried flags the call as replayed. It reports whether this caller won the
// flag; once set it is never cleared, so a call is never replayed twice.
func (c *Call) markRetried() bool {
	return c.retried.CompareAndSwap(false, true)
}
