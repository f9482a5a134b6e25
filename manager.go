package authkit

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/basillal/LeadSphere-sub001/access"
	"github.com/basillal/LeadSphere-sub001/credstore"
	internalaudit "github.com/basillal/LeadSphere-sub001/internal/audit"
	"github.com/basillal/LeadSphere-sub001/token"
	"github.com/basillal/LeadSphere-sub001/transport"
)

// Manager defines a public type used by authkit APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// Construct one through [Builder.Build]; the zero value is not usable.
type Manager struct {
	config    Config
	client    *transport.Client
	store     credstore.Store
	navigator Navigator
	eval      access.Evaluator
	metrics   *Metrics
	audit     *internalaudit.Dispatcher

	renew  *transport.RenewInterceptor
	loader *transport.LoadingCoordinator

	authHandle   transport.Handle
	renewHandle  transport.Handle
	loaderHandle transport.Handle

	mu          sync.RWMutex
	session     Session
	watchers    map[uint64]func(tenantID string)
	nextWatcher uint64

	bootstrapDone atomic.Bool
	closed        atomic.Bool
}

// Bootstrap describes the bootstrap operation and its observable behavior.
//
// Bootstrap may return an error when input validation, dependency calls, or security checks fail.
// Bootstrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Bootstrap always resolves readiness, success or not: [Manager.BootstrapDone]
// reports true after the first call returns. A failed profile fetch leaves the
// stored credential in place so a later attempt can succeed without a fresh
// login.
func (m *Manager) Bootstrap(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	defer m.bootstrapDone.Store(true)
	defer m.observe(time.Now())

	cred, ok := m.store.Get()
	if !ok {
		m.metrics.Inc(MetricBootstrapSkipped)
		return nil
	}

	m.client.SetDefaultHeader("Authorization", "Bearer "+cred.BearerToken)

	// Renew up front when the credential is at or near end of life; a renewal
	// rejection here escalates to forced logout exactly like a mid-flight one.
	if w := m.config.Renewal.EarlyWindow; w > 0 {
		if info, err := token.Inspect(cred.BearerToken); err == nil && info.ExpiresWithin(w) {
			if err := m.renew.Renew(ctx); err != nil {
				m.metrics.Inc(MetricBootstrapFailure)
				m.emitAudit(ctx, auditEventBootstrap, false, "", err, nil)
				return errors.Join(ErrProfileFetchFailed, err)
			}
		}
	}

	call := transport.NewCall(http.MethodGet, m.config.Endpoints.Profile)
	resp, err := m.client.Do(ctx, call)
	if err != nil {
		m.metrics.Inc(MetricBootstrapFailure)
		m.emitAudit(ctx, auditEventBootstrap, false, "", err, nil)
		return errors.Join(ErrProfileFetchFailed, err)
	}

	var user User
	if err := resp.JSON(&user); err != nil {
		m.metrics.Inc(MetricBootstrapFailure)
		m.emitAudit(ctx, auditEventBootstrap, false, "", err, nil)
		return errors.Join(ErrProfileFetchFailed, err)
	}

	m.mu.Lock()
	m.session = Session{User: &user, TenantID: m.store.Tenant()}
	m.mu.Unlock()

	m.metrics.Inc(MetricBootstrapSuccess)
	m.emitAudit(ctx, auditEventBootstrap, true, user.ID, nil, nil)
	return nil
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// A rejected login leaves the session and stored credential untouched; the
// server's message is recoverable through [LoginMessage].
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	defer m.observe(time.Now())

	call := transport.NewCall(http.MethodPost, m.config.Endpoints.Login)
	call.SkipRenewal = true
	if err := call.SetJSON(map[string]string{"email": email, "password": password}); err != nil {
		return nil, err
	}

	resp, err := m.client.Do(ctx, call)
	if err != nil {
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", err, func() map[string]string {
			return map[string]string{"email": email}
		})
		return nil, errors.Join(ErrLoginFailed, err)
	}

	var payload loginResponse
	if err := resp.JSON(&payload); err != nil || payload.AccessToken == "" {
		m.metrics.Inc(MetricLoginFailure)
		m.emitAudit(ctx, auditEventLoginFailure, false, "", err, nil)
		return nil, ErrLoginFailed
	}

	if err := m.store.Set(credstore.Credential{BearerToken: payload.AccessToken}); err != nil {
		return nil, err
	}
	m.client.SetDefaultHeader("Authorization", "Bearer "+payload.AccessToken)

	user := payload.user()
	m.mu.Lock()
	m.session = Session{User: user, TenantID: m.store.Tenant()}
	m.mu.Unlock()

	// A fresh login resolves readiness as thoroughly as a bootstrap pass.
	m.bootstrapDone.Store(true)

	m.metrics.Inc(MetricLoginSuccess)
	m.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, nil, nil)
	return user, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Logout never fails: the server-side revocation is best effort, and the local
// teardown (credential cleared, session reset, navigation to login) happens
// whether or not the server was reachable. The tenant selection survives so the
// next login lands in the same workspace.
func (m *Manager) Logout(ctx context.Context) {
	if m.closed.Load() {
		return
	}
	defer m.observe(time.Now())

	call := transport.NewCall(http.MethodPost, m.config.Endpoints.Logout)
	call.SkipRenewal = true
	if _, err := m.client.Do(ctx, call); err != nil {
		m.metrics.Inc(MetricLogoutTransportError)
	}

	userID := m.currentUserID()
	m.clearLocal()

	m.metrics.Inc(MetricLogout)
	m.emitAudit(ctx, auditEventLogout, true, userID, nil, nil)
	m.navigateToLogin()
}

// Renew describes the renew operation and its observable behavior.
//
// Renew may return an error when input validation, dependency calls, or security checks fail.
// Renew does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Renew(ctx context.Context) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return m.renew.Renew(ctx)
}

// SelectTenant describes the selecttenant operation and its observable behavior.
//
// SelectTenant may return an error when input validation, dependency calls, or security checks fail.
// SelectTenant does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The new tenant scopes the next outgoing request; in-flight requests keep the
// scope they started with. Subscribers registered through
// [Manager.OnTenantChange] are notified outside the manager's lock.
func (m *Manager) SelectTenant(tenantID string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if err := m.store.SetTenant(tenantID); err != nil {
		return err
	}

	m.mu.Lock()
	m.session.TenantID = tenantID
	watchers := make([]func(string), 0, len(m.watchers))
	for _, fn := range m.watchers {
		watchers = append(watchers, fn)
	}
	userID := ""
	if m.session.User != nil {
		userID = m.session.User.ID
	}
	m.mu.Unlock()

	m.metrics.Inc(MetricTenantSwitch)
	m.emitAudit(context.Background(), auditEventTenantSwitch, true, userID, nil, nil)

	for _, fn := range watchers {
		fn(tenantID)
	}
	return nil
}

// OnTenantChange describes the ontenantchange operation and its observable behavior.
//
// OnTenantChange does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned function cancels the subscription.
func (m *Manager) OnTenantChange(fn func(tenantID string)) func() {
	m.mu.Lock()
	if m.watchers == nil {
		m.watchers = make(map[uint64]func(string))
	}
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
}

// Session describes the session operation and its observable behavior.
//
// Session does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// The returned value is a snapshot; the User pointer it carries is never
// mutated after publication.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// TenantScope describes the tenantscope operation and its observable behavior.
//
// TenantScope does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) TenantScope() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.TenantID
}

// BootstrapDone describes the bootstrapdone operation and its observable behavior.
//
// BootstrapDone does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) BootstrapDone() bool {
	return m.bootstrapDone.Load()
}

// Busy describes the busy operation and its observable behavior.
//
// Busy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Busy() bool {
	if m.loader == nil {
		return false
	}
	return m.loader.Busy()
}

// OnBusyChange describes the onbusychange operation and its observable behavior.
//
// OnBusyChange does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) OnBusyChange(fn func(busy bool)) {
	if m.loader != nil {
		m.loader.OnChange(fn)
	}
}

// HasPermission describes the haspermission operation and its observable behavior.
//
// HasPermission does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) HasPermission(permission string) bool {
	return m.eval.HasPermission(m.currentRole(), permission)
}

// HasRole describes the hasrole operation and its observable behavior.
//
// HasRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) HasRole(name string) bool {
	return m.eval.HasRole(m.currentRole(), name)
}

// Evaluator describes the evaluator operation and its observable behavior.
//
// Evaluator does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Evaluator() access.Evaluator {
	return m.eval
}

// Transport describes the transport operation and its observable behavior.
//
// Transport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Application calls issued through the returned client travel the same
// interceptor chain as the manager's own: credential attachment, tenant
// scoping, renewal, and in-flight bookkeeping all apply.
func (m *Manager) Transport() *transport.Client {
	return m.client
}

// Loader describes the loader operation and its observable behavior.
//
// Loader does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Loader returns nil when in-flight bookkeeping is disabled.
func (m *Manager) Loader() *transport.LoadingCoordinator {
	return m.loader
}

// Metrics describes the metrics operation and its observable behavior.
//
// Metrics does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Metrics() *Metrics {
	return m.metrics
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	return m.metrics.Snapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AuditDropped() uint64 {
	if m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
//
// Close ejects the manager's interceptors from the transport chain and drains
// the audit dispatcher. It is idempotent; operations after Close return
// [ErrClosed].
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.client.Eject(m.authHandle)
	m.client.Eject(m.renewHandle)
	if m.loaderHandle != "" {
		m.client.Eject(m.loaderHandle)
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

/* ==== RENEWAL CALLBACKS ==== */

func (m *Manager) onRenewed(string) {
	m.metrics.Inc(MetricRenewSuccess)
	m.emitAudit(context.Background(), auditEventRenewalSuccess, true, m.currentUserID(), nil, nil)
}

func (m *Manager) onRenewShared() {
	m.metrics.Inc(MetricRenewShared)
}

// onForcedLogout runs after the renewal interceptor has already cleared the
// stored credential. Only the session teardown and navigation remain.
func (m *Manager) onForcedLogout(err error) {
	userID := m.currentUserID()
	m.clearLocal()

	m.metrics.Inc(MetricRenewFailure)
	m.metrics.Inc(MetricForcedLogout)
	m.emitAudit(context.Background(), auditEventRenewalFailure, false, userID, err, nil)
	m.emitAudit(context.Background(), auditEventForcedLogout, false, userID, err, nil)
	m.navigateToLogin()
}

/* ==== INTERNAL HELPERS ==== */

// clearLocal resets the credential and session but keeps the tenant selection.
func (m *Manager) clearLocal() {
	_ = m.store.Clear()
	m.client.SetDefaultHeader("Authorization", "")
	m.mu.Lock()
	m.session.User = nil
	m.mu.Unlock()
}

func (m *Manager) navigateToLogin() {
	if m.navigator != nil {
		m.navigator.NavigateToLogin()
	}
}

func (m *Manager) currentRole() *access.Role {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.User == nil {
		return nil
	}
	return m.session.User.Role
}

func (m *Manager) currentUserID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session.User == nil {
		return ""
	}
	return m.session.User.ID
}

func (m *Manager) observe(start time.Time) {
	m.metrics.Observe(MetricOperationLatency, time.Since(start))
}
