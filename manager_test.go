package authkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/basillal/LeadSphere-sub001/credstore"
	"github.com/basillal/LeadSphere-sub001/transport"
)

type sessionBackend struct {
	mu            sync.Mutex
	validToken    string
	renewCount    int
	renewDenied   bool
	profileStatus int
	logoutStatus  int
	logoutCount   int

	lastTenantHeader string
	lastTenantParam  string
}

func (b *sessionBackend) userJSON() map[string]any {
	return map[string]any{
		"id":    "u1",
		"name":  "Alice",
		"email": "alice@example.com",
		"role": map[string]any{
			"roleName":     "Manager",
			"isSystemRole": false,
			"permissions":  []string{"leads.view"},
		},
	}
}

func (b *sessionBackend) authorized(r *http.Request) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.validToken != "" && r.Header.Get("Authorization") == "Bearer "+b.validToken
}

func (b *sessionBackend) handle(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"})
			return
		}
		b.mu.Lock()
		b.validToken = "tok-1"
		b.mu.Unlock()
		payload := b.userJSON()
		payload["accessToken"] = "tok-1"
		_ = json.NewEncoder(w).Encode(payload)

	case "/api/auth/me":
		b.mu.Lock()
		status := b.profileStatus
		b.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		if !b.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(b.userJSON())

	case "/api/auth/refresh":
		b.mu.Lock()
		b.renewCount++
		denied := b.renewDenied
		token := fmt.Sprintf("tok-%d", b.renewCount+1)
		if !denied {
			b.validToken = token
		}
		b.mu.Unlock()
		if denied {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "session expired"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"accessToken": token})

	case "/api/auth/logout":
		b.mu.Lock()
		b.logoutCount++
		status := b.logoutStatus
		b.mu.Unlock()
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case "/api/data":
		b.mu.Lock()
		b.lastTenantHeader = r.Header.Get("x-tenant-context")
		b.lastTenantParam = r.URL.Query().Get("company")
		b.mu.Unlock()
		if !b.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type navRecorder struct {
	calls atomic.Int32
}

func (n *navRecorder) NavigateToLogin() { n.calls.Add(1) }

func newSessionManager(t *testing.T, mutate func(*Config)) (*Manager, *sessionBackend, credstore.Store, *navRecorder, func()) {
	t.Helper()

	backend := &sessionBackend{}
	srv := httptest.NewServer(http.HandlerFunc(backend.handle))

	cfg := DefaultConfig()
	cfg.Endpoints.BaseURL = srv.URL
	if mutate != nil {
		mutate(&cfg)
	}

	store := credstore.NewMemoryStore()
	nav := &navRecorder{}

	m, err := New().
		WithConfig(cfg).
		WithCredentialStore(store).
		WithNavigator(nav).
		Build()
	if err != nil {
		srv.Close()
		t.Fatalf("Build failed: %v", err)
	}

	cleanup := func() {
		m.Close()
		srv.Close()
	}
	return m, backend, store, nav, cleanup
}

func TestLoginSuccess(t *testing.T) {
	m, _, store, _, done := newSessionManager(t, nil)
	defer done()

	user, err := m.Login(context.Background(), "alice@example.com", "secret")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if user.ID != "u1" || user.Role == nil || user.Role.Name != "Manager" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if !m.Session().IsAuthenticated() {
		t.Fatal("session should be authenticated after login")
	}
	if cred, ok := store.Get(); !ok || cred.BearerToken != "tok-1" {
		t.Fatalf("credential not persisted: %+v ok=%v", cred, ok)
	}
	if !m.BootstrapDone() {
		t.Fatal("login should resolve readiness")
	}
	if got := m.Metrics().Value(MetricLoginSuccess); got != 1 {
		t.Fatalf("MetricLoginSuccess = %d, want 1", got)
	}
	if !m.HasPermission("leads.view") {
		t.Fatal("granted permission should evaluate true")
	}
	if m.HasPermission("billing.manage") {
		t.Fatal("ungranted permission should evaluate false")
	}
}

func TestLoginFailureSurfacesServerMessage(t *testing.T) {
	m, backend, store, _, done := newSessionManager(t, nil)
	defer done()

	_, err := m.Login(context.Background(), "alice@example.com", "wrong")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("want ErrLoginFailed, got %v", err)
	}
	if msg := LoginMessage(err); msg != "Invalid credentials" {
		t.Fatalf("LoginMessage = %q, want server message", msg)
	}
	if m.Session().IsAuthenticated() {
		t.Fatal("failed login must not authenticate the session")
	}
	if _, ok := store.Get(); ok {
		t.Fatal("failed login must not persist a credential")
	}
	if backend.renewCount != 0 {
		t.Fatalf("login 401 must not trigger renewal, renewCount = %d", backend.renewCount)
	}
	if got := m.Metrics().Value(MetricLoginFailure); got != 1 {
		t.Fatalf("MetricLoginFailure = %d, want 1", got)
	}
}

func TestBootstrapWithStoredCredential(t *testing.T) {
	m, backend, store, _, done := newSessionManager(t, nil)
	defer done()

	backend.validToken = "tok-1"
	if err := store.Set(credstore.Credential{BearerToken: "tok-1"}); err != nil {
		t.Fatalf("seed credential: %v", err)
	}

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !m.BootstrapDone() {
		t.Fatal("readiness should resolve")
	}
	sess := m.Session()
	if !sess.IsAuthenticated() || sess.User.Email != "alice@example.com" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if got := m.Metrics().Value(MetricBootstrapSuccess); got != 1 {
		t.Fatalf("MetricBootstrapSuccess = %d, want 1", got)
	}
}

func TestBootstrapWithoutCredential(t *testing.T) {
	m, _, _, nav, done := newSessionManager(t, nil)
	defer done()

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap without credential should be quiet, got %v", err)
	}
	if !m.BootstrapDone() {
		t.Fatal("readiness should resolve even without a credential")
	}
	if m.Session().IsAuthenticated() {
		t.Fatal("session should stay unauthenticated")
	}
	if nav.calls.Load() != 0 {
		t.Fatal("missing credential is not a forced logout")
	}
	if got := m.Metrics().Value(MetricBootstrapSkipped); got != 1 {
		t.Fatalf("MetricBootstrapSkipped = %d, want 1", got)
	}
}

func TestBootstrapFailureKeepsCredential(t *testing.T) {
	m, backend, store, _, done := newSessionManager(t, nil)
	defer done()

	backend.validToken = "tok-1"
	backend.profileStatus = http.StatusInternalServerError
	_ = store.Set(credstore.Credential{BearerToken: "tok-1"})

	err := m.Bootstrap(context.Background())
	if !errors.Is(err, ErrProfileFetchFailed) {
		t.Fatalf("want ErrProfileFetchFailed, got %v", err)
	}
	if !m.BootstrapDone() {
		t.Fatal("readiness must resolve on failure too")
	}
	if cred, ok := store.Get(); !ok || cred.BearerToken != "tok-1" {
		t.Fatal("a failed profile fetch must not clear the stored credential")
	}
	if m.Session().IsAuthenticated() {
		t.Fatal("session should stay unauthenticated on failure")
	}
}

func TestBootstrapEarlyRenewal(t *testing.T) {
	m, backend, store, _, done := newSessionManager(t, nil)
	defer done()

	// A real claims payload whose expiry falls inside the early window. The
	// signature is irrelevant: expiry inspection never verifies.
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Second)),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	backend.validToken = raw
	_ = store.Set(credstore.Credential{BearerToken: raw})

	if err := m.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if backend.renewCount != 1 {
		t.Fatalf("renewCount = %d, want 1 early renewal", backend.renewCount)
	}
	if cred, _ := store.Get(); cred.BearerToken != "tok-2" {
		t.Fatalf("renewed credential not persisted, got %q", cred.BearerToken)
	}
	if !m.Session().IsAuthenticated() {
		t.Fatal("session should authenticate after early renewal")
	}
}

func TestForcedLogoutOnRenewalFailure(t *testing.T) {
	m, backend, store, nav, done := newSessionManager(t, nil)
	defer done()

	backend.renewDenied = true
	_ = store.Set(credstore.Credential{BearerToken: "stale"})

	err := m.Bootstrap(context.Background())
	if !errors.Is(err, ErrRenewalFailed) {
		t.Fatalf("want ErrRenewalFailed, got %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("rejected renewal must clear the credential")
	}
	if nav.calls.Load() != 1 {
		t.Fatalf("navigator calls = %d, want 1", nav.calls.Load())
	}
	if got := m.Metrics().Value(MetricForcedLogout); got != 1 {
		t.Fatalf("MetricForcedLogout = %d, want 1", got)
	}
}

func TestLogoutAlwaysClearsLocally(t *testing.T) {
	m, backend, store, nav, done := newSessionManager(t, nil)
	defer done()

	if _, err := m.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	_ = m.SelectTenant("t42")

	backend.logoutStatus = http.StatusInternalServerError
	m.Logout(context.Background())

	if _, ok := store.Get(); ok {
		t.Fatal("logout must clear the credential even when the server errors")
	}
	if m.Session().IsAuthenticated() {
		t.Fatal("logout must reset the session")
	}
	if m.TenantScope() != "t42" {
		t.Fatal("logout must keep the tenant selection")
	}
	if nav.calls.Load() != 1 {
		t.Fatalf("navigator calls = %d, want 1", nav.calls.Load())
	}
	if got := m.Metrics().Value(MetricLogoutTransportError); got != 1 {
		t.Fatalf("MetricLogoutTransportError = %d, want 1", got)
	}
	if backend.logoutCount != 1 {
		t.Fatalf("logout endpoint hit %d times, want 1", backend.logoutCount)
	}
}

func TestSelectTenantScopesNextCall(t *testing.T) {
	m, backend, _, _, done := newSessionManager(t, nil)
	defer done()

	if _, err := m.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	var notified []string
	cancel := m.OnTenantChange(func(id string) { notified = append(notified, id) })
	defer cancel()

	if err := m.SelectTenant("t42"); err != nil {
		t.Fatalf("SelectTenant failed: %v", err)
	}

	call := transport.NewCall(http.MethodGet, "/api/data")
	if _, err := m.Transport().Do(context.Background(), call); err != nil {
		t.Fatalf("data call failed: %v", err)
	}

	if backend.lastTenantHeader != "t42" || backend.lastTenantParam != "t42" {
		t.Fatalf("tenant scope missing: header=%q param=%q", backend.lastTenantHeader, backend.lastTenantParam)
	}
	if len(notified) != 1 || notified[0] != "t42" {
		t.Fatalf("watcher notifications = %v, want [t42]", notified)
	}
	if got := m.Metrics().Value(MetricTenantSwitch); got != 1 {
		t.Fatalf("MetricTenantSwitch = %d, want 1", got)
	}
}

func TestCloseEjectsInterceptors(t *testing.T) {
	m, _, _, _, done := newSessionManager(t, nil)
	defer done()

	if m.Transport().HookCount() == 0 {
		t.Fatal("interceptors should be registered after Build")
	}
	m.Close()
	if got := m.Transport().HookCount(); got != 0 {
		t.Fatalf("HookCount after Close = %d, want 0", got)
	}
	if err := m.Bootstrap(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("Bootstrap after Close = %v, want ErrClosed", err)
	}
	if _, err := m.Login(context.Background(), "a", "b"); !errors.Is(err, ErrClosed) {
		t.Fatalf("Login after Close = %v, want ErrClosed", err)
	}
	if err := m.SelectTenant("t1"); !errors.Is(err, ErrClosed) {
		t.Fatalf("SelectTenant after Close = %v, want ErrClosed", err)
	}
}

func TestAuditEventsFlowToSink(t *testing.T) {
	sink := NewChannelSink(16)
	backend := &sessionBackend{}
	srv := httptest.NewServer(http.HandlerFunc(backend.handle))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.Endpoints.BaseURL = srv.URL
	cfg.Audit.Enabled = true

	m, err := New().
		WithConfig(cfg).
		WithCredentialStore(credstore.NewMemoryStore()).
		WithAuditSink(sink).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	if _, err := m.Login(context.Background(), "alice@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	select {
	case event := <-sink.Events():
		if event.EventType != "login_success" || event.UserID != "u1" || !event.Success {
			t.Fatalf("unexpected audit event: %+v", event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
}
