package transport

import (
	"context"

	"github.com/google/uuid"

	"github.com/basillal/LeadSphere-sub001/credstore"
)

// Default wire names for tenant scoping. The query parameter mirrors the header
// for read endpoints that predate the header convention.
const (
	DefaultTenantHeader = "x-tenant-context"
	DefaultTenantParam  = "company"
	requestIDHeader     = "X-Request-ID"
)

// AuthInterceptor stamps every outgoing call with the bearer credential and the
// active tenant context. It never fails a call: a missing credential simply
// leaves the Authorization header off.
type AuthInterceptor struct {
	store        credstore.Store
	tenantHeader string
	tenantParam  string
}

// NewAuthInterceptor creates the attach interceptor. Empty names select
// [DefaultTenantHeader] and [DefaultTenantParam].
func NewAuthInterceptor(store credstore.Store, tenantHeader, tenantParam string) *AuthInterceptor {
	if tenantHeader == "" {
		tenantHeader = DefaultTenantHeader
	}
	if tenantParam == "" {
		tenantParam = DefaultTenantParam
	}
	return &AuthInterceptor{
		store:        store,
		tenantHeader: tenantHeader,
		tenantParam:  tenantParam,
	}
}

// Register attaches the interceptor to the chain and returns its handle.
func (a *AuthInterceptor) Register(c *Client) Handle {
	return c.UseRequest(a.Hook)
}

// Hook is the request hook. It re-runs on replay, so every stamp is written
// with Set/Del rather than Add to stay idempotent.
func (a *AuthInterceptor) Hook(_ context.Context, call *Call) error {
	if cred, ok := a.store.Get(); ok && cred.BearerToken != "" {
		call.Header.Set("Authorization", "Bearer "+cred.BearerToken)
	}

	if tenant := a.store.Tenant(); tenant != "" {
		call.Header.Set(a.tenantHeader, tenant)
		call.Query.Set(a.tenantParam, tenant)
	} else {
		call.Header.Del(a.tenantHeader)
		call.Query.Del(a.tenantParam)
	}

	if call.requestID == "" {
		call.requestID = uuid.NewString()
	}
	call.Header.Set(requestIDHeader, call.requestID)
	return nil
}
