// Package authkit provides the client-side session and request-authorization layer
// of the LeadSphere CRM: a session manager with transparent credential renewal,
// request interceptors for bearer and tenant stamping, an in-flight call counter
// behind the global busy indicator, and role/permission gating for screens and
// actions.
//
// The package is designed for concurrent client workloads: Manager methods are safe
// to call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authkit is the public surface. It exposes [Manager], [Builder], [Config], and
// value types (Session, User, MetricsSnapshot, etc.). Audit dispatch lives under
// internal/ and is never exported; the transport chain, credential stores, access
// evaluation, token inspection, and guards live in their own leaf packages.
//
// # What this package must NOT do
//
//   - Expose the raw HTTP client or interceptor internals in its public API.
//   - Perform I/O outside of Manager methods (construction via Builder wires the
//     interceptors but sends nothing).
//   - Import any sub-package that re-imports authkit (no import cycles).
//
// # Lifecycle contract
//
// Build registers the attach, renewal, and loader interceptors on the shared
// transport; Close ejects them and drains the audit dispatcher. A remounted
// Manager must never leave duplicate handlers behind.
package authkit
