// Package transport provides the shared HTTP call pipeline for the LeadSphere
// client: a middleware chain with an explicit register/eject lifecycle, the
// credential-attach and session-renewal interceptors, and the in-flight call
// coordinator behind the global busy indicator.
//
// # Call pipeline
//
// Every [Call] submitted through [Client.Do] passes lifecycle hooks (loader
// bookkeeping), then request hooks (credential and tenant stamping), is sent,
// and finally passes response hooks (renewal and replay). Interceptor slots are
// owned by the [Client], never ambient globals; callers hold a [Handle] per
// registration and must eject it on teardown so remounts cannot accumulate
// duplicate handlers.
//
// # Renewal protocol
//
// A call that fails with 401 and has not been replayed before triggers exactly
// one credential renewal and one resubmission of the original call. The retry
// flag is set before renewal starts and is never cleared. Concurrent 401s share
// a single in-flight renewal. Calls targeting the renewal endpoint itself never
// trigger renewal.
//
// # What this package must NOT do
//
//   - Own session state; it signals the session manager through callbacks.
//   - Import authkit, access, or guard (no upward imports).
//   - Retry a call more than once for any reason.
package transport
