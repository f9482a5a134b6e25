// Package guard decides whether a route may render for the current session.
//
// Guards are pure decision functions over a session snapshot: they never issue
// requests, never mutate the session, and never navigate on their own. The
// caller (a router integration, a view layer) interprets the returned
// [Decision] — render, hold on a pending indicator, or redirect.
//
// # Architecture boundaries
//
// guard sits above the session manager and below nothing. It reads readiness
// and the session through the narrow [SessionSource] interface, which
// *authkit.Manager satisfies.
//
// # What this package must NOT do
//
//   - perform I/O or block
//   - mutate the session or the credential store
//   - bypass role checks for the super role (only permission checks bypass)
package guard
