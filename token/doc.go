// Package token provides client-side inspection of the bearer access token.
//
// The client holds no verification keys: the backend is the sole authority on
// token validity, and the only trustworthy signal the client acts on is a 401.
// Inspection is therefore unverified claim parsing, used for two advisory
// purposes only — scheduling an early renewal before a token is due to expire,
// and tagging audit events with the token subject.
//
// # What this package must NOT do
//
//   - Treat parsed claims as proof of authentication.
//   - Import authkit, transport, or credstore.
package token
