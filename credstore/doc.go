// Package credstore provides durable client-side persistence for the bearer
// credential and the active-tenant selector.
//
// # Backends
//
// [FileStore] persists both values as a small JSON document under the user's
// configuration directory and survives process restarts. [MemoryStore] holds them
// in process memory for tests and embedded use. [RedisStore] shares one credential
// across a fleet of headless automation workers pointed at the same keyspace.
//
// # Storage layout
//
// All backends use the same logical keys: "auth_token" for the bearer string and
// "selectedCompany" for the tenant id. An absent tenant value means "no tenant
// scoping".
//
// # Architecture boundaries
//
// The store is a dumb key-value holder. It does not inspect, validate, or renew
// tokens, and it never touches the network beyond its own backend.
//
// # What this package must NOT do
//
//   - Import authkit, transport, or guard (no upward imports).
//   - Interpret token contents or expiry.
//   - Cache a credential after Clear has been called.
package credstore
