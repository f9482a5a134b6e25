// Package access provides the pure role/permission decision functions used by route
// guards and action gating across the LeadSphere client.
//
// # Evaluation model
//
// A [Role] carries a flat list of permission names. [Evaluator.HasPermission] is a
// membership test with a single escape hatch: the configured super-role satisfies
// every permission unconditionally. [Evaluator.HasRole] is always a literal name
// match — the super-role bypass deliberately does not apply to role checks.
//
// # Architecture boundaries
//
// This package is a pure in-memory decision layer with no I/O. Permission payload
// normalization (string vs. object shape) happens here, at the JSON boundary, so
// every caller sees one canonical [Permission] value type.
//
// # What this package must NOT do
//
//   - Access the network, credential storage, or the transport chain.
//   - Import authkit, transport, or guard (no upward imports).
//   - Mutate a Role after it has been attached to a session snapshot.
package access
