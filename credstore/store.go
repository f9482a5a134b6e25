package credstore

// Logical key names shared by every backend. The file backend uses them as JSON
// field names, the Redis backend as key suffixes.
const (
	KeyToken  = "auth_token"
	KeyTenant = "selectedCompany"
)

// Credential defines a public type used by authkit APIs.
//
// Its presence in a store is the only signal used to decide whether a session
// bootstrap should be attempted.
type Credential struct {
	BearerToken string
}

// Store is the persistence contract for the bearer credential and the active
// tenant selector. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored credential, if any.
	Get() (Credential, bool)
	// Set persists the credential synchronously.
	Set(Credential) error
	// Clear removes the credential. Clearing an empty store is a no-op.
	Clear() error

	// Tenant returns the selected tenant id, or "" when no tenant is scoped.
	Tenant() string
	// SetTenant persists the tenant selector. An empty id clears the selection.
	SetTenant(id string) error
}
