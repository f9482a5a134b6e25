package access

import (
	"encoding/json"
	"strings"
)

// DefaultSuperRole is the distinguished role name that bypasses permission checks.
const DefaultSuperRole = "Super Admin"

// Permission is an opaque permission identifier such as "LEAD_READ".
//
// The backend emits permissions either as bare strings or as objects carrying a
// permissionName field. Both shapes decode into the same canonical value, so
// evaluation never branches on payload shape.
type Permission string

// UnmarshalJSON accepts both permission payload shapes.
func (p *Permission) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = Permission(s)
		return nil
	}

	var obj struct {
		PermissionName string `json:"permissionName"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*p = Permission(obj.PermissionName)
	return nil
}

// Role defines a public type used by authkit APIs.
//
// Role instances are immutable snapshots embedded in a User; they are replaced
// wholesale on login or bootstrap, never patched field-by-field.
type Role struct {
	Name        string       `json:"roleName"`
	System      bool         `json:"isSystemRole"`
	Permissions []Permission `json:"permissions"`
}

// Evaluator defines a public type used by authkit APIs.
//
// Evaluator instances are intended to be configured during initialization and then
// treated as immutable. The zero value uses [DefaultSuperRole].
type Evaluator struct {
	superRole string
}

// NewEvaluator creates an Evaluator whose super-role bypass matches superRole.
// An empty superRole selects [DefaultSuperRole].
func NewEvaluator(superRole string) Evaluator {
	if strings.TrimSpace(superRole) == "" {
		superRole = DefaultSuperRole
	}
	return Evaluator{superRole: superRole}
}

// SuperRole returns the configured super-role name.
func (e Evaluator) SuperRole() string {
	if e.superRole == "" {
		return DefaultSuperRole
	}
	return e.superRole
}

// IsSuper reports whether role is the distinguished super-role.
func (e Evaluator) IsSuper(role *Role) bool {
	return role != nil && role.System && role.Name == e.SuperRole()
}

// HasPermission reports whether role grants the named permission.
//
// A nil role grants nothing. The super-role grants everything regardless of its
// permission list contents.
func (e Evaluator) HasPermission(role *Role, permission string) bool {
	if role == nil || permission == "" {
		return false
	}
	if e.IsSuper(role) {
		return true
	}
	for _, p := range role.Permissions {
		if string(p) == permission {
			return true
		}
	}
	return false
}

// HasRole reports whether role is exactly the named role.
//
// The super-role bypass does not apply here: a check for "Super Admin" must match
// the literal role name, and a super-role user does not satisfy checks for other
// role names.
func (e Evaluator) HasRole(role *Role, name string) bool {
	if role == nil || name == "" {
		return false
	}
	return role.Name == name
}
