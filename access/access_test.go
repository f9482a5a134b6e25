package access

import (
	"encoding/json"
	"testing"
)

func TestHasPermissionMembership(t *testing.T) {
	e := NewEvaluator("")
	role := &Role{
		Name:        "Sales Rep",
		Permissions: []Permission{"LEAD_READ"},
	}

	if !e.HasPermission(role, "LEAD_READ") {
		t.Fatalf("expected LEAD_READ to be granted")
	}
	if e.HasPermission(role, "LEAD_DELETE") {
		t.Fatalf("expected LEAD_DELETE to be denied")
	}
}

func TestHasPermissionNilAndEmpty(t *testing.T) {
	e := NewEvaluator("")

	if e.HasPermission(nil, "LEAD_READ") {
		t.Fatalf("nil role must grant nothing")
	}
	if e.HasPermission(&Role{Name: "Sales Rep"}, "") {
		t.Fatalf("empty permission name must be denied")
	}
}

func TestSuperRoleBypassesEveryPermission(t *testing.T) {
	e := NewEvaluator("")

	cases := []struct {
		name string
		role *Role
		want bool
	}{
		{"system super-role with empty list", &Role{Name: "Super Admin", System: true}, true},
		{"system super-role with unrelated list", &Role{Name: "Super Admin", System: true, Permissions: []Permission{"INVOICE_READ"}}, true},
		{"super-role name without system flag", &Role{Name: "Super Admin", System: false}, false},
		{"system flag with different name", &Role{Name: "Admin", System: true}, false},
	}

	perms := []string{"LEAD_READ", "LEAD_DELETE", "CONTACT_WRITE", "ANYTHING_AT_ALL"}
	for _, tc := range cases {
		for _, p := range perms {
			got := e.HasPermission(tc.role, p)
			if tc.want && !got {
				t.Fatalf("%s: expected %q granted", tc.name, p)
			}
			if !tc.want && got {
				if hasListed(tc.role, p) {
					continue
				}
				t.Fatalf("%s: expected %q denied", tc.name, p)
			}
		}
	}
}

func hasListed(r *Role, p string) bool {
	for _, have := range r.Permissions {
		if string(have) == p {
			return true
		}
	}
	return false
}

func TestHasRoleIsLiteral(t *testing.T) {
	e := NewEvaluator("")
	super := &Role{Name: "Super Admin", System: true}
	rep := &Role{Name: "Sales Rep"}

	if !e.HasRole(super, "Super Admin") {
		t.Fatalf("super-role must match its own literal name")
	}
	if e.HasRole(super, "Sales Rep") {
		t.Fatalf("super-role must not satisfy checks for other role names")
	}
	if !e.HasRole(rep, "Sales Rep") {
		t.Fatalf("exact role name must match")
	}
	if e.HasRole(nil, "Sales Rep") {
		t.Fatalf("nil role must not match")
	}
}

func TestCustomSuperRoleName(t *testing.T) {
	e := NewEvaluator("Root")

	root := &Role{Name: "Root", System: true}
	if !e.HasPermission(root, "LEAD_DELETE") {
		t.Fatalf("configured super-role must bypass permission checks")
	}

	defaultSuper := &Role{Name: "Super Admin", System: true}
	if e.HasPermission(defaultSuper, "LEAD_DELETE") {
		t.Fatalf("default super-role name must not bypass when overridden")
	}
}

func TestPermissionUnmarshalBothShapes(t *testing.T) {
	payload := []byte(`{
		"roleName": "Sales Rep",
		"isSystemRole": false,
		"permissions": ["LEAD_READ", {"permissionName": "CONTACT_READ"}, {"permissionName": "INVOICE_READ", "id": 7}]
	}`)

	var role Role
	if err := json.Unmarshal(payload, &role); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	want := []Permission{"LEAD_READ", "CONTACT_READ", "INVOICE_READ"}
	if len(role.Permissions) != len(want) {
		t.Fatalf("expected %d permissions, got %d", len(want), len(role.Permissions))
	}
	for i, p := range want {
		if role.Permissions[i] != p {
			t.Fatalf("permission %d: expected %q, got %q", i, p, role.Permissions[i])
		}
	}

	e := NewEvaluator("")
	if !e.HasPermission(&role, "CONTACT_READ") {
		t.Fatalf("object-shaped permission must evaluate after normalization")
	}
}

func TestPermissionUnmarshalRejectsGarbage(t *testing.T) {
	var p Permission
	if err := json.Unmarshal([]byte(`42`), &p); err == nil {
		t.Fatalf("expected error for non-string non-object payload")
	}
}
