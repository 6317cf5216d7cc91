package rbac

import "slices"

// Principal is the authenticated actor of one request or session.
type Principal struct {
	ID        string `json:"id"`
	Role      Role   `json:"role"`
	CompanyID string `json:"company_id,omitempty"`

	// Permissions are explicit grants added on top of the role's catalog entry.
	// A nil slice is the empty set.
	Permissions []string `json:"permissions,omitempty"`
}

// Authenticated reports whether p carries an identity and a role.
func (p Principal) Authenticated() bool {
	return p.ID != "" && p.Role != ""
}

// IsSuperAdmin reports whether p bypasses every permission check.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == RoleSuperAdmin
}

// Clone returns a copy of p that shares no memory with the original.
func (p Principal) Clone() Principal {
	p.Permissions = slices.Clone(p.Permissions)
	return p
}
