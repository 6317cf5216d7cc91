package rbac

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Role identifies a principal's position in the organization.
type Role string

// Known roles.
const (
	RoleSuperAdmin   Role = "super_admin"
	RoleCompanyAdmin Role = "company_admin"
	RoleSalesManager Role = "sales_manager"
	RoleSalesAgent   Role = "sales_agent"
	RoleMarketing    Role = "marketing"
	RoleSupport      Role = "support"
)

// Roles lists every known role from the most to the least privileged.
func Roles() []Role {
	return []Role{
		RoleSuperAdmin,
		RoleCompanyAdmin,
		RoleSalesManager,
		RoleSalesAgent,
		RoleMarketing,
		RoleSupport,
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleCompanyAdmin, RoleSalesManager, RoleSalesAgent, RoleMarketing, RoleSupport:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

var titleCaser = cases.Title(language.English)

// Label returns a human readable role name, e.g. "Sales Manager".
func (r Role) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(r), "_", " "))
}

// ParseRole converts s to a known Role.
// Hyphenated and upper-case spellings ("SALES-AGENT") are accepted.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
