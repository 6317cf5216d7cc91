package rbac

import (
	"context"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

// Mode selects how a list of required permissions is satisfied.
type Mode int

const (
	// ModeAny is satisfied by any single listed permission.
	ModeAny Mode = iota
	// ModeAll requires every listed permission.
	ModeAll
)

// String implements fmt.Stringer.
func (m Mode) String() string {
	if m == ModeAll {
		return "all"
	}
	return "any"
}

// Decision reasons.
const (
	ReasonNoRequirement   = "no_requirement"
	ReasonSuperAdmin      = "super_admin_bypass"
	ReasonGranted         = "granted"
	ReasonNotGranted      = "insufficient_permissions"
	ReasonUnauthenticated = "authentication_missing"
)

// Decision is the structured outcome of an authorization check.
type Decision struct {
	Allowed  bool     `json:"allowed"`
	Reason   string   `json:"reason"`
	Mode     Mode     `json:"-"`
	Required []string `json:"required,omitempty"`
	// Matched is the granted entry that satisfied the check, if any.
	Matched string `json:"matched,omitempty"`
}

// Authorizer evaluates principals against a Catalog.
// It holds no mutable state and is safe for concurrent use.
type Authorizer struct {
	catalog *Catalog
}

// NewAuthorizer creates an Authorizer over catalog.
// A nil catalog behaves as an empty one: only super_admin is allowed anything.
func NewAuthorizer(catalog *Catalog) *Authorizer {
	return &Authorizer{catalog: catalog}
}

// Catalog returns the catalog the authorizer evaluates against.
func (a *Authorizer) Catalog() *Catalog {
	return a.catalog
}

// Granted returns the effective permission set of p: its role's catalog
// entry united with its explicit permissions.
func (a *Authorizer) Granted(p Principal) []string {
	return permission.Union(a.catalog.permissionsFor(p.Role), p.Permissions)
}

// HasPermission reports whether p is allowed perm.
func (a *Authorizer) HasPermission(p Principal, perm string) bool {
	if p.IsSuperAdmin() {
		return true
	}
	_, ok := a.match(p, perm)
	return ok
}

// HasAnyPermission reports whether p is allowed at least one of perms.
// An empty list is always allowed.
func (a *Authorizer) HasAnyPermission(p Principal, perms []string) bool {
	return a.Decide(p, ModeAny, perms).Allowed
}

// HasAllPermissions reports whether p is allowed every one of perms.
// An empty list is always allowed.
func (a *Authorizer) HasAllPermissions(p Principal, perms []string) bool {
	return a.Decide(p, ModeAll, perms).Allowed
}

// Decide evaluates p against perms in the given mode.
func (a *Authorizer) Decide(p Principal, mode Mode, perms []string) Decision {
	d := Decision{Mode: mode, Required: perms}
	if len(perms) == 0 {
		d.Allowed, d.Reason = true, ReasonNoRequirement
		return d
	}
	if p.IsSuperAdmin() {
		d.Allowed, d.Reason = true, ReasonSuperAdmin
		return d
	}

	switch mode {
	case ModeAll:
		for _, perm := range perms {
			matched, ok := a.match(p, perm)
			if !ok {
				d.Reason = ReasonNotGranted
				return d
			}
			d.Matched = matched
		}
		d.Allowed, d.Reason = true, ReasonGranted
	default:
		for _, perm := range perms {
			if matched, ok := a.match(p, perm); ok {
				d.Allowed, d.Reason, d.Matched = true, ReasonGranted, matched
				return d
			}
		}
		d.Reason = ReasonNotGranted
	}
	return d
}

// match looks the permission up in the role entry first, then in the explicit grants.
func (a *Authorizer) match(p Principal, perm string) (string, bool) {
	if matched, ok := permission.FirstMatch(a.catalog.permissionsFor(p.Role), perm); ok {
		return matched, true
	}
	return permission.FirstMatch(p.Permissions, perm)
}

// Check turns a decision into an error: ErrAuthenticationMissing when p has
// no role, a *DeniedError when the requirement is not met, nil otherwise.
func (a *Authorizer) Check(p Principal, mode Mode, perms []string) error {
	if len(perms) == 0 {
		return nil
	}
	if p.Role == "" {
		return ErrAuthenticationMissing
	}
	if !a.Decide(p, mode, perms).Allowed {
		return &DeniedError{Required: perms, Mode: mode}
	}
	return nil
}

// CheckContext is Check with the principal taken from ctx.
func (a *Authorizer) CheckContext(ctx context.Context, mode Mode, perms ...string) error {
	if len(perms) == 0 {
		return nil
	}
	p, ok := GetPrincipalFromContext(ctx)
	if !ok {
		return ErrAuthenticationMissing
	}
	return a.Check(p, mode, perms)
}

// CheckDelegation reports whether p may hand perms to another principal.
// A principal can only pass on what it holds itself: a concrete permission
// must be allowed to p, and a wildcard pattern must appear in, or be covered
// by a broader pattern of, p's granted set. Super admins may delegate anything.
// The returned *DeniedError lists every permission p cannot delegate.
func (a *Authorizer) CheckDelegation(p Principal, perms []string) error {
	if !p.Authenticated() {
		return ErrAuthenticationMissing
	}
	if p.IsSuperAdmin() {
		return nil
	}

	var missing []string
	for _, perm := range perms {
		if _, ok := a.match(p, perm); !ok {
			missing = append(missing, perm)
		}
	}
	if len(missing) > 0 {
		return &DeniedError{Required: missing, Mode: ModeAll}
	}
	return nil
}
