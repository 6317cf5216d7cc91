package rbac_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// universe spans catalog entries, near-miss prefixes and unknown resources.
var universe = []string{
	"", "*", "leads.*", "leads*", "leads.read", "leads.create", "leads.update", "leads.delete",
	"leads.assign", "leadsource.read", "deals.*", "deals.read", "deals.approve", "users.read",
	"users.delete", "companies.update", "campaigns.publish", "payments.refund", "audit.read",
}

var roles = append(rbac.Roles(), "janitor", "")

func pick(idx []int) []string {
	out := make([]string, 0, len(idx))
	for _, i := range idx {
		out = append(out, universe[i])
	}
	return out
}

func TestAuthorizerProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 300
	properties := gopter.NewProperties(parameters)

	authz := rbac.NewAuthorizer(rbac.DefaultCatalog())
	permIdx := gen.IntRange(0, len(universe)-1)
	roleIdx := gen.IntRange(0, len(roles)-1)

	properties.Property("super admin is allowed everything", prop.ForAll(
		func(perms []int, explicit []int) bool {
			p := rbac.Principal{Role: rbac.RoleSuperAdmin, Permissions: pick(explicit)}
			for _, perm := range pick(perms) {
				if !authz.HasPermission(p, perm) {
					return false
				}
			}
			return authz.HasAnyPermission(p, pick(perms)) && authz.HasAllPermissions(p, pick(perms))
		},
		gen.SliceOf(permIdx),
		gen.SliceOf(permIdx),
	))

	properties.Property("explicit grants never narrow access", prop.ForAll(
		func(role int, perm int, explicit []int) bool {
			base := rbac.Principal{Role: roles[role]}
			extended := rbac.Principal{Role: roles[role], Permissions: pick(explicit)}
			return !authz.HasPermission(base, universe[perm]) || authz.HasPermission(extended, universe[perm])
		},
		roleIdx,
		permIdx,
		gen.SliceOf(permIdx),
	))

	properties.Property("any-of is the disjunction of singular checks", prop.ForAll(
		func(role int, perms []int, explicit []int) bool {
			p := rbac.Principal{Role: roles[role], Permissions: pick(explicit)}
			list := pick(perms)
			if len(list) == 0 {
				return authz.HasAnyPermission(p, list)
			}
			want := false
			for _, perm := range list {
				want = want || authz.HasPermission(p, perm)
			}
			return authz.HasAnyPermission(p, list) == want
		},
		roleIdx,
		gen.SliceOf(permIdx),
		gen.SliceOf(permIdx),
	))

	properties.Property("all-of is the conjunction of singular checks", prop.ForAll(
		func(role int, perms []int, explicit []int) bool {
			p := rbac.Principal{Role: roles[role], Permissions: pick(explicit)}
			want := true
			for _, perm := range pick(perms) {
				want = want && authz.HasPermission(p, perm)
			}
			return authz.HasAllPermissions(p, pick(perms)) == want
		},
		roleIdx,
		gen.SliceOf(permIdx),
		gen.SliceOf(permIdx),
	))

	properties.Property("wildcard grants every permission under its prefix", prop.ForAll(
		func(role int, perm int) bool {
			target := universe[perm]
			if permission.Action(target) == "" {
				return true
			}
			p := rbac.Principal{Role: roles[role], Permissions: []string{permission.All(permission.Resource(target))}}
			return authz.HasPermission(p, target)
		},
		roleIdx,
		permIdx,
	))

	properties.Property("unknown roles only get explicit grants", prop.ForAll(
		func(perm int, explicit []int) bool {
			p := rbac.Principal{Role: "janitor", Permissions: pick(explicit)}
			want := false
			for _, g := range p.Permissions {
				want = want || permission.Matches(universe[perm], g)
			}
			return authz.HasPermission(p, universe[perm]) == want
		},
		permIdx,
		gen.SliceOf(permIdx),
	))

	properties.TestingRun(t)
}
