// Package rbac implements the role-based access control model of the CRM:
// the role → permission Catalog and the Authorizer that evaluates a Principal
// against required permissions.
//
// The same Authorizer is used by the request guard on the server and by the
// client-side mirror, so both sides apply identical rules:
//
//  1. A super_admin principal is allowed everything, before any other rule.
//  2. The granted set is the role's catalog entry united with the principal's
//     explicit permissions.
//  3. A requirement is satisfied by an exact entry or by a trailing-wildcard
//     entry ("leads.*").
//  4. Anything else is denied. Unknown roles have an empty catalog entry.
//
// Basic usage:
//
//	catalog := rbac.DefaultCatalog()
//	auth := rbac.NewAuthorizer(catalog)
//
//	p := rbac.Principal{ID: "u-1", Role: rbac.RoleSalesAgent, CompanyID: "c-1"}
//	auth.HasPermission(p, "leads.read")   // true
//	auth.HasPermission(p, "leads.delete") // false
//
// Catalogs can be built from any RoleSource. Role definitions may inherit
// other roles; inheritance is resolved once at construction and the
// resulting Catalog is immutable and safe for concurrent reads:
//
//	source := rbac.NewFileSource("config/rbac.yaml")
//	catalog, err := rbac.NewCatalog(ctx, source)
//
// Deny is an ordinary return value. Typed errors (ErrAuthenticationMissing,
// ErrPermissionDenied) are produced by callers that turn decisions into
// request failures, see Authorizer.Check.
package rbac
