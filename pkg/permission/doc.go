// Package permission implements the permission string model shared by the
// server-side evaluator and the client-side mirror.
//
// A permission is a dot-delimited resource/action pair such as "leads.read"
// or "deals.approve". Permissions are opaque identifiers; the only syntax the
// package understands is a trailing wildcard:
//
//   • Delimiter (".") separates the resource from the action.
//   • Wildcard ("*") at the end of a pattern grants every permission that
//     starts with the pattern minus the "*". "leads.*" grants "leads.read"
//     and "leads.create" but not "leadsource.read". A bare "*" grants
//     everything.
//
// # Usage
//
//	granted := permission.Normalize([]string{"leads.*", "deals.read"})
//
//	permission.Has(granted, "leads.delete")                    // true
//	permission.HasAny(granted, []string{"deals.approve", "deals.read"}) // true
//	permission.HasAll(granted, []string{"deals.approve", "deals.read"}) // false
//
// # Validation
//
// Catalogs loaded from files are checked with Valid, which accepts
// "resource.action", "resource.*" and "*".
//
// All helpers are pure functions over their arguments and are safe for
// concurrent use.
package permission
