package permission

import (
	"slices"
	"strings"
)

const (
	// Wildcard grants every permission sharing the pattern's prefix.
	Wildcard = "*"

	// Delimiter separates the resource from the action.
	Delimiter = "."
)

// Standard CRUD actions.
const (
	ActionCreate  = "create"
	ActionRead    = "read"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionAssign  = "assign"
	ActionApprove = "approve"
)

// New joins a resource and an action into a permission string.
func New(resource, action string) string {
	return resource + Delimiter + action
}

// All returns the wildcard permission covering every action on resource.
func All(resource string) string {
	return resource + Delimiter + Wildcard
}

// CRUD returns the create, read, update and delete permissions for resource, in that order.
func CRUD(resource string) [4]string {
	return [4]string{
		New(resource, ActionCreate),
		New(resource, ActionRead),
		New(resource, ActionUpdate),
		New(resource, ActionDelete),
	}
}

// Resource returns the part of p before the first delimiter.
// A permission without a delimiter is returned unchanged.
func Resource(p string) string {
	if i := strings.Index(p, Delimiter); i >= 0 {
		return p[:i]
	}
	return p
}

// Action returns the part of p after the first delimiter, or "" if there is none.
func Action(p string) string {
	if i := strings.Index(p, Delimiter); i >= 0 {
		return p[i+1:]
	}
	return ""
}

// IsWildcard reports whether p is a wildcard pattern.
func IsWildcard(p string) bool {
	return strings.HasSuffix(p, Wildcard)
}

// Valid reports whether p is "*", "resource.*" or "resource.action".
// Resource and action segments may contain lower-case letters, digits, '_' and '-'.
func Valid(p string) bool {
	if p == Wildcard {
		return true
	}
	resource, action, ok := strings.Cut(p, Delimiter)
	if !ok || !validSegment(resource) {
		return false
	}
	if action == Wildcard {
		return true
	}
	return validSegment(action)
}

func validSegment(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// Matches reports whether pattern grants permission.
//
// Matching rules:
//   - Exact match: "leads.read" matches "leads.read"
//   - Trailing wildcard: "leads.*" matches any permission starting with "leads."
//   - Global wildcard: "*" matches any non-empty permission
func Matches(permission, pattern string) bool {
	if permission == "" || pattern == "" {
		return false
	}
	if permission == pattern {
		return true
	}
	if prefix, ok := strings.CutSuffix(pattern, Wildcard); ok {
		return strings.HasPrefix(permission, prefix)
	}
	return false
}

// Has reports whether any entry of granted matches p.
//
// Example:
//
//	permission.Has([]string{"leads.*", "deals.read"}, "leads.assign")
//	// Returns: true
func Has(granted []string, p string) bool {
	for _, g := range granted {
		if Matches(p, g) {
			return true
		}
	}
	return false
}

// HasAny reports whether granted satisfies at least one of required.
// An empty required list is always satisfied.
func HasAny(granted, required []string) bool {
	if len(required) == 0 {
		return true
	}
	for _, r := range required {
		if Has(granted, r) {
			return true
		}
	}
	return false
}

// HasAll reports whether granted satisfies every entry of required.
// An empty required list is always satisfied.
func HasAll(granted, required []string) bool {
	for _, r := range required {
		if !Has(granted, r) {
			return false
		}
	}
	return true
}

// FirstMatch returns the first granted entry that matches p.
func FirstMatch(granted []string, p string) (string, bool) {
	for _, g := range granted {
		if Matches(p, g) {
			return g, true
		}
	}
	return "", false
}

// Normalize trims entries, drops empty ones, removes duplicates and sorts the result.
// Returns nil for an empty result.
//
// Example:
//
//	permission.Normalize([]string{"leads.read", " deals.read", "leads.read", ""})
//	// Returns: []string{"deals.read", "leads.read"}
func Normalize(perms []string) []string {
	if len(perms) == 0 {
		return nil
	}
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Union returns the normalized union of all sets.
func Union(sets ...[]string) []string {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	all := make([]string, 0, n)
	for _, s := range sets {
		all = append(all, s...)
	}
	return Normalize(all)
}

// Equal reports whether a and b contain the same permissions regardless of order and duplicates.
func Equal(a, b []string) bool {
	return slices.Equal(Normalize(a), Normalize(b))
}
