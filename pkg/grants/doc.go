// Package grants stores explicit per-user permissions, the grants a user
// holds on top of their role's catalog entry.
//
// Grants are scoped to a company. Three stores are provided:
//
//   - MemoryStore keeps grants in process memory (tests, single node).
//   - PGStore persists grants in the user_permissions table via pgx.
//   - CachedStore puts a Redis read-through cache in front of another store
//     and invalidates it on every Grant and Revoke.
//
// Every permission is validated with permission.Valid before it is written.
package grants
