// Package principal attaches the authenticated principal to each request.
//
// Middleware calls a Resolver and stores the result with
// rbac.SetPrincipalToContext. A request without credentials continues
// anonymously so that the guard, not this layer, decides between public and
// protected operations. Invalid or expired credentials are rejected with 401.
package principal
