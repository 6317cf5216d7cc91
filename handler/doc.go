// Package handler provides the HTTP response primitives shared by the API
// and UI routes.
//
// A handler returns a Response instead of writing to the ResponseWriter
// directly, and Wrap adapts it to net/http:
//
//	mux.Get("/api/auth/session", handler.Wrap(func(r *http.Request) handler.Response {
//		return handler.JSON(session)
//	}))
//
// JSON bodies use a single envelope:
//
//	{"data": ..., "meta": {...}, "error": {"code": "...", "message": "...", "details": {...}}}
//
// Authorization failures from package rbac are mapped onto this envelope by
// JSONError: a missing principal becomes 401 "authentication_missing" and a
// denial becomes 403 "access_denied" with details.required listing the
// permissions that would have satisfied the check.
package handler
