// Package mirror keeps a client-held copy of the current session and answers
// "would the server allow this?" without a round trip.
//
// A Mirror evaluates permissions with the same rbac.Authorizer and catalog the
// server uses, so its answers agree with the request guard for every role and
// permission. It is advisory: a denial here only hides UI, the guard remains
// the enforcement point.
//
// Until a session has been resolved the mirror is Loading and every query
// returns Pending, which callers must treat differently from Denied:
//
//	m := mirror.New(authz, mirror.WithFetcher(mirror.NewHTTPFetcher(baseURL)))
//	if err := m.Refresh(ctx); err != nil {
//		// previous state is kept
//	}
//	switch m.Can("deals.approve") {
//	case mirror.Pending:
//		// render a neutral placeholder
//	case mirror.Allowed:
//		// render the approve button
//	}
//
// Session state is swapped atomically: concurrent readers observe either the
// previous session or the new one.
package mirror
