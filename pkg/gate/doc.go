// Package gate provides templ components and middleware that show, hide or
// redirect based on the permission mirror stored in the request context.
//
// Content gates render their children only when the mirror allows it and a
// fallback otherwise (nothing by default):
//
//	gate.Permission(guard.Any("deals.approve"), approveButton,
//		gate.WithFallback(readOnlyBadge),
//	)
//
// Route gates wrap handlers and redirect instead, carrying the requested
// location in the next query parameter:
//
//	r.With(gate.Route(guard.Any("campaigns.read"))).Get("/campaigns", page)
//
// While the mirror is loading, or when no mirror is in the context, every gate
// renders its loading component (the fallback unless set) and never the
// protected content. Gates hide UI only; the request guard enforces access.
package gate
