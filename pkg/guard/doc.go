// Package guard enforces permission requirements at the HTTP boundary.
//
// Operations declare their requirements in a Registry, at class level
// (a group of routes such as "leads") and optionally per method. At dispatch
// time the Guard looks the requirement up, takes the Principal that an
// upstream resolver attached to the request context, and asks the
// rbac.Authorizer for a decision:
//
//	reg := guard.NewRegistry().
//		Class("leads", "leads.read").
//		Operation("leads", "delete", "leads.delete").
//		OperationAll("deals", "approve", "deals.read", "deals.approve")
//
//	g := guard.New(authz, guard.WithRegistry(reg), guard.WithAuditor(auditLog))
//	r.With(g.Require("leads", "delete")).Delete("/leads/{id}", deleteLead)
//
// Requirements are any-of unless declared with OperationAll or RequireAll.
// A request without a principal is rejected with 401 and code
// "authentication_missing"; a principal without a matching grant is rejected
// with 403 and code "access_denied". Only these two outcomes reach the
// Auditor and the log; allowed requests produce no output.
package guard
