// Package audit records rejected authorization attempts.
//
// The guard reports two kinds of failure: a request that reached a protected
// operation without a principal (KindAuthenticationMissing) and a principal
// whose permissions did not satisfy the requirement (KindPermissionDenied).
// Logger turns each report into an Event, stamps it with an ID, time and
// request ID, and hands it to a Storage:
//
//	storage, closeFn := audit.NewAsyncStorage(audit.NewPGStorage(pool), audit.AsyncOptions{})
//	defer closeFn(ctx)
//
//	auditLog := audit.NewLogger(storage,
//		audit.WithRequestIDExtractor(audit.RequestIDFrom(middleware.GetReqID)),
//		audit.WithErrorLogger(log),
//	)
//	g := guard.New(authz, guard.WithAuditor(auditLog))
//
// Storages: SlogStorage writes events to a structured logger, PGStorage to
// the authz_audit_events table, and MemoryStorage keeps them in memory for
// tests. AsyncStorage batches writes in the background so that recording a
// denial never delays the 403 response.
package audit
