// Package logger builds *slog.Logger values configured with functional
// options and decorates their handler so that request-scoped values stored
// in the context are added to every record.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "estatecrm"),
//		logger.WithContextExtractors(
//			logger.RequestIDExtractor(),
//			logger.PrincipalExtractor(),
//		),
//	)
//	logger.SetAsDefault(log)
//
//	log.WarnContext(ctx, "permission denied",
//		logger.Operation("leads.delete"),
//		logger.Permissions(required),
//	)
//
// Attribute helpers (Error, UserID, CompanyID, Role, Permissions, Operation,
// RequestID, Component) keep key names consistent. Error and Errors return an
// empty attribute for nil errors, so they can be passed unconditionally.
package logger
