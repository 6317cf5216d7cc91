package logger

import (
	"context"
	"log/slog"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// RequestIDExtractor logs the chi request ID as "request_id".
func RequestIDExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id := middleware.GetReqID(ctx)
		if id == "" {
			return slog.Attr{}, false
		}
		return RequestID(id), true
	}
}

// PrincipalExtractor logs the request principal as a "principal" group with
// id, role and company_id.
func PrincipalExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		p, ok := rbac.GetPrincipalFromContext(ctx)
		if !ok || !p.Authenticated() {
			return slog.Attr{}, false
		}
		return Group("principal",
			slog.String("id", p.ID),
			slog.String("role", p.Role.String()),
			slog.String("company_id", p.CompanyID),
		), true
	}
}
