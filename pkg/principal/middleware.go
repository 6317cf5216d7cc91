package principal

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Middleware resolves the principal of each request and stores it in the
// request context. Requests without credentials pass through untouched;
// invalid credentials get 401 and resolver failures 503.
func Middleware(resolver Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := resolver.Resolve(r)
			switch {
			case errors.Is(err, ErrNoCredentials):
				next.ServeHTTP(w, r)
				return
			case errors.Is(err, ErrInvalidCredentials):
				log.DebugContext(r.Context(), "rejected credentials", logger.Error(err))
				_ = handler.JSONError(handler.ErrUnauthorized).Render(w, r)
				return
			case err != nil:
				log.ErrorContext(r.Context(), "resolve principal", logger.Error(err))
				_ = handler.JSONError(handler.ErrServiceUnavailable).Render(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(rbac.SetPrincipalToContext(r.Context(), p)))
		})
	}
}
