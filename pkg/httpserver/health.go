package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
)

// Check is a named readiness probe.
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// HealthStatus is the body written by HealthCheckHandler.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheckHandler serves liveness when no checks are given and readiness
// otherwise. Every check runs with the request context; any failure turns
// the response into 503 with the failing check's error text.
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return handler.Wrap(func(r *http.Request) handler.Response {
		status := HealthStatus{Status: "ok"}
		if len(checks) == 0 {
			return handler.JSON(status)
		}

		code := http.StatusOK
		status.Checks = make(map[string]string, len(checks))
		for _, c := range checks {
			if err := c.Fn(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					slog.String("check", c.Name),
					logger.Error(err),
				)
				status.Checks[c.Name] = err.Error()
				status.Status = "unavailable"
				code = http.StatusServiceUnavailable
				continue
			}
			status.Checks[c.Name] = "ok"
		}
		return handler.JSON(status, handler.WithJSONStatus(code))
	})
}
