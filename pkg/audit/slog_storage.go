package audit

import (
	"context"
	"log/slog"
)

// SlogStorage writes events to a structured logger at warn level.
type SlogStorage struct {
	log *slog.Logger
}

// NewSlogStorage creates a SlogStorage writing to log.
func NewSlogStorage(log *slog.Logger) *SlogStorage {
	return &SlogStorage{log: log}
}

// Store implements Storage.
func (s *SlogStorage) Store(ctx context.Context, events ...Event) error {
	for _, e := range events {
		s.log.LogAttrs(ctx, slog.LevelWarn, "authorization audit",
			slog.String("audit_id", e.ID),
			slog.String("kind", string(e.Kind)),
			slog.String("principal_id", e.PrincipalID),
			slog.String("role", e.Role),
			slog.String("company_id", e.CompanyID),
			slog.String("operation", e.Operation),
			slog.Any("required", e.Required),
			slog.String("mode", e.Mode),
			slog.String("method", e.Method),
			slog.String("path", e.Path),
			slog.String("request_id", e.RequestID),
			slog.Time("created_at", e.CreatedAt),
		)
	}
	return nil
}
