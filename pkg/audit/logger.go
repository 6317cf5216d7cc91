package audit

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// ContextExtractor extracts string values from context.
// It returns (value, found) where found indicates if extraction succeeded.
type ContextExtractor func(context.Context) (string, bool)

// Logger records audit events. It implements guard.Auditor.
type Logger struct {
	storage            Storage
	requestIDExtractor ContextExtractor
	errLog             *slog.Logger
	now                func() time.Time
}

// Option configures Logger behavior during initialization
type Option func(*Logger)

// WithRequestIDExtractor fills Event.RequestID from the context.
// chi's middleware.GetReqID fits once adapted with RequestIDFrom.
func WithRequestIDExtractor(fn ContextExtractor) Option {
	return func(l *Logger) {
		l.requestIDExtractor = fn
	}
}

// RequestIDFrom adapts a getter that returns "" when absent.
func RequestIDFrom(get func(context.Context) string) ContextExtractor {
	return func(ctx context.Context) (string, bool) {
		id := get(ctx)
		return id, id != ""
	}
}

// WithErrorLogger sets where storage failures are reported when the
// caller cannot receive an error, as with AuthorizationFailed.
func WithErrorLogger(l *slog.Logger) Option {
	return func(lg *Logger) {
		if l != nil {
			lg.errLog = l
		}
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now != nil {
			l.now = now
		}
	}
}

// NewLogger creates a new audit logger
func NewLogger(storage Storage, opts ...Option) *Logger {
	if storage == nil {
		panic("audit: storage cannot be nil")
	}

	l := &Logger{
		storage: storage,
		errLog:  slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Log stamps event with an ID, creation time and request ID, validates it
// and stores it.
func (l *Logger) Log(ctx context.Context, event Event) error {
	event.ID = uuid.New().String()
	event.CreatedAt = l.now().UTC()
	if event.Mode == "" {
		event.Mode = rbac.ModeAny.String()
	}
	if event.RequestID == "" && l.requestIDExtractor != nil {
		if id, ok := l.requestIDExtractor(ctx); ok {
			event.RequestID = id
		}
	}

	if err := event.Validate(); err != nil {
		return err
	}
	return l.storage.Store(ctx, event)
}

// AuthorizationFailed implements guard.Auditor.
func (l *Logger) AuthorizationFailed(ctx context.Context, f guard.Failure) {
	if err := l.Log(ctx, EventFromFailure(f)); err != nil {
		l.errLog.ErrorContext(ctx, "record audit event",
			logger.Operation(f.Operation),
			logger.Error(err),
		)
	}
}

// EventFromFailure converts a guard failure into an unstamped Event.
func EventFromFailure(f guard.Failure) Event {
	kind := KindPermissionDenied
	if errors.Is(f.Err, rbac.ErrAuthenticationMissing) {
		kind = KindAuthenticationMissing
	}
	return Event{
		Kind:        kind,
		PrincipalID: f.Principal.ID,
		Role:        f.Principal.Role.String(),
		CompanyID:   f.Principal.CompanyID,
		Operation:   f.Operation,
		Required:    slices.Clone(f.Required),
		Mode:        f.Mode.String(),
		Method:      f.Method,
		Path:        f.Path,
	}
}

var _ guard.Auditor = (*Logger)(nil)
