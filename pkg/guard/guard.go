package guard

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Guard enforces declared requirements for incoming requests.
type Guard struct {
	authz    *rbac.Authorizer
	registry *Registry
	auditor  Auditor
	logger   *slog.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithRegistry sets the registry consulted by Require and Check.
func WithRegistry(r *Registry) Option {
	return func(g *Guard) {
		if r != nil {
			g.registry = r
		}
	}
}

// WithAuditor sets the hook invoked on every rejected request.
func WithAuditor(a Auditor) Option {
	return func(g *Guard) {
		if a != nil {
			g.auditor = a
		}
	}
}

// WithLogger sets the logger used for rejected requests.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Guard evaluating requests with authz.
func New(authz *rbac.Authorizer, opts ...Option) *Guard {
	g := &Guard{
		authz:    authz,
		registry: NewRegistry(),
		auditor:  noopAuditor{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the registry the guard resolves operations from.
func (g *Guard) Registry() *Registry {
	return g.registry
}

// Check enforces the declared requirement of class.method against the
// principal stored in ctx. It returns nil, rbac.ErrAuthenticationMissing or
// a *rbac.DeniedError.
func (g *Guard) Check(ctx context.Context, class, method string) error {
	return g.authorize(ctx, OperationName(class, method), g.registry.Requirement(class, method), nil)
}

// Enforce checks req against the principal stored in ctx.
func (g *Guard) Enforce(ctx context.Context, operation string, req Requirement) error {
	return g.authorize(ctx, operation, req, nil)
}

// Require returns middleware enforcing the declared requirement of class.method.
// The registry is consulted on every request.
func (g *Guard) Require(class, method string) func(http.Handler) http.Handler {
	operation := OperationName(class, method)
	return g.middleware(operation, func() Requirement {
		return g.registry.Requirement(class, method)
	})
}

// RequireAny returns middleware allowing principals holding any of perms.
func (g *Guard) RequireAny(perms ...string) func(http.Handler) http.Handler {
	req := Any(perms...)
	return g.middleware("", func() Requirement { return req })
}

// RequireAll returns middleware allowing principals holding every one of perms.
func (g *Guard) RequireAll(perms ...string) func(http.Handler) http.Handler {
	req := All(perms...)
	return g.middleware("", func() Requirement { return req })
}

func (g *Guard) middleware(operation string, resolve func() Requirement) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := g.authorize(r.Context(), operation, resolve(), r); err != nil {
				_ = handler.JSONError(err).Render(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) authorize(ctx context.Context, operation string, req Requirement, r *http.Request) error {
	if req.Empty() {
		return nil
	}

	p, _ := rbac.GetPrincipalFromContext(ctx)
	err := g.authz.Check(p, req.Mode, req.Permissions)
	if err == nil {
		return nil
	}

	f := Failure{
		Err:       err,
		Principal: p,
		Operation: operation,
		Required:  req.Permissions,
		Mode:      req.Mode,
	}
	if r != nil {
		f.Method = r.Method
		f.Path = r.URL.Path
	}
	g.report(ctx, f)
	return err
}

func (g *Guard) report(ctx context.Context, f Failure) {
	attrs := []any{
		logger.Operation(f.Operation),
		slog.Any("required", f.Required),
		slog.String("mode", f.Mode.String()),
		logger.Error(f.Err),
	}
	if f.Method != "" {
		attrs = append(attrs, slog.String("method", f.Method), slog.String("path", f.Path))
	}
	if f.Denied() {
		attrs = append(attrs,
			slog.String("principal_id", f.Principal.ID),
			logger.Role(f.Principal.Role),
			logger.CompanyID(f.Principal.CompanyID),
		)
		g.logger.WarnContext(ctx, "permission denied", attrs...)
	} else {
		g.logger.WarnContext(ctx, "authentication missing", attrs...)
	}
	g.auditor.AuthorizationFailed(ctx, f)
}
