package app

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/audit"
	"github.com/dmitrymomot/estatecrm/pkg/grants"
	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/httpserver"
	"github.com/dmitrymomot/estatecrm/pkg/jwt"
	"github.com/dmitrymomot/estatecrm/pkg/mirror"
	"github.com/dmitrymomot/estatecrm/pkg/principal"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

var (
	ErrMissingAuthorizer = errors.New("app: authorizer is required")
	ErrMissingTokens     = errors.New("app: token service is required")
)

// Default rate limit of POST /api/permissions/check.
const (
	DefaultCheckRequests = 60
	DefaultCheckWindow   = time.Minute
)

// Options configures the HTTP surface. Authorizer and Tokens are required;
// everything else is optional and the matching routes degrade when absent.
type Options struct {
	Authorizer *rbac.Authorizer
	Tokens     *jwt.Service

	// CookieName is read for the access token when no bearer token is sent.
	CookieName string

	// Grants supplies explicit permissions. When it also implements
	// grants.Writer the user permission routes accept writes.
	Grants grants.Store

	Audit   audit.Reader
	Auditor guard.Auditor
	Logger  *slog.Logger
	Checks  []httpserver.Check

	RateLimit RateLimitConfig

	// Resources holds the business handlers of guarded CRM operations keyed
	// by operation name, e.g. "leads.create". Missing operations answer 501.
	Resources map[string]http.Handler
}

// NewRouter builds the service router.
//
//	router, err := app.NewRouter(app.Options{
//		Authorizer: rbac.NewAuthorizer(catalog),
//		Tokens:     tokens,
//		Grants:     store,
//		Auditor:    auditLogger,
//		Logger:     log,
//	})
func NewRouter(opts Options) (http.Handler, error) {
	if opts.Authorizer == nil {
		return nil, ErrMissingAuthorizer
	}
	if opts.Tokens == nil {
		return nil, ErrMissingTokens
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	registry := Registry()
	g := guard.New(opts.Authorizer,
		guard.WithRegistry(registry),
		guard.WithAuditor(opts.Auditor),
		guard.WithLogger(log),
	)

	extract := jwt.BearerTokenExtractor
	if opts.CookieName != "" {
		extract = jwt.FirstOf(jwt.BearerTokenExtractor, jwt.CookieTokenExtractor(opts.CookieName))
	}
	resolverOpts := []principal.TokenOption{principal.WithExtractor(extract)}
	if opts.Grants != nil {
		resolverOpts = append(resolverOpts, principal.WithGrants(opts.Grants))
	}
	resolver := principal.NewTokenResolver(opts.Tokens, resolverOpts...)

	h := &handlers{
		authz:  opts.Authorizer,
		grants: opts.Grants,
		audit:  opts.Audit,
		log:    log,
	}
	wrap := func(fn handler.HandlerFunc) http.HandlerFunc {
		return handler.Wrap(fn, handler.WithErrorHandler(handler.LogErrors(log)))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.NotFound(wrap(func(*http.Request) handler.Response {
		return handler.JSONError(handler.ErrNotFound)
	}))
	r.MethodNotAllowed(wrap(func(*http.Request) handler.Response {
		return handler.JSONError(handler.ErrMethodNotAllowed)
	}))

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, opts.Checks...))

	r.Group(func(r chi.Router) {
		r.Use(principal.Middleware(resolver, log))
		r.Use(mirrorMiddleware(opts.Authorizer))

		r.Route("/api", func(r chi.Router) {
			r.Get("/auth/session", wrap(h.session))

			r.Route("/permissions", func(r chi.Router) {
				r.With(g.Require(ClassPermissions, MethodCatalog)).
					Get("/catalog", wrap(h.catalog))
				r.With(checkLimiter(opts.RateLimit)).
					Post("/check", wrap(h.check))
			})

			r.Route("/users/{userID}/permissions", func(r chi.Router) {
				r.With(g.Require(rbac.ResourceUsers, MethodGrant)).
					Post("/", wrap(h.grant))
				r.With(g.Require(rbac.ResourceUsers, MethodRevoke)).
					Delete("/", wrap(h.revoke))
			})

			r.With(g.Require(rbac.ResourceAudit, MethodEvents)).
				Get("/audit/events", wrap(h.auditEvents))

			for _, res := range resources {
				r.Mount("/"+res.name, res.router(g, opts.Resources, wrap))
			}
		})

		r.Route("/ui", func(r chi.Router) {
			r.Get("/nav", wrap(navPage))
			r.With(routeGate(rbac.ResourceCampaigns)).
				Get("/campaigns", wrap(campaignsPage))
		})
	})

	return r, nil
}

// mirrorMiddleware attaches a mirror seeded with the request principal so
// server-rendered gates evaluate the same way the browser does.
func mirrorMiddleware(authz *rbac.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := mirror.New(authz)
			if p, ok := rbac.GetPrincipalFromContext(r.Context()); ok {
				m.Set(p)
			} else {
				m.Clear()
			}
			next.ServeHTTP(w, r.WithContext(mirror.WithContext(r.Context(), m)))
		})
	}
}

// checkLimiter limits permission checks per principal, falling back to the
// client IP for anonymous callers.
func checkLimiter(cfg RateLimitConfig) func(http.Handler) http.Handler {
	limit := cfg.CheckRequests
	if limit <= 0 {
		limit = DefaultCheckRequests
	}
	window := cfg.CheckWindow
	if window <= 0 {
		window = DefaultCheckWindow
	}

	return httprate.Limit(limit, window,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			_ = handler.JSONError(handler.ErrTooManyRequests).Render(w, r)
		}),
	)
}

func rateLimitKey(r *http.Request) (string, error) {
	if p, ok := rbac.GetPrincipalFromContext(r.Context()); ok && p.Authenticated() {
		return "user:" + p.ID, nil
	}
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
