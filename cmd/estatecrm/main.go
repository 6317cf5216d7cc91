package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/estatecrm/internal/app"
	"github.com/dmitrymomot/estatecrm/internal/db"
	"github.com/dmitrymomot/estatecrm/pkg/audit"
	"github.com/dmitrymomot/estatecrm/pkg/config"
	"github.com/dmitrymomot/estatecrm/pkg/grants"
	"github.com/dmitrymomot/estatecrm/pkg/httpserver"
	"github.com/dmitrymomot/estatecrm/pkg/jwt"
	"github.com/dmitrymomot/estatecrm/pkg/logger"
	"github.com/dmitrymomot/estatecrm/pkg/pg"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
	"github.com/dmitrymomot/estatecrm/pkg/redis"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Default().Error("estatecrm stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg app.Config
	if err := config.Load(&cfg); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.App.Env, cfg.App.Name),
		logger.WithContextExtractors(logger.RequestIDExtractor(), logger.PrincipalExtractor()),
	}
	if cfg.App.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevel(logger.ParseLevel(cfg.App.LogLevel)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, db.Migrations, cfg.PG, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn("redis close", logger.Error(err))
		}
	}()

	var source rbac.RoleSource = rbac.DefaultSource()
	if cfg.RBAC.CatalogFile != "" {
		source = rbac.NewFileSource(cfg.RBAC.CatalogFile)
	}
	catalog, err := rbac.NewCatalog(ctx, source)
	if err != nil {
		return fmt.Errorf("load role catalog: %w", err)
	}
	log.InfoContext(ctx, "role catalog loaded",
		slog.Int("roles", len(catalog.Roles())),
		slog.String("digest", catalog.Digest()),
	)

	tokens, err := jwt.NewFromString(cfg.JWT.SigningKey,
		jwt.WithIssuer(cfg.JWT.Issuer),
		jwt.WithLeeway(cfg.JWT.Leeway),
	)
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}

	var store grants.Store = grants.NewPGStore(pool)
	if cfg.Grants.CacheEnabled {
		store = grants.NewCachedStore(store, rdb,
			grants.WithTTL(cfg.Grants.CacheTTL),
			grants.WithLogger(log),
		)
	}

	var (
		sink   audit.Storage
		reader audit.Reader
	)
	switch cfg.Audit.Sink {
	case app.AuditSinkLog:
		sink = audit.NewSlogStorage(log)
	default:
		sink = audit.NewPGStorage(pool)
	}
	events, closeAudit := audit.NewAsyncStorage(sink, audit.AsyncOptions{
		BufferSize:   cfg.Audit.BufferSize,
		BatchSize:    cfg.Audit.BatchSize,
		BatchTimeout: cfg.Audit.BatchTimeout,
		Logger:       log,
	})
	if cfg.Audit.Sink != app.AuditSinkLog {
		reader = events
	}
	auditor := audit.NewLogger(events,
		audit.WithRequestIDExtractor(audit.RequestIDFrom(middleware.GetReqID)),
		audit.WithErrorLogger(log),
	)

	router, err := app.NewRouter(app.Options{
		Authorizer: rbac.NewAuthorizer(catalog),
		Tokens:     tokens,
		CookieName: cfg.JWT.CookieName,
		Grants:     store,
		Audit:      reader,
		Auditor:    auditor,
		Logger:     log,
		Checks: []httpserver.Check{
			{Name: "postgres", Fn: pg.Healthcheck(pool)},
			{Name: "redis", Fn: redis.Healthcheck(rdb)},
		},
		RateLimit: cfg.RateLimit,
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	server := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(l *slog.Logger) {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
			defer cancel()
			if err := closeAudit(ctx); err != nil {
				l.Error("flush audit events", logger.Error(err))
			}
		}),
	)
	return server.Run(ctx, router)
}
