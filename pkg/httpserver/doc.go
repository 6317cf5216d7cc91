// Package httpserver runs an http.Handler with configured timeouts and
// graceful shutdown.
//
// Run opens the listener, calls the start hooks and serves until its context
// is cancelled. Shutdown then waits up to the shutdown timeout for in-flight
// requests before the stop hooks run:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv := httpserver.NewFromConfig(cfg.HTTP,
//		httpserver.WithLogger(log),
//		httpserver.WithStopHook(func(*slog.Logger) { pool.Close() }),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness and readiness probes over named checks
// such as pg.Healthcheck and a redis PING.
package httpserver
