// Package pg bootstraps the PostgreSQL connection pool used by the grant
// store and the audit trail.
//
// Config is populated from environment variables via
// github.com/caarlos0/env. Connect opens a *pgxpool.Pool and retries with a
// growing delay until the database answers a ping. Migrate applies the goose
// migrations embedded in the binary:
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, migrations.FS, cfg, log); err != nil {
//		return err
//	}
//
// Healthcheck returns a probe for the health endpoint, and the Is*Error
// helpers classify *pgconn.PgError values.
package pg
