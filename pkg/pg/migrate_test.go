package pg_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/estatecrm/pkg/pg"
)

type nopLogger struct{}

func (nopLogger) InfoContext(context.Context, string, ...any)  {}
func (nopLogger) ErrorContext(context.Context, string, ...any) {}

func TestMigrate_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	err := pg.Migrate(ctx, nil, fstest.MapFS{}, pg.Config{}, nopLogger{})
	assert.ErrorIs(t, err, pg.ErrMigrationPathNotProvided)

	err = pg.Migrate(ctx, nil, nil, pg.Config{MigrationsPath: "migrations"}, nopLogger{})
	assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)

	err = pg.Migrate(ctx, nil, fstest.MapFS{}, pg.Config{MigrationsPath: "migrations"}, nopLogger{})
	assert.ErrorIs(t, err, pg.ErrMigrationsDirNotFound)
}

func TestConnect_EmptyConnectionString(t *testing.T) {
	t.Parallel()
	_, err := pg.Connect(context.Background(), pg.Config{})
	assert.ErrorIs(t, err, pg.ErrEmptyConnectionString)
}

func TestErrorHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23505"}))
	assert.True(t, pg.IsDuplicateKeyError(fmt.Errorf("copy: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, pg.IsDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pg.IsDuplicateKeyError(errors.New("connection reset")))
	assert.False(t, pg.IsDuplicateKeyError(nil))
}
