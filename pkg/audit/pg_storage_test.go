package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/pkg/audit"
)

type fakeDB struct {
	execSQL   string
	execArgs  []any
	copyTable pgx.Identifier
	copyCols  []string
	copied    [][]any
	querySQL  string
	queryArgs []any
	inserted  []any
	err       error
	copyErr   error
}

func (db *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL, db.execArgs = sql, args
	if db.err == nil && len(args) > 0 {
		db.inserted = append(db.inserted, args[0])
	}
	return pgconn.NewCommandTag("INSERT 0 1"), db.err
}

func (db *fakeDB) CopyFrom(_ context.Context, table pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	if db.err != nil {
		return 0, db.err
	}
	if db.copyErr != nil {
		return 0, db.copyErr
	}
	db.copyTable, db.copyCols = table, cols
	for src.Next() {
		values, err := src.Values()
		if err != nil {
			return 0, err
		}
		db.copied = append(db.copied, values)
	}
	return int64(len(db.copied)), src.Err()
}

func (db *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	db.querySQL, db.queryArgs = sql, args
	return nil, errors.New("query not supported by fake")
}

func TestPGStorage_Store(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("nothing to store", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		require.NoError(t, audit.NewPGStorage(db).Store(ctx))
		assert.Empty(t, db.execSQL)
		assert.Empty(t, db.copied)
	})

	t.Run("single event uses insert", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		e := event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now)
		require.NoError(t, audit.NewPGStorage(db).Store(ctx, e))
		assert.Contains(t, db.execSQL, "INSERT INTO authz_audit_events")
		require.Len(t, db.execArgs, 12)
		assert.Equal(t, "id-1", db.execArgs[0])
		assert.Equal(t, "permission_denied", db.execArgs[1])
		assert.Equal(t, []string{"leads.delete"}, db.execArgs[6])
	})

	t.Run("batch uses copy", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{}
		err := audit.NewPGStorage(db).Store(ctx,
			event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now),
			event("id-2", audit.KindAuthenticationMissing, "", "", now),
		)
		require.NoError(t, err)
		assert.Equal(t, pgx.Identifier{"authz_audit_events"}, db.copyTable)
		assert.Len(t, db.copyCols, 12)
		require.Len(t, db.copied, 2)
		assert.Equal(t, "id-2", db.copied[1][0])
	})

	t.Run("duplicate batch is replayed idempotently", func(t *testing.T) {
		t.Parallel()
		db := &fakeDB{copyErr: &pgconn.PgError{Code: "23505"}}
		err := audit.NewPGStorage(db).Store(ctx,
			event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now),
			event("id-2", audit.KindPermissionDenied, "c-1", "u-1", now),
		)
		require.NoError(t, err)
		assert.Empty(t, db.copied)
		assert.Equal(t, []any{"id-1", "id-2"}, db.inserted)
		assert.Contains(t, db.execSQL, "ON CONFLICT (id) DO NOTHING")
	})

	t.Run("other copy errors are not replayed", func(t *testing.T) {
		t.Parallel()
		copyErr := &pgconn.PgError{Code: "23502"}
		db := &fakeDB{copyErr: copyErr}
		err := audit.NewPGStorage(db).Store(ctx,
			event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now),
			event("id-2", audit.KindPermissionDenied, "c-1", "u-1", now),
		)
		assert.ErrorIs(t, err, copyErr)
		assert.Empty(t, db.inserted)
	})

	t.Run("errors are wrapped", func(t *testing.T) {
		t.Parallel()
		dbErr := errors.New("connection reset")
		storage := audit.NewPGStorage(&fakeDB{err: dbErr})

		err := storage.Store(ctx, event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now))
		assert.ErrorIs(t, err, dbErr)

		err = storage.Store(ctx,
			event("id-1", audit.KindPermissionDenied, "c-1", "u-1", now),
			event("id-2", audit.KindPermissionDenied, "c-1", "u-1", now),
		)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestPGStorage_FindQuery(t *testing.T) {
	t.Parallel()

	since := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		criteria  audit.Criteria
		contains  []string
		wantArgs  []any
		wantWhere bool
	}{
		{
			name:     "no filters",
			criteria: audit.Criteria{},
			contains: []string{"FROM authz_audit_events ORDER BY created_at DESC"},
		},
		{
			name:      "all filters",
			criteria:  audit.Criteria{CompanyID: "c-1", PrincipalID: "u-1", Kind: audit.KindPermissionDenied, Since: since, Limit: 10},
			contains:  []string{"company_id = $1", "principal_id = $2", "kind = $3", "created_at >= $4", "LIMIT $5"},
			wantArgs:  []any{"c-1", "u-1", "permission_denied", since, 10},
			wantWhere: true,
		},
		{
			name:      "company and limit",
			criteria:  audit.Criteria{CompanyID: "c-1", Limit: 5},
			contains:  []string{"WHERE company_id = $1 ORDER BY", "LIMIT $2"},
			wantArgs:  []any{"c-1", 5},
			wantWhere: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db := &fakeDB{}
			_, err := audit.NewPGStorage(db).Find(context.Background(), tt.criteria)
			require.Error(t, err)

			for _, s := range tt.contains {
				assert.Contains(t, db.querySQL, s)
			}
			if tt.wantWhere {
				assert.Contains(t, db.querySQL, " WHERE ")
			} else {
				assert.NotContains(t, db.querySQL, " WHERE ")
			}
			assert.Equal(t, tt.wantArgs, db.queryArgs)
		})
	}
}
