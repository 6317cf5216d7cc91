package grants

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool used by PGStore.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStore persists grants in the user_permissions table.
type PGStore struct {
	db DB
}

// NewPGStore creates a PGStore on db.
func NewPGStore(db DB) *PGStore {
	return &PGStore{db: db}
}

const (
	selectPermissionsSQL = `SELECT permission FROM user_permissions
WHERE company_id = $1 AND user_id = $2
ORDER BY permission`

	insertPermissionsSQL = `INSERT INTO user_permissions (company_id, user_id, permission)
SELECT $1, $2, unnest($3::text[])
ON CONFLICT (company_id, user_id, permission) DO NOTHING`

	deletePermissionsSQL = `DELETE FROM user_permissions
WHERE company_id = $1 AND user_id = $2 AND permission = ANY($3::text[])`
)

// Permissions implements Store.
func (s *PGStore) Permissions(ctx context.Context, companyID, userID string) ([]string, error) {
	rows, err := s.db.Query(ctx, selectPermissionsSQL, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("query user permissions: %w", err)
	}
	perms, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan user permissions: %w", err)
	}
	return perms, nil
}

// Grant implements Writer.
func (s *PGStore) Grant(ctx context.Context, companyID, userID string, perms ...string) error {
	if err := validate(userID, perms); err != nil {
		return err
	}
	if len(perms) == 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, insertPermissionsSQL, companyID, userID, perms); err != nil {
		return fmt.Errorf("grant user permissions: %w", err)
	}
	return nil
}

// Revoke implements Writer.
func (s *PGStore) Revoke(ctx context.Context, companyID, userID string, perms ...string) error {
	if err := validate(userID, perms); err != nil {
		return err
	}
	if len(perms) == 0 {
		return nil
	}
	if _, err := s.db.Exec(ctx, deletePermissionsSQL, companyID, userID, perms); err != nil {
		return fmt.Errorf("revoke user permissions: %w", err)
	}
	return nil
}
