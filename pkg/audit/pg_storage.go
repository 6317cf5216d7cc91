package audit

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/estatecrm/pkg/pg"
)

// DB is the subset of *pgxpool.Pool used by PGStorage.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PGStorage persists events in the authz_audit_events table.
type PGStorage struct {
	db DB
}

// NewPGStorage creates a PGStorage on db.
func NewPGStorage(db DB) *PGStorage {
	return &PGStorage{db: db}
}

var eventColumns = []string{
	"id", "kind", "principal_id", "role", "company_id", "operation",
	"required", "mode", "method", "path", "request_id", "created_at",
}

const insertEventSQL = `INSERT INTO authz_audit_events
(id, kind, principal_id, role, company_id, operation, required, mode, method, path, request_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

func eventRow(e Event) []any {
	return []any{
		e.ID, string(e.Kind), e.PrincipalID, e.Role, e.CompanyID, e.Operation,
		e.Required, e.Mode, e.Method, e.Path, e.RequestID, e.CreatedAt,
	}
}

// Store implements Storage. Single events use INSERT, batches use COPY.
// Events are keyed by ID, so storing one twice is a no-op: a batch that
// collides with rows already written is replayed event by event.
func (s *PGStorage) Store(ctx context.Context, events ...Event) error {
	switch len(events) {
	case 0:
		return nil
	case 1:
		return s.insert(ctx, events[0])
	}

	_, err := s.db.CopyFrom(ctx, pgx.Identifier{"authz_audit_events"}, eventColumns,
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			return eventRow(events[i]), nil
		}),
	)
	if err == nil {
		return nil
	}
	if !pg.IsDuplicateKeyError(err) {
		return fmt.Errorf("copy audit events: %w", err)
	}
	for _, e := range events {
		if err := s.insert(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (s *PGStorage) insert(ctx context.Context, e Event) error {
	if _, err := s.db.Exec(ctx, insertEventSQL, eventRow(e)...); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Find implements Reader.
func (s *PGStorage) Find(ctx context.Context, c Criteria) ([]Event, error) {
	query, args := buildFindQuery(c)
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Event, error) {
		var (
			e    Event
			kind string
		)
		err := row.Scan(&e.ID, &kind, &e.PrincipalID, &e.Role, &e.CompanyID, &e.Operation,
			&e.Required, &e.Mode, &e.Method, &e.Path, &e.RequestID, &e.CreatedAt)
		e.Kind = Kind(kind)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}

func buildFindQuery(c Criteria) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}
	if c.CompanyID != "" {
		add("company_id = ?", c.CompanyID)
	}
	if c.PrincipalID != "" {
		add("principal_id = ?", c.PrincipalID)
	}
	if c.Kind != "" {
		add("kind = ?", string(c.Kind))
	}
	if !c.Since.IsZero() {
		add("created_at >= ?", c.Since)
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString("id::text, kind, COALESCE(principal_id, ''), COALESCE(role, ''), COALESCE(company_id, ''), ")
	b.WriteString("COALESCE(operation, ''), required, mode, COALESCE(method, ''), COALESCE(path, ''), ")
	b.WriteString("COALESCE(request_id, ''), created_at FROM authz_audit_events")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC")
	if c.Limit > 0 {
		args = append(args, c.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	return b.String(), args
}
