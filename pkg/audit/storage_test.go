package audit_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/pkg/audit"
)

func event(id string, kind audit.Kind, company, principal string, at time.Time) audit.Event {
	return audit.Event{
		ID:          id,
		Kind:        kind,
		PrincipalID: principal,
		Role:        "sales_agent",
		CompanyID:   company,
		Required:    []string{"leads.delete"},
		Mode:        "any",
		CreatedAt:   at,
	}
}

func TestMemoryStorage_Find(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	storage := audit.NewMemoryStorage()
	require.NoError(t, storage.Store(context.Background(),
		event("1", audit.KindPermissionDenied, "c-1", "u-1", base),
		event("2", audit.KindAuthenticationMissing, "", "", base.Add(time.Minute)),
		event("3", audit.KindPermissionDenied, "c-1", "u-2", base.Add(2*time.Minute)),
		event("4", audit.KindPermissionDenied, "c-2", "u-3", base.Add(3*time.Minute)),
	))

	ids := func(events []audit.Event) []string {
		out := make([]string, 0, len(events))
		for _, e := range events {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		name     string
		criteria audit.Criteria
		want     []string
	}{
		{"everything newest first", audit.Criteria{}, []string{"4", "3", "2", "1"}},
		{"by company", audit.Criteria{CompanyID: "c-1"}, []string{"3", "1"}},
		{"by principal", audit.Criteria{PrincipalID: "u-3"}, []string{"4"}},
		{"by kind", audit.Criteria{Kind: audit.KindAuthenticationMissing}, []string{"2"}},
		{"since", audit.Criteria{Since: base.Add(2 * time.Minute)}, []string{"4", "3"}},
		{"limit", audit.Criteria{Limit: 2}, []string{"4", "3"}},
		{"no match", audit.Criteria{CompanyID: "c-9"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := storage.Find(context.Background(), tt.criteria)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestMemoryStorage_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	storage := audit.NewMemoryStorage()
	assert.ErrorIs(t, storage.Store(ctx, audit.Event{}), context.Canceled)
	_, err := storage.Find(ctx, audit.Criteria{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, storage.Events())
}

func TestSlogStorage_Store(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	storage := audit.NewSlogStorage(slog.New(slog.NewJSONHandler(&buf, nil)))

	e := event("id-1", audit.KindPermissionDenied, "c-1", "u-1", time.Now())
	e.Operation = "leads.delete"
	require.NoError(t, storage.Store(context.Background(), e))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "authorization audit", record["msg"])
	assert.Equal(t, "permission_denied", record["kind"])
	assert.Equal(t, "u-1", record["principal_id"])
	assert.Equal(t, "leads.delete", record["operation"])
	assert.Equal(t, []any{"leads.delete"}, record["required"])
}
