package grants_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/pkg/grants"
	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := grants.NewMemoryStore()

	perms, err := store.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Empty(t, perms)

	require.NoError(t, store.Grant(ctx, "c-1", "u-1", "payments.read", "tasks.*", "payments.read"))
	perms, err = store.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"payments.read", "tasks.*"}, perms)

	t.Run("scoped by company", func(t *testing.T) {
		perms, err := store.Permissions(ctx, "c-2", "u-1")
		require.NoError(t, err)
		assert.Empty(t, perms)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		perms, err := store.Permissions(ctx, "c-1", "u-1")
		require.NoError(t, err)
		perms[0] = "changed"
		again, err := store.Permissions(ctx, "c-1", "u-1")
		require.NoError(t, err)
		assert.Equal(t, "payments.read", again[0])
	})

	require.NoError(t, store.Revoke(ctx, "c-1", "u-1", "payments.read"))
	perms, err = store.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tasks.*"}, perms)

	require.NoError(t, store.Revoke(ctx, "c-1", "u-1", "tasks.*"))
	perms, err = store.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestMemoryStore_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := grants.NewMemoryStore()

	assert.ErrorIs(t, store.Grant(ctx, "c-1", "", "leads.read"), grants.ErrMissingUser)
	assert.ErrorIs(t, store.Grant(ctx, "c-1", "u-1", "Leads Read"), permission.ErrInvalidPermission)
	assert.ErrorIs(t, store.Revoke(ctx, "c-1", "u-1", ""), permission.ErrInvalidPermission)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := store.Permissions(cancelled, "c-1", "u-1")
	assert.ErrorIs(t, err, context.Canceled)
}
