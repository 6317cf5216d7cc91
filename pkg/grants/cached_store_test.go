package grants_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/pkg/grants"
)

// countingStore counts loads that reach the underlying store.
type countingStore struct {
	*grants.MemoryStore
	loads atomic.Int32
	err   error
}

func (s *countingStore) Permissions(ctx context.Context, companyID, userID string) ([]string, error) {
	s.loads.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.MemoryStore.Permissions(ctx, companyID, userID)
}

type readOnlyStore struct{}

func (readOnlyStore) Permissions(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func newCached(t *testing.T, next grants.Store, opts ...grants.CacheOption) (*grants.CachedStore, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return grants.NewCachedStore(next, client, opts...), srv
}

func TestCachedStore_ReadThrough(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
	require.NoError(t, backing.Grant(ctx, "c-1", "u-1", "payments.read"))

	cached, srv := newCached(t, backing, grants.WithTTL(time.Minute))

	perms, err := cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"payments.read"}, perms)

	perms, err = cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"payments.read"}, perms)
	assert.Equal(t, int32(1), backing.loads.Load())

	assert.True(t, srv.Exists(grants.CacheKey("c-1", "u-1")))
	assert.Equal(t, time.Minute, srv.TTL(grants.CacheKey("c-1", "u-1")))

	srv.FastForward(2 * time.Minute)
	_, err = cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), backing.loads.Load())
}

func TestCachedStore_EmptySetIsCached(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
	cached, _ := newCached(t, backing)

	for range 3 {
		perms, err := cached.Permissions(ctx, "c-1", "nobody")
		require.NoError(t, err)
		assert.Empty(t, perms)
	}
	assert.Equal(t, int32(1), backing.loads.Load())
}

func TestCachedStore_WriteInvalidates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
	cached, srv := newCached(t, backing)

	_, err := cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	require.True(t, srv.Exists(grants.CacheKey("c-1", "u-1")))

	require.NoError(t, cached.Grant(ctx, "c-1", "u-1", "deals.approve"))
	assert.False(t, srv.Exists(grants.CacheKey("c-1", "u-1")))

	perms, err := cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"deals.approve"}, perms)

	require.NoError(t, cached.Revoke(ctx, "c-1", "u-1", "deals.approve"))
	perms, err = cached.Permissions(ctx, "c-1", "u-1")
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestCachedStore_Failures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("backing error is not cached", func(t *testing.T) {
		t.Parallel()
		backing := &countingStore{MemoryStore: grants.NewMemoryStore(), err: errors.New("db down")}
		cached, srv := newCached(t, backing)

		_, err := cached.Permissions(ctx, "c-1", "u-1")
		assert.Error(t, err)
		assert.False(t, srv.Exists(grants.CacheKey("c-1", "u-1")))
	})

	t.Run("redis down falls through", func(t *testing.T) {
		t.Parallel()
		backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
		require.NoError(t, backing.Grant(ctx, "c-1", "u-1", "leads.read"))
		cached, srv := newCached(t, backing)
		srv.Close()

		perms, err := cached.Permissions(ctx, "c-1", "u-1")
		require.NoError(t, err)
		assert.Equal(t, []string{"leads.read"}, perms)
	})

	t.Run("corrupt entry is reloaded", func(t *testing.T) {
		t.Parallel()
		backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
		cached, srv := newCached(t, backing)
		require.NoError(t, srv.Set(grants.CacheKey("c-1", "u-1"), "{not json"))

		perms, err := cached.Permissions(ctx, "c-1", "u-1")
		require.NoError(t, err)
		assert.Empty(t, perms)
		assert.Equal(t, int32(1), backing.loads.Load())
	})

	t.Run("read only backing store", func(t *testing.T) {
		t.Parallel()
		cached, _ := newCached(t, readOnlyStore{})
		assert.ErrorIs(t, cached.Grant(ctx, "c-1", "u-1", "leads.read"), grants.ErrReadOnly)
		assert.ErrorIs(t, cached.Revoke(ctx, "c-1", "u-1", "leads.read"), grants.ErrReadOnly)
	})
}

func TestCachedStore_Concurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backing := &countingStore{MemoryStore: grants.NewMemoryStore()}
	require.NoError(t, backing.Grant(ctx, "c-1", "u-1", "leads.read"))
	cached, _ := newCached(t, backing)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			perms, err := cached.Permissions(ctx, "c-1", "u-1")
			assert.NoError(t, err)
			assert.Equal(t, []string{"leads.read"}, perms)
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, backing.loads.Load(), int32(20))
}
