package grants

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL bounds how long a revoked grant can outlive its revocation
// on another node whose invalidation was lost.
const DefaultCacheTTL = 5 * time.Minute

const keyPrefix = "authz:grants"

// CachedStore is a Redis read-through cache in front of another store.
// Cache failures are logged and fall through to the underlying store.
type CachedStore struct {
	next   Store
	client redis.UniversalClient
	ttl    time.Duration
	log    *slog.Logger
	group  singleflight.Group
}

// CacheOption configures a CachedStore.
type CacheOption func(*CachedStore)

// WithTTL sets how long entries live in Redis.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *CachedStore) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *slog.Logger) CacheOption {
	return func(c *CachedStore) {
		if l != nil {
			c.log = l
		}
	}
}

// NewCachedStore wraps next with a Redis cache.
func NewCachedStore(next Store, client redis.UniversalClient, opts ...CacheOption) *CachedStore {
	c := &CachedStore{
		next:   next,
		client: client,
		ttl:    DefaultCacheTTL,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheKey returns the Redis key holding the grants of one user.
func CacheKey(companyID, userID string) string {
	return keyPrefix + ":" + companyID + ":" + userID
}

// Permissions implements Store. Concurrent misses for the same user share one load.
func (c *CachedStore) Permissions(ctx context.Context, companyID, userID string) ([]string, error) {
	key := CacheKey(companyID, userID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var perms []string
		if err := json.Unmarshal(raw, &perms); err == nil {
			return perms, nil
		}
		c.log.WarnContext(ctx, "discarding corrupt grants cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.WarnContext(ctx, "read grants cache", slog.String("key", key), slog.Any("error", err))
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		perms, err := c.next.Permissions(ctx, companyID, userID)
		if err != nil {
			return nil, err
		}
		if perms == nil {
			perms = []string{}
		}
		data, err := json.Marshal(perms)
		if err != nil {
			return nil, fmt.Errorf("encode grants: %w", err)
		}
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.log.WarnContext(ctx, "write grants cache", slog.String("key", key), slog.Any("error", err))
		}
		return perms, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Invalidate drops the cached grants of one user.
func (c *CachedStore) Invalidate(ctx context.Context, companyID, userID string) error {
	if err := c.client.Del(ctx, CacheKey(companyID, userID)).Err(); err != nil {
		return fmt.Errorf("invalidate grants cache: %w", err)
	}
	return nil
}

// Grant writes through to the underlying store and invalidates the cache.
// It fails if the underlying store is read-only.
func (c *CachedStore) Grant(ctx context.Context, companyID, userID string, perms ...string) error {
	w, ok := c.next.(Writer)
	if !ok {
		return ErrReadOnly
	}
	if err := w.Grant(ctx, companyID, userID, perms...); err != nil {
		return err
	}
	return c.Invalidate(ctx, companyID, userID)
}

// Revoke writes through to the underlying store and invalidates the cache.
func (c *CachedStore) Revoke(ctx context.Context, companyID, userID string, perms ...string) error {
	w, ok := c.next.(Writer)
	if !ok {
		return ErrReadOnly
	}
	if err := w.Revoke(ctx, companyID, userID, perms...); err != nil {
		return err
	}
	return c.Invalidate(ctx, companyID, userID)
}
