package grants

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

type userKey struct {
	companyID string
	userID    string
}

// MemoryStore keeps grants in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	grants map[userKey][]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{grants: make(map[userKey][]string)}
}

// Permissions implements Store.
func (s *MemoryStore) Permissions(ctx context.Context, companyID, userID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.grants[userKey{companyID, userID}]), nil
}

// Grant implements Writer.
func (s *MemoryStore) Grant(ctx context.Context, companyID, userID string, perms ...string) error {
	if err := validate(userID, perms); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := userKey{companyID, userID}
	s.grants[key] = permission.Union(s.grants[key], perms)
	return nil
}

// Revoke implements Writer.
func (s *MemoryStore) Revoke(ctx context.Context, companyID, userID string, perms ...string) error {
	if err := validate(userID, perms); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := userKey{companyID, userID}
	remaining := slices.DeleteFunc(slices.Clone(s.grants[key]), func(p string) bool {
		return slices.Contains(perms, p)
	})
	if len(remaining) == 0 {
		delete(s.grants, key)
		return nil
	}
	s.grants[key] = remaining
	return nil
}
