package rbac_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

func TestAuthorizer_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	auth := rbac.NewAuthorizer(rbac.DefaultCatalog())

	const numGoroutines = 50
	const numOperations = 500

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				switch j % 4 {
				case 0:
					assert.True(t, auth.HasPermission(rbac.Principal{Role: rbac.RoleSalesManager}, "leads.delete"))
				case 1:
					assert.False(t, auth.HasPermission(rbac.Principal{Role: rbac.RoleSupport}, "leads.update"))
				case 2:
					assert.True(t, auth.HasAnyPermission(rbac.Principal{Role: rbac.RoleMarketing}, []string{"users.read", "campaigns.create"}))
				case 3:
					assert.NotEmpty(t, auth.Granted(rbac.Principal{Role: rbac.RoleSalesAgent}))
				}
			}
		}()
	}

	wg.Wait()
}

func TestDefaultCatalog_ConcurrentInit(t *testing.T) {
	t.Parallel()

	const numGoroutines = 20
	results := make([]*rbac.Catalog, numGoroutines)

	var wg sync.WaitGroup
	wg.Add(numGoroutines)
	for i := range numGoroutines {
		go func() {
			defer wg.Done()
			results[i] = rbac.DefaultCatalog()
		}()
	}
	wg.Wait()

	for _, c := range results {
		assert.Same(t, results[0], c)
	}
}
