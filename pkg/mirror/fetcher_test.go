package mirror_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/mirror"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

func sessionServer(t *testing.T, authz *rbac.Authorizer) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("GET "+mirror.SessionPath, handler.Wrap(func(r *http.Request) handler.Response {
		if r.Header.Get("Authorization") != "Bearer good" {
			return handler.JSON(mirror.NewSession(authz, rbac.Principal{}))
		}
		return handler.JSON(mirror.NewSession(authz, principal(rbac.RoleCompanyAdmin)))
	}))
	mux.Handle("GET /broken"+mirror.SessionPath, handler.Wrap(func(r *http.Request) handler.Response {
		return handler.JSONError(handler.ErrServiceUnavailable)
	}))
	mux.Handle("GET /empty"+mirror.SessionPath, handler.Wrap(func(r *http.Request) handler.Response {
		return handler.JSON(nil)
	}))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPFetcher(t *testing.T) {
	t.Parallel()

	authz := newAuthz()
	srv := sessionServer(t, authz)
	ctx := context.Background()

	t.Run("authenticated", func(t *testing.T) {
		t.Parallel()
		f := mirror.NewHTTPFetcher(srv.URL+"/",
			mirror.WithHTTPClient(srv.Client()),
			mirror.WithBearerToken(func(context.Context) string { return "good" }),
		)
		s, err := f.Fetch(ctx)
		require.NoError(t, err)
		assert.True(t, s.Authenticated)
		require.NotNil(t, s.Principal)
		assert.Equal(t, rbac.RoleCompanyAdmin, s.Principal.Role)
		assert.Equal(t, authz.Catalog().Digest(), s.CatalogDigest)
		assert.NotEmpty(t, s.Granted)
	})

	t.Run("anonymous", func(t *testing.T) {
		t.Parallel()
		s, err := mirror.NewHTTPFetcher(srv.URL).Fetch(ctx)
		require.NoError(t, err)
		assert.False(t, s.Authenticated)
		assert.Nil(t, s.Principal)
	})

	t.Run("server error", func(t *testing.T) {
		t.Parallel()
		_, err := mirror.NewHTTPFetcher(srv.URL + "/broken").Fetch(ctx)
		assert.ErrorIs(t, err, mirror.ErrFetchFailed)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("missing data", func(t *testing.T) {
		t.Parallel()
		_, err := mirror.NewHTTPFetcher(srv.URL + "/empty").Fetch(ctx)
		assert.ErrorIs(t, err, mirror.ErrInvalidSession)
	})

	t.Run("unreachable", func(t *testing.T) {
		t.Parallel()
		_, err := mirror.NewHTTPFetcher("http://127.0.0.1:1").Fetch(ctx)
		assert.ErrorIs(t, err, mirror.ErrFetchFailed)
	})

	t.Run("refresh end to end", func(t *testing.T) {
		t.Parallel()
		m := mirror.New(authz, mirror.WithFetcher(mirror.NewHTTPFetcher(srv.URL,
			mirror.WithBearerToken(func(context.Context) string { return "good" }),
		)))
		require.NoError(t, m.Refresh(ctx))
		assert.True(t, m.IsCompanyAdmin())
		assert.False(t, m.Stale())
		assert.Equal(t, mirror.Allowed, m.Can("users.create"))
	})
}
