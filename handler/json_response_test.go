package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

func render(t *testing.T, resp handler.Response) (*httptest.ResponseRecorder, handler.JSONResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))

	var body handler.JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("data", func(t *testing.T) {
		t.Parallel()
		rec, body := render(t, handler.JSON(map[string]string{"status": "ok"}))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, map[string]any{"status": "ok"}, body.Data)
		assert.Nil(t, body.Error)
	})

	t.Run("status and meta", func(t *testing.T) {
		t.Parallel()
		rec, body := render(t, handler.JSON("created",
			handler.WithJSONStatus(http.StatusCreated),
			handler.WithJSONMeta(map[string]any{"version": "1"}),
		))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "1", body.Meta["version"])
	})
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		status   int
		code     string
		message  string
		required []string
	}{
		{
			name:    "authentication missing",
			err:     rbac.ErrAuthenticationMissing,
			status:  http.StatusUnauthorized,
			code:    handler.CodeAuthenticationMissing,
			message: "authentication required",
		},
		{
			name:     "access denied",
			err:      &rbac.DeniedError{Required: []string{"leads.delete", "leads.update"}},
			status:   http.StatusForbidden,
			code:     handler.CodeAccessDenied,
			message:  "access denied: required one of: leads.delete, leads.update",
			required: []string{"leads.delete", "leads.update"},
		},
		{
			name:    "http error",
			err:     handler.ErrNotImplemented,
			status:  http.StatusNotImplemented,
			code:    "not_implemented",
			message: "Not Implemented",
		},
		{
			name:    "unknown error is not leaked",
			err:     errors.New("db password is hunter2"),
			status:  http.StatusInternalServerError,
			code:    handler.CodeInternal,
			message: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec, body := render(t, handler.JSONError(tt.err))
			assert.Equal(t, tt.status, rec.Code)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
			if tt.required != nil {
				assert.Equal(t, tt.required, body.Error.Details["required"])
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("renders response", func(t *testing.T) {
		t.Parallel()
		h := handler.Wrap(func(r *http.Request) handler.Response {
			return handler.JSON("ok")
		})
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()
		var got error
		h := handler.Wrap(
			func(r *http.Request) handler.Response { return nil },
			handler.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
				got = err
				w.WriteHeader(http.StatusTeapot)
			}),
		)
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, got, handler.ErrNilResponse)
		assert.Equal(t, http.StatusTeapot, rec.Code)
	})
}
