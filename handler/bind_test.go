package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/estatecrm/handler"
)

type checkRequest struct {
	Permissions []string `json:"permissions" validate:"required,min=1"`
	Mode        string   `json:"mode" validate:"omitempty,oneof=any all"`
}

func newJSONRequest(body, contentType string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	return r
}

func TestBindJSON(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{"permissions":["leads.read"],"mode":"all"}`, "application/json; charset=utf-8"), &req)
		require.NoError(t, err)
		assert.Equal(t, []string{"leads.read"}, req.Permissions)
		assert.Equal(t, "all", req.Mode)
	})

	t.Run("missing content type", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{}`, ""), &req)
		assert.ErrorIs(t, err, handler.ErrMissingContentType)
		assert.ErrorIs(t, err, handler.ErrUnsupportedMedia)
	})

	t.Run("wrong content type", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{}`, "text/plain"), &req)
		assert.ErrorIs(t, err, handler.ErrUnsupportedMedia)
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{"permissions":["a.b"],"role":"super_admin"}`, "application/json"), &req)
		assert.ErrorIs(t, err, handler.ErrInvalidJSON)
		assert.ErrorIs(t, err, handler.ErrBadRequest)
	})

	t.Run("trailing data", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{"permissions":["a.b"]}{}`, "application/json"), &req)
		assert.ErrorIs(t, err, handler.ErrInvalidJSON)
	})

	t.Run("validation renders 422", func(t *testing.T) {
		t.Parallel()
		var req checkRequest
		err := handler.BindJSON(newJSONRequest(`{"permissions":[],"mode":"some"}`, "application/json"), &req)
		require.Error(t, err)

		rec, body := render(t, handler.JSONError(err))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, handler.CodeValidation, body.Error.Code)
		assert.Contains(t, body.Error.Details, "Permissions")
		assert.Contains(t, body.Error.Details, "Mode")
	})
}
