package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Binding errors.
var (
	ErrMissingContentType = errors.New("missing content type")
	ErrInvalidJSON        = errors.New("invalid JSON")
)

// maxBodySize caps JSON request bodies.
const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// BindJSON decodes the JSON request body into v and validates it with the
// struct's `validate` tags. Unknown fields are rejected.
func BindJSON(r *http.Request, v any) error {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return fmt.Errorf("%w: %w: expected application/json", ErrUnsupportedMedia, ErrMissingContentType)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("%w: got %s, expected application/json", ErrUnsupportedMedia, contentType)
	}

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w: empty body", ErrBadRequest, ErrInvalidJSON)
		}
		return fmt.Errorf("%w: %w: %v", ErrBadRequest, ErrInvalidJSON, err)
	}

	var extra json.RawMessage
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w: unexpected data after JSON object", ErrBadRequest, ErrInvalidJSON)
	}

	return validate.Struct(v)
}
