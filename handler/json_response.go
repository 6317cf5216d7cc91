package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// JSONResponse is the standard JSON response structure
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

// Error codes written for authorization failures.
const (
	CodeAuthenticationMissing = "authentication_missing"
	CodeAccessDenied          = "access_denied"
	CodeValidation            = "validation_error"
	CodeInternal              = "internal_error"
)

// jsonResponse implements Response for JSON rendering
type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON creates a JSON response with options.
// Errors passed as v are rendered through the error envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK}

	switch val := v.(type) {
	case JSONResponse:
		r.body = val
	case *ErrorDetail:
		r.body.Error = val
		r.status = http.StatusInternalServerError
	case error:
		r.body.Error = ErrorToDetail(val, &r.status)
	default:
		r.body.Data = v
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// JSONError creates a JSON error response from an error with options
func JSONError(err error, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusInternalServerError}

	var detail *ErrorDetail
	if errors.As(err, &detail) {
		r.body.Error = detail
	} else {
		r.body.Error = ErrorToDetail(err, &r.status)
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Error makes *ErrorDetail usable as an error value.
func (e *ErrorDetail) Error() string {
	return e.Message
}

// ErrorToDetail converts err to an ErrorDetail and sets the matching status.
func ErrorToDetail(err error, status *int) *ErrorDetail {
	if *status == http.StatusOK {
		*status = http.StatusInternalServerError
	}

	var denied *rbac.DeniedError
	if errors.As(err, &denied) {
		*status = http.StatusForbidden
		return &ErrorDetail{
			Code:    CodeAccessDenied,
			Message: denied.Error(),
			Details: map[string][]string{"required": denied.Required},
		}
	}

	if errors.Is(err, rbac.ErrAuthenticationMissing) {
		*status = http.StatusUnauthorized
		return &ErrorDetail{
			Code:    CodeAuthenticationMissing,
			Message: "authentication required",
		}
	}

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		*status = http.StatusUnprocessableEntity
		detail := &ErrorDetail{
			Code:    CodeValidation,
			Message: "validation failed",
			Details: make(map[string][]string, len(valErrs)),
		}
		for _, fe := range valErrs {
			field := fe.Field()
			detail.Details[field] = append(detail.Details[field], fe.Tag())
		}
		return detail
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		*status = httpErr.Code
		return &ErrorDetail{
			Code:    httpErr.Key,
			Message: http.StatusText(httpErr.Code),
		}
	}

	return &ErrorDetail{
		Code:    CodeInternal,
		Message: http.StatusText(http.StatusInternalServerError),
	}
}
