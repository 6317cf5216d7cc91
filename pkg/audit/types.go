package audit

import (
	"context"
	"fmt"
	"time"
)

// Kind classifies a rejected authorization attempt.
type Kind string

const (
	KindAuthenticationMissing Kind = "authentication_missing"
	KindPermissionDenied      Kind = "permission_denied"
)

// Event represents a single audit log entry
type Event struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	PrincipalID string    `json:"principal_id,omitempty"`
	Role        string    `json:"role,omitempty"`
	CompanyID   string    `json:"company_id,omitempty"`
	Operation   string    `json:"operation,omitempty"`
	Required    []string  `json:"required"`
	Mode        string    `json:"mode"`
	Method      string    `json:"method,omitempty"`
	Path        string    `json:"path,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks if the event has all required fields
func (e *Event) Validate() error {
	switch e.Kind {
	case KindAuthenticationMissing, KindPermissionDenied:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrEventValidation, e.Kind)
	}
	if len(e.Required) == 0 {
		return fmt.Errorf("%w: required permissions are missing", ErrEventValidation)
	}
	if e.Kind == KindPermissionDenied && e.Role == "" {
		return fmt.Errorf("%w: denied event without role", ErrEventValidation)
	}
	return nil
}

// Storage persists audit events.
type Storage interface {
	Store(ctx context.Context, events ...Event) error
}

// Criteria filters stored events. Zero fields match everything.
type Criteria struct {
	CompanyID   string
	PrincipalID string
	Kind        Kind
	Since       time.Time
	Limit       int
}

// Reader queries stored events, newest first.
type Reader interface {
	Find(ctx context.Context, c Criteria) ([]Event, error)
}

func (c Criteria) matches(e Event) bool {
	switch {
	case c.CompanyID != "" && e.CompanyID != c.CompanyID:
		return false
	case c.PrincipalID != "" && e.PrincipalID != c.PrincipalID:
		return false
	case c.Kind != "" && e.Kind != c.Kind:
		return false
	case !c.Since.IsZero() && e.CreatedAt.Before(c.Since):
		return false
	}
	return true
}
