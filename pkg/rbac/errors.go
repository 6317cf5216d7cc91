package rbac

import (
	"errors"
	"strings"
)

// Domain errors for RBAC operations.
var (
	// ErrAuthenticationMissing is returned when no principal or role is available.
	ErrAuthenticationMissing = errors.New("rbac.authentication_missing")

	// ErrPermissionDenied is returned when required permissions are not granted.
	ErrPermissionDenied = errors.New("rbac.permission_denied")

	// ErrInvalidRole is returned when a role is not part of the catalog.
	ErrInvalidRole = errors.New("rbac.invalid_role")

	// ErrCircularInheritance is returned when roles have circular inheritance.
	ErrCircularInheritance = errors.New("rbac.circular_inheritance")

	// ErrInvalidCatalog is returned when a role source yields an unusable catalog.
	ErrInvalidCatalog = errors.New("rbac.invalid_catalog")
)

// DeniedError carries the permissions that would have satisfied a failed check.
type DeniedError struct {
	Required []string
	Mode     Mode
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	qualifier := "one of"
	if e.Mode == ModeAll {
		qualifier = "all of"
	}
	return "access denied: required " + qualifier + ": " + strings.Join(e.Required, ", ")
}

// Unwrap makes errors.Is(err, ErrPermissionDenied) hold.
func (e *DeniedError) Unwrap() error {
	return ErrPermissionDenied
}
