package grants

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
)

var (
	// ErrMissingUser is returned when a user ID is empty.
	ErrMissingUser = errors.New("grants: missing user id")

	// ErrReadOnly is returned when writing through a store that cannot be written to.
	ErrReadOnly = errors.New("grants: store is read-only")
)

// Store reads explicit grants.
type Store interface {
	// Permissions returns the grants of userID within companyID.
	// A user without grants yields an empty slice and no error.
	Permissions(ctx context.Context, companyID, userID string) ([]string, error)
}

// Writer changes explicit grants.
type Writer interface {
	Grant(ctx context.Context, companyID, userID string, perms ...string) error
	Revoke(ctx context.Context, companyID, userID string, perms ...string) error
}

// ReadWriter is a Store that can also be written to.
type ReadWriter interface {
	Store
	Writer
}

// validate checks the arguments shared by Grant and Revoke.
func validate(userID string, perms []string) error {
	if userID == "" {
		return ErrMissingUser
	}
	for _, p := range perms {
		if !permission.Valid(p) {
			return fmt.Errorf("%w: %q", permission.ErrInvalidPermission, p)
		}
	}
	return nil
}
