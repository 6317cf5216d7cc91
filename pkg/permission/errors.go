package permission

import "errors"

// ErrInvalidPermission is returned when a permission string is syntactically invalid.
var ErrInvalidPermission = errors.New("permission: invalid permission format")
