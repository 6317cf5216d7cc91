package guard

import (
	"context"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Failure describes a rejected authorization attempt.
type Failure struct {
	// Err is rbac.ErrAuthenticationMissing or a *rbac.DeniedError.
	Err error
	// Principal is the zero value when authentication was missing.
	Principal rbac.Principal
	Operation string
	Required  []string
	Mode      rbac.Mode
	// Method and Path are empty for checks made outside an HTTP request.
	Method string
	Path   string
}

// Denied reports whether the failure is a permission denial rather than
// missing authentication.
func (f Failure) Denied() bool {
	return f.Principal.Role != ""
}

// Auditor receives every rejected authorization attempt.
// Implementations must not block the request for long.
type Auditor interface {
	AuthorizationFailed(ctx context.Context, f Failure)
}

// AuditorFunc adapts a function to the Auditor interface.
type AuditorFunc func(ctx context.Context, f Failure)

// AuthorizationFailed implements Auditor.
func (fn AuditorFunc) AuthorizationFailed(ctx context.Context, f Failure) {
	fn(ctx, f)
}

type noopAuditor struct{}

func (noopAuditor) AuthorizationFailed(context.Context, Failure) {}
