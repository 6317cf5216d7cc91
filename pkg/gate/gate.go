package gate

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/mirror"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

type options struct {
	fallback templ.Component
	loading  templ.Component
}

// Option configures a content gate.
type Option func(*options)

// WithFallback sets what renders when access is denied.
func WithFallback(c templ.Component) Option {
	return func(o *options) {
		o.fallback = c
	}
}

// WithLoading sets what renders while the session is loading.
// It defaults to the fallback.
func WithLoading(c templ.Component) Option {
	return func(o *options) {
		o.loading = c
	}
}

func newOptions(opts []Option) options {
	o := options{fallback: templ.NopComponent}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fallback == nil {
		o.fallback = templ.NopComponent
	}
	if o.loading == nil {
		o.loading = o.fallback
	}
	return o
}

// decider reports the decision for the mirror found in ctx.
type decider func(m *mirror.Mirror) mirror.Decision

func gateComponent(decide decider, children templ.Component, opts []Option) templ.Component {
	o := newOptions(opts)
	if children == nil {
		children = templ.NopComponent
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := mirror.FromContext(ctx)
		if m == nil {
			return o.loading.Render(ctx, w)
		}
		switch decide(m) {
		case mirror.Allowed:
			return children.Render(ctx, w)
		case mirror.Denied:
			return o.fallback.Render(ctx, w)
		default:
			return o.loading.Render(ctx, w)
		}
	})
}

// Permission renders children when the mirror satisfies req.
// An empty requirement renders children for any resolved session.
func Permission(req guard.Requirement, children templ.Component, opts ...Option) templ.Component {
	return gateComponent(func(m *mirror.Mirror) mirror.Decision {
		return requirementDecision(m, req)
	}, children, opts)
}

// Can renders children when the mirror grants perm.
func Can(perm string, children templ.Component, opts ...Option) templ.Component {
	return Permission(guard.Any(perm), children, opts...)
}

// Roles renders children when the principal's role satisfies roles.
// With rbac.ModeAny the role must be one of roles; with rbac.ModeAll every
// listed role must be the principal's role.
func Roles(roles []rbac.Role, mode rbac.Mode, children templ.Component, opts ...Option) templ.Component {
	return gateComponent(func(m *mirror.Mirror) mirror.Decision {
		return rolesDecision(m, roles, mode)
	}, children, opts)
}

func IsSuperAdmin(children templ.Component, opts ...Option) templ.Component {
	return Roles([]rbac.Role{rbac.RoleSuperAdmin}, rbac.ModeAny, children, opts...)
}

func IsCompanyAdmin(children templ.Component, opts ...Option) templ.Component {
	return Roles([]rbac.Role{rbac.RoleCompanyAdmin}, rbac.ModeAny, children, opts...)
}

func IsManager(children templ.Component, opts ...Option) templ.Component {
	return Roles([]rbac.Role{rbac.RoleSalesManager}, rbac.ModeAny, children, opts...)
}

func IsAgent(children templ.Component, opts ...Option) templ.Component {
	return Roles([]rbac.Role{rbac.RoleSalesAgent}, rbac.ModeAny, children, opts...)
}

// IsViewer gates on the read-only support role.
func IsViewer(children templ.Component, opts ...Option) templ.Component {
	return Roles([]rbac.Role{rbac.RoleSupport}, rbac.ModeAny, children, opts...)
}

func requirementDecision(m *mirror.Mirror, req guard.Requirement) mirror.Decision {
	_, d := m.Evaluate(req.Mode, req.Permissions...)
	return d
}

func rolesDecision(m *mirror.Mirror, roles []rbac.Role, mode rbac.Mode) mirror.Decision {
	if m.Loading() {
		return mirror.Pending
	}
	p, ok := m.Principal()
	if !ok || len(roles) == 0 {
		return mirror.Denied
	}
	if mode == rbac.ModeAll {
		for _, r := range roles {
			if r != p.Role {
				return mirror.Denied
			}
		}
		return mirror.Allowed
	}
	return m.RoleDecision(roles...)
}
