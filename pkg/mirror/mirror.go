package mirror

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Status describes what the mirror currently knows about the session.
type Status uint8

const (
	Loading Status = iota
	Anonymous
	Authenticated
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "loading"
	}
}

// state is never mutated after it is published.
type state struct {
	status    Status
	principal rbac.Principal
	digest    string
	stale     bool
}

var loadingState = &state{status: Loading}

// Mirror is a client-side copy of the session principal.
// It is safe for concurrent use.
type Mirror struct {
	authz   *rbac.Authorizer
	fetcher Fetcher
	log     *slog.Logger
	current atomic.Pointer[state]
	group   singleflight.Group
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithFetcher sets where Refresh loads the session from.
func WithFetcher(f Fetcher) Option {
	return func(m *Mirror) {
		m.fetcher = f
	}
}

// WithLogger sets the logger used for refresh failures and catalog drift.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mirror) {
		if l != nil {
			m.log = l
		}
	}
}

// New creates a Mirror in the Loading state that evaluates with authz.
func New(authz *rbac.Authorizer, opts ...Option) *Mirror {
	if authz == nil {
		panic("mirror: authorizer cannot be nil")
	}
	m := &Mirror{
		authz: authz,
		log:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.current.Store(loadingState)
	return m
}

func (m *Mirror) load() *state {
	return m.current.Load()
}

// Status returns the current session status.
func (m *Mirror) Status() Status {
	return m.load().status
}

// Loading reports whether no session has been resolved yet.
func (m *Mirror) Loading() bool {
	return m.Status() == Loading
}

// Authenticated reports whether a principal is present.
func (m *Mirror) Authenticated() bool {
	return m.Status() == Authenticated
}

// Principal returns a copy of the current principal.
func (m *Mirror) Principal() (rbac.Principal, bool) {
	s := m.load()
	if s.status != Authenticated {
		return rbac.Principal{}, false
	}
	return s.principal.Clone(), true
}

// Stale reports whether the server's catalog digest differs from the local
// catalog. Decisions may then disagree with the server until the client
// reloads its catalog.
func (m *Mirror) Stale() bool {
	return m.load().stale
}

// Set makes p the current principal. An unauthenticated p clears the session.
func (m *Mirror) Set(p rbac.Principal) {
	if !p.Authenticated() {
		m.Clear()
		return
	}
	m.current.Store(&state{status: Authenticated, principal: p.Clone()})
}

// Clear marks the session as resolved without a principal.
func (m *Mirror) Clear() {
	m.current.Store(&state{status: Anonymous})
}

// Reset returns the mirror to Loading.
func (m *Mirror) Reset() {
	m.current.Store(loadingState)
}

// Apply publishes a session payload fetched from the server.
func (m *Mirror) Apply(s Session) error {
	if err := s.validate(); err != nil {
		return err
	}

	next := &state{status: Anonymous, digest: s.CatalogDigest}
	if s.Authenticated {
		next.status = Authenticated
		next.principal = s.Principal.Clone()
	}
	if local := m.authz.Catalog().Digest(); s.CatalogDigest != "" && s.CatalogDigest != local {
		next.stale = true
		m.log.Warn("permission catalog drift",
			slog.String("server_digest", s.CatalogDigest),
			slog.String("local_digest", local),
		)
	}
	m.current.Store(next)
	return nil
}

// Refresh fetches the session and applies it. Concurrent calls share one
// fetch. On failure the previous state is kept.
func (m *Mirror) Refresh(ctx context.Context) error {
	if m.fetcher == nil {
		return ErrNoFetcher
	}

	_, err, _ := m.group.Do("session", func() (any, error) {
		s, err := m.fetcher.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return nil, m.Apply(s)
	})
	if err != nil {
		m.log.WarnContext(ctx, "session refresh failed",
			slog.String("status", m.Status().String()),
			slog.Any("error", err),
		)
		if errors.Is(err, ErrInvalidSession) || errors.Is(err, ErrFetchFailed) {
			return err
		}
		return errors.Join(ErrFetchFailed, err)
	}
	return nil
}

// Can reports whether the server would grant perm.
func (m *Mirror) Can(perm string) Decision {
	s := m.load()
	switch s.status {
	case Loading:
		return Pending
	case Anonymous:
		return Denied
	}
	return decide(m.authz.HasPermission(s.principal, perm))
}

// CanAny reports whether the server would grant at least one of perms.
func (m *Mirror) CanAny(perms ...string) Decision {
	return m.canMode(rbac.ModeAny, perms)
}

// CanAll reports whether the server would grant every one of perms.
func (m *Mirror) CanAll(perms ...string) Decision {
	return m.canMode(rbac.ModeAll, perms)
}

// CanMode evaluates perms in the given mode.
func (m *Mirror) CanMode(mode rbac.Mode, perms ...string) Decision {
	return m.canMode(mode, perms)
}

func (m *Mirror) canMode(mode rbac.Mode, perms []string) Decision {
	s := m.load()
	switch s.status {
	case Loading:
		return Pending
	case Anonymous:
		return Denied
	}
	return decide(m.authz.Decide(s.principal, mode, perms).Allowed)
}

// Evaluate returns the session status together with the decision for perms,
// both taken from the same state. An empty perms list is allowed once the
// session is resolved, with or without a principal.
func (m *Mirror) Evaluate(mode rbac.Mode, perms ...string) (Status, Decision) {
	s := m.load()
	switch {
	case s.status == Loading:
		return s.status, Pending
	case len(perms) == 0:
		return s.status, Allowed
	case s.status == Anonymous:
		return s.status, Denied
	}
	return s.status, decide(m.authz.Decide(s.principal, mode, perms).Allowed)
}

// CanCRUD reports the basic actions allowed on resource.
// Every field is false until a principal is resolved.
func (m *Mirror) CanCRUD(resource string) CRUD {
	s := m.load()
	if s.status != Authenticated {
		return CRUD{}
	}
	perms := permission.CRUD(resource)
	return CRUD{
		Create: m.authz.HasPermission(s.principal, perms[0]),
		Read:   m.authz.HasPermission(s.principal, perms[1]),
		Update: m.authz.HasPermission(s.principal, perms[2]),
		Delete: m.authz.HasPermission(s.principal, perms[3]),
	}
}

// Allowed is the boolean form of Can. It returns ErrNotResolved while loading
// or when no principal is present.
func (m *Mirror) Allowed(perm string) (bool, error) {
	s := m.load()
	if s.status != Authenticated {
		return false, ErrNotResolved
	}
	return m.authz.HasPermission(s.principal, perm), nil
}

// HasRole reports whether the current principal holds one of roles.
// It is false while loading.
func (m *Mirror) HasRole(roles ...rbac.Role) bool {
	s := m.load()
	return s.status == Authenticated && slices.Contains(roles, s.principal.Role)
}

// RoleDecision is the tri-state form of HasRole.
func (m *Mirror) RoleDecision(roles ...rbac.Role) Decision {
	switch m.Status() {
	case Loading:
		return Pending
	case Anonymous:
		return Denied
	}
	return decide(m.HasRole(roles...))
}

func (m *Mirror) IsSuperAdmin() bool   { return m.HasRole(rbac.RoleSuperAdmin) }
func (m *Mirror) IsCompanyAdmin() bool { return m.HasRole(rbac.RoleCompanyAdmin) }
func (m *Mirror) IsManager() bool      { return m.HasRole(rbac.RoleSalesManager) }
func (m *Mirror) IsAgent() bool        { return m.HasRole(rbac.RoleSalesAgent) }

// IsViewer reports whether the principal holds the read-only support role.
func (m *Mirror) IsViewer() bool { return m.HasRole(rbac.RoleSupport) }
