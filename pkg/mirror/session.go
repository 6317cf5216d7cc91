package mirror

import (
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Session is the payload served by GET /api/auth/session.
// Granted is the effective permission set computed by the server; the mirror
// shows it but evaluates from the principal and catalog.
type Session struct {
	Authenticated bool            `json:"authenticated"`
	Principal     *rbac.Principal `json:"principal,omitempty"`
	Granted       []string        `json:"granted,omitempty"`
	CatalogDigest string          `json:"catalog_digest"`
}

// NewSession builds the session payload for p. An unauthenticated principal
// yields an anonymous session.
func NewSession(authz *rbac.Authorizer, p rbac.Principal) Session {
	s := Session{CatalogDigest: authz.Catalog().Digest()}
	if !p.Authenticated() {
		return s
	}
	p = p.Clone()
	s.Authenticated = true
	s.Principal = &p
	s.Granted = authz.Granted(p)
	return s
}

func (s Session) validate() error {
	if !s.Authenticated {
		return nil
	}
	if s.Principal == nil || !s.Principal.Authenticated() {
		return ErrInvalidSession
	}
	return nil
}
