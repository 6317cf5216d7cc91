package principal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/estatecrm/pkg/jwt"
	"github.com/dmitrymomot/estatecrm/pkg/permission"
	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

var (
	// ErrNoCredentials means the request carries no credentials at all.
	ErrNoCredentials = errors.New("principal: no credentials")

	// ErrInvalidCredentials means the request carries credentials that cannot be trusted.
	ErrInvalidCredentials = errors.New("principal: invalid credentials")
)

// Resolver produces the principal of a request.
type Resolver interface {
	Resolve(r *http.Request) (rbac.Principal, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(r *http.Request) (rbac.Principal, error)

// Resolve implements Resolver.
func (fn ResolverFunc) Resolve(r *http.Request) (rbac.Principal, error) {
	return fn(r)
}

// GrantSource returns the explicit permissions granted to a user.
// grants.Store satisfies it.
type GrantSource interface {
	Permissions(ctx context.Context, companyID, userID string) ([]string, error)
}

// TokenResolver resolves principals from session tokens.
type TokenResolver struct {
	tokens  *jwt.Service
	extract jwt.TokenExtractorFunc
	grants  GrantSource
}

// TokenOption configures a TokenResolver.
type TokenOption func(*TokenResolver)

// WithExtractor overrides where the token is read from.
// The default is the Authorization bearer header.
func WithExtractor(extract jwt.TokenExtractorFunc) TokenOption {
	return func(tr *TokenResolver) {
		if extract != nil {
			tr.extract = extract
		}
	}
}

// WithGrants merges explicit permissions from src into every resolved principal.
func WithGrants(src GrantSource) TokenOption {
	return func(tr *TokenResolver) {
		tr.grants = src
	}
}

// NewTokenResolver creates a TokenResolver verifying tokens with svc.
func NewTokenResolver(svc *jwt.Service, opts ...TokenOption) *TokenResolver {
	tr := &TokenResolver{
		tokens:  svc,
		extract: jwt.BearerTokenExtractor,
	}
	for _, opt := range opts {
		opt(tr)
	}
	return tr
}

// Resolve implements Resolver.
func (tr *TokenResolver) Resolve(r *http.Request) (rbac.Principal, error) {
	token, err := tr.extract(r)
	if errors.Is(err, jwt.ErrMissingToken) {
		return rbac.Principal{}, ErrNoCredentials
	}
	if err != nil {
		return rbac.Principal{}, errors.Join(ErrInvalidCredentials, err)
	}

	claims, err := tr.tokens.Parse(token)
	if err != nil {
		return rbac.Principal{}, errors.Join(ErrInvalidCredentials, err)
	}

	p := claims.Principal()
	if tr.grants != nil {
		extra, err := tr.grants.Permissions(r.Context(), p.CompanyID, p.ID)
		if err != nil {
			return rbac.Principal{}, fmt.Errorf("load grants for %s: %w", p.ID, err)
		}
		p.Permissions = permission.Union(p.Permissions, extra)
	}
	return p, nil
}
