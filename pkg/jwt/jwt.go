package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/dmitrymomot/estatecrm/pkg/rbac"
)

// Claims is the payload of a session token.
type Claims struct {
	jwtlib.RegisteredClaims
	Role        string   `json:"role"`
	CompanyID   string   `json:"company_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Principal converts the claims into the principal they describe.
func (c *Claims) Principal() rbac.Principal {
	return rbac.Principal{
		ID:          c.Subject,
		Role:        rbac.Role(c.Role),
		CompanyID:   c.CompanyID,
		Permissions: c.Permissions,
	}
}

// Service handles token generation and validation using HMAC-SHA256.
type Service struct {
	signingKey []byte
	issuer     string
	leeway     time.Duration
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer sets the iss claim written on issue and required on parse.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithLeeway tolerates clock skew when validating exp, nbf and iat.
func WithLeeway(d time.Duration) Option {
	return func(s *Service) {
		s.leeway = d
	}
}

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new JWT service with the provided signing key.
// The key should be at least 32 bytes for adequate security with HMAC-SHA256.
func New(signingKey []byte, opts ...Option) (*Service, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	s := &Service{
		signingKey: signingKey,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewFromString creates a new JWT service from a string signing key.
func NewFromString(signingKey string, opts ...Option) (*Service, error) {
	return New([]byte(signingKey), opts...)
}

// Issue signs a token for p that expires after ttl.
func (s *Service) Issue(p rbac.Principal, ttl time.Duration) (string, error) {
	if p.ID == "" {
		return "", ErrMissingSubject
	}

	now := s.now().UTC()
	claims := Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   p.ID,
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now),
			NotBefore: jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
		},
		Role:        p.Role.String(),
		CompanyID:   p.CompanyID,
		Permissions: p.Permissions,
	}

	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Parse validates tokenString and returns its claims.
// Only HS256 is accepted; expired tokens yield ErrExpiredToken and every
// other validation failure ErrInvalidToken.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
		jwtlib.WithLeeway(s.leeway),
		jwtlib.WithIssuedAt(),
	}
	if s.issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwtlib.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (any, error) {
		return s.signingKey, nil
	}, opts...)
	switch {
	case errors.Is(err, jwtlib.ErrTokenExpired):
		return nil, errors.Join(ErrExpiredToken, err)
	case err != nil:
		return nil, errors.Join(ErrInvalidToken, err)
	case !token.Valid:
		return nil, ErrInvalidToken
	case claims.Subject == "":
		return nil, errors.Join(ErrInvalidToken, ErrMissingSubject)
	}
	return claims, nil
}
