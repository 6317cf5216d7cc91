// Package jwt issues and verifies the HS256 session tokens that carry a
// principal between the browser and the API.
//
// A token's subject is the user ID; the role, company and explicit
// permissions travel as private claims:
//
//	svc, err := jwt.NewFromString(cfg.SigningKey, jwt.WithIssuer("estatecrm"))
//	token, err := svc.Issue(principal, 12*time.Hour)
//	claims, err := svc.Parse(token)
//	p := claims.Principal()
//
// Extractors locate the token on a request: Authorization bearer header,
// cookie, custom header or query parameter. They return ErrMissingToken when
// the request carries no token at all, which callers treat as an anonymous
// request rather than a failure.
package jwt
