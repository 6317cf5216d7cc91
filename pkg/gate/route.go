package gate

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/estatecrm/handler"
	"github.com/dmitrymomot/estatecrm/pkg/guard"
	"github.com/dmitrymomot/estatecrm/pkg/mirror"
)

// Default redirect locations of a route gate.
const (
	DefaultDeniedURL = "/forbidden"
	DefaultLoginURL  = "/login"
	NextParam        = "next"
)

type routeOptions struct {
	deniedURL string
	loginURL  string
	loading   http.Handler
	source    func(*http.Request) *mirror.Mirror
}

// RouteOption configures a route gate.
type RouteOption func(*routeOptions)

// WithDeniedURL sets where denied requests are redirected.
func WithDeniedURL(u string) RouteOption {
	return func(o *routeOptions) {
		o.deniedURL = u
	}
}

// WithLoginURL sets where requests without a principal are redirected.
func WithLoginURL(u string) RouteOption {
	return func(o *routeOptions) {
		o.loginURL = u
	}
}

// WithLoadingHandler serves h while the session is loading instead of
// redirecting to the login location.
func WithLoadingHandler(h http.Handler) RouteOption {
	return func(o *routeOptions) {
		o.loading = h
	}
}

// WithMirrorSource overrides how the gate finds the mirror for a request.
// By default it is read from the request context.
func WithMirrorSource(fn func(*http.Request) *mirror.Mirror) RouteOption {
	return func(o *routeOptions) {
		if fn != nil {
			o.source = fn
		}
	}
}

// Route returns middleware that lets a request through only when the mirror
// satisfies req. Otherwise it redirects and preserves the requested URI in
// the next query parameter. An empty req admits any resolved session, the
// same as Permission.
func Route(req guard.Requirement, opts ...RouteOption) func(http.Handler) http.Handler {
	o := routeOptions{
		deniedURL: DefaultDeniedURL,
		loginURL:  DefaultLoginURL,
		source: func(r *http.Request) *mirror.Mirror {
			return mirror.FromContext(r.Context())
		},
	}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			status, d := mirror.Loading, mirror.Pending
			if m := o.source(r); m != nil {
				status, d = m.Evaluate(req.Mode, req.Permissions...)
			}

			switch {
			case d == mirror.Allowed:
				next.ServeHTTP(w, r)
			case d == mirror.Pending && o.loading != nil:
				o.loading.ServeHTTP(w, r)
			case status == mirror.Authenticated:
				redirect(w, r, o.deniedURL)
			default:
				redirect(w, r, o.loginURL)
			}
		})
	}
}

func redirect(w http.ResponseWriter, r *http.Request, location string) {
	_ = handler.Redirect(WithNext(location, r.URL.RequestURI())).Render(w, r)
}

// WithNext appends the next parameter to location.
func WithNext(location, next string) string {
	sep := "?"
	if strings.Contains(location, "?") {
		sep = "&"
	}
	return location + sep + url.Values{NextParam: {next}}.Encode()
}
