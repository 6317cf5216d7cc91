package handler

import "net/http"

// redirectResponse handles redirects for both HTMX and regular requests
type redirectResponse struct {
	url  string
	code int
}

// Render performs the redirect. HTMX requests get an HX-Redirect header so
// the browser navigates instead of swapping the redirect target into the page.
func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if IsHTMX(req) && !IsHTMXBoosted(req) {
		w.Header().Set(HXRedirect, r.url)
		w.WriteHeader(http.StatusOK)
		return nil
	}
	http.Redirect(w, req, r.url, r.code)
	return nil
}

// Redirect creates a redirect response with status 303 (See Other).
func Redirect(url string) Response {
	return redirectResponse{url: url, code: http.StatusSeeOther}
}

// RedirectWithCode creates a redirect response with a specific status code.
func RedirectWithCode(url string, code int) Response {
	return redirectResponse{url: url, code: code}
}
