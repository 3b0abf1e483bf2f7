// Package route holds small request-path helpers shared by HTTP modules.
package route

import (
	"net/http"
	"strings"
)

// RedirectTrailingSlash strips trailing "/" characters from the request path
// and redirects to the canonical form, keeping the query string.
//
// It returns true when a redirect was written.
func RedirectTrailingSlash(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}

	canonical := strings.TrimRight(r.URL.Path, "/")
	if canonical == "" {
		canonical = "/"
	}
	if canonical == r.URL.Path {
		return false
	}
	if r.URL.RawQuery != "" {
		canonical += "?" + r.URL.RawQuery
	}

	http.Redirect(w, r, canonical, http.StatusMovedPermanently)
	return true
}
