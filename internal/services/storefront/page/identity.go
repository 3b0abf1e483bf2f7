package page

import "strings"

// Identity is the resolved store identifier for one page view.
type Identity struct {
	ID    string
	Ready bool
}

// ResolveIdentity derives the identity from the route parameter. The
// identity is not ready while the route renders in fallback or the parameter
// is empty; callers render a loading placeholder and skip everything else.
func ResolveIdentity(param string, fallback bool) Identity {
	id := strings.TrimSpace(param)
	if fallback || id == "" {
		return Identity{ID: id}
	}
	return Identity{ID: id, Ready: true}
}
