// Package coffeestore serves the home listing, the per-store pages and the
// upvote form.
package coffeestore

import (
	"errors"
	"log"
	"net/http"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/page"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/prerender"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/routepath"
)

// Dependencies are the inputs the module's handlers read.
type Dependencies struct {
	Session *page.Session
	// Manifest lists the prerendered paths and their props. Nil means no
	// build output was loaded; every id then renders directly.
	Manifest *prerender.Manifest
	Logger   *log.Logger
}

// Mount is the module's mounted surface.
type Mount struct {
	Prefix  string
	Handler http.Handler
}

// Module provides the coffee store routes.
type Module struct {
	deps Dependencies
}

// New returns the coffee store module.
func New(deps Dependencies) Module {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	return Module{deps: deps}
}

// ID returns a stable module identifier.
func (Module) ID() string { return "coffeestore" }

// Mount wires module routes.
func (m Module) Mount() (Mount, error) {
	if m.deps.Session == nil {
		return Mount{}, errors.New("page session is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{deps: m.deps})
	return Mount{Prefix: routepath.Root, Handler: mux}, nil
}
