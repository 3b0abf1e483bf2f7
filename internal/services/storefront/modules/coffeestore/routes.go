package coffeestore

import (
	"net/http"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/routepath"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	mux.HandleFunc(http.MethodGet+" "+routepath.Store, h.handleStore)

	mux.HandleFunc(http.MethodPost+" "+routepath.StoreUpvote, h.handleUpvote)
	mux.HandleFunc(http.MethodGet+" "+routepath.StoreUpvote, httpx.MethodNotAllowed(http.MethodPost))

	mux.HandleFunc(http.MethodGet+" /{rest...}", h.handleNotFound)
}
