package httpapi

import "net/http"

const (
	// PathGetStoreByID serves the keyed fetch.
	PathGetStoreByID = "/api/getStoreById"
	// PathCreateStore serves the idempotent create.
	PathCreateStore = "/api/createStore"
	// PathFavouriteStoreByID serves the atomic upvote.
	PathFavouriteStoreByID = "/api/favouriteStoreById"
	// PathStores serves the paged listing.
	PathStores = "/api/stores"
	// PathHealth reports liveness.
	PathHealth = "/healthz"
)

func registerRoutes(mux *http.ServeMux, h handlers) {
	if mux == nil {
		return
	}
	mux.HandleFunc(http.MethodGet+" "+PathGetStoreByID, h.handleGetStoreByID)
	mux.HandleFunc(http.MethodPost+" "+PathCreateStore, h.handleCreateStore)
	mux.HandleFunc(http.MethodPut+" "+PathFavouriteStoreByID, h.handleFavouriteStoreByID)
	mux.HandleFunc(http.MethodGet+" "+PathStores, h.handleListStores)
	mux.HandleFunc(http.MethodGet+" "+PathHealth, h.handleHealth)
}
