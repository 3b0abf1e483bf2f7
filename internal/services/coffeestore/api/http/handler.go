// Package httpapi serves the coffee store JSON API consumed by the
// storefront: keyed fetch, idempotent create, atomic upvote and listing.
package httpapi

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/cors"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
	apperrors "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/errors"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/observability"
)

// Options configures the API handler.
type Options struct {
	// AllowedOrigins lists browser origins permitted by CORS. Empty disables
	// cross-origin access.
	AllowedOrigins []string
	Logger         *log.Logger
}

// ListStoresResponse is the paged listing payload.
type ListStoresResponse struct {
	Stores        []domain.StoreRecord `json:"stores"`
	NextPageToken string               `json:"nextPageToken"`
}

type favouriteRequest struct {
	ID string `json:"id"`
}

type handlers struct {
	store storage.CoffeeStoreStore
}

// NewHandler builds the API root handler over store.
func NewHandler(store storage.CoffeeStoreStore, opts Options) (http.Handler, error) {
	if store == nil {
		return nil, errors.New("coffee store storage is required")
	}
	mux := http.NewServeMux()
	registerRoutes(mux, handlers{store: store})

	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		corsMiddleware(opts.AllowedOrigins),
		observability.RequestLogger(opts.Logger),
	), nil
}

func corsMiddleware(origins []string) httpx.Middleware {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return nil
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: allowed,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", httpx.RequestIDHeader},
		ExposedHeaders: []string{httpx.RequestIDHeader},
		MaxAge:         300,
	})
}

func (h handlers) handleGetStoreByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeError(w, r, apperrors.E(apperrors.KindInvalidInput, domain.ErrIDRequired.Error()))
		return
	}
	record, err := h.store.GetStore(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = httpx.WriteJSON(w, http.StatusOK, []domain.StoreRecord{})
			return
		}
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, []domain.StoreRecord{record})
}

func (h handlers) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	var payload domain.StoreRecord
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	payload = payload.Normalize()
	result, err := h.store.CreateStore(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	_ = httpx.WriteJSON(w, status, result.Store)
}

func (h handlers) handleFavouriteStoreByID(w http.ResponseWriter, r *http.Request) {
	var payload favouriteRequest
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}
	id := strings.TrimSpace(payload.ID)
	if id == "" {
		writeError(w, r, apperrors.E(apperrors.KindInvalidInput, domain.ErrIDRequired.Error()))
		return
	}
	record, err := h.store.FavouriteStore(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, []domain.StoreRecord{record})
}

func (h handlers) handleListStores(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	pageSize := 0
	if raw := strings.TrimSpace(query.Get("pageSize")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, r, apperrors.E(apperrors.KindInvalidInput, "pageSize must be a non-negative integer"))
			return
		}
		pageSize = parsed
	}
	page, err := h.store.ListStores(r.Context(), pageSize, strings.TrimSpace(query.Get("pageToken")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	stores := page.Stores
	if stores == nil {
		stores = []domain.StoreRecord{}
	}
	_ = httpx.WriteJSON(w, http.StatusOK, ListStoresResponse{Stores: stores, NextPageToken: page.NextPageToken})
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps storage and domain failures onto the JSON error payload.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = classify(err)
	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		log.Printf("coffee store api error path=%s request_id=%s err=%v", r.URL.Path, r.Header.Get(httpx.RequestIDHeader), err)
		message = http.StatusText(status)
	}
	_ = httpx.WriteJSONError(w, status, message)
}

func classify(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return apperrors.E(apperrors.KindNotFound, "coffee store not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return apperrors.E(apperrors.KindConflict, "coffee store already exists")
	case errors.Is(err, domain.ErrIDRequired), errors.Is(err, domain.ErrNameRequired):
		return apperrors.E(apperrors.KindInvalidInput, err.Error())
	default:
		return err
	}
}
