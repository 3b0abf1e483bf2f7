// Package page reconciles the coffee store shown on a page across build-time
// props, the catalog cache and the live keyed fetch, and applies upvotes
// optimistically against the server-confirmed counter.
package page

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/catalog"
)

// API is the subset of the coffee store API a page view calls.
type API interface {
	GetStoreByID(ctx context.Context, id string) ([]domain.StoreRecord, error)
	CreateStore(ctx context.Context, record domain.StoreRecord) (domain.StoreRecord, bool, error)
	FavouriteStore(ctx context.Context, id string) ([]domain.StoreRecord, error)
}

// Session owns state shared by every page view: the catalog cache, the API
// and the set of identifiers already persisted through the create endpoint.
type Session struct {
	cache  *catalog.Cache
	api    API
	logger *log.Logger

	mu        sync.RWMutex
	persisted map[string]struct{}
	inflight  singleflight.Group
}

// NewSession builds a session. A nil cache is replaced by an empty one and a
// nil logger by log.Default().
func NewSession(cache *catalog.Cache, api API, logger *log.Logger) *Session {
	if cache == nil {
		cache = catalog.New()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Session{
		cache:     cache,
		api:       api,
		logger:    logger,
		persisted: map[string]struct{}{},
	}
}

// Cache returns the catalog cache the session reads.
func (s *Session) Cache() *catalog.Cache {
	return s.cache
}

// IsPersisted reports whether a create for id has succeeded in this session.
func (s *Session) IsPersisted(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.persisted[strings.TrimSpace(id)]
	return ok
}

// EnsurePersisted invokes the create-if-absent endpoint for record unless
// this session already persisted it. Concurrent calls for one id share a
// single request. An id is remembered only after a successful create, so a
// failure is retried by a later call.
func (s *Session) EnsurePersisted(ctx context.Context, record domain.StoreRecord) error {
	record = record.Normalize()
	if record.IsEmpty() {
		return ErrNotResolved
	}
	if s.IsPersisted(record.ID) {
		return nil
	}
	if s.api == nil {
		return fmt.Errorf("%w: coffee store api is not configured", ErrMutationFailed)
	}

	_, err, _ := s.inflight.Do(record.ID, func() (any, error) {
		if s.IsPersisted(record.ID) {
			return nil, nil
		}
		body := domain.StoreRecord{
			ID:            record.ID,
			Name:          record.Name,
			Address:       record.Address,
			Neighbourhood: record.Neighbourhood,
			ImageURL:      record.ImageURL,
			Votes:         0,
		}
		if _, _, err := s.api.CreateStore(ctx, body); err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.persisted[record.ID] = struct{}{}
		s.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		s.logger.Printf("ensure persisted failed id=%s err=%v", record.ID, err)
		return fmt.Errorf("%w: create %s: %w", ErrMutationFailed, record.ID, err)
	}
	return nil
}

// NewPageView starts a page view with build-time props, which may be empty.
func (s *Session) NewPageView(props domain.StoreRecord) *PageView {
	return &PageView{
		session:          s,
		props:            props.Normalize(),
		persistAttempted: map[string]bool{},
		state:            StateLoading,
		source:           SourceNone,
	}
}
