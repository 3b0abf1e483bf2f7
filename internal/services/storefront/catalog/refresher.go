package catalog

import (
	"context"
	"log"
	"time"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// Source lists every store record.
type Source interface {
	ListAllStores(ctx context.Context) ([]domain.StoreRecord, error)
}

// Load warms cache from source once.
func Load(ctx context.Context, cache *Cache, source Source) error {
	records, err := source.ListAllStores(ctx)
	if err != nil {
		return err
	}
	cache.WarmUp(records)
	return nil
}

// Refresher re-populates a cache from its source on an interval.
type Refresher struct {
	Cache    *Cache
	Source   Source
	Interval time.Duration
	Logger   *log.Logger
}

// Run refreshes until ctx is done. A non-positive interval returns
// immediately. Failed refreshes keep the previous contents.
func (r Refresher) Run(ctx context.Context) {
	if r.Interval <= 0 || r.Cache == nil || r.Source == nil {
		return
	}
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := Load(ctx, r.Cache, r.Source); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Printf("catalog refresh failed err=%v", err)
				continue
			}
			logger.Printf("catalog refreshed stores=%d version=%d", r.Cache.Len(), r.Cache.Version())
		}
	}
}
