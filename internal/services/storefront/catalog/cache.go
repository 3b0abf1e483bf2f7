// Package catalog holds the process-wide ordered collection of coffee store
// records that pages read when no fresher source is available.
package catalog

import (
	"strings"
	"sync"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// Cache is an ordered, id-indexed set of store records. Readers never block
// on a WarmUp in progress beyond the swap itself.
type Cache struct {
	mu      sync.RWMutex
	records []domain.StoreRecord
	index   map[string]int
	version uint64
	changed chan struct{}
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{
		index:   map[string]int{},
		changed: make(chan struct{}),
	}
}

// WarmUp replaces the cache contents with records in order. The first
// record wins when ids repeat; records without an id are skipped.
func (c *Cache) WarmUp(records []domain.StoreRecord) {
	next := make([]domain.StoreRecord, 0, len(records))
	index := make(map[string]int, len(records))
	for _, record := range records {
		record = record.Normalize()
		if record.IsEmpty() {
			continue
		}
		if _, ok := index[record.ID]; ok {
			continue
		}
		index[record.ID] = len(next)
		next = append(next, record)
	}

	c.mu.Lock()
	c.records = next
	c.index = index
	c.version++
	close(c.changed)
	c.changed = make(chan struct{})
	c.mu.Unlock()
}

// Get returns the record for id.
func (c *Cache) Get(id string) (domain.StoreRecord, bool) {
	id = strings.TrimSpace(id)
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.index[id]
	if !ok {
		return domain.StoreRecord{}, false
	}
	return c.records[pos], true
}

// All returns a copy of every record in listing order.
func (c *Cache) All() []domain.StoreRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.StoreRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Version increases by one on every WarmUp.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Changed returns a channel closed by the next WarmUp.
func (c *Cache) Changed() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.changed
}
