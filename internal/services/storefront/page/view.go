package page

import (
	"context"
	"fmt"
	"sync"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// State is the presentation state of a page view.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

// Source names where the current record came from.
type Source string

const (
	SourceNone  Source = "none"
	SourceLive  Source = "live"
	SourceProps Source = "props"
	SourceCache Source = "cache"
)

// View is an immutable snapshot of a page view for rendering.
type View struct {
	State  State
	ID     string
	Record domain.StoreRecord
	Votes  int
	Source Source
	Err    error
}

// PageView holds the reconciled record and vote counter for one page.
type PageView struct {
	session *Session
	props   domain.StoreRecord

	mu         sync.Mutex
	identity   Identity
	generation uint64
	state      State
	source     Source
	record     domain.StoreRecord
	live       domain.StoreRecord
	liveFound  bool
	fetchErr   error
	// persistAttempted keeps ensure-persisted to one call per record per view.
	persistAttempted map[string]bool
	notices          []Notice

	// base is the authoritative counter; the displayed value adds pending.
	base          int
	pending       int
	lastConfirmed int
	confirmed     bool

	// upvoteMu serializes upvote network calls.
	upvoteMu sync.Mutex
}

// Navigate points the view at identity and reconciles from props and the
// cache. Responses still in flight for the previous identity are discarded
// when they arrive.
func (p *PageView) Navigate(ctx context.Context, identity Identity) {
	p.mu.Lock()
	p.identity = identity
	p.generation++
	p.source = SourceNone
	p.record = domain.StoreRecord{}
	p.live = domain.StoreRecord{}
	p.liveFound = false
	p.fetchErr = nil
	p.base = 0
	p.pending = 0
	p.lastConfirmed = 0
	p.confirmed = false
	persist := p.evaluateLocked(false)
	p.mu.Unlock()

	p.persist(ctx, persist)
}

// Mount navigates to identity and runs the live fetch.
func (p *PageView) Mount(ctx context.Context, identity Identity) error {
	p.Navigate(ctx, identity)
	return p.Refresh(ctx)
}

// Refresh runs the live keyed fetch for the current identity. A failed fetch
// moves the view to StateError and is not retried. A response that arrives
// after navigation returns ErrStaleResponse and changes nothing.
func (p *PageView) Refresh(ctx context.Context) error {
	p.mu.Lock()
	if !p.identity.Ready {
		p.mu.Unlock()
		return nil
	}
	id, generation := p.identity.ID, p.generation
	p.mu.Unlock()

	if p.session.api == nil {
		return p.applyFetch(ctx, id, generation, nil, fmt.Errorf("coffee store api is not configured"))
	}
	records, err := p.session.api.GetStoreByID(ctx, id)
	return p.applyFetch(ctx, id, generation, records, err)
}

func (p *PageView) applyFetch(ctx context.Context, id string, generation uint64, records []domain.StoreRecord, err error) error {
	p.mu.Lock()
	if generation != p.generation || id != p.identity.ID {
		p.mu.Unlock()
		return ErrStaleResponse
	}
	if err != nil {
		p.fetchErr = fmt.Errorf("%w: %s: %w", ErrFetchFailed, id, err)
		p.evaluateLocked(false)
		fetchErr := p.fetchErr
		p.mu.Unlock()
		p.session.logger.Printf("fetch coffee store failed id=%s err=%v", id, err)
		return fetchErr
	}
	p.fetchErr = nil
	p.liveFound = false
	if record, ok := firstMatching(records, id); ok {
		p.live = record
		p.liveFound = true
	}
	persist := p.evaluateLocked(p.liveFound)
	p.mu.Unlock()

	p.persist(ctx, persist)
	return nil
}

// CacheChanged re-evaluates the view against the current cache contents.
func (p *PageView) CacheChanged(ctx context.Context) {
	p.mu.Lock()
	persist := p.evaluateLocked(false)
	p.mu.Unlock()
	p.persist(ctx, persist)
}

// Watch re-evaluates on every cache WarmUp until ctx is done.
func (p *PageView) Watch(ctx context.Context) {
	cache := p.session.cache
	for {
		changed := cache.Changed()
		select {
		case <-ctx.Done():
			return
		case <-changed:
			p.CacheChanged(ctx)
		}
	}
}

// Snapshot returns the current view.
func (p *PageView) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	view := View{
		State:  p.state,
		ID:     p.identity.ID,
		Record: p.record,
		Source: p.source,
		Err:    p.fetchErr,
	}
	if p.state == StateReady || p.state == StateEmpty {
		view.Votes = p.base + p.pending
	}
	if view.Votes < 0 {
		view.Votes = 0
	}
	return view
}

// TakeNotice pops the oldest pending notice.
func (p *PageView) TakeNotice() (Notice, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.notices) == 0 {
		return Notice{}, false
	}
	notice := p.notices[0]
	p.notices = p.notices[1:]
	return notice, true
}

// evaluateLocked applies the source priority: live, then props, then cache.
// It returns the record to persist, if any; the caller persists it after
// releasing the lock.
func (p *PageView) evaluateLocked(fromFetch bool) *domain.StoreRecord {
	if !p.identity.Ready {
		p.state, p.source, p.record = StateLoading, SourceNone, domain.StoreRecord{}
		return nil
	}
	if p.fetchErr != nil {
		p.state, p.source, p.record = StateError, SourceNone, domain.StoreRecord{}
		return nil
	}

	var (
		next   domain.StoreRecord
		source = SourceNone
	)
	switch {
	case p.liveFound:
		next, source = p.live, SourceLive
	case !p.props.IsEmpty() && p.props.ID == p.identity.ID:
		next, source = p.props, SourceProps
	default:
		if cached, ok := p.session.cache.Get(p.identity.ID); ok {
			next, source = cached, SourceCache
		}
	}

	if source == SourceNone {
		p.state, p.source, p.record = StateEmpty, SourceNone, domain.StoreRecord{}
		if p.pending == 0 && !p.confirmed {
			p.base = 0
		}
		return nil
	}

	// A read that lags behind a confirmed upvote never lowers the counter.
	if p.confirmed && next.Votes < p.lastConfirmed {
		next.Votes = p.lastConfirmed
	}
	switch {
	case p.pending > 0:
		// Keep the optimistic counter until the upvote confirms.
	case fromFetch:
		p.base = next.Votes
	case source != p.source:
		p.base = next.Votes
	case source == SourceCache && !p.confirmed:
		p.base = next.Votes
	}
	p.state, p.source, p.record = StateReady, source, next

	if source == SourceLive || p.persistAttempted[next.ID] {
		return nil
	}
	p.persistAttempted[next.ID] = true
	record := next
	return &record
}

func (p *PageView) persist(ctx context.Context, record *domain.StoreRecord) {
	if record == nil {
		return
	}
	if err := p.session.EnsurePersisted(ctx, *record); err != nil {
		p.mu.Lock()
		p.notices = append(p.notices, Notice{Key: NoticePersistFailed, Err: err})
		p.mu.Unlock()
	}
}

func firstMatching(records []domain.StoreRecord, id string) (domain.StoreRecord, bool) {
	if len(records) == 0 {
		return domain.StoreRecord{}, false
	}
	if record, ok := domain.FindByID(records, id); ok {
		return record.Normalize(), true
	}
	return records[0].Normalize(), true
}
