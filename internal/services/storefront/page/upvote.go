package page

import (
	"context"
	"fmt"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// Upvote increments the displayed counter immediately, then asks the server
// to increment. On success the counter is set from the server-confirmed
// value plus any upvotes still in flight. On failure the optimistic
// increment is rolled back and a NoticeUpvoteFailed notice is queued. The
// returned value is the counter displayed after the call.
func (p *PageView) Upvote(ctx context.Context) (int, error) {
	p.mu.Lock()
	if !p.identity.Ready {
		p.mu.Unlock()
		return 0, ErrNotResolved
	}
	id, generation := p.identity.ID, p.generation
	p.pending++
	p.mu.Unlock()

	p.upvoteMu.Lock()
	records, err := p.favourite(ctx, id)
	p.upvoteMu.Unlock()

	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation || id != p.identity.ID {
		return 0, ErrStaleResponse
	}
	p.pending--

	confirmed, ok := firstMatching(records, id)
	if err == nil && !ok {
		err = ErrNotConfirmed
	}
	if err != nil {
		wrapped := fmt.Errorf("%w: upvote %s: %w", ErrMutationFailed, id, err)
		p.notices = append(p.notices, Notice{Key: NoticeUpvoteFailed, Err: wrapped})
		p.session.logger.Printf("upvote failed id=%s err=%v", id, err)
		return p.base + p.pending, wrapped
	}

	value := confirmed.Votes
	if p.confirmed && p.lastConfirmed > value {
		value = p.lastConfirmed
	}
	p.lastConfirmed = value
	p.confirmed = true
	p.base = value
	if p.state == StateReady {
		p.record.Votes = value
	}
	return p.base + p.pending, nil
}

func (p *PageView) favourite(ctx context.Context, id string) ([]domain.StoreRecord, error) {
	if p.session.api == nil {
		return nil, fmt.Errorf("coffee store api is not configured")
	}
	return p.session.api.FavouriteStore(ctx, id)
}
