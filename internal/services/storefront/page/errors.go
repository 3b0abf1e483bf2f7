package page

import "errors"

var (
	// ErrNotResolved is returned by operations that need a ready identity.
	ErrNotResolved = errors.New("store identifier is not resolved")
	// ErrStaleResponse marks a response issued for an identity the view has
	// since navigated away from. The response was discarded.
	ErrStaleResponse = errors.New("stale response discarded")
	// ErrNotConfirmed marks an upvote response that confirmed no record.
	ErrNotConfirmed = errors.New("upvote not confirmed")
	// ErrFetchFailed wraps live keyed fetch failures.
	ErrFetchFailed = errors.New("fetch coffee store failed")
	// ErrMutationFailed wraps create and upvote failures.
	ErrMutationFailed = errors.New("coffee store mutation failed")
)

// Notice keys surfaced to the presentation layer as transient messages.
const (
	NoticeUpvoteFailed  = "store.notice.upvote_failed"
	NoticePersistFailed = "store.notice.persist_failed"
)

// Notice is a transient, non-fatal message for the current view.
type Notice struct {
	Key string
	Err error
}
