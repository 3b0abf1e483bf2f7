package templates

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"
)

// StoreState mirrors the page view states the store page can render.
type StoreState string

const (
	StoreLoading StoreState = "loading"
	StoreError   StoreState = "error"
	StoreEmpty   StoreState = "empty"
	StoreReady   StoreState = "ready"
)

// StoreView is the presentation input for one store page.
type StoreView struct {
	State         StoreState
	ID            string
	Name          string
	Address       string
	Neighbourhood string
	ImageURL      string
	Votes         int
	// Notice is already-localized text shown next to the counter.
	Notice string
}

// StorePath returns the page path for id.
func StorePath(id string) string {
	return "/coffee-store/" + url.PathEscape(strings.TrimSpace(id))
}

// UpvotePath returns the upvote form action for id.
func UpvotePath(id string) string {
	return StorePath(id) + "/upvote"
}

// ImageSource returns the store image or the not-found placeholder.
func ImageSource(imageURL string) string {
	if imageURL = strings.TrimSpace(imageURL); imageURL != "" {
		return imageURL
	}
	return ImageNotFound
}

// StoreContent renders the store body for every state.
func StoreContent(view StoreView, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<article class="store" id="store-content">`)
		p.raw(`<a class="back" href="/">`).text(localize(loc, "store.back_home")).raw(`</a>`)
		switch view.State {
		case StoreLoading:
			p.raw(`<p class="loading-text">`).text(localize(loc, "store.loading")).raw(`</p>`)
			p.raw(`</article>`)
			return p.err
		case StoreError:
			p.raw(`<p class="notice notice-error" role="alert">`).text(localize(loc, "store.error")).raw(`</p>`)
			p.raw(`</article>`)
			return p.err
		case StoreEmpty:
			p.raw(`<p class="empty">`).text(localize(loc, "store.not_found")).raw(`</p>`)
		}

		p.raw(`<h1 class="store-name">`).text(view.Name).raw(`</h1>`)
		p.raw(`<img class="store-image" width="600" height="360" src="`).url(ImageSource(view.ImageURL)).raw(`" alt="`).
			attr(localize(loc, "store.image_alt", view.Name)).raw(`">`)
		p.raw(`<dl class="store-details">`)
		if address := strings.TrimSpace(view.Address); address != "" {
			p.raw(`<div class="address"><dt>📍</dt><dd>`).text(address).raw(`</dd></div>`)
		}
		if neighbourhood := strings.TrimSpace(view.Neighbourhood); neighbourhood != "" {
			p.raw(`<div class="neighbourhood"><dt>🧭</dt><dd>`).text(neighbourhood).raw(`</dd></div>`)
		}
		p.raw(`</dl>`)
		if p.err != nil {
			return p.err
		}
		if err := VotePanel(view, loc).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</article>`)
		return p.err
	})
}

// VotePanel renders the counter and the upvote form. htmx swaps the whole
// panel with the server response; the displayed number is bumped on submit.
func VotePanel(view StoreView, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		action := UpvotePath(view.ID)
		p.raw(`<section class="vote-panel" id="vote-panel">`)
		p.raw(`<p class="votes">⭐ <span data-votes="`).attr(fmt.Sprint(view.Votes)).raw(`">`).
			text(localize(loc, "store.votes", view.Votes)).raw(`</span></p>`)
		p.raw(`<form method="post" action="`).url(action).raw(`" hx-post="`).url(action).
			raw(`" hx-target="#vote-panel" hx-swap="outerHTML" hx-on::before-request="var s=this.parentElement.querySelector('[data-votes]');var n=parseInt(s.dataset.votes,10)+1;s.dataset.votes=n;s.textContent=n">`)
		p.raw(`<button type="submit" class="upvote">`).text(localize(loc, "store.upvote")).raw(`</button></form>`)
		if notice := strings.TrimSpace(view.Notice); notice != "" {
			p.raw(`<p class="notice notice-error" role="alert">`).text(notice).raw(`</p>`)
		}
		p.raw(`</section>`)
		return p.err
	})
}

// FallbackShell renders the loading placeholder that fetches the resolved
// store content once the page loads.
func FallbackShell(id string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<div class="fallback" hx-get="`).url(StorePath(id)).raw(`" hx-trigger="load" hx-target="this" hx-swap="outerHTML">`)
		if p.err != nil {
			return p.err
		}
		if err := Loading().Render(ctx, w); err != nil {
			return err
		}
		p.raw(`<p>`).text(localize(loc, "store.loading")).raw(`</p></div>`)
		return p.err
	})
}
