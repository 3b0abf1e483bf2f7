package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// StoreCard is one entry of the home listing.
type StoreCard struct {
	ID       string
	Name     string
	ImageURL string
}

// Home renders the banner and the store listing.
func Home(cards []StoreCard, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section class="banner"><h1>`).text(AppName).raw(`</h1><p>`).
			text(localize(loc, "layout.tagline")).raw(`</p></section>`)
		p.raw(`<section class="stores"><h2>`).text(localize(loc, "home.heading")).raw(`</h2>`)
		if len(cards) == 0 {
			p.raw(`<p class="empty">`).text(localize(loc, "home.empty")).raw(`</p></section>`)
			return p.err
		}
		p.raw(`<ul class="store-grid">`)
		for _, card := range cards {
			p.raw(`<li class="card"><a href="`).url(StorePath(card.ID)).raw(`">`)
			p.raw(`<h3>`).text(card.Name).raw(`</h3>`)
			p.raw(`<img width="260" height="160" loading="lazy" src="`).url(ImageSource(card.ImageURL)).raw(`" alt="`).
				attr(localize(loc, "store.image_alt", card.Name)).raw(`">`)
			p.raw(`</a></li>`)
		}
		p.raw(`</ul></section>`)
		return p.err
	})
}
