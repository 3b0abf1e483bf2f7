// Package templates holds the storefront page components.
package templates

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/message"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/branding"
)

// AppName is the brand suffix appended to page titles.
const AppName = branding.AppName

// ImageNotFound is served when a store has no image.
const ImageNotFound = "/static/images/image-not-found.png"

// Localizer resolves catalog keys.
type Localizer interface {
	Sprintf(key message.Reference, args ...any) string
}

var _ Localizer = (*message.Printer)(nil)

// LanguageLink is one entry in the language switcher.
type LanguageLink struct {
	Label  string
	URL    string
	Active bool
}

// LayoutOptions configures the document shell.
type LayoutOptions struct {
	Title     string
	Lang      string
	Loc       Localizer
	Languages []LanguageLink
	// Notice is already-localized text shown once above the content.
	Notice string
}

// ComposePageTitle appends the brand name unless title already carries it.
func ComposePageTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" || title == AppName {
		return AppName
	}
	if strings.HasSuffix(title, " | "+AppName) {
		return title
	}
	if trimmed, ok := strings.CutSuffix(title, " - "+AppName); ok {
		title = strings.TrimSpace(trimmed)
	}
	return title + " | " + AppName
}

// Layout renders the full document around the children in ctx.
func Layout(opts LayoutOptions) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		lang := strings.TrimSpace(opts.Lang)
		if lang == "" {
			lang = "en-US"
		}
		p := newPrinter(w)
		p.raw(`<!DOCTYPE html><html lang="`).text(lang).raw(`"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`).text(ComposePageTitle(opts.Title)).raw(`</title>`)
		p.raw(`<link rel="stylesheet" href="/static/css/app.css">`)
		p.raw(`<script src="https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js" defer></script>`)
		p.raw(`</head><body><header class="site-header">`)
		p.raw(`<a class="brand" href="/">`).text(AppName).raw(`</a>`)
		if len(opts.Languages) > 0 {
			p.raw(`<nav class="languages" aria-label="`).text(localize(opts.Loc, "layout.language")).raw(`">`)
			for _, link := range opts.Languages {
				if link.Active {
					p.raw(`<span aria-current="true">`).text(link.Label).raw(`</span>`)
					continue
				}
				p.raw(`<a href="`).attr(link.URL).raw(`">`).text(link.Label).raw(`</a>`)
			}
			p.raw(`</nav>`)
		}
		p.raw(`</header><div id="notices" aria-live="polite">`)
		if notice := strings.TrimSpace(opts.Notice); notice != "" {
			p.raw(`<p class="notice notice-error" role="alert">`).text(notice).raw(`</p>`)
		}
		p.raw(`</div><main id="main">`)
		if p.err != nil {
			return p.err
		}
		if err := templ.GetChildren(ctx).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</main>`)
		p.raw(`<script>document.body.addEventListener("notice",function(e){var n=document.getElementById("notices");var el=document.createElement("p");el.className="notice notice-error";el.setAttribute("role","alert");el.textContent=e.detail.message;n.replaceChildren(el);});</script>`)
		p.raw(`</body></html>`)
		return p.err
	})
}

// Loading renders the bare loading ring.
func Loading() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<span class="loading loading-ring loading-md" aria-hidden="true"></span>`)
		return err
	})
}

// ErrorPage renders a status message with a link home.
func ErrorPage(text string, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section class="error-page"><p>`).text(text).raw(`</p>`)
		p.raw(`<a href="/">`).text(localize(loc, "store.back_home")).raw(`</a></section>`)
		return p.err
	})
}

func localize(loc Localizer, key string, args ...any) string {
	if loc == nil {
		return key
	}
	return loc.Sprintf(key, args...)
}

// printer writes escaped HTML and keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer {
	return &printer{w: w}
}

func (p *printer) raw(s string) *printer {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
	return p
}

func (p *printer) text(s string) *printer {
	return p.raw(templ.EscapeString(s))
}

func (p *printer) attr(s string) *printer {
	return p.raw(templ.EscapeString(s))
}

func (p *printer) url(s string) *printer {
	return p.attr(string(templ.URL(s)))
}
