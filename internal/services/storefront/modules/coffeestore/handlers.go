package coffeestore

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	apperrors "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/errors"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/htmx"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/i18nhttp"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/route"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/page"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/platform/flash"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/templates"
)

// noticeEvent is the client-side event the layout listens for.
const noticeEvent = "notice"

type handlers struct {
	deps Dependencies
}

type requestLocale struct {
	tag language.Tag
	loc *message.Printer
}

func (h handlers) locale(w http.ResponseWriter, r *http.Request) requestLocale {
	tag, persist := i18nhttp.ResolveTag(r)
	if persist {
		i18nhttp.SetLanguageCookie(w, tag)
	}
	return requestLocale{tag: tag, loc: i18nhttp.Printer(tag)}
}

func (h handlers) layout(r *http.Request, l requestLocale, title string, notice string) templates.LayoutOptions {
	options := i18nhttp.LanguageOptions(r, l.tag)
	links := make([]templates.LanguageLink, 0, len(options))
	for _, option := range options {
		links = append(links, templates.LanguageLink{Label: option.Label, URL: option.URL, Active: option.Active})
	}
	return templates.LayoutOptions{
		Title:     title,
		Lang:      l.tag.String(),
		Loc:       l.loc,
		Languages: links,
		Notice:    notice,
	}
}

func (h handlers) render(w http.ResponseWriter, r *http.Request, status int, opts templates.LayoutOptions, content templ.Component) {
	full := templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		return templates.Layout(opts).Render(templ.WithChildren(ctx, content), out)
	})
	if err := htmx.RenderPage(w, r, status, content, full, templates.ComposePageTitle(opts.Title)); err != nil {
		h.deps.Logger.Printf("render failed path=%s err=%v", r.URL.Path, err)
	}
}

func (h handlers) handleHome(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	records := h.deps.Session.Cache().All()
	cards := make([]templates.StoreCard, 0, len(records))
	for _, record := range records {
		cards = append(cards, templates.StoreCard{ID: record.ID, Name: record.Name, ImageURL: record.ImageURL})
	}
	h.render(w, r, http.StatusOK, h.layout(r, l, "", h.flashText(w, r, l)), templates.Home(cards, l.loc))
}

func (h handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h handlers) handleNotFound(w http.ResponseWriter, r *http.Request) {
	if route.RedirectTrailingSlash(w, r) {
		return
	}
	l := h.locale(w, r)
	text := l.loc.Sprintf("error.not_found")
	h.render(w, r, http.StatusNotFound, h.layout(r, l, text, ""), templates.ErrorPage(text, l.loc))
}

// handleStore renders one store page. Ids outside the prerendered paths get
// the fallback shell on a full load; the shell's htmx request then renders
// the resolved content.
func (h handlers) handleStore(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	id := r.PathValue("id")
	fallback := h.deps.Manifest != nil && !h.deps.Manifest.Has(id) && !httpx.IsHTMXRequest(r)
	identity := page.ResolveIdentity(id, fallback)
	if !identity.Ready {
		h.render(w, r, http.StatusOK, h.layout(r, l, l.loc.Sprintf("store.loading"), ""), templates.FallbackShell(id, l.loc))
		return
	}

	view := h.deps.Session.NewPageView(h.deps.Manifest.PropsFor(identity.ID))
	_ = view.Mount(r.Context(), identity)
	snapshot := view.Snapshot()

	notice := h.flashText(w, r, l)
	if text := h.noticeText(view, l); text != "" {
		if httpx.IsHTMXRequest(r) {
			htmx.Trigger(w, noticeEvent, map[string]string{"message": text})
		} else if notice == "" {
			notice = text
		}
	}

	status := http.StatusOK
	if snapshot.State == page.StateError && !httpx.IsHTMXRequest(r) {
		status = fetchFailureStatus(snapshot.Err)
	}
	storeView := toStoreView(snapshot)
	h.render(w, r, status, h.layout(r, l, storeView.Name, notice), templates.StoreContent(storeView, l.loc))
}

// handleUpvote runs one page view's upvote. htmx requests receive the vote
// panel with the confirmed or rolled-back counter; plain form posts are
// redirected back to the page with a flash notice on failure.
func (h handlers) handleUpvote(w http.ResponseWriter, r *http.Request) {
	l := h.locale(w, r)
	identity := page.ResolveIdentity(r.PathValue("id"), false)
	view := h.deps.Session.NewPageView(h.deps.Manifest.PropsFor(identity.ID))
	if identity.Ready {
		_ = view.Mount(r.Context(), identity)
	}
	_, err := view.Upvote(r.Context())
	if errors.Is(err, page.ErrNotResolved) {
		http.Error(w, "coffee store id is required", http.StatusBadRequest)
		return
	}

	if !httpx.IsHTMXRequest(r) {
		if err != nil {
			flash.Write(w, r, flash.Error(page.NoticeUpvoteFailed))
		}
		httpx.WriteRedirect(w, r, templates.StorePath(identity.ID))
		return
	}

	storeView := toStoreView(view.Snapshot())
	storeView.Notice = h.noticeText(view, l)
	h.render(w, r, http.StatusOK, h.layout(r, l, storeView.Name, ""), templates.VotePanel(storeView, l.loc))
}

// noticeText drains the view's notices and returns the most recent one.
func (h handlers) noticeText(view *page.PageView, l requestLocale) string {
	text := ""
	for {
		notice, ok := view.TakeNotice()
		if !ok {
			return text
		}
		text = l.loc.Sprintf(notice.Key)
	}
}

func (h handlers) flashText(w http.ResponseWriter, r *http.Request, l requestLocale) string {
	notice, ok := flash.ReadAndClear(w, r)
	if !ok {
		return ""
	}
	return l.loc.Sprintf(notice.Key)
}

// fetchFailureStatus answers 503 when the API reported itself unavailable
// and 502 for every other upstream failure.
func fetchFailureStatus(err error) int {
	if apperrors.KindOf(err) == apperrors.KindUnavailable {
		return http.StatusServiceUnavailable
	}
	return http.StatusBadGateway
}

func toStoreView(view page.View) templates.StoreView {
	return templates.StoreView{
		State:         templates.StoreState(view.State),
		ID:            strings.TrimSpace(view.ID),
		Name:          view.Record.Name,
		Address:       view.Record.Address,
		Neighbourhood: view.Record.Neighbourhood,
		ImageURL:      view.Record.ImageURL,
		Votes:         view.Votes,
	}
}
