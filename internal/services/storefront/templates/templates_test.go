package templates

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/i18nhttp"
)

type keyLocalizer struct{}

func (keyLocalizer) Sprintf(key message.Reference, args ...any) string {
	if len(args) == 0 {
		return fmt.Sprint(key)
	}
	return fmt.Sprint(key) + ":" + fmt.Sprint(args...)
}

func render(t *testing.T, component templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := component.Render(context.Background(), &b); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return b.String()
}

func TestComposePageTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                          AppName,
		"Blue Bottle":               "Blue Bottle | " + AppName,
		"Blue Bottle | " + AppName:  "Blue Bottle | " + AppName,
		"Blue Bottle - " + AppName:  "Blue Bottle | " + AppName,
	}
	for in, want := range tests {
		if got := ComposePageTitle(in); got != want {
			t.Fatalf("ComposePageTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLayoutWrapsChildrenAndEscapes(t *testing.T) {
	t.Parallel()

	child := templ.Raw("<p>child</p>")
	ctx := templ.WithChildren(context.Background(), child)
	var b strings.Builder
	err := Layout(LayoutOptions{
		Title:  "<Cafe>",
		Lang:   "pt-BR",
		Loc:    keyLocalizer{},
		Notice: "vote failed",
		Languages: []LanguageLink{
			{Label: "English", URL: "/?lang=en-US"},
			{Label: "Português", Active: true},
		},
	}).Render(ctx, &b)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	got := b.String()
	for _, want := range []string{
		`<html lang="pt-BR">`,
		`<title>&lt;Cafe&gt; | ` + AppName + `</title>`,
		`<main id="main"><p>child</p></main>`,
		`<a href="/?lang=en-US">English</a>`,
		`<span aria-current="true">Português</span>`,
		`role="alert">vote failed</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("layout missing %q in %q", want, got)
		}
	}
}

func TestStoreContentReady(t *testing.T) {
	t.Parallel()

	got := render(t, StoreContent(StoreView{
		State:   StoreReady,
		ID:      "s 1",
		Name:    "Blue Bottle",
		Address: "1 Main St",
		Votes:   5,
	}, keyLocalizer{}))
	for _, want := range []string{
		`<h1 class="store-name">Blue Bottle</h1>`,
		`src="` + ImageNotFound + `"`,
		`<dd>1 Main St</dd>`,
		`data-votes="5">store.votes:5</span>`,
		`action="/coffee-store/s%201/upvote"`,
		`hx-target="#vote-panel"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("store content missing %q in %q", want, got)
		}
	}
	if strings.Contains(got, "neighbourhood") {
		t.Fatalf("empty neighbourhood should be omitted: %q", got)
	}
}

func TestStoreContentEmptyShowsZeroVotes(t *testing.T) {
	t.Parallel()

	got := render(t, StoreContent(StoreView{State: StoreEmpty, ID: "x"}, keyLocalizer{}))
	if !strings.Contains(got, "store.not_found") || !strings.Contains(got, `data-votes="0"`) {
		t.Fatalf("empty store content = %q", got)
	}
}

func TestStoreContentErrorAndLoadingSkipRecord(t *testing.T) {
	t.Parallel()

	for state, key := range map[StoreState]string{StoreError: "store.error", StoreLoading: "store.loading"} {
		got := render(t, StoreContent(StoreView{State: state, ID: "x", Name: "Stale"}, keyLocalizer{}))
		if !strings.Contains(got, key) || strings.Contains(got, "Stale") || strings.Contains(got, "vote-panel") {
			t.Fatalf("%s content = %q", state, got)
		}
	}
}

func TestVotePanelNotice(t *testing.T) {
	t.Parallel()

	got := render(t, VotePanel(StoreView{ID: "a", Votes: 5, Notice: "try again"}, keyLocalizer{}))
	if !strings.Contains(got, `role="alert">try again</p>`) {
		t.Fatalf("vote panel = %q", got)
	}
}

func TestFallbackShellLoadsContent(t *testing.T) {
	t.Parallel()

	got := render(t, FallbackShell("abc", keyLocalizer{}))
	if !strings.Contains(got, `hx-get="/coffee-store/abc"`) || !strings.Contains(got, `hx-trigger="load"`) {
		t.Fatalf("fallback shell = %q", got)
	}
	if !strings.Contains(got, `class="loading loading-ring loading-md"`) {
		t.Fatalf("fallback shell missing loading ring: %q", got)
	}
}

func TestHomeListsStores(t *testing.T) {
	t.Parallel()

	got := render(t, Home([]StoreCard{{ID: "a", Name: "Alpha", ImageURL: "https://img.test/a.png"}}, keyLocalizer{}))
	if !strings.Contains(got, `href="/coffee-store/a"`) || !strings.Contains(got, `src="https://img.test/a.png"`) {
		t.Fatalf("home = %q", got)
	}
	if got := render(t, Home(nil, keyLocalizer{})); !strings.Contains(got, "home.empty") {
		t.Fatalf("empty home = %q", got)
	}
}

func TestVotePanelWithMessagePrinter(t *testing.T) {
	t.Parallel()

	loc := i18nhttp.Printer(language.BrazilianPortuguese)
	got := render(t, VotePanel(StoreView{State: StoreReady, ID: "s1", Votes: 1234}, loc))
	if !strings.Contains(got, "Votar!") {
		t.Fatalf("panel = %q, want localized button", got)
	}
	if !strings.Contains(got, ">1.234<") {
		t.Fatalf("panel = %q, want pt-BR grouped votes", got)
	}
}
