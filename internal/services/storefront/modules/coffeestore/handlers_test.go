package coffeestore

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/catalog"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/client"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/page"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/platform/flash"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/prerender"
)

type fakeAPI struct {
	mu           sync.Mutex
	stores       map[string]domain.StoreRecord
	fetchErr     error
	favouriteErr error
	creates      int
}

func (f *fakeAPI) GetStoreByID(_ context.Context, id string) ([]domain.StoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if record, ok := f.stores[id]; ok {
		return []domain.StoreRecord{record}, nil
	}
	return []domain.StoreRecord{}, nil
}

func (f *fakeAPI) CreateStore(_ context.Context, record domain.StoreRecord) (domain.StoreRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if existing, ok := f.stores[record.ID]; ok {
		return existing, false, nil
	}
	f.stores[record.ID] = record
	return record, true, nil
}

func (f *fakeAPI) FavouriteStore(_ context.Context, id string) ([]domain.StoreRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.favouriteErr != nil {
		return nil, f.favouriteErr
	}
	record, ok := f.stores[id]
	if !ok {
		return nil, errors.New("not found")
	}
	record.Votes++
	f.stores[id] = record
	return []domain.StoreRecord{record}, nil
}

type fixture struct {
	api     *fakeAPI
	cache   *catalog.Cache
	handler http.Handler
}

func newFixture(t *testing.T, manifest *prerender.Manifest) fixture {
	t.Helper()
	api := &fakeAPI{stores: map[string]domain.StoreRecord{}}
	cache := catalog.New()
	logger := log.New(&bytes.Buffer{}, "", 0)
	mount, err := New(Dependencies{
		Session:  page.NewSession(cache, api, logger),
		Manifest: manifest,
		Logger:   logger,
	}).Mount()
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return fixture{api: api, cache: cache, handler: mount.Handler}
}

func (f fixture) do(method, target string, htmxRequest bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if htmxRequest {
		req.Header.Set("HX-Request", "true")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func manifestWith(records ...domain.StoreRecord) *prerender.Manifest {
	props := map[string]domain.StoreRecord{}
	for _, record := range records {
		props[record.ID] = record
	}
	return &prerender.Manifest{Paths: prerender.StaticPaths(records), Props: props}
}

func TestMountRequiresSession(t *testing.T) {
	t.Parallel()

	if _, err := New(Dependencies{}).Mount(); err == nil {
		t.Fatal("expected session error")
	}
	if got := New(Dependencies{}).ID(); got != "coffeestore" {
		t.Fatalf("ID() = %q", got)
	}
}

func TestHomeListsCachedStores(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.cache.WarmUp([]domain.StoreRecord{{ID: "a", Name: "Alpha"}, {ID: "b", Name: "Beta"}})
	rec := f.do(http.MethodGet, "/", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `href="/coffee-store/a"`) || !strings.Contains(body, "Beta") {
		t.Fatalf("home body = %q", body)
	}
}

func TestStorePageRendersPropsAndPersistsThem(t *testing.T) {
	t.Parallel()

	props := domain.StoreRecord{ID: "a", Name: "Alpha", Address: "1 Main St", Votes: 4}
	f := newFixture(t, manifestWith(props))
	rec := f.do(http.MethodGet, "/coffee-store/a", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	// The live fetch after the create returns the stored record, which
	// starts from zero votes.
	for _, want := range []string{"<title>Alpha | Coffee Connoisseur</title>", "1 Main St", `data-votes="0"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q: %q", want, body)
		}
	}
	if f.api.creates != 1 {
		t.Fatalf("creates = %d, want 1", f.api.creates)
	}
}

func TestStorePageLiveRecordWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 1}))
	f.api.stores["a"] = domain.StoreRecord{ID: "a", Name: "Alpha Live", Votes: 9}
	body := f.do(http.MethodGet, "/coffee-store/a", false).Body.String()
	if !strings.Contains(body, "Alpha Live") || !strings.Contains(body, `data-votes="9"`) {
		t.Fatalf("body = %q", body)
	}
}

func TestUnlistedStoreServesFallbackShellThenContent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha"}))
	f.cache.WarmUp([]domain.StoreRecord{{ID: "late", Name: "Late Cafe", Votes: 2}})

	shell := f.do(http.MethodGet, "/coffee-store/late", false).Body.String()
	if !strings.Contains(shell, `hx-get="/coffee-store/late"`) || strings.Contains(shell, "Late Cafe") {
		t.Fatalf("shell = %q", shell)
	}
	if f.api.creates != 0 {
		t.Fatalf("fallback render persisted: creates = %d", f.api.creates)
	}

	content := f.do(http.MethodGet, "/coffee-store/late", true)
	if !strings.Contains(content.Body.String(), "Late Cafe") || strings.Contains(content.Body.String(), "<html") {
		t.Fatalf("htmx content = %q", content.Body.String())
	}
}

func TestUnknownStoreRendersEmptyState(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/coffee-store/ghost", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "We could not find this coffee store.") || !strings.Contains(body, `data-votes="0"`) {
		t.Fatalf("body = %q", body)
	}
}

func TestFetchFailureRendersErrorState(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha"}))
	f.api.fetchErr = errors.New("connection refused")
	rec := f.do(http.MethodGet, "/coffee-store/a", false)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Something went wrong loading this coffee store.") || strings.Contains(body, "vote-panel") {
		t.Fatalf("body = %q", body)
	}
}

func TestFetchFailureFromUnavailableAPIIs503(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha"}))
	f.api.fetchErr = &client.Error{StatusCode: http.StatusServiceUnavailable, Message: "database unavailable"}
	rec := f.do(http.MethodGet, "/coffee-store/a", false)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestUpvoteHTMXReturnsConfirmedPanel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 5}))
	f.api.stores["a"] = domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 5}
	rec := f.do(http.MethodPost, "/coffee-store/a/upvote", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `id="vote-panel"`) || !strings.Contains(body, `data-votes="6"`) {
		t.Fatalf("panel = %q", body)
	}
	if strings.Contains(body, "<html") {
		t.Fatalf("htmx upvote returned a full page: %q", body)
	}
}

func TestUpvoteHTMXFailureRollsBackWithNotice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, manifestWith(domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 5}))
	f.api.stores["a"] = domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 5}
	f.api.favouriteErr = errors.New("boom")
	body := f.do(http.MethodPost, "/coffee-store/a/upvote", true).Body.String()
	if !strings.Contains(body, `data-votes="5"`) || !strings.Contains(body, "Your vote could not be saved.") {
		t.Fatalf("panel = %q", body)
	}
}

func TestUpvoteFormPostRedirectsWithFlash(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.api.stores["a"] = domain.StoreRecord{ID: "a", Name: "Alpha", Votes: 5}
	f.api.favouriteErr = errors.New("boom")
	rec := f.do(http.MethodPost, "/coffee-store/a/upvote", false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/coffee-store/a" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	var flashCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName {
			flashCookie = c
		}
	}
	if flashCookie == nil {
		t.Fatal("expected flash cookie")
	}

	next := f.do(http.MethodGet, "/coffee-store/a", false, flashCookie)
	if !strings.Contains(next.Body.String(), "Your vote could not be saved.") {
		t.Fatalf("page after redirect = %q", next.Body.String())
	}
}

func TestUpvoteRequiresPost(t *testing.T) {
	t.Parallel()

	rec := newFixture(t, nil).do(http.MethodGet, "/coffee-store/a/upvote", false)
	if rec.Code != http.StatusMethodNotAllowed || rec.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("status = %d allow = %q", rec.Code, rec.Header().Get("Allow"))
	}
}

func TestUpvoteBlankIDIsBadRequest(t *testing.T) {
	t.Parallel()

	rec := newFixture(t, nil).do(http.MethodPost, "/coffee-store/%20/upvote", true)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLanguageQuerySetsCookieAndLocalizes(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/coffee-store/ghost?lang=pt-BR", false)
	if !strings.Contains(rec.Body.String(), "Não encontramos esta cafeteria.") {
		t.Fatalf("body = %q", rec.Body.String())
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "cs_lang" && c.Value == "pt-BR" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected language cookie")
	}
}

func TestHealthAndNotFound(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	if rec := f.do(http.MethodGet, "/healthz", false); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("health = %d %q", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/nope", false); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestTrailingSlashRedirectsToCanonicalPath(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	rec := f.do(http.MethodGet, "/coffee-store/s1/", false)
	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMovedPermanently)
	}
	if got := rec.Header().Get("Location"); got != "/coffee-store/s1" {
		t.Fatalf("Location = %q, want %q", got, "/coffee-store/s1")
	}
}
