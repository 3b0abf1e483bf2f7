package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	apperrors "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestNewValidatesBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := New(""); err == nil {
		t.Fatal("expected empty base url error")
	}
	if _, err := New("ftp://example.com"); err == nil {
		t.Fatal("expected scheme error")
	}
	if _, err := New("http://localhost:8095/"); err != nil {
		t.Fatalf("New() error = %v", err)
	}
}

func TestGetStoreByIDSendsQueryAndDecodesArray(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != pathGetStoreByID {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if got := r.URL.Query().Get("id"); got != "s 1" {
			t.Errorf("id = %q, want %q", got, "s 1")
		}
		_ = json.NewEncoder(w).Encode([]domain.StoreRecord{{ID: "s 1", Name: "Cafe", Votes: 3}})
	})

	records, err := c.GetStoreByID(context.Background(), "s 1")
	if err != nil {
		t.Fatalf("GetStoreByID() error = %v", err)
	}
	if len(records) != 1 || records[0].Votes != 3 {
		t.Fatalf("records = %+v", records)
	}
}

func TestCreateStoreReportsCreated(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body domain.StoreRecord
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type = %q", r.Header.Get("Content-Type"))
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)
	})

	stored, created, err := c.CreateStore(context.Background(), domain.StoreRecord{ID: "s1", Name: "Cafe"})
	if err != nil {
		t.Fatalf("CreateStore() error = %v", err)
	}
	if !created || stored.ID != "s1" {
		t.Fatalf("CreateStore() = %+v, %t", stored, created)
	}
}

func TestFavouriteStoreMapsErrorPayload(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"id":"missing"}` {
			t.Errorf("body = %q", raw)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"coffee store not found"}`))
	})

	_, err := c.FavouriteStore(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *Error", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "coffee store not found" {
		t.Fatalf("api error = %+v", apiErr)
	}
	if !IsNotFound(err) {
		t.Fatal("IsNotFound() = false, want true")
	}
	if got := apperrors.HTTPStatus(err); got != http.StatusNotFound {
		t.Fatalf("HTTPStatus(err) = %d, want %d", got, http.StatusNotFound)
	}
}

func TestDecodeFailureIsReported(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	})
	if _, err := c.GetStoreByID(context.Background(), "s1"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestListAllStoresWalksPages(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageToken") {
		case "":
			_ = json.NewEncoder(w).Encode(Page{Stores: []domain.StoreRecord{{ID: "a"}, {ID: "b"}}, NextPageToken: "b"})
		case "b":
			_ = json.NewEncoder(w).Encode(Page{Stores: []domain.StoreRecord{{ID: "c"}}})
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	})

	stores, err := c.ListAllStores(context.Background())
	if err != nil {
		t.Fatalf("ListAllStores() error = %v", err)
	}
	if len(stores) != 3 || stores[2].ID != "c" {
		t.Fatalf("stores = %+v", stores)
	}
}

func TestListAllStoresRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(Page{Stores: []domain.StoreRecord{{ID: "a"}}})
	})

	stores, err := c.ListAllStores(context.Background())
	if err != nil {
		t.Fatalf("ListAllStores() error = %v", err)
	}
	if len(stores) != 1 || calls.Load() != 2 {
		t.Fatalf("stores = %+v calls = %d", stores, calls.Load())
	}
}

func TestListAllStoresDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	})

	if _, err := c.ListAllStores(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestNilClientIsNotConfigured(t *testing.T) {
	t.Parallel()

	var c *Client
	if _, err := c.GetStoreByID(context.Background(), "s1"); err == nil {
		t.Fatal("expected not configured error")
	}
}
