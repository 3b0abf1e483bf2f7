package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/lib/pq"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/id"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
)

func TestOpenRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty dsn error")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Fatal("expected 23505 to be a unique violation")
	}
	if !IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})) {
		t.Fatal("expected wrapped 23505 to be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation should not match")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Fatal("plain error should not match")
	}
}

func TestNilStoreIsNotConfigured(t *testing.T) {
	t.Parallel()

	var store *Store
	if _, err := store.GetStore(context.Background(), "s1"); err == nil {
		t.Fatal("expected not configured error")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close nil store: %v", err)
	}
}

func TestPostgresStoreRoundTrip(t *testing.T) {
	dsn := strings.TrimSpace(os.Getenv("COFFEESTORE_TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("COFFEESTORE_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := Open(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	storeID := "test-" + id.MustNewID()
	created, err := store.CreateStore(ctx, domain.StoreRecord{ID: storeID, Name: "Roastery", Votes: 2})
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	if !created.Created {
		t.Fatal("expected created")
	}

	again, err := store.CreateStore(ctx, domain.StoreRecord{ID: storeID, Name: "Other"})
	if err != nil {
		t.Fatalf("duplicate create: %v", err)
	}
	if again.Created || again.Store.Name != "Roastery" {
		t.Fatalf("duplicate create = %+v, want existing record", again)
	}

	updated, err := store.FavouriteStore(ctx, storeID)
	if err != nil {
		t.Fatalf("favourite store: %v", err)
	}
	if updated.Votes != 3 {
		t.Fatalf("votes = %d, want 3", updated.Votes)
	}

	if _, err := store.FavouriteStore(ctx, storeID+"-missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing favourite error = %v, want %v", err, storage.ErrNotFound)
	}
}
