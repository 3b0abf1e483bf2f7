package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(flag.NewFlagSet("seed", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.APIBaseURL != "http://localhost:8095" || cfg.List || cfg.Verbose {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseConfigFlags(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(flag.NewFlagSet("seed", flag.ContinueOnError), []string{"-list", "-v", "-file", "x.json"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if !cfg.List || !cfg.Verbose || cfg.File != "x.json" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestRunListPrintsFixture(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	if err := Run(context.Background(), Config{List: true}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "Fixture stores:") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunCreatesFixtureStores(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		created []string
	)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var record domain.StoreRecord
		_ = json.NewDecoder(r.Body).Decode(&record)
		mu.Lock()
		created = append(created, record.ID)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(record)
	}))
	defer api.Close()

	var out bytes.Buffer
	if err := Run(context.Background(), Config{APIBaseURL: api.URL, APITimeout: time.Second}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(created) == 0 {
		t.Fatal("expected create calls")
	}
	if !strings.Contains(out.String(), "already present") {
		t.Fatalf("output = %q", out.String())
	}
}
