package storefront

import (
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(flag.NewFlagSet("storefront", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "localhost:8096" {
		t.Fatalf("HTTPAddr = %q, want %q", cfg.HTTPAddr, "localhost:8096")
	}
	if cfg.APIBaseURL != "http://localhost:8095" {
		t.Fatalf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.APITimeout != 5*time.Second {
		t.Fatalf("APITimeout = %v, want 5s", cfg.APITimeout)
	}
	if cfg.CacheRefreshInterval != 0 {
		t.Fatalf("CacheRefreshInterval = %v, want 0", cfg.CacheRefreshInterval)
	}
}

func TestParseConfigFlagsOverride(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig(flag.NewFlagSet("storefront", flag.ContinueOnError), []string{
		"-http-addr", "127.0.0.1:9001",
		"-api-base-url", "http://api:8095",
		"-prerender-dir", "out",
		"-cache-refresh", "1m",
	})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9001" || cfg.APIBaseURL != "http://api:8095" || cfg.PrerenderDir != "out" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.CacheRefreshInterval != time.Minute {
		t.Fatalf("CacheRefreshInterval = %v, want 1m", cfg.CacheRefreshInterval)
	}
}
