// Package storefront parses storefront flags and launches the page service.
package storefront

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/cmd"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront"
)

// Config holds storefront command configuration.
type Config struct {
	HTTPAddr             string        `env:"COFFEESTORE_WEB_HTTP_ADDR" envDefault:"localhost:8096"`
	APIBaseURL           string        `env:"COFFEESTORE_WEB_API_BASE_URL" envDefault:"http://localhost:8095"`
	APITimeout           time.Duration `env:"COFFEESTORE_WEB_API_TIMEOUT" envDefault:"5s"`
	PrerenderDir         string        `env:"COFFEESTORE_WEB_PRERENDER_DIR"`
	CacheRefreshInterval time.Duration `env:"COFFEESTORE_WEB_CACHE_REFRESH_INTERVAL" envDefault:"0"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Coffee store API base URL")
	fs.StringVar(&cfg.PrerenderDir, "prerender-dir", cfg.PrerenderDir, "Directory holding the prerender output")
	fs.DurationVar(&cfg.CacheRefreshInterval, "cache-refresh", cfg.CacheRefreshInterval, "Catalog refresh interval (0 disables)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the storefront.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceStorefront, func(ctx context.Context) error {
		server, err := storefront.NewServer(ctx, storefront.Config{
			HTTPAddr:             cfg.HTTPAddr,
			APIBaseURL:           cfg.APIBaseURL,
			APITimeout:           cfg.APITimeout,
			PrerenderDir:         cfg.PrerenderDir,
			CacheRefreshInterval: cfg.CacheRefreshInterval,
		})
		if err != nil {
			return fmt.Errorf("init storefront: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve storefront: %w", err)
		}
		return nil
	})
}
