// Package prerender parses build flags and writes the static store pages.
package prerender

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	entrypoint "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/cmd"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/client"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/prerender"
)

// Config holds prerender command configuration.
type Config struct {
	OutDir     string        `env:"COFFEESTORE_PRERENDER_OUT_DIR" envDefault:"out"`
	APIBaseURL string        `env:"COFFEESTORE_WEB_API_BASE_URL" envDefault:"http://localhost:8095"`
	APITimeout time.Duration `env:"COFFEESTORE_WEB_API_TIMEOUT" envDefault:"5s"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.OutDir, "out", cfg.OutDir, "Output directory")
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Coffee store API base URL")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run lists every store and writes the pages and props manifest.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePrerender, func(ctx context.Context) error {
		api, err := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.APITimeout))
		if err != nil {
			return fmt.Errorf("coffee store api client: %w", err)
		}
		result, err := prerender.Build(ctx, prerender.Options{
			OutDir: cfg.OutDir,
			Lister: api,
			Logger: log.Default(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "prerendered %d page(s); manifest %s\n", result.Pages, result.ManifestPath)
		return nil
	})
}
