// Package seed parses seed flags and loads the coffee store fixture.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	entrypoint "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/cmd"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/seed"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/client"
)

// Config holds seed command configuration.
type Config struct {
	APIBaseURL string        `env:"COFFEESTORE_WEB_API_BASE_URL" envDefault:"http://localhost:8095"`
	APITimeout time.Duration `env:"COFFEESTORE_WEB_API_TIMEOUT" envDefault:"5s"`
	File       string        `env:"COFFEESTORE_SEED_FILE"`
	Verbose    bool
	List       bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.APIBaseURL, "api-base-url", cfg.APIBaseURL, "Coffee store API base URL")
	fs.StringVar(&cfg.File, "file", cfg.File, "Fixture file (default: embedded coffee stores)")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	fs.BoolVar(&cfg.List, "list", false, "list fixture stores and exit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the seed command.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	seedCfg := seed.Config{File: cfg.File, Verbose: cfg.Verbose}

	if cfg.List {
		lines, err := seed.ListStores(seedCfg)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "Fixture stores:")
		for _, line := range lines {
			fmt.Fprintf(out, "  %s\n", line)
		}
		return nil
	}

	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceSeed, func(ctx context.Context) error {
		api, err := client.New(cfg.APIBaseURL, client.WithTimeout(cfg.APITimeout))
		if err != nil {
			return fmt.Errorf("coffee store api client: %w", err)
		}
		result, err := seed.Run(ctx, seedCfg, api, out)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "seeded %d new store(s), %d already present\n", result.Created, result.Existing)
		return nil
	})
}
