// Package cmd holds the startup path shared by the coffee store commands.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/config"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/otel"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/timeouts"
)

// Service names used for telemetry resources and log prefixes.
const (
	ServiceCoffeeStore = "coffeestore"
	ServiceStorefront  = "storefront"
	ServicePrerender   = "prerender"
	ServiceSeed        = "seed"
)

// ParseConfig loads environment values into cfg. Flags registered afterwards
// use the loaded values as their defaults.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses command-line flags.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, runs run, and flushes spans
// before returning run's error.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	if service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("%s otel setup: %w", service, err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			log.Printf("otel shutdown service=%s err=%v", service, err)
		}
	}()

	return run(ctx)
}
