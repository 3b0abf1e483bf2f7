// Package seed loads coffee store fixtures into the API through the
// create-if-absent endpoint.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

// Creator is the create-if-absent call the runner drives.
type Creator interface {
	CreateStore(ctx context.Context, record domain.StoreRecord) (domain.StoreRecord, bool, error)
}

// Config holds seed runner configuration.
type Config struct {
	// File overrides the embedded fixture.
	File    string
	Verbose bool
}

// Result counts what a run did.
type Result struct {
	Created  int
	Existing int
}

// Run creates every fixture store. Stores that already exist are counted,
// not updated, so reruns are safe.
func Run(ctx context.Context, cfg Config, creator Creator, out io.Writer) (Result, error) {
	if creator == nil {
		return Result{}, errors.New("store creator is required")
	}
	if out == nil {
		out = io.Discard
	}
	fixture, err := LoadFixture(cfg.File)
	if err != nil {
		return Result{}, fmt.Errorf("load fixture: %w", err)
	}
	if cfg.Verbose {
		fmt.Fprintf(out, "Loaded fixture %q with %d store(s)\n", fixture.Name, len(fixture.Stores))
	}

	var result Result
	for _, store := range fixture.Stores {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		store.Votes = 0
		_, created, err := creator.CreateStore(ctx, store)
		if err != nil {
			return result, fmt.Errorf("create %q: %w", store.ID, err)
		}
		if created {
			result.Created++
		} else {
			result.Existing++
		}
		if cfg.Verbose {
			state := "exists"
			if created {
				state = "created"
			}
			fmt.Fprintf(out, "  → %s %s\n", store.ID, state)
		}
	}
	if cfg.Verbose {
		fmt.Fprintf(out, "Seeding complete: %d created, %d existing\n", result.Created, result.Existing)
	}
	return result, nil
}

// ListStores returns "id\tname" lines for the fixture.
func ListStores(cfg Config) ([]string, error) {
	fixture, err := LoadFixture(cfg.File)
	if err != nil {
		return nil, err
	}
	lines := make([]string, 0, len(fixture.Stores))
	for _, store := range fixture.Stores {
		lines = append(lines, strings.Join([]string{store.ID, store.Name}, "\t"))
	}
	return lines, nil
}
