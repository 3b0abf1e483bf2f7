package seed

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

//go:embed fixtures/coffee_stores.json
var fixturesFS embed.FS

const defaultFixture = "fixtures/coffee_stores.json"

// Fixture is a named set of stores to create.
type Fixture struct {
	Name   string               `json:"name"`
	Stores []domain.StoreRecord `json:"stores"`
}

// LoadFixture reads the fixture at path, or the embedded default fixture
// when path is empty. Every store must carry an id and a name, and ids must
// be unique.
func LoadFixture(path string) (Fixture, error) {
	var (
		data []byte
		err  error
	)
	path = strings.TrimSpace(path)
	if path == "" {
		data, err = fixturesFS.ReadFile(defaultFixture)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return parseFixture(data)
}

func parseFixture(data []byte) (Fixture, error) {
	var fixture Fixture
	if err := json.Unmarshal(data, &fixture); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	seen := make(map[string]struct{}, len(fixture.Stores))
	for i, store := range fixture.Stores {
		store = store.Normalize()
		if err := store.Validate(); err != nil {
			return Fixture{}, fmt.Errorf("store %d: %w", i, err)
		}
		if _, dup := seen[store.ID]; dup {
			return Fixture{}, fmt.Errorf("store %d: duplicate id %q", i, store.ID)
		}
		seen[store.ID] = struct{}{}
		fixture.Stores[i] = store
	}
	return fixture, nil
}
