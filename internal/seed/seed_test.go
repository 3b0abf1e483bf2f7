package seed

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
)

type fakeCreator struct {
	existing map[string]bool
	failOn   string
	bodies   []domain.StoreRecord
}

func (f *fakeCreator) CreateStore(_ context.Context, record domain.StoreRecord) (domain.StoreRecord, bool, error) {
	f.bodies = append(f.bodies, record)
	if record.ID == f.failOn {
		return domain.StoreRecord{}, false, errors.New("boom")
	}
	if f.existing[record.ID] {
		return record, false, nil
	}
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[record.ID] = true
	return record, true, nil
}

func TestLoadFixtureEmbeddedDefault(t *testing.T) {
	t.Parallel()

	fixture, err := LoadFixture("")
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}
	if fixture.Name != "coffee_stores" || len(fixture.Stores) == 0 {
		t.Fatalf("fixture = %+v", fixture)
	}
}

func TestLoadFixtureRejectsInvalidStores(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string]string{
		"missing name.json": `{"name":"x","stores":[{"id":"a"}]}`,
		"duplicate.json":    `{"name":"x","stores":[{"id":"a","name":"A"},{"id":" a ","name":"B"}]}`,
		"broken.json":       `{`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := LoadFixture(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if _, err := LoadFixture(filepath.Join(dir, "missing.json")); err == nil {
		t.Fatal("expected missing file error")
	}
}

func TestRunCountsCreatedAndExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "stores.json")
	body := `{"name":"mini","stores":[{"id":"a","name":"A","votes":9},{"id":"b","name":"B"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	creator := &fakeCreator{existing: map[string]bool{"b": true}}
	var out bytes.Buffer
	result, err := Run(context.Background(), Config{File: path, Verbose: true}, creator, &out)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result != (Result{Created: 1, Existing: 1}) {
		t.Fatalf("result = %+v", result)
	}
	if creator.bodies[0].Votes != 0 {
		t.Fatalf("create body votes = %d, want 0", creator.bodies[0].Votes)
	}
	if !strings.Contains(out.String(), "Seeding complete: 1 created, 1 existing") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestRunStopsOnCreateFailure(t *testing.T) {
	t.Parallel()

	fixture, err := LoadFixture("")
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}
	creator := &fakeCreator{failOn: fixture.Stores[1].ID}
	result, err := Run(context.Background(), Config{}, creator, nil)
	if err == nil {
		t.Fatal("expected create error")
	}
	if result.Created != 1 {
		t.Fatalf("created = %d, want 1", result.Created)
	}
}

func TestRunRequiresCreator(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), Config{}, nil, nil); err == nil {
		t.Fatal("expected creator error")
	}
}

func TestListStores(t *testing.T) {
	t.Parallel()

	lines, err := ListStores(Config{})
	if err != nil {
		t.Fatalf("ListStores() error = %v", err)
	}
	if len(lines) == 0 || !strings.Contains(lines[0], "\t") {
		t.Fatalf("lines = %v", lines)
	}
}
