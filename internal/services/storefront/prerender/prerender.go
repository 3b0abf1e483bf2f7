// Package prerender is the build-time step: it derives one page path per
// listed store, resolves each page's props and writes the static pages plus
// the props manifest the storefront loads at start.
package prerender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/a-h/templ"
	"golang.org/x/text/language"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/domain"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/i18nhttp"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/templates"
)

const (
	// ManifestFile is the props manifest name inside the output directory.
	ManifestFile = "props.json"
	// PagesDir holds one generated page per store.
	PagesDir = "coffee-store"
)

// Lister returns every store from the listing endpoint.
type Lister interface {
	ListAllStores(ctx context.Context) ([]domain.StoreRecord, error)
}

// Manifest records the generated paths and the props of each page.
type Manifest struct {
	GeneratedAt time.Time                     `json:"generatedAt"`
	Paths       []string                      `json:"paths"`
	Props       map[string]domain.StoreRecord `json:"props"`
}

// Has reports whether id was listed at build time.
func (m *Manifest) Has(id string) bool {
	if m == nil {
		return false
	}
	_, ok := m.Props[strings.TrimSpace(id)]
	return ok
}

// PropsFor returns the build-time props for id, or an empty record.
func (m *Manifest) PropsFor(id string) domain.StoreRecord {
	if m == nil {
		return domain.StoreRecord{}
	}
	return m.Props[strings.TrimSpace(id)]
}

// StaticPaths returns one page path per distinct listed id, in listing order.
func StaticPaths(records []domain.StoreRecord) []string {
	seen := make(map[string]struct{}, len(records))
	paths := make([]string, 0, len(records))
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		paths = append(paths, templates.StorePath(id))
	}
	return paths
}

// StaticProps returns the record for id from the listing, or an empty record
// when the listing does not contain it.
func StaticProps(records []domain.StoreRecord, id string) domain.StoreRecord {
	record, ok := domain.FindByID(records, id)
	if !ok {
		return domain.StoreRecord{}
	}
	return record.Normalize()
}

// Options configures a build.
type Options struct {
	OutDir string
	Lister Lister
	Logger *log.Logger
	Now    func() time.Time
}

// Result summarizes a build.
type Result struct {
	Pages        int
	ManifestPath string
}

// Build lists every store, writes <out>/coffee-store/<id>.html for each and
// finally writes <out>/props.json. A failed listing writes nothing.
func Build(ctx context.Context, opts Options) (Result, error) {
	outDir := strings.TrimSpace(opts.OutDir)
	if outDir == "" {
		return Result{}, errors.New("output directory is required")
	}
	if opts.Lister == nil {
		return Result{}, errors.New("store lister is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	records, err := opts.Lister.ListAllStores(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list stores: %w", err)
	}

	manifest := Manifest{
		GeneratedAt: now().UTC(),
		Paths:       StaticPaths(records),
		Props:       make(map[string]domain.StoreRecord, len(records)),
	}
	if err := os.MkdirAll(filepath.Join(outDir, PagesDir), 0o755); err != nil {
		return Result{}, fmt.Errorf("create pages dir: %w", err)
	}
	for _, record := range records {
		id := strings.TrimSpace(record.ID)
		if id == "" || manifest.Props[id].ID != "" {
			continue
		}
		props := StaticProps(records, id)
		manifest.Props[id] = props
		page, err := RenderPage(ctx, props)
		if err != nil {
			return Result{}, fmt.Errorf("render %s: %w", id, err)
		}
		if err := writeFileAtomic(PagePath(outDir, id), page); err != nil {
			return Result{}, err
		}
		logger.Printf("prerendered page id=%s path=%s", id, templates.StorePath(id))
	}

	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("encode manifest: %w", err)
	}
	manifestPath := filepath.Join(outDir, ManifestFile)
	if err := writeFileAtomic(manifestPath, append(encoded, '\n')); err != nil {
		return Result{}, err
	}
	return Result{Pages: len(manifest.Props), ManifestPath: manifestPath}, nil
}

// PagePath is the generated file for id.
func PagePath(outDir, id string) string {
	return filepath.Join(outDir, PagesDir, url.PathEscape(strings.TrimSpace(id))+".html")
}

// RenderPage renders the static document for props in the default language.
func RenderPage(ctx context.Context, props domain.StoreRecord) ([]byte, error) {
	tag := language.AmericanEnglish
	loc := i18nhttp.Printer(tag)
	view := templates.StoreView{
		State:         templates.StoreReady,
		ID:            props.ID,
		Name:          props.Name,
		Address:       props.Address,
		Neighbourhood: props.Neighbourhood,
		ImageURL:      props.ImageURL,
		Votes:         props.Votes,
	}
	if props.IsEmpty() {
		view.State = templates.StoreEmpty
	}
	var buf bytes.Buffer
	layout := templates.Layout(templates.LayoutOptions{Title: props.Name, Lang: tag.String(), Loc: loc})
	if err := layout.Render(templ.WithChildren(ctx, templates.StoreContent(view, loc)), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadManifest reads <dir>/props.json.
func LoadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(strings.TrimSpace(dir), ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if manifest.Props == nil {
		manifest.Props = map[string]domain.StoreRecord{}
	}
	for id, props := range manifest.Props {
		manifest.Props[id] = props.Normalize()
	}
	return &manifest, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
