// Package catalog loads the embedded storefront message catalogs and
// registers them with golang.org/x/text/message.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// BaseLocale is the locale every other catalog falls back to.
const BaseLocale = "en-US"

//go:embed locales/*.yaml
var embeddedFS embed.FS

// Bundle holds the messages of every loaded locale.
type Bundle struct {
	locales map[string]map[string]string
}

var defaultBundle = mustLoadAndRegister()

// Default returns the embedded bundle, already registered with x/text.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedFS)
}

// LoadFromFS loads every locales/<locale>.yaml file in catalogFS.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, p := range paths {
		data, err := fs.ReadFile(catalogFS, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		locale, messages, err := parseCatalog(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if want := strings.TrimSuffix(path.Base(p), path.Ext(p)); locale != want {
			return nil, fmt.Errorf("catalog %s: locale %q must match file name %q", p, locale, want)
		}
		bundle.locales[locale] = messages
	}
	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	for locale, messages := range bundle.locales {
		for key := range messages {
			if _, ok := bundle.locales[BaseLocale][key]; !ok {
				return nil, fmt.Errorf("catalog %s: key %q missing from %s", locale, key, BaseLocale)
			}
		}
	}
	return bundle, nil
}

// Register installs every message with x/text so message.Printer resolves
// keys. Base-language tags (pt for pt-BR) receive the same strings.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag := language.Make(base.String()); baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range b.locales[locale] {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s %q: %w", t, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether locale was loaded.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns the loaded locales in sorted order.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// Message returns the message for key in locale, falling back to BaseLocale.
func (b *Bundle) Message(locale, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	key = strings.TrimSpace(key)
	if value, ok := b.locales[strings.TrimSpace(locale)][key]; ok {
		return value, true
	}
	value, ok := b.locales[BaseLocale][key]
	return value, ok
}

func mustLoadAndRegister() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := bundle.Register(); err != nil {
		panic(err)
	}
	return bundle
}

// parseCatalog reads the flat `locale:` + `messages:` layout with quoted
// keys and values.
func parseCatalog(data []byte) (string, map[string]string, error) {
	var (
		locale     string
		inMessages bool
		messages   = map[string]string{}
	)
	for n, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "locale:"):
			value, err := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, "locale:")))
			if err != nil {
				return "", nil, fmt.Errorf("line %d: locale: %w", n+1, err)
			}
			locale = strings.TrimSpace(value)
		case line == "messages:":
			inMessages = true
		case inMessages:
			key, value, err := parseEntry(line)
			if err != nil {
				return "", nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			if _, dup := messages[key]; dup {
				return "", nil, fmt.Errorf("line %d: duplicate key %q", n+1, key)
			}
			messages[key] = value
		default:
			return "", nil, fmt.Errorf("line %d: unexpected %q", n+1, line)
		}
	}
	if locale == "" {
		return "", nil, fmt.Errorf("missing locale")
	}
	if len(messages) == 0 {
		return "", nil, fmt.Errorf("missing messages")
	}
	return locale, messages, nil
}

func parseEntry(line string) (string, string, error) {
	keyToken, err := strconv.QuotedPrefix(line)
	if err != nil {
		return "", "", fmt.Errorf("key: %w", err)
	}
	key, _ := strconv.Unquote(keyToken)
	key = strings.TrimSpace(key)
	if key == "" {
		return "", "", fmt.Errorf("blank key")
	}
	rest := strings.TrimSpace(line[len(keyToken):])
	if !strings.HasPrefix(rest, ":") {
		return "", "", fmt.Errorf("missing ':' after %q", key)
	}
	value, err := strconv.Unquote(strings.TrimSpace(rest[1:]))
	if err != nil {
		return "", "", fmt.Errorf("value for %q: %w", key, err)
	}
	return key, value, nil
}
