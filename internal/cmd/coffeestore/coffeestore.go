// Package coffeestore parses coffee store API flags and launches the service.
package coffeestore

import (
	"context"
	"flag"
	"strings"

	entrypoint "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/cmd"
	server "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/app"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage/firestore"
)

// Config holds coffee store API command configuration.
type Config struct {
	HTTPAddr       string   `env:"COFFEESTORE_API_HTTP_ADDR" envDefault:"localhost:8095"`
	Backend        string   `env:"COFFEESTORE_STORAGE_BACKEND" envDefault:"sqlite"`
	DBPath         string   `env:"COFFEESTORE_DB_PATH" envDefault:"data/coffeestores.db"`
	PostgresDSN    string   `env:"COFFEESTORE_POSTGRES_DSN"`
	FirestoreProj  string   `env:"COFFEESTORE_FIRESTORE_PROJECT_ID"`
	FirestoreCreds string   `env:"COFFEESTORE_FIRESTORE_CREDENTIALS_FILE"`
	FirestoreColl  string   `env:"COFFEESTORE_FIRESTORE_COLLECTION" envDefault:"coffee_stores"`
	AllowedOrigins []string `env:"COFFEESTORE_API_ALLOWED_ORIGINS" envSeparator:","`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "Storage backend (sqlite, postgres, firestore)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the coffee store API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceCoffeeStore, func(ctx context.Context) error {
		return server.Run(ctx, cfg.serverConfig())
	})
}

func (c Config) serverConfig() server.Config {
	origins := make([]string, 0, len(c.AllowedOrigins))
	for _, origin := range c.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return server.Config{
		HTTPAddr:    c.HTTPAddr,
		Backend:     c.Backend,
		DBPath:      c.DBPath,
		PostgresDSN: c.PostgresDSN,
		Firestore: firestore.Config{
			ProjectID:       c.FirestoreProj,
			CredentialsFile: c.FirestoreCreds,
			Collection:      c.FirestoreColl,
		},
		AllowedOrigins: origins,
	}
}
