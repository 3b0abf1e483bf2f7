// Package server wires the coffee store storage backend and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/timeouts"
	httpapi "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/api/http"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage/firestore"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage/postgres"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/coffeestore/storage/sqlite"
)

// Storage backend names accepted by Config.Backend.
const (
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

// Config defines startup inputs for the coffee store API.
type Config struct {
	HTTPAddr       string
	Backend        string
	DBPath         string
	PostgresDSN    string
	Firestore      firestore.Config
	AllowedOrigins []string
}

// Server hosts the coffee store HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	store      storage.CoffeeStoreStore
}

// New opens the configured backend and binds the listener.
func New(ctx context.Context, cfg Config) (*Server, error) {
	addr := strings.TrimSpace(cfg.HTTPAddr)
	if addr == "" {
		return nil, errors.New("http address is required")
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	handler, err := httpapi.NewHandler(store, httpapi.Options{AllowedOrigins: cfg.AllowedOrigins, Logger: log.Default()})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("compose coffeestore handler: %w", err)
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		store: store,
	}, nil
}

// OpenStore opens the storage backend selected by cfg.Backend.
func OpenStore(ctx context.Context, cfg Config) (storage.CoffeeStoreStore, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendSQLite
	}
	switch backend {
	case BackendSQLite:
		return openSQLiteStore(cfg.DBPath)
	case BackendPostgres:
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open coffeestore postgres store: %w", err)
		}
		return store, nil
	case BackendFirestore:
		store, err := firestore.Open(ctx, cfg.Firestore)
		if err != nil {
			return nil, fmt.Errorf("open coffeestore firestore store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

func openSQLiteStore(path string) (*sqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "coffeestores.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open coffeestore sqlite store: %w", err)
	}
	return store, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a coffee store API server until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve handles HTTP traffic until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("coffeestore api listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown coffeestore http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve coffeestore http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close coffeestore store: %v", err)
		}
	}
}
