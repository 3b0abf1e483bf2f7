// Package storefront hosts the browser-facing coffee store pages.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/platform/timeouts"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/httpx"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/shared/observability"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/catalog"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/client"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/modules/coffeestore"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/page"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/prerender"
	"github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/routepath"
	storefrontstatic "github.com/ShakhzodUsmanov/discover-coffee-stores/internal/services/storefront/static"
)

// Config defines startup inputs for the storefront.
type Config struct {
	HTTPAddr   string
	APIBaseURL string
	APITimeout time.Duration
	// PrerenderDir holds the build output; empty disables fallback routing.
	PrerenderDir         string
	CacheRefreshInterval time.Duration
}

// Server hosts the storefront HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	listener   net.Listener
	httpServer *http.Server
	refresher  catalog.Refresher
}

// HandlerConfig holds the composed dependencies of the root handler.
type HandlerConfig struct {
	Session  *page.Session
	Manifest *prerender.Manifest
	Logger   *log.Logger
}

// NewHandler builds the root handler: static assets plus the coffee store
// module behind the shared middleware chain.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	mount, err := coffeestore.New(coffeestore.Dependencies{
		Session:  cfg.Session,
		Manifest: cfg.Manifest,
		Logger:   logger,
	}).Mount()
	if err != nil {
		return nil, fmt.Errorf("mount coffee store module: %w", err)
	}
	rootMux := http.NewServeMux()
	rootMux.Handle(routepath.Static, http.StripPrefix(routepath.Static, http.FileServer(http.FS(storefrontstatic.FS))))
	rootMux.Handle(mount.Prefix, mount.Handler)
	return httpx.Chain(rootMux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		observability.RequestLogger(logger),
	), nil
}

// NewServer validates config, warms the catalog from the listing and loads
// the prerender manifest. A failed warm-up is logged and the storefront
// starts with an empty catalog.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	options := []client.Option{}
	if cfg.APITimeout > 0 {
		options = append(options, client.WithTimeout(cfg.APITimeout))
	}
	api, err := client.New(cfg.APIBaseURL, options...)
	if err != nil {
		return nil, fmt.Errorf("coffee store api client: %w", err)
	}

	manifest, err := loadManifest(cfg.PrerenderDir)
	if err != nil {
		return nil, err
	}

	cache := catalog.New()
	if err := catalog.Load(ctx, cache, api); err != nil {
		log.Printf("catalog warm-up failed err=%v", err)
	} else {
		log.Printf("catalog warmed stores=%d", cache.Len())
	}

	handler, err := NewHandler(HandlerConfig{
		Session:  page.NewSession(cache, api, log.Default()),
		Manifest: manifest,
	})
	if err != nil {
		return nil, fmt.Errorf("compose storefront handler: %w", err)
	}

	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	return &Server{
		httpAddr: listener.Addr().String(),
		listener: listener,
		httpServer: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		refresher: catalog.Refresher{
			Cache:    cache,
			Source:   api,
			Interval: cfg.CacheRefreshInterval,
		},
	}, nil
}

func loadManifest(dir string) (*prerender.Manifest, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	manifest, err := prerender.LoadManifest(dir)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("prerender manifest not found dir=%s; serving without static paths", dir)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load prerender manifest: %w", err)
	}
	log.Printf("prerender manifest loaded paths=%d generated_at=%s", len(manifest.Paths), manifest.GeneratedAt.Format(time.RFC3339))
	return manifest, nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.httpAddr
}

// ListenAndServe serves HTTP traffic and runs the catalog refresher until
// ctx is cancelled or the server stops.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("storefront server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go s.refresher.Run(refreshCtx)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("storefront listening at %s", s.httpAddr)
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown storefront http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve storefront http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
