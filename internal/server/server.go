package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackzampolin/folio/internal/api"
	"github.com/jackzampolin/folio/internal/config"
	"github.com/jackzampolin/folio/internal/docstore"
	"github.com/jackzampolin/folio/internal/extract"
	"github.com/jackzampolin/folio/internal/home"
	"github.com/jackzampolin/folio/internal/ingest"
	"github.com/jackzampolin/folio/internal/pagecache"
	"github.com/jackzampolin/folio/internal/pdf"
	"github.com/jackzampolin/folio/internal/providers"
	"github.com/jackzampolin/folio/internal/server/endpoints"
	"github.com/jackzampolin/folio/internal/svcctx"
	"github.com/jackzampolin/folio/internal/tools"
)

// Server is the main Folio HTTP server. It owns the document store
// lifecycle, opening it on start and closing it on shutdown.
type Server struct {
	httpServer *http.Server
	homeDir    *home.Dir
	registry   *providers.Registry
	configMgr  *config.Manager
	logger     *slog.Logger
	apiToken   string

	store     *docstore.Store
	cache     *pagecache.Cache
	originals *pdf.OriginalsCache
	extractor *extract.Extractor
	ingestor  *ingest.Ingestor
	toolset   *tools.Tools

	// services holds all core services for context enrichment
	services *svcctx.Services

	// endpoints registry for HTTP routes
	endpointRegistry *api.Registry

	mu      sync.RWMutex
	running bool
}

// Config holds server configuration.
type Config struct {
	// Host is the address to bind to (default: 0.0.0.0)
	Host string
	// Port is the port to listen on (default: 8000)
	Port string
	// Home is the folio home directory holding documents.json and originals
	Home *home.Dir
	// ConfigManager provides configuration with hot-reload support
	ConfigManager *config.Manager
	// SwaggerSpecPath overrides the default swagger.json location
	SwaggerSpecPath string
	// Logger is the structured logger to use
	Logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Port == "" {
		cfg.Port = "8000"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Home == nil {
		return nil, errors.New("home directory is required")
	}

	// Create provider registry
	registry := providers.NewRegistry()
	registry.SetLogger(cfg.Logger)

	// If config manager provided, set up providers and hot reload
	if cfg.ConfigManager != nil {
		registry.Reload(cfg.ConfigManager.Get().ToProviderRegistryConfig())

		cfg.ConfigManager.OnChange(func(c *config.Config) {
			registry.Reload(c.ToProviderRegistryConfig())
			cfg.Logger.Info("provider registry reloaded from config")
		})
	}

	s := &Server{
		homeDir:   cfg.Home,
		registry:  registry,
		configMgr: cfg.ConfigManager,
		logger:    cfg.Logger,
	}

	if cfg.ConfigManager != nil {
		s.apiToken = config.ResolveEnvVars(cfg.ConfigManager.Get().Server.APIToken)
	}

	// Create endpoint registry and register all endpoints
	s.endpointRegistry = api.NewRegistry()
	for _, ep := range endpoints.All(endpoints.Config{SwaggerSpecPath: cfg.SwaggerSpecPath}) {
		s.endpointRegistry.Register(ep)
	}

	// Set up HTTP server
	mux := http.NewServeMux()
	s.endpointRegistry.RegisterRoutes(mux, s.requireInit)

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:      s.withServices(s.withAuth(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Start starts the server. It blocks until the context is cancelled or an
// error occurs.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("server already running")
	}
	s.running = true
	s.mu.Unlock()

	if err := s.homeDir.EnsureExists(); err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to create home directory: %w", err)
	}

	// Open the document store
	store, err := docstore.New(s.homeDir.DocumentsPath(), s.logger)
	if err != nil {
		s.setNotRunning()
		return fmt.Errorf("failed to open document store: %w", err)
	}
	if err := store.Watch(); err != nil {
		s.logger.Warn("document store watch unavailable", "error", err)
	}
	s.store = store

	cfg := s.currentConfig()

	s.cache = pagecache.New()
	s.originals = pdf.NewOriginalsCache(
		s.homeDir.OriginalPath,
		time.Duration(cfg.Ingest.DownloadTimeoutSeconds)*time.Second,
		s.logger,
	)

	// Page extraction and metadata can use different providers. Both
	// extractors share the store, caches, and registry.
	s.extractor = extract.New(extract.Config{
		Store:     s.store,
		Cache:     s.cache,
		Originals: s.originals,
		Registry:  s.registry,
		Provider:  cfg.Defaults.ExtractProvider,
		Logger:    s.logger,
	})
	metadataExtractor := extract.New(extract.Config{
		Store:     s.store,
		Cache:     s.cache,
		Originals: s.originals,
		Registry:  s.registry,
		Provider:  cfg.Defaults.MetadataProvider,
		Logger:    s.logger,
	})

	s.ingestor = ingest.New(ingest.Config{
		Store:           s.store,
		Extractor:       metadataExtractor,
		Originals:       s.originals,
		MetadataPages:   cfg.Ingest.MetadataPages,
		DownloadTimeout: time.Duration(cfg.Ingest.DownloadTimeoutSeconds) * time.Second,
		Logger:          s.logger,
	})

	s.toolset = tools.New(s.store, s.extractor)

	// Create services struct for context enrichment
	s.services = &svcctx.Services{
		Store:     s.store,
		Cache:     s.cache,
		Registry:  s.registry,
		Extractor: s.extractor,
		Ingestor:  s.ingestor,
		Config:    s.configMgr,
		Logger:    s.logger,
		Home:      s.homeDir,
	}

	// Start HTTP server in goroutine
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			_ = s.shutdown()
			return fmt.Errorf("HTTP server error: %w", err)
		}
	}

	return s.shutdown()
}

// currentConfig returns the live config, or defaults when no manager is set.
func (s *Server) currentConfig() *config.Config {
	if s.configMgr != nil {
		return s.configMgr.Get()
	}
	return config.DefaultConfig()
}

// shutdown performs graceful shutdown of the HTTP server and document store.
func (s *Server) shutdown() error {
	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("HTTP server shutdown error", "error", err)
	}

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Error("document store close error", "error", err)
		}
	}

	s.setNotRunning()
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) setNotRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// IsRunning returns whether the server is currently running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Addr returns the server's listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Registry returns the provider registry.
func (s *Server) Registry() *providers.Registry {
	return s.registry
}

// Store returns the document store.
// Returns nil if the server hasn't started yet.
func (s *Server) Store() *docstore.Store {
	return s.store
}

// Tools returns the retrieval tool surface.
// Returns nil if the server hasn't started yet.
func (s *Server) Tools() *tools.Tools {
	return s.toolset
}

// withServices wraps a handler to enrich the request context with services.
func (s *Server) withServices(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if s.services != nil {
			ctx = svcctx.WithServices(ctx, s.services)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// withAuth enforces the optional bearer token on /api/ routes. Health,
// status, and swagger stay open.
func (s *Server) withAuth(next http.Handler) http.Handler {
	if s.apiToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.apiToken)) != 1 {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"invalid or missing bearer token"}`))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// requireInit is middleware that ensures the server is fully initialized.
// Returns 503 Service Unavailable until the document store is open.
func (s *Server) requireInit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":"server not fully initialized"}`))
			return
		}
		next(w, r)
	}
}
