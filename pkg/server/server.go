package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/blueberrycongee/llmux/pkg/cache"
	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy/handlers"
	"github.com/blueberrycongee/llmux/pkg/proxy/middleware"
	"github.com/blueberrycongee/llmux/pkg/responses"
	"github.com/blueberrycongee/llmux/pkg/routing"
	"github.com/blueberrycongee/llmux/pkg/security/auth"
	"github.com/blueberrycongee/llmux/pkg/telemetry/metrics"
)

// Server is the llmux gateway: it owns the provider registry, the router,
// the response cache, and the prior-response store, and serves the HTTP
// surface over them.
type Server struct {
	cfg       *config.Config
	logger    *slog.Logger
	registry  *providers.Registry
	router    *routing.Router
	cache     *cache.ResponseCache
	store     *responses.Store
	collector *metrics.Collector
	client    *providers.Client

	httpServer   *http.Server
	shutdownOnce sync.Once
}

// New wires a server from configuration. The config must already have
// defaults applied and be validated.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var collector *metrics.Collector
	if cfg.Server.MetricsOn() {
		collector = metrics.New()
	}

	registry := providers.NewRegistry(cfg)
	client := providers.NewClient(logger)
	aliases := routing.NewAliasTable(cfg.Routing.ModelAliases)
	router := routing.New(registry, aliases, client, &cfg.Routing, logger, collector)

	backend, err := cache.NewBackend(&cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache backend: %w", err)
	}
	responseCache := cache.NewResponseCache(&cfg.Cache, backend, logger, collector)

	store := responses.NewStore(0, 0)

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		registry:  registry,
		router:    router,
		cache:     responseCache,
		store:     store,
		collector: collector,
		client:    client,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      s.buildHandler(aliases),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// Handler returns the fully assembled HTTP handler, for tests that drive
// the gateway through httptest.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// buildHandler registers routes and attaches the middleware chain.
// Authentication wraps only the /v1 endpoints; health and metrics stay open.
func (s *Server) buildHandler(aliases *routing.AliasTable) http.Handler {
	mux := http.NewServeMux()

	validator := auth.NewValidator(s.cfg.Auth)
	authed := auth.Middleware(validator, s.logger)

	mux.Handle("/health", handlers.NewHealthHandler())
	mux.Handle("/ready", handlers.NewReadyHandler(s.registry))
	mux.Handle("/health/providers", handlers.NewProviderHealthHandler(s.registry, s.client, s.logger))

	mux.Handle("/v1/models", authed(handlers.NewModelsHandler(s.registry, aliases)))
	mux.Handle("/v1/chat/completions", authed(handlers.NewChatHandler(s.router, s.cache, s.logger)))
	mux.Handle("/v1/responses", authed(handlers.NewResponsesHandler(s.router, s.cache, s.store, s.collector, s.logger)))

	if s.collector != nil {
		mux.Handle("/metrics", s.collector.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig())(handler)
	handler = middleware.MetricsMiddleware(s.collector)(handler)
	handler = middleware.LoggingMiddleware(s.logger)(handler)
	handler = middleware.RequestIDMiddleware(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)

	return handler
}

// Start runs the HTTP server and blocks until the context is cancelled, a
// SIGINT/SIGTERM arrives, or the listener fails. Shutdown is graceful
// within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting llmux gateway",
			"address", s.httpServer.Addr,
			"providers", s.registry.Len(),
			"cache_enabled", s.cfg.Cache.Enabled,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown drains in-flight requests and releases the cache and store.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = config.DefaultShutdownTimeout
		}

		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		if err := s.cache.Close(); err != nil {
			s.logger.Error("error closing cache", "error", err)
		}
		s.store.Close()

		s.logger.Info("llmux gateway stopped")
	})

	return shutdownErr
}
