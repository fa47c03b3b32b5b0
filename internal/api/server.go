package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/finze-app/finze-backend/internal/api/handlers"
	"github.com/finze-app/finze-backend/internal/api/middleware"
	"github.com/finze-app/finze-backend/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8001,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:19006"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config     Config
	router     chi.Router
	httpServer *http.Server
	logger     *slog.Logger
	repo       storage.Repository
	feed       handlers.ReconciledFeed
}

// NewServer creates a new API server.
func NewServer(cfg Config, repo storage.Repository, feed handlers.ReconciledFeed, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config: cfg,
		router: chi.NewRouter(),
		logger: logger,
		repo:   repo,
		feed:   feed,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}
	s.router.Use(middleware.CORS(corsConfig))
	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler(s.repo, s.feed)
	s.router.Get("/health", healthHandler.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		// Reconciled feed
		txHandler := handlers.NewTransactionsHandler(s.feed)
		r.Get("/transactions", txHandler.List)
		r.Get("/stats", txHandler.Stats)
		r.Get("/categories", txHandler.Categories)

		// Manual capture path
		expensesHandler := handlers.NewExpensesHandler(s.repo)
		r.Post("/expenses", expensesHandler.Create)
		r.Get("/expenses", expensesHandler.List)
		r.Delete("/expenses/{id}", expensesHandler.Delete)

		// OCR capture path
		receiptsHandler := handlers.NewReceiptsHandler(s.repo)
		r.Post("/receipts", receiptsHandler.Create)
		r.Get("/receipts", receiptsHandler.List)
		r.Delete("/receipts/{id}", receiptsHandler.Delete)
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
