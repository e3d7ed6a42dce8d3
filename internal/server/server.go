// Package server provides the HTTP API for Kensaku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kensaku/internal/config"
	"github.com/hyperjump/kensaku/internal/indexer"
	"github.com/hyperjump/kensaku/internal/metrics"
	"github.com/hyperjump/kensaku/internal/session"
	"github.com/hyperjump/kensaku/internal/storage"
	"go.uber.org/zap"
)

// WatchService reports the content directories being watched.
type WatchService interface {
	Directories() []string
}

// Reloader rebuilds the session's index from its sources.
type Reloader func(ctx context.Context) error

// Server is the HTTP server for the Kensaku API.
type Server struct {
	session *session.Session
	indexer *indexer.Indexer
	storage storage.Storage
	config  *config.ServerConfig
	logger  *zap.Logger
	watch   WatchService
	reload  Reloader
	server  *http.Server
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithWatch exposes the watched directories on the status endpoint.
func WithWatch(w WatchService) ServerOption {
	return func(s *Server) { s.watch = w }
}

// WithReloader sets how article changes reach the index. By default the
// index is rebuilt from the article store alone.
func WithReloader(fn Reloader) ServerOption {
	return func(s *Server) { s.reload = fn }
}

// NewServer creates a server with the given dependencies. store may be nil,
// in which case the article endpoints respond 501.
func NewServer(
	sess *session.Session,
	idx *indexer.Indexer,
	store storage.Storage,
	cfg *config.ServerConfig,
	logger *zap.Logger,
	opts ...ServerOption,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: sess,
		indexer: idx,
		storage: store,
		config:  cfg,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Get("/results", s.handleResults)
		r.Put("/sort", s.handleSetSort)

		r.Get("/filters", s.handleGetFilters)
		r.Delete("/filters", s.handleClearFilters)
		r.Post("/filters/categories/{value}", s.handleAddCategory)
		r.Delete("/filters/categories/{value}", s.handleRemoveCategory)
		r.Post("/filters/tags/{value}", s.handleAddTag)
		r.Delete("/filters/tags/{value}", s.handleRemoveTag)
		r.Put("/filters/author", s.handleSetAuthor)
		r.Put("/filters/date", s.handleSetDateRange)

		r.Get("/suggestions", s.handleSuggestions)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleClearHistory)
		r.Get("/stats", s.handleStats)
		r.Delete("/stats", s.handleResetStats)
		r.Get("/export", s.handleExport)

		r.Get("/articles", s.handleListArticles)
		r.Post("/articles", s.handleCreateArticle)
		r.Get("/articles/{id}", s.handleGetArticle)
		r.Delete("/articles/{id}", s.handleDeleteArticle)
		r.Post("/articles/{id}/views", s.handleIncrementViews)
		r.Post("/reindex", s.handleReindex)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// reindex pushes the current articles into the session index.
func (s *Server) reindex(ctx context.Context) error {
	if s.reload != nil {
		return s.reload(ctx)
	}
	articles, err := s.storage.ListArticles(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list articles: %w", err)
	}
	return s.session.RebuildIndex(articles)
}
