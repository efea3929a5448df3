package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aci2n/subarr/internal/api/handlers"
	"github.com/aci2n/subarr/internal/api/middleware"
	"github.com/aci2n/subarr/internal/config"
	"github.com/aci2n/subarr/internal/controllers"
	"github.com/aci2n/subarr/internal/feeds"
	"github.com/aci2n/subarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Server is the HTTP surface the browser shim talks to
type Server struct {
	server   *http.Server
	db       *models.Database
	exchange *feeds.Exchange
	pipeline *controllers.Pipeline
	logger   *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, db *models.Database, exchange *feeds.Exchange, pipeline *controllers.Pipeline, logger *logrus.Logger) *Server {
	s := &Server{
		db:       db,
		exchange: exchange,
		pipeline: pipeline,
		logger:   logger,
	}

	mux := http.NewServeMux()
	s.setupRoutes(mux, cfg)

	s.server = &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: middleware.Logging(mux, logger),
		// A step request stays open while the pipeline waits for feeds, so
		// the write timeout must exceed the feed timeout
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.FeedTimeoutSeconds+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(mux *http.ServeMux, cfg *config.Config) {
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)

	statusHandler := handlers.NewStatusHandler(s.db, s.logger)
	mux.HandleFunc("/status", statusHandler.ServeHTTP)

	feedHandler := handlers.NewFeedHandler(s.exchange, s.logger)
	mux.HandleFunc("/api/feed/catalog", feedHandler.ServeCatalog)
	mux.HandleFunc("/api/feed/tracks", feedHandler.ServeTracks)

	stepHandler := handlers.NewStepHandler(s.pipeline, s.logger)
	mux.HandleFunc("/api/step", stepHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
