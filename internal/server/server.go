// Package server exposes scans and fix suggestions over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sightline/sightline/internal/models"
	"github.com/sightline/sightline/pkg/logger"
)

// ScanService runs one full page scan.
type ScanService interface {
	Scan(ctx context.Context, url string) (*models.ScanResult, error)
}

// SuggestService produces remediation guidance for one issue.
type SuggestService interface {
	Suggest(ctx context.Context, issue models.Issue, html string) (*models.FixSuggestion, error)
}

// ScanStore persists and retrieves scan records.
type ScanStore interface {
	SaveScan(ctx context.Context, record *models.ScanRecord) error
	GetScan(ctx context.Context, id uuid.UUID) (*models.ScanRecord, error)
	ListScans(ctx context.Context, domain string, limit int) ([]models.ScanRecord, error)
	Ping(ctx context.Context) error
}

// Server routes scan and suggestion requests to their services.
type Server struct {
	logger      logger.Logger
	scans       ScanService
	suggestions SuggestService
	store       ScanStore
	scanTimeout time.Duration
}

// New creates a server. The suggestion service and store may be nil
// when those features are not configured; their routes then report
// http.StatusServiceUnavailable.
func New(scans ScanService, suggestions SuggestService, store ScanStore, scanTimeout time.Duration, log logger.Logger) *Server {
	return &Server{
		logger:      log,
		scans:       scans,
		suggestions: suggestions,
		store:       store,
		scanTimeout: scanTimeout,
	}
}

// Routes builds the router with all endpoints mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/scans", s.handleCreateScan)
		r.Get("/scans", s.handleListScans)
		r.Get("/scans/{id}", s.handleGetScan)
		r.Post("/suggestions", s.handleCreateSuggestion)
	})
	return r
}

// Run serves until ctx is canceled, then drains connections within
// shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           otelhttp.NewHandler(s.Routes(), "sightline"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("Server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		s.logger.Info("Server stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	}
}

// requestLogger emits one structured line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
