// Package server exposes the HTTP API over the run archive.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/elonfeng/hotradar/internal/store"
)

// Server provides the HTTP API.
type Server struct {
	store  store.Store
	logger *zap.Logger
	port   int
	http   *http.Server
}

// New creates a new HTTP server over the archive.
func New(s store.Store, port int, logger *zap.Logger) *Server {
	if port == 0 {
		port = 8080
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{store: s, logger: logger, port: port}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/v1/ranked", s.handleRanked)
	r.Get("/api/v1/runs", s.handleRuns)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// ListenAndServe starts the HTTP server and blocks until it stops.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.Info("http server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRanked returns the ranked items of the most recent run, or of the
// run named by ?run_id=.
func (s *Server) handleRanked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		run, err := s.store.LatestRun(ctx)
		if errors.Is(err, store.ErrNoRuns) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs recorded"})
			return
		}
		if err != nil {
			s.internalError(w, "latest run", err)
			return
		}
		runID = run.ID
	}

	rows, err := s.store.ListRanked(ctx, runID)
	if err != nil {
		s.internalError(w, "list ranked", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"data":   rows,
		"count":  len(rows),
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 200 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be 1-200"})
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		s.internalError(w, "list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("api error", zap.String("op", op), zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
