package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/inbox-lab/autoreply/pkg/domain/model"
	"github.com/inbox-lab/autoreply/pkg/usecase"
	"github.com/inbox-lab/autoreply/pkg/utils/async"
	"github.com/inbox-lab/autoreply/pkg/utils/logging"
)

// Pipeline is the part of the usecase layer the ops server drives
type Pipeline interface {
	RunBatch(ctx context.Context, runID string) *model.RunResult
	Status(ctx context.Context) *model.SystemStatus
}

type Server struct {
	router   *chi.Mux
	pipeline Pipeline
	guard    *usecase.RunGuard
}

// New creates the ops HTTP server. The guard must be the same instance the
// scheduler uses so HTTP triggers and scheduled runs exclude each other.
func New(pipeline Pipeline, guard *usecase.RunGuard) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:   r,
		pipeline: pipeline,
		guard:    guard,
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Post("/api/run", s.handleRun)

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.pipeline.Status(r.Context()))
}

// handleRun triggers a batch run asynchronously. A second trigger while a
// run is active gets 409 instead of a queued run.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.guard.TryAcquire() {
		respondJSON(w, http.StatusConflict, map[string]string{
			"error": "a run is already active",
		})
		return
	}

	runID := newRunID()
	async.Dispatch(r.Context(), func(ctx context.Context) error {
		defer s.guard.Release()
		s.pipeline.RunBatch(ctx, runID)
		return nil
	})

	respondJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

// newRunID returns a time-ordered identifier so run logs sort by trigger
// time
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Warn("failed to encode response", "error", err)
	}
}

// accessLogger is a middleware that logs HTTP requests
func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
