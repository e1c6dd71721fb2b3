package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/addy1947/web-scrapping/internal/progress"
)

// Server exposes read-only visibility into a running batch: health,
// progress counts, and the records committed so far.
type Server struct {
	tracker *progress.Tracker
	logger  *slog.Logger
}

func NewServer(tracker *progress.Tracker) *Server {
	return &Server{
		tracker: tracker,
		logger:  slog.Default().With("component", "api"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/progress", s.handleProgress)
	r.Get("/api/records", s.handleRecords)

	return r
}

// ListenAndServe runs the server until the listener fails; meant to run
// alongside the batch in its own goroutine.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("progress API listening", "addr", addr)
	return http.ListenAndServe(addr, s.Router())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type progressResponse struct {
	BatchID   string `json:"batch_id"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Success   int    `json:"success"`
	Partial   int    `json:"partial"`
	Failed    int    `json:"failed"`
}

func (s *Server) handleProgress(w http.ResponseWriter, _ *http.Request) {
	batchID, processed, total, summary := s.tracker.Status()
	s.respondJSON(w, http.StatusOK, progressResponse{
		BatchID:   batchID,
		Processed: processed,
		Total:     total,
		Success:   summary.Success,
		Partial:   summary.Partial,
		Failed:    summary.Failed,
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, s.tracker.Records())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
