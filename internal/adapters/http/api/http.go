// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/matchreel/matchreel/internal/adapters/repository"
	"github.com/matchreel/matchreel/internal/domain/dedupe"
	"github.com/matchreel/matchreel/internal/domain/model"
	"github.com/matchreel/matchreel/internal/domain/validate"
	"github.com/matchreel/matchreel/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a contest bundle for async assembly. Returns false
	// on backpressure.
	Enqueue(ctx context.Context, submissionID string, bundle model.ContestBundle) bool

	// Read operations expose published runs.
	Recap(ctx context.Context, contestID string) (repository.Run, error)
	LastReport(ctx context.Context, contestID string) (validate.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	contestsHandler *ContestsHandler
	recapHandler    *RecapHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		contestsHandler: NewContestsHandler(deps),
		recapHandler:    NewRecapHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux, deps Dependencies) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/contests", MetricsMiddleware(s.contestsHandler.HandlePostContest, "contests"))
	mux.HandleFunc("/contests/", MetricsMiddleware(s.recapHandler.HandleGet, "recap"))
	mux.Handle("/metrics", metrics.Handler())
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
