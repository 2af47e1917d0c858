// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/matchreel/matchreel/internal/adapters/repository"
)

// RecapHandler handles published run reads.
type RecapHandler struct {
	deps Dependencies
}

// NewRecapHandler creates a new recap handler.
func NewRecapHandler(deps Dependencies) *RecapHandler {
	return &RecapHandler{deps: deps}
}

// HandleGet routes GET /contests/{id}/recap and GET /contests/{id}/validation.
func (h *RecapHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_contest"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/contests/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	contestID, resource := parts[0], parts[1]

	switch resource {
	case "recap":
		run, err := h.deps.Recap(r.Context(), contestID)
		if err != nil {
			h.writeLookupError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, run)
	case "validation":
		report, err := h.deps.LastReport(r.Context(), contestID)
		if err != nil {
			h.writeLookupError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	default:
		http.NotFound(w, r)
	}
}

func (h *RecapHandler) writeLookupError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", NewKind(op, err))
}
