package api

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatsProvider exposes a point-in-time snapshot of pipeline counters:
// queue depth, worker state, dedupe cache size, and published run counts.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// StatsHandler serves the operational stats endpoint.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats := h.statsProvider.GetStats()
	stats["observed_at"] = time.Now().UTC().Format(time.RFC3339)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(stats)
}
