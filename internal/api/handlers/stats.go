package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/etpassistant/internal/stats"
)

type StatsHandler struct {
	counter *stats.Counter
}

func NewStatsHandler(c *stats.Counter) *StatsHandler {
	return &StatsHandler{counter: c}
}

func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.counter.Load(r.Context()))
}
