// Package status serves the read-only status/metrics endpoint. It derives
// everything by inspecting the registry and leaderboard; it never mutates
// game state.
package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/typerace-go/internal/dependencies/clock"
	"github.com/mcoot/typerace-go/internal/leaderboard"
)

const defaultLeaderboardLimit = 10

// RouterConfig holds dependencies for the status router
type RouterConfig struct {
	Logger      *slog.Logger
	Source      StatsSource
	Leaderboard leaderboard.Store
	Clock       clock.Clock
}

type handlers struct {
	collector   *Collector
	leaderboard leaderboard.Store
	logger      *slog.Logger
}

// NewRouter creates the status HTTP router
func NewRouter(cfg RouterConfig) *mux.Router {
	h := &handlers{
		collector:   NewCollector(cfg.Source, cfg.Clock),
		leaderboard: cfg.Leaderboard,
		logger:      cfg.Logger.With(slog.String("component", "status")),
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.metrics).Methods(http.MethodGet)
	r.HandleFunc("/leaderboard", h.topResults).Methods(http.MethodGet)
	return r
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "typerace-server",
	})
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.collect(r))
}

func (h *handlers) metrics(w http.ResponseWriter, r *http.Request) {
	m := h.collect(r)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"typerace_total_races", "Total number of races", float64(m.Games.Races)},
		{"typerace_active_connections", "Active connections", float64(m.Games.Connections)},
		{"typerace_total_players", "Total players connected", float64(m.Games.Players)},
		{"typerace_goroutines", "Goroutine count", float64(m.Runtime.Goroutines)},
		{"typerace_heap_alloc_bytes", "Heap bytes allocated", float64(m.Runtime.HeapAllocBytes)},
		{"typerace_uptime_seconds", "Server uptime in seconds", float64(m.UptimeSeconds)},
		{"typerace_leaderboard_size", "Recorded race results", float64(m.LeaderboardSize)},
	}

	for _, g := range gauges {
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s gauge\n%s %g\n", g.name, g.help, g.name, g.name, g.value)
	}
}

func (h *handlers) topResults(w http.ResponseWriter, r *http.Request) {
	limit := defaultLeaderboardLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := h.leaderboard.Top(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to read leaderboard", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "leaderboard unavailable"})
		return
	}
	if entries == nil {
		entries = []leaderboard.Entry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// collect merges the point-in-time metrics with the leaderboard size
func (h *handlers) collect(r *http.Request) Metrics {
	m := h.collector.Collect()
	if size, err := h.leaderboard.Size(r.Context()); err == nil {
		m.LeaderboardSize = size
	} else {
		h.logger.Error("failed to read leaderboard size", slog.String("error", err.Error()))
	}
	return m
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
