package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ISWebster1401/PlantCare--sub000/internal/aggregation"
	"github.com/ISWebster1401/PlantCare--sub000/internal/dashboard"
	"github.com/ISWebster1401/PlantCare--sub000/internal/push"
	"github.com/ISWebster1401/PlantCare--sub000/internal/telemetry"
)

// handleDashboard runs a full aggregation pass and returns the snapshot
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tf, ok := s.timeframeParam(w, r)
	if !ok {
		return
	}

	snapshot, err := s.engine.Run(r.Context(), tf)
	if err != nil {
		writePassError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snapshot)
}

type gaugeResponse struct {
	aggregation.Gauge
	Timeframe telemetry.Timeframe `json:"timeframe"`
}

// handleGauge projects a single metric from a fresh pass
func (s *Server) handleGauge(w http.ResponseWriter, r *http.Request) {
	key, err := telemetry.ParseMetricKey(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return
	}

	tf, ok := s.timeframeParam(w, r)
	if !ok {
		return
	}

	gauge, err := s.engine.Gauge(r.Context(), key, tf)
	if err != nil {
		writePassError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, gaugeResponse{Gauge: gauge, Timeframe: tf})
}

// handleMetrics serves the static descriptor tables the frontend renders
// axes and selectors from
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Metrics    []telemetry.MetricInfo `json:"metrics"`
		Timeframes []telemetry.Timeframe  `json:"timeframes"`
	}{telemetry.Metrics(), telemetry.Timeframes()})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		Uptime string `json:"uptime"`
	}{"ok", time.Since(s.startedAt).Round(time.Second).String()})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	push.ServeWS(s.hub, w, r)
}

// timeframeParam reads the timeframe query parameter, falling back to
// the configured default when absent. A malformed value writes a 400
// and reports !ok.
func (s *Server) timeframeParam(w http.ResponseWriter, r *http.Request) (telemetry.Timeframe, bool) {
	raw := r.URL.Query().Get("timeframe")
	if raw == "" {
		return s.defaultTimeframe, true
	}

	tf, err := telemetry.ParseTimeframe(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), false)
		return "", false
	}
	return tf, true
}

// writePassError maps an engine failure onto a status code. A registry
// outage is retryable for the caller; anything else is not.
func writePassError(w http.ResponseWriter, err error) {
	if errors.Is(err, dashboard.ErrRegistryUnavailable) {
		writeError(w, http.StatusBadGateway, err.Error(), true)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error(), false)
}

type errorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, retryable bool) {
	writeJSON(w, status, errorResponse{Error: msg, Retryable: retryable})
}
