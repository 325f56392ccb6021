package main

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dexux/marketsync/internal/coordinator"
)

// statsSource is the part of the coordinator the health endpoint reads.
type statsSource interface {
	Stats() coordinator.Stats
}

// newHealthHandler serves /health and the Prometheus metrics path.
func newHealthHandler(src statsSource, metricsPath string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		stats := src.Stats()

		health := struct {
			Status     string                 `json:"status"`
			SessionID  string                 `json:"session_id"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			SessionID:  stats.SessionID,
			Components: make(map[string]interface{}),
		}

		if stats.Connection.Connected {
			health.Components["data_server"] = "connected"
		} else {
			health.Status = "unhealthy"
			health.Components["data_server"] = "disconnected"
		}
		health.Components["requests"] = map[string]int64{
			"sent":   stats.Connection.RequestsSent,
			"errors": stats.Connection.SendErrors,
		}
		health.Components["router"] = map[string]int64{
			"received": stats.Router.MessagesReceived,
			"routed":   stats.Router.MessagesRouted,
			"parse":    stats.Router.ParseErrors,
			"unknown":  stats.Router.UnknownMessages,
		}
		health.Components["event_queue"] = stats.Queue.Len
		health.Components["pending_refresh"] = stats.PendingRefresh

		// Nothing answered yet: no refresh timer is armed.
		if health.Status == "healthy" && stats.PendingRefresh == 0 {
			health.Status = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	mux.Handle(metricsPath, promhttp.Handler())
	return mux
}
