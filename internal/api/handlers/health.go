// Package handlers provides HTTP request handlers for the gateway API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rentease/gateway/internal/session"
	"github.com/rentease/gateway/internal/storage"
	"github.com/rentease/gateway/internal/view"
	"github.com/rentease/gateway/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the gateway status response.
type StatusResponse struct {
	Sessions         int `json:"sessions"`
	ActiveViews      int `json:"active_views"`
	ConnectedClients int `json:"connected_clients"`
	CachedSnapshots  int `json:"cached_snapshots"`
}

// Status returns a handler that reports gateway state.
func Status(db *storage.DB, hub *websocket.Hub, manager *session.Manager, registry *view.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var snapshots int
		db.QueryRowContext(r.Context(), "SELECT COUNT(*) FROM view_snapshots").Scan(&snapshots)

		response := StatusResponse{
			Sessions:         manager.Count(),
			ActiveViews:      len(registry.Active()),
			ConnectedClients: hub.ClientCount(),
			CachedSnapshots:  snapshots,
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
