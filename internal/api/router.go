// Package api provides HTTP routing and handlers for the gateway REST API.
package api

import (
	"github.com/gorilla/mux"

	"github.com/rentease/gateway/internal/api/handlers"
	"github.com/rentease/gateway/internal/api/middleware"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/session"
	"github.com/rentease/gateway/internal/storage"
	"github.com/rentease/gateway/internal/view"
	"github.com/rentease/gateway/internal/websocket"
)

// NewRouter creates and configures the HTTP router with all gateway routes.
func NewRouter(
	db *storage.DB,
	client *rentease.Client,
	manager *session.Manager,
	registry *view.Registry,
	hub *websocket.Hub,
	broadcaster *websocket.EventBroadcaster,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	requireSession := middleware.RequireSession(manager)
	optionalSession := middleware.OptionalSession(manager)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(db, hub, manager, registry)).Methods("GET")

	// WebSocket endpoint (session optional; anonymous gets broadcasts only)
	api.Handle("/ws", optionalSession(handlers.WebSocketUpgrade(hub))).Methods("GET")

	// Auth endpoints
	api.HandleFunc("/auth/signup", handlers.Signup(client)).Methods("POST")
	api.HandleFunc("/auth/login", handlers.Login(client, manager)).Methods("POST")
	api.Handle("/auth/logout", requireSession(handlers.Logout(manager, registry))).Methods("POST")
	api.HandleFunc("/auth/forgot-password", handlers.ForgotPassword(client)).Methods("POST")

	// Merged view endpoints
	api.Handle("/view/properties", optionalSession(handlers.GetView(registry))).Methods("GET")
	api.Handle("/view/refresh", optionalSession(handlers.RefreshView(registry))).Methods("POST")
	api.Handle("/view/favorites/{id:[0-9]+}/toggle",
		requireSession(handlers.ToggleFavorite(registry, broadcaster))).Methods("POST")

	// Booking endpoints
	api.Handle("/bookings", requireSession(handlers.ListBookings(registry))).Methods("GET")
	api.Handle("/bookings", requireSession(handlers.RequestBooking(registry, broadcaster))).Methods("POST")
	api.Handle("/bookings/{id:[0-9]+}", requireSession(handlers.CancelBooking(registry, broadcaster))).Methods("DELETE")

	// Property endpoints
	api.HandleFunc("/properties/available", handlers.ListAvailableProperties(client)).Methods("GET")
	api.HandleFunc("/properties/{id:[0-9]+}", handlers.GetProperty(client)).Methods("GET")
	api.Handle("/properties", requireSession(handlers.CreateProperty(client))).Methods("POST")
	api.Handle("/properties/{id:[0-9]+}", requireSession(handlers.UpdateProperty(client))).Methods("PUT")
	api.Handle("/properties/{id:[0-9]+}", requireSession(handlers.DeleteProperty(registry, broadcaster))).Methods("DELETE")

	// Chat endpoints
	api.Handle("/chats", requireSession(handlers.ListChats(client))).Methods("GET")
	api.Handle("/chats", requireSession(handlers.CreateChat(client))).Methods("POST")
	api.Handle("/chats/{id:[0-9]+}/messages", requireSession(handlers.ListMessages(client))).Methods("GET")
	api.Handle("/chats/{id:[0-9]+}/messages", requireSession(handlers.SendMessage(client, broadcaster))).Methods("POST")

	return r
}
