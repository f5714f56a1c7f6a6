// Package main is the entry point for the rentease gateway server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rentease/gateway/internal/api"
	"github.com/rentease/gateway/internal/config"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/session"
	"github.com/rentease/gateway/internal/storage"
	"github.com/rentease/gateway/internal/view"
	"github.com/rentease/gateway/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	// Parse command-line flags
	addr := flag.String("addr", ":8090", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting rentease gateway (version: %s)...", version)

	cfg := config.Load()

	// Initialize database
	dbPath := *dataDir + "/rentease-gateway.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	broadcaster := websocket.NewEventBroadcaster(hub)

	// Backend client
	client := rentease.NewClient(rentease.Config{
		BaseURL: cfg.BackendURL,
		Timeout: cfg.RequestTimeout,
	}, nil)

	// Session manager with persistence
	sessionRepo := storage.NewSessionRepository(db)
	manager := session.NewManager(sessionRepo)
	if err := manager.Load(context.Background()); err != nil {
		log.Printf("Warning: Failed to restore sessions: %v", err)
	}

	// View stores with the offline snapshot cache
	fetcher := view.NewFetcher(client)
	snapshots := storage.NewSnapshotRepository(db)
	registry := view.NewRegistry(client, fetcher, snapshots)

	// Forward session events to connected clients; an ended session also
	// drops the user's view store.
	go func() {
		for event := range manager.Subscribe() {
			broadcaster.SessionEvent(event)
			if event.Type == session.EventCleared || event.Type == session.EventExpired {
				registry.Drop(event.Session.User.ID)
			}
		}
	}()

	// Background jobs
	refresher := view.NewRefresher(registry, broadcaster, cfg.RefreshIntervalMin)
	if err := refresher.Start(); err != nil {
		log.Printf("Warning: Failed to start view refresher: %v", err)
	}

	watcher := session.NewWatcher(manager, cfg.SessionSweepIntervalMin)
	if err := watcher.Start(); err != nil {
		log.Printf("Warning: Failed to start session watcher: %v", err)
	}

	// Initialize HTTP router
	router := api.NewRouter(db, client, manager, registry, hub, broadcaster)

	// Create HTTP server
	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background jobs
	refresher.Stop()
	watcher.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
