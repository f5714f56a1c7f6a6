// Package config loads gateway configuration from the environment.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the gateway.
type Config struct {
	// BackendURL is the base URL of the rentease REST backend, including
	// the /api prefix.
	BackendURL string

	// RequestTimeout bounds every outbound backend request.
	RequestTimeout time.Duration

	// RefreshIntervalMin is how often active tenant views are re-fetched
	// and re-merged in the background.
	RefreshIntervalMin int

	// SessionSweepIntervalMin is how often persisted sessions are checked
	// for token expiry.
	SessionSweepIntervalMin int
}

// Load reads configuration from a .env file (if present) and the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		BackendURL:              getEnv("RENTEASE_API_URL", "http://localhost:8082/api"),
		RequestTimeout:          time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		RefreshIntervalMin:      getEnvInt("VIEW_REFRESH_INTERVAL_MIN", 5),
		SessionSweepIntervalMin: getEnvInt("SESSION_SWEEP_INTERVAL_MIN", 1),
	}
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default if not set
// or not parseable.
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
