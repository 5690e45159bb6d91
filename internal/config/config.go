// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// StoreDriver selects the document-store driver: "postgres" (default)
	// or "memory". The memory driver keeps everything in-process and loses
	// all data on restart — development only.
	StoreDriver string

	// DatabaseURL is the Postgres connection string.
	// Required when StoreDriver is "postgres".
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set, or an
// unrecognized store driver.
func Load() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}

	switch cfg.StoreDriver {
	case "memory":
	case "postgres":
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("required environment variables not set: DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORE_DRIVER %q (want \"postgres\" or \"memory\")", cfg.StoreDriver)
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
