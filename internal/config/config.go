// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the portal service.
type Config struct {
	Port        string
	Env         string // "production" or "development"
	DatabaseURL string
	RedisURL    string

	SessionSecret string
	SessionTTL    time.Duration

	// OpenAPIKey is the shared secret for the /api/open gateway. May be empty
	// in development; in production an empty key refuses all gateway access.
	OpenAPIKey string

	// StatsRefreshMinutes controls how often the cached government dashboard
	// snapshot is recomputed.
	StatsRefreshMinutes int
}

// IsProduction reports whether the service runs with production policies.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	port := os.Getenv("PORTAL_PORT")
	if port == "" {
		port = "8080"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	ttl := 12 * time.Hour
	if raw := os.Getenv("SESSION_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("SESSION_TTL_HOURS must be a positive integer, got %q", raw)
		}
		ttl = time.Duration(hours) * time.Hour
	}

	refresh := 15
	if raw := os.Getenv("STATS_REFRESH_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("STATS_REFRESH_MINUTES must be a positive integer, got %q", raw)
		}
		refresh = minutes
	}

	return &Config{
		Port:                port,
		Env:                 env,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		SessionSecret:       secret,
		SessionTTL:          ttl,
		OpenAPIKey:          os.Getenv("OPEN_API_KEY"),
		StatsRefreshMinutes: refresh,
	}, nil
}
