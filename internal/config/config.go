// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/threaddate/backend/internal/verify"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// RedisURL enables the vote rate limiter when set. Optional — an empty
	// value disables rate limiting entirely.
	RedisURL string

	// JWTSecret is the HS256 key used to verify bearer tokens minted by the
	// hosted auth provider. Required.
	JWTSecret string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// Thresholds are the score boundaries for status transitions.
	// VERIFIED_THRESHOLD defaults to 5, REJECTED_THRESHOLD to -3.
	Thresholds verify.Thresholds

	// VoteRateLimit is the maximum number of vote actions a single user may
	// perform per minute when the rate limiter is enabled. Defaults to 30.
	VoteRateLimit int
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first if present, so local
// development does not need to export variables by hand.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	// A missing .env file is the normal production case; ignore the error.
	_ = godotenv.Load()

	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		RedisURL:    os.Getenv("REDIS_URL"),
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	var err error
	if cfg.Thresholds.Verified, err = getEnvInt("VERIFIED_THRESHOLD", 5); err != nil {
		return Config{}, err
	}
	if cfg.Thresholds.Rejected, err = getEnvInt("REJECTED_THRESHOLD", -3); err != nil {
		return Config{}, err
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid threshold configuration: %w", err)
	}

	if cfg.VoteRateLimit, err = getEnvInt("VOTE_RATE_LIMIT", 30); err != nil {
		return Config{}, err
	}
	if cfg.VoteRateLimit < 1 {
		return Config{}, fmt.Errorf("VOTE_RATE_LIMIT must be at least 1, got %d", cfg.VoteRateLimit)
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

// getEnvInt parses the named environment variable as an integer,
// falling back when the variable is not set or is empty.
func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
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
