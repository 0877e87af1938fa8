// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:3000"] (frontend dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// APIBaseURL is the public base URL of this server, used to build the
	// confirmation links embedded in emails. Defaults to
	// "http://localhost:8080".
	APIBaseURL string

	// FrontendBaseURL is the base URL of the web app, used as the redirect
	// target after a confirmation. Defaults to "http://localhost:3000".
	FrontendBaseURL string

	// SMTPHost is the outbound mail server hostname. Required.
	SMTPHost string

	// SMTPPort is the outbound mail server port. Defaults to 587.
	SMTPPort int

	// SMTPUsername and SMTPPassword authenticate against the mail server.
	// Leave both empty for an unauthenticated relay (local development).
	SMTPUsername string
	SMTPPassword string

	// MailFromName and MailFromAddress identify the sender of every
	// confirmation email.
	MailFromName    string
	MailFromAddress string

	// RateLimitPerSec and RateLimitBurst configure the per-IP request rate
	// limit. Defaults: 5 req/sec sustained, burst of 20.
	RateLimitPerSec float64
	RateLimitBurst  int

	// MaxBodyBytes caps incoming request bodies. Defaults to 64 KiB — trip
	// creation is the only body-carrying endpoint and it is small.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		APIBaseURL:      getEnv("API_BASE_URL", "http://localhost:8080"),
		FrontendBaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		SMTPUsername:    os.Getenv("SMTP_USERNAME"),
		SMTPPassword:    os.Getenv("SMTP_PASSWORD"),
		MailFromName:    getEnv("MAIL_FROM_NAME", "Trip Planner"),
		MailFromAddress: getEnv("MAIL_FROM_ADDRESS", "hello@planner.example"),
	}

	var err error
	if cfg.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitBurst, err = getEnvInt("RATE_LIMIT_BURST", 20); err != nil {
		return Config{}, err
	}
	if cfg.RateLimitPerSec, err = getEnvFloat("RATE_LIMIT_PER_SEC", 5); err != nil {
		return Config{}, err
	}
	maxBody, err := getEnvInt("MAX_BODY_BYTES", 64*1024)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.SMTPHost = os.Getenv("SMTP_HOST")
	if cfg.SMTPHost == "" {
		missing = append(missing, "SMTP_HOST")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
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

// getEnvInt parses the named variable as an int, or returns fallback when unset.
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

// getEnvFloat parses the named variable as a float64, or returns fallback when unset.
func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, v)
	}
	return f, nil
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
