// Package config centralises environment configuration. Everything is read
// once at startup and handed to constructors explicitly; nothing should
// reach for os.Getenv after that.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the sync service.
type Config struct {
	Addr        string
	DatabaseURL string

	// Identity header set by the edge access gateway. Empty disables the
	// check (local development).
	AccessHeader string

	TidepoolBaseURL  string
	TidepoolEmail    string
	TidepoolPassword string

	StravaBaseURL      string
	StravaTokenURL     string
	StravaClientID     string
	StravaClientSecret string

	GitHubBaseURL string
	GitHubToken   string
	GitHubUser    string

	AnthropicBaseURL  string
	AnthropicAdminKey string

	LookbackDays int
	PageDelay    time.Duration
	SyncInterval time.Duration
	SyncTimeout  time.Duration
}

// Load reads environment variables into Config, applying defaults suitable
// for local development.
func Load() Config {
	return Config{
		Addr:        getEnv("ADDR", ":8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),

		AccessHeader: getEnv("ACCESS_HEADER", "Cf-Access-Authenticated-User-Email"),

		TidepoolBaseURL:  getEnv("TIDEPOOL_BASE_URL", "https://api.tidepool.org"),
		TidepoolEmail:    getEnv("TIDEPOOL_EMAIL", ""),
		TidepoolPassword: getEnv("TIDEPOOL_PASSWORD", ""),

		StravaBaseURL:      getEnv("STRAVA_BASE_URL", "https://www.strava.com/api/v3"),
		StravaTokenURL:     getEnv("STRAVA_TOKEN_URL", "https://www.strava.com/oauth/token"),
		StravaClientID:     getEnv("STRAVA_CLIENT_ID", ""),
		StravaClientSecret: getEnv("STRAVA_CLIENT_SECRET", ""),

		GitHubBaseURL: getEnv("GITHUB_BASE_URL", "https://api.github.com"),
		GitHubToken:   getEnv("GITHUB_TOKEN", ""),
		GitHubUser:    getEnv("GITHUB_USER", ""),

		AnthropicBaseURL:  getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		AnthropicAdminKey: getEnv("ANTHROPIC_ADMIN_KEY", ""),

		LookbackDays: getIntEnv("LOOKBACK_DAYS", 3),
		PageDelay:    getDurationEnv("PAGE_DELAY", 500*time.Millisecond),
		SyncInterval: getDurationEnv("SYNC_INTERVAL", time.Hour),
		SyncTimeout:  getDurationEnv("SYNC_TIMEOUT", 2*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
