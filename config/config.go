package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Store     StoreConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 4

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// BlockedResourceTypes lists resource types never loaded.
	// default: ["Image", "Stylesheet", "Font", "Media"]
	BlockedResourceTypes []string
}

// ScraperConfig controls attempt behavior shared across jurisdictions.
type ScraperConfig struct {
	// DefaultTimeout applies when a jurisdiction profile has no timeout_ms.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout caps any per-jurisdiction timeout.
	MaxTimeout time.Duration // default: 120s

	// ProfilesPath is the jurisdiction profile file.
	ProfilesPath string // default: "jurisdictions.yaml"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	Enabled bool // default: true
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 // default: 5
	Burst             int     // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// StoreConfig controls the saved regression-case store.
type StoreConfig struct {
	// CasesPath is the JSON file holding saved TestCases.
	CasesPath string // default: "testcases.json"
}

// WebhookConfig controls batch-run completion notifications.
type WebhookConfig struct {
	// URL receives a POST when a regression run completes. Empty disables.
	URL string

	// Secret signs the payload with HMAC-SHA256 when non-empty.
	Secret string

	// RetryDelays are the waits before each redelivery attempt after the
	// initial one fails.
	RetryDelays []time.Duration

	// Timeout bounds a single delivery attempt.
	Timeout time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("OWNERTRACE_HOST", "0.0.0.0"),
			Port: envIntOr("OWNERTRACE_PORT", 8080),
			Mode: envOr("OWNERTRACE_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("OWNERTRACE_HEADLESS", true),
			MaxPages:   envIntOr("OWNERTRACE_MAX_PAGES", 4),
			NoSandbox:  envBoolOr("OWNERTRACE_NO_SANDBOX", false),
			BrowserBin: os.Getenv("OWNERTRACE_BROWSER_BIN"),
			BlockedResourceTypes: envSliceOr("OWNERTRACE_BLOCKED_RESOURCES", []string{
				"Image", "Stylesheet", "Font", "Media",
			}),
		},
		Scraper: ScraperConfig{
			DefaultTimeout: envDurationOr("OWNERTRACE_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:     envDurationOr("OWNERTRACE_MAX_TIMEOUT", 120*time.Second),
			ProfilesPath:   envOr("OWNERTRACE_PROFILES", "jurisdictions.yaml"),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("OWNERTRACE_AUTH_ENABLED", true),
			APIKeys: envSliceOr("OWNERTRACE_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("OWNERTRACE_RATE_RPS", 5.0),
			Burst:             envIntOr("OWNERTRACE_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("OWNERTRACE_LOG_LEVEL", "info"),
			Format: envOr("OWNERTRACE_LOG_FORMAT", "json"),
		},
		Store: StoreConfig{
			CasesPath: envOr("OWNERTRACE_CASES_PATH", "testcases.json"),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("OWNERTRACE_WEBHOOK_URL"),
			Secret: os.Getenv("OWNERTRACE_WEBHOOK_SECRET"),
			RetryDelays: envDurationSliceOr("OWNERTRACE_WEBHOOK_RETRY_DELAYS",
				[]time.Duration{1 * time.Second, 5 * time.Second, 30 * time.Second}),
			Timeout: envDurationOr("OWNERTRACE_WEBHOOK_TIMEOUT", 10*time.Second),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var result []time.Duration
	for _, p := range strings.Split(v, ",") {
		d, err := time.ParseDuration(strings.TrimSpace(p))
		if err != nil {
			return fallback
		}
		result = append(result, d)
	}
	return result
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
