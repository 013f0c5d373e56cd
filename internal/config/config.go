// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Tracing exporters understood by the telemetry package.
const (
	TracingNone   = "none"
	TracingStdout = "stdout"
	TracingOTLP   = "otlp"
)

// Config holds all configuration for the server.
type Config struct {
	Port           string
	Env            string
	UseMemoryStore bool
	SkipAuth       bool
	ProjectID      string

	GeminiAPIKey string
	GeminiModel  string

	AlgoliaAppID     string
	AlgoliaSearchKey string
	AlgoliaAdminKey  string
	AlgoliaIndex     string

	ExportBucket string
	EnablePush   bool

	LogLevel  string
	LogFormat string
	Tracing   string

	WriteTimeout   time.Duration
	SessionIdleTTL time.Duration
	SnapshotWait   time.Duration

	AllowedOrigins []string
}

var defaultOrigins = []string{
	"http://localhost:9002",
	"http://127.0.0.1:9002",
	"http://localhost:3000",
}

// Load reads configuration from environment variables, after loading a
// .env file when one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             envOr("PORT", "8111"),
		Env:              os.Getenv("ENV"),
		SkipAuth:         os.Getenv("SKIP_AUTH") == "true",
		ProjectID:        os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		AlgoliaAppID:     os.Getenv("ALGOLIA_APP_ID"),
		AlgoliaSearchKey: os.Getenv("ALGOLIA_SEARCH_KEY"),
		AlgoliaAdminKey:  os.Getenv("ALGOLIA_ADMIN_KEY"),
		AlgoliaIndex:     envOr("ALGOLIA_INDEX", "budgetbolt-transactions"),
		ExportBucket:     os.Getenv("EXPORT_BUCKET"),
		EnablePush:       os.Getenv("ENABLE_PUSH") == "true",
		LogLevel:         envOr("LOG_LEVEL", "info"),
		LogFormat:        envOr("LOG_FORMAT", "console"),
		Tracing:          envOr("TRACING", TracingNone),
	}
	cfg.UseMemoryStore = os.Getenv("USE_MEMORY_STORE") == "true" || cfg.Env == "local"

	var errs []string
	cfg.WriteTimeout = durationOr("WRITE_TIMEOUT", 15*time.Second, &errs)
	cfg.SessionIdleTTL = durationOr("SESSION_IDLE_TTL", 30*time.Minute, &errs)
	cfg.SnapshotWait = durationOr("SNAPSHOT_WAIT", 3*time.Second, &errs)

	cfg.AllowedOrigins = defaultOrigins
	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		cfg.AllowedOrigins = nil
		for origin := range strings.SplitSeq(origins, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
			}
		}
	}

	if err := cfg.validate(errs); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that the configuration is usable, reporting every problem at once.
func (c *Config) validate(errs []string) error {
	if _, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("PORT must be numeric, got %q", c.Port))
	}

	if !c.UseMemoryStore && c.ProjectID == "" {
		errs = append(errs, "GOOGLE_CLOUD_PROJECT is required unless USE_MEMORY_STORE=true")
	}

	if !slices.Contains([]string{TracingNone, TracingStdout, TracingOTLP}, c.Tracing) {
		errs = append(errs, fmt.Sprintf("TRACING must be one of none, stdout, otlp, got %q", c.Tracing))
	}

	if (c.AlgoliaAppID == "") != (c.AlgoliaSearchKey == "") {
		errs = append(errs, "ALGOLIA_APP_ID and ALGOLIA_SEARCH_KEY must be set together")
	}

	if c.AlgoliaAdminKey != "" && c.AlgoliaAppID == "" {
		errs = append(errs, "ALGOLIA_ADMIN_KEY requires ALGOLIA_APP_ID")
	}

	if c.WriteTimeout <= 0 {
		errs = append(errs, "WRITE_TIMEOUT must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// SuggestionsEnabled reports whether a model backend is configured.
func (c *Config) SuggestionsEnabled() bool {
	return c.GeminiAPIKey != ""
}

// SearchEnabled reports whether Algolia search is configured.
func (c *Config) SearchEnabled() bool {
	return c.AlgoliaAppID != "" && c.AlgoliaSearchKey != ""
}

// IndexingEnabled reports whether the server keeps the search index current.
func (c *Config) IndexingEnabled() bool {
	return c.AlgoliaAppID != "" && c.AlgoliaAdminKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration, errs *[]string) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Sprintf("%s must be a duration, got %q", key, raw))
		return fallback
	}
	return d
}
