package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv                  string
	Port                    string
	DatabaseURL             string
	RedisURL                string
	CORSAllowedOrigins      []string
	LogFormat               string
	LogLevel                string
	SnapshotCacheTTL        time.Duration
	SnapshotRefreshInterval time.Duration
	SearchDefaultLimit      int
	SearchMaxLimit          int
	RateLimit               string
	MaxBodyBytes            int64
	CurrencyCode            string
	Locale                  string
	PriorityCategories      []string
	PriorityEditions        []string
	WorkerConcurrency       int
	OTLPEndpoint            string
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:                  valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                    valueOrDefault(k.String("PORT"), "8080"),
		DatabaseURL:             k.String("DATABASE_URL"),
		RedisURL:                k.String("REDIS_URL"),
		CORSAllowedOrigins:      splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		LogFormat:               valueOrDefault(k.String("LOG_FORMAT"), "json"),
		LogLevel:                valueOrDefault(k.String("LOG_LEVEL"), "info"),
		SnapshotCacheTTL:        parseDuration(k.String("SNAPSHOT_CACHE_TTL"), "10m"),
		SnapshotRefreshInterval: parseDuration(k.String("SNAPSHOT_REFRESH_INTERVAL"), "5m"),
		SearchDefaultLimit:      parseInt(k.String("SEARCH_DEFAULT_LIMIT"), 10),
		SearchMaxLimit:          parseInt(k.String("SEARCH_MAX_LIMIT"), 50),
		RateLimit:               valueOrDefault(k.String("RATE_LIMIT"), "120-M"),
		MaxBodyBytes:            int64(parseInt(k.String("MAX_BODY_BYTES"), 1<<20)),
		CurrencyCode:            strings.ToUpper(valueOrDefault(k.String("CURRENCY_CODE"), "USD")),
		Locale:                  valueOrDefault(k.String("LOCALE"), "en-US"),
		PriorityCategories:      splitAndTrim(k.String("PRIORITY_CATEGORIES")),
		PriorityEditions:        splitAndTrim(k.String("PRIORITY_EDITIONS")),
		WorkerConcurrency:       parseInt(k.String("WORKER_CONCURRENCY"), 4),
		OTLPEndpoint:            strings.TrimSpace(k.String("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.SearchMaxLimit < cfg.SearchDefaultLimit {
		cfg.SearchMaxLimit = cfg.SearchDefaultLimit
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL is required")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// MustLoad behaves like Load but panics on error. Useful for tests and command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
