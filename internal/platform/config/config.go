package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const insecureJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Pricing
	BaseCurrency          string // Currency all cost, sell and margin totals are kept in
	DefaultTargetCurrency string // Display currency of new quotes

	// HTTP edge
	RateLimit          string // ulule/limiter formatted rate, e.g. "300-M"
	RateLimitRedisURL  string // Empty selects the in-memory store
	CORSAllowedOrigins []string

	PosthogAPIKey  string
	MigrationsPath string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("BASE_CURRENCY", "EUR")
	v.SetDefault("DEFAULT_TARGET_CURRENCY", "")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("RATE_LIMIT_REDIS_URL", "")
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")

	// Environment variables override the defaults and the .env file.
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:           v.GetString("PGSQL_URL"),
		Port:                  v.GetString("PORT"),
		IsProduction:          v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:         v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		BaseCurrency:          strings.ToUpper(strings.TrimSpace(v.GetString("BASE_CURRENCY"))),
		DefaultTargetCurrency: strings.ToUpper(strings.TrimSpace(v.GetString("DEFAULT_TARGET_CURRENCY"))),
		RateLimit:             v.GetString("RATE_LIMIT"),
		RateLimitRedisURL:     v.GetString("RATE_LIMIT_REDIS_URL"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		PosthogAPIKey:         v.GetString("POSTHOG_API_KEY"),
		MigrationsPath:        v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set")
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if cfg.JWTSecret == "" || cfg.JWTSecret == insecureJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = insecureJWTSecret
		slog.Warn("JWT_SECRET not set, using the default insecure key")
	}

	if !isCurrencyCode(cfg.BaseCurrency) {
		return nil, fmt.Errorf("BASE_CURRENCY must be a 3-letter currency code, got %q", cfg.BaseCurrency)
	}
	if cfg.DefaultTargetCurrency == "" {
		cfg.DefaultTargetCurrency = cfg.BaseCurrency
	}
	if !isCurrencyCode(cfg.DefaultTargetCurrency) {
		return nil, fmt.Errorf("DEFAULT_TARGET_CURRENCY must be a 3-letter currency code, got %q", cfg.DefaultTargetCurrency)
	}

	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func isCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
