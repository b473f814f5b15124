package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Empty variables count as unset.
	for _, key := range []string{"PORT", "IS_PRODUCTION", "JWT_SECRET", "BASE_CURRENCY", "DEFAULT_TARGET_CURRENCY", "RATE_LIMIT", "CORS_ALLOWED_ORIGINS", "MIGRATIONS_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.IsProduction)
	assert.Equal(t, insecureJWTSecret, cfg.JWTSecret)
	assert.Equal(t, "EUR", cfg.BaseCurrency)
	assert.Equal(t, "EUR", cfg.DefaultTargetCurrency)
	assert.Equal(t, "300-M", cfg.RateLimit)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BASE_CURRENCY", "usd")
	t.Setenv("DEFAULT_TARGET_CURRENCY", "")
	t.Setenv("RATE_LIMIT", "50-S")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, "USD", cfg.DefaultTargetCurrency, "target defaults to the base currency")
	assert.Equal(t, "50-S", cfg.RateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadConfig_InsecureSecretInProduction(t *testing.T) {
	t.Setenv("IS_PRODUCTION", "true")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BASE_CURRENCY", "EUR")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadConfig_InvalidTargetCurrency(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("BASE_CURRENCY", "EUR")
	t.Setenv("DEFAULT_TARGET_CURRENCY", "EURO")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "DEFAULT_TARGET_CURRENCY")
}
