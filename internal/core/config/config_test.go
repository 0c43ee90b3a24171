package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults verifies that default values are used when env vars are missing.
func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("APP_ENV")
	os.Unsetenv("LOG_LEVEL")
	os.Unsetenv("SERVER_PORT")

	os.Setenv("SHOPIFY_STORE_URL", "https://acme.myshopify.com")
	os.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_default")
	defer func() {
		os.Unsetenv("SHOPIFY_STORE_URL")
		os.Unsetenv("SHOPIFY_ACCESS_TOKEN")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "2024-01", cfg.Shopify.APIVersion)
	assert.Equal(t, "redis://localhost:6379", cfg.Redis.URL)
	assert.Equal(t, 10, cfg.RateLimit.LookupMax)
	assert.Equal(t, 60, cfg.RateLimit.LookupWindowSeconds)
	assert.Equal(t, 5, cfg.RateLimit.SubmitMax)
	assert.Equal(t, 3600, cfg.RateLimit.SubmitWindowSeconds)
}

// TestLoad_EnvVars verifies that environment variables override defaults.
func TestLoad_EnvVars(t *testing.T) {
	os.Setenv("APP_ENV", "production")
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("SHOPIFY_STORE_URL", "https://example.myshopify.com")
	os.Setenv("SHOPIFY_ACCESS_TOKEN", "shpat_123")
	os.Setenv("RATE_LIMIT_SUBMIT_MAX", "3")
	defer func() {
		os.Unsetenv("APP_ENV")
		os.Unsetenv("LOG_LEVEL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("SHOPIFY_STORE_URL")
		os.Unsetenv("SHOPIFY_ACCESS_TOKEN")
		os.Unsetenv("RATE_LIMIT_SUBMIT_MAX")
	}()

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9090, cfg.ServerPort)
	assert.Equal(t, "https://example.myshopify.com", cfg.Shopify.StoreURL)
	assert.Equal(t, "shpat_123", cfg.Shopify.AccessToken)
	assert.Equal(t, 3, cfg.RateLimit.SubmitMax)
}

// TestLoad_File verifies that values are loaded from a .env file.
func TestLoad_File(t *testing.T) {
	content := []byte(`
APP_ENV=staging
LOG_LEVEL=warn
SERVER_PORT=7070
SHOPIFY_STORE_URL=https://staging.myshopify.com
SHOPIFY_ACCESS_TOKEN=shpat_staging
`)
	err := os.WriteFile(".env", content, 0644)
	require.NoError(t, err)
	defer os.Remove(".env")

	cfg, err := Load(".")
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 7070, cfg.ServerPort)
}

// TestLoad_ValidationFailure verifies that missing required fields return an error.
func TestLoad_ValidationFailure(t *testing.T) {
	os.Unsetenv("SHOPIFY_STORE_URL")
	os.Unsetenv("SHOPIFY_ACCESS_TOKEN")

	cfg, err := Load(".")
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "missing required configuration")
}
