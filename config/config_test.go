package config

import (
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.ProxyPageTimeout)
	assert.Equal(t, 30*time.Second, cfg.ProxyImageTimeout)
	assert.Equal(t, 3, cfg.RetryMax)
	assert.Equal(t, time.Second, cfg.RetryInitialDelay)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiTextModel)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.GeminiImageModel)
	assert.Equal(t, "2024-04", cfg.ShopifyAPIVersion)
	assert.Equal(t, "fr", cfg.DefaultLanguage)
	assert.Equal(t, 200, cfg.SessionCapacity)
	assert.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PROXY_PAGE_TIMEOUT", "45s")
	t.Setenv("SETTINGS_BACKEND", "redis")
	t.Setenv("RETRY_MAX", "5")

	var cfg Config
	require.NoError(t, envconfig.Process("", &cfg))
	assert.Equal(t, 45*time.Second, cfg.ProxyPageTimeout)
	assert.Equal(t, "redis", cfg.SettingsBackend)
	assert.Equal(t, 5, cfg.RetryMax)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		var cfg Config
		require.NoError(t, envconfig.Process("", &cfg))
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero page timeout", func(c *Config) { c.ProxyPageTimeout = 0 }},
		{"negative retries", func(c *Config) { c.RetryMax = -1 }},
		{"shrinking backoff", func(c *Config) { c.RetryFactor = 0.5 }},
		{"empty session", func(c *Config) { c.SessionCapacity = 0 }},
		{"unknown settings backend", func(c *Config) { c.SettingsBackend = "sqlite" }},
		{"unknown ledger backend", func(c *Config) { c.LedgerBackend = "file" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
