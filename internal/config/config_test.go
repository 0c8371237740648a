package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.Equal(t, 15*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, 0, cfg.CacheMaxEntries)
	assert.Equal(t, time.Duration(0), cfg.CacheSweepInterval)
	assert.True(t, cfg.CoalesceRequests)
	assert.False(t, cfg.AuthEnabled)
	assert.False(t, cfg.ProviderConfigured())
	assert.Equal(t, 200, cfg.HistorySize)
}

func TestLoadOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("FPS_CACHE_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("COALESCE_REQUESTS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.ProviderConfigured())
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.False(t, cfg.CoalesceRequests)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("FPS_CACHE_TTL", "notaduration")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("FPS_CACHE_TTL", "0s")
	_, err = Load()
	assert.Error(t, err)
}
