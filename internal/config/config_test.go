package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.WeatherCacheTTL)
	assert.Equal(t, time.Hour, cfg.QuotationCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.WeatherHTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.QuotationHTTPTimeout)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("WEATHER_CACHE_TTL", "5m")
	t.Setenv("QUOTATION_HTTP_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.WeatherCacheTTL)
	assert.Equal(t, 45*time.Second, cfg.QuotationHTTPTimeout)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	t.Setenv("WEATHER_CACHE_TTL", "thirty minutes")

	_, err := Load()
	require.Error(t, err)
}

func TestCORSOriginsList(t *testing.T) {
	cfg := &AppConfig{CORSOrigins: "http://localhost:3000, https://app.example.com ,"}
	assert.Equal(t,
		[]string{"http://localhost:3000", "https://app.example.com"},
		cfg.CORSOriginsList())
}
