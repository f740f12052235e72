package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Port string

	// Per-pipeline cache TTLs.
	WeatherCacheTTL   time.Duration // default 30m
	QuotationCacheTTL time.Duration // default 1h
	NewsCacheTTL      time.Duration // default 1h

	// Per-fetch HTTP timeouts; there is no separate request timeout.
	WeatherHTTPTimeout   time.Duration // default 10s
	QuotationHTTPTimeout time.Duration // default 30s

	// Upstream endpoints, overridable for tests and mirrors.
	OpenMeteoBaseURL string
	QuotationURL     string
	NominatimBaseURL string
	NewsAPIBaseURL   string

	NewsAPIKey string

	// How often expired cache entries are swept. Zero disables the sweep;
	// lazy expiry keeps reads correct either way.
	CacheSweepInterval time.Duration

	CORSOrigins string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		Port:             getenvDefault("PORT", "8000"),
		OpenMeteoBaseURL: getenvDefault("OPEN_METEO_BASE_URL", ""),
		QuotationURL:     getenvDefault("QUOTATION_URL", ""),
		NominatimBaseURL: getenvDefault("NOMINATIM_BASE_URL", ""),
		NewsAPIBaseURL:   getenvDefault("NEWSAPI_BASE_URL", ""),
		NewsAPIKey:       os.Getenv("NEWSAPI_KEY"),
		CORSOrigins:      getenvDefault("CORS_ORIGINS", "http://localhost:3000"),
	}

	var err error
	if cfg.WeatherCacheTTL, err = getenvDuration("WEATHER_CACHE_TTL", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.QuotationCacheTTL, err = getenvDuration("QUOTATION_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.NewsCacheTTL, err = getenvDuration("NEWS_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.WeatherHTTPTimeout, err = getenvDuration("WEATHER_HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.QuotationHTTPTimeout, err = getenvDuration("QUOTATION_HTTP_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheSweepInterval, err = getenvDuration("CACHE_SWEEP_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// CORSOriginsList splits the comma-separated origins setting.
func (c *AppConfig) CORSOriginsList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
