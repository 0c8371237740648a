package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the service
type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	// Provider
	ProviderAPIKey  string        `env:"GEMINI_API_KEY"`
	ProviderURL     string        `env:"GEMINI_API_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"15s"`

	// Estimate cache. Zero max entries and zero sweep interval keep the
	// original behavior: no size bound, stale entries stay until rewritten.
	CacheTTL           time.Duration `env:"FPS_CACHE_TTL" envDefault:"1h"`
	CacheMaxEntries    int           `env:"FPS_CACHE_MAX_ENTRIES" envDefault:"0"`
	CacheSweepInterval time.Duration `env:"FPS_CACHE_SWEEP_INTERVAL" envDefault:"0s"`
	CoalesceRequests   bool          `env:"COALESCE_REQUESTS" envDefault:"true"`

	CatalogPath string `env:"GAME_CATALOG_PATH" envDefault:"data/games.json"`

	// HTTP surface
	RateLimitRPS      int           `env:"RATE_LIMIT_RPS" envDefault:"5"`
	RateLimitBurst    int           `env:"RATE_LIMIT_BURST" envDefault:"10"`
	RateLimiterTTL    time.Duration `env:"RATE_LIMITER_TTL" envDefault:"1h"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	MetricsAllowedIPs []string      `env:"METRICS_ALLOWED_IPS" envSeparator:","`

	// API tokens
	AuthEnabled bool          `env:"API_AUTH_ENABLED" envDefault:"false"`
	AuthSecret  string        `env:"API_AUTH_SECRET"`
	TokenExpiry time.Duration `env:"API_TOKEN_EXPIRY" envDefault:"2160h"`

	// Live feed and history
	StatsInterval time.Duration `env:"STATS_BROADCAST_INTERVAL" envDefault:"5s"`
	HistorySize   int           `env:"HISTORY_MAX_POINTS" envDefault:"200"`
}

// Load reads an optional .env file and then parses the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("[CONFIG] Loaded .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the service cannot run with
func (c *Config) Validate() error {
	if c.CacheTTL <= 0 {
		return fmt.Errorf("FPS_CACHE_TTL must be positive, got %v", c.CacheTTL)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("FPS_CACHE_MAX_ENTRIES must not be negative, got %d", c.CacheMaxEntries)
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT must be positive, got %v", c.ProviderTimeout)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got %d", c.RateLimitRPS)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("HISTORY_MAX_POINTS must be positive, got %d", c.HistorySize)
	}
	return nil
}

// ProviderConfigured reports whether a provider credential is set
func (c *Config) ProviderConfigured() bool {
	return c.ProviderAPIKey != ""
}
