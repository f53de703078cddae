package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config carries everything the pipeline needs from the environment.
// Secrets come from .env in development (loaded by the binaries via
// godotenv) and from real environment variables in production.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Port        string `env:"PORT" envDefault:"8080"`

	// DATABASE_URL accepts either a MySQL DSN (user:pass@tcp(...)/db) or a
	// SQLite path; database.Initialize picks the driver from its shape.
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sales_analytics.db"`

	SentosAPIURL    string `env:"SENTOS_API_URL"`
	SentosAPIKey    string `env:"SENTOS_API_KEY"`
	SentosAPISecret string `env:"SENTOS_API_SECRET"`
	SentosCookie    string `env:"SENTOS_COOKIE"`

	TrendyolAPIURL     string `env:"TRENDYOL_API_URL" envDefault:"https://apigw.trendyol.com"`
	TrendyolSupplierID string `env:"TRENDYOL_SUPPLIER_ID"`
	TrendyolAPIKey     string `env:"TRENDYOL_API_KEY"`
	TrendyolAPISecret  string `env:"TRENDYOL_API_SECRET"`

	CacheDir      string `env:"CACHE_DIR" envDefault:"data"`
	CacheTTLHours int    `env:"CACHE_TTL_HOURS" envDefault:"24"`

	RateLimitDelayMS int `env:"RATE_LIMIT_DELAY_MS" envDefault:"1000"`
	MaxRetries       int `env:"MAX_RETRIES" envDefault:"5"`
	RequestTimeoutS  int `env:"REQUEST_TIMEOUT_S" envDefault:"60"`

	SchedulerEnabled bool `env:"SCHEDULER_ENABLED" envDefault:"false"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment config: %w", err)
	}
	return cfg, nil
}

// CacheTTL returns the cost cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

// RateLimitDelay returns the minimum inter-request delay for connectors.
func (c *Config) RateLimitDelay() time.Duration {
	return time.Duration(c.RateLimitDelayMS) * time.Millisecond
}

// RequestTimeout returns the per-request network timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutS) * time.Second
}
