// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"4000"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Identity provider
	AuthJWKSURL             string        `env:"AUTH_JWKS_URL,required"`
	AuthIssuer              string        `env:"AUTH_ISSUER"`
	AuthAudience            string        `env:"AUTH_AUDIENCE"`
	AuthJWKSRefreshInterval time.Duration `env:"AUTH_JWKS_REFRESH_INTERVAL" envDefault:"12s"`
	AuthJWKSCacheTTL        time.Duration `env:"AUTH_JWKS_CACHE_TTL" envDefault:"10m"`
	AuthClockSkew           time.Duration `env:"AUTH_CLOCK_SKEW" envDefault:"30s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Rate limiting
	RateLimitEnabled   bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitUserRPM   int  `env:"RATE_LIMIT_USER_RPM" envDefault:"120"`
	RateLimitUserBurst int  `env:"RATE_LIMIT_USER_BURST" envDefault:"20"`
	RateLimitIPRPS     int  `env:"RATE_LIMIT_IP_RPS" envDefault:"20"`
	RateLimitIPBurst   int  `env:"RATE_LIMIT_IP_BURST" envDefault:"40"`

	// Job detail cache
	JobCacheTTL time.Duration `env:"JOB_CACHE_TTL" envDefault:"5m"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks values the env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.AppEnv != "development" && c.AppEnv != "production" && c.AppEnv != "test" {
		errs = append(errs, fmt.Errorf("APP_ENV must be development, production or test, got %q", c.AppEnv))
	}
	if c.AppPort <= 0 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("APP_PORT out of range: %d", c.AppPort))
	}
	if !strings.HasPrefix(c.AuthJWKSURL, "https://") && !(c.IsDevelopment() && strings.HasPrefix(c.AuthJWKSURL, "http://")) {
		errs = append(errs, errors.New("AUTH_JWKS_URL must use https outside development"))
	}
	if c.RateLimitEnabled && (c.RateLimitUserBurst < 1 || c.RateLimitIPBurst < 1) {
		errs = append(errs, errors.New("rate limit bursts must be at least 1"))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	return LoadFiles(".env")
}

// LoadFiles loads the given dotenv files into the process environment, then
// parses it. Variables already set in the environment win over file values,
// and missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
