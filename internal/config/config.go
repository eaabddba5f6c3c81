// Package config provides environment-driven configuration for the
// application, parsed once at startup into an immutable Config value.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the configuration values for the application.
// It is constructed once by Parse and passed by reference afterwards;
// nothing mutates it after startup.
type Config struct {
	// RunAddress defines the server's listening address (ip:port).
	RunAddress string `env:"RUN_ADDRESS" envDefault:"localhost:8080"`

	// DatabaseDSN holds the PostgreSQL connection string.
	DatabaseDSN string `env:"DATABASE_URL,required,notEmpty"`

	// JWTSecret is the HMAC key used to sign session tokens.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// JWTAlgorithm names the signing algorithm. Only HS256 is supported.
	JWTAlgorithm string `env:"JWT_ALGORITHM" envDefault:"HS256"`

	// TokenTTLDays is the session token lifetime in days.
	TokenTTLDays int `env:"JWT_EXPIRY_DAYS" envDefault:"7"`

	// CORSAllowedOrigins lists the origins allowed to send credentialed
	// cross-origin requests, comma-separated in the environment.
	CORSAllowedOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:8000"`

	// LogLevel sets the zap logging level.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse reads configuration from the environment and validates it.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.JWTAlgorithm != "HS256" {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", cfg.JWTAlgorithm)
	}
	if cfg.TokenTTLDays <= 0 {
		return nil, errors.New("JWT_EXPIRY_DAYS must be positive")
	}

	return cfg, nil
}

// TokenTTL returns the configured token lifetime as a duration.
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.TokenTTLDays) * 24 * time.Hour
}
