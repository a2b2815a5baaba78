// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	AppPort   int    `env:"APP_PORT" envDefault:"8080"`
	APIPrefix string `env:"API_PREFIX" envDefault:"/api/v1"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Cache (Redis), used for rate limiting
	RedisURL string `env:"REDIS_URL,required"`

	// Token signing and lifetimes
	JWTSecret             string        `env:"JWT_SECRET,required"`
	AccessTokenExpiresIn  time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	RefreshTokenExpiresIn time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN" envDefault:"168h"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-request wall-clock budget. Requests exceeding it get 408.
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Rate limiting (fixed window per client IP)
	ThrottleEnabled bool          `env:"THROTTLE_ENABLED" envDefault:"true"`
	ThrottleWindow  time.Duration `env:"THROTTLE_TTL" envDefault:"60s"`
	ThrottleLimit   int           `env:"THROTTLE_LIMIT" envDefault:"10"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ORIGIN" envDefault:""`
	CORSMethods        string `env:"CORS_METHODS" envDefault:"GET,HEAD,PUT,PATCH,POST,DELETE"`
	CORSAllowedHeaders string `env:"CORS_ALLOWED_HEADERS" envDefault:"Content-Type,Authorization"`
	CORSExposedHeaders string `env:"CORS_EXPOSED_HEADERS" envDefault:""`
	CORSCredentials    bool   `env:"CORS_CREDENTIALS" envDefault:"false"`
	CORSMaxAge         int    `env:"CORS_MAX_AGE" envDefault:"3600"`

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
	return splitAndTrim(c.CORSAllowedOrigins)
}

// GetCORSMethods parses the comma-separated methods string into a slice.
func (c *Config) GetCORSMethods() []string {
	return splitAndTrim(c.CORSMethods)
}

// GetCORSAllowedHeaders parses the comma-separated headers string into a slice.
func (c *Config) GetCORSAllowedHeaders() []string {
	return splitAndTrim(c.CORSAllowedHeaders)
}

// GetCORSExposedHeaders parses the comma-separated headers string into a slice.
func (c *Config) GetCORSExposedHeaders() []string {
	return splitAndTrim(c.CORSExposedHeaders)
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
