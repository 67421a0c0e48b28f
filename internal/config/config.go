// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Supported password hashers.
const (
	HasherBcrypt   = "bcrypt"
	HasherArgon2id = "argon2id"
)

// Supported database URL schemes.
const (
	SchemePostgres    = "postgres"
	SchemePostgresQL  = "postgresql"
	SchemeMongo       = "mongodb"
	SchemeMongoSRV    = "mongodb+srv"
	SchemeMemory      = "memory"
	minSecretLength   = 16
	defaultListenPort = 3000
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT"`
	// Port is the conventional PaaS variable; used when APP_PORT is unset.
	Port int `env:"PORT"`

	// Document store. The scheme selects the backend.
	DatabaseURL  string `env:"DATABASE_URL,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"TodoApp"`

	// Session tokens
	JWTSecret string        `env:"JWT_SECRET,required"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	// Credential hashing
	PasswordHasher  string `env:"PASSWORD_HASHER" envDefault:"bcrypt"`
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"10"`
	HashConcurrency int    `env:"HASH_CONCURRENCY" envDefault:"0"`

	// Session cache (Redis). Disabled when empty.
	RedisURL        string        `env:"REDIS_URL"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL" envDefault:"1m"`

	// Minimum time spent in the access guard, evens out failure timings.
	AuthMinDuration time.Duration `env:"AUTH_MIN_DURATION" envDefault:"0s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// ListenPort returns APP_PORT, then PORT, then the default.
func (c *Config) ListenPort() int {
	if c.AppPort > 0 {
		return c.AppPort
	}
	if c.Port > 0 {
		return c.Port
	}
	return defaultListenPort
}

// DatabaseScheme returns the lower-cased scheme of DATABASE_URL.
func (c *Config) DatabaseScheme() string {
	u, err := url.Parse(c.DatabaseURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
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

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	switch c.DatabaseScheme() {
	case SchemePostgres, SchemePostgresQL, SchemeMongo, SchemeMongoSRV, SchemeMemory:
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE_URL scheme %q", c.DatabaseScheme()))
	}

	switch c.PasswordHasher {
	case HasherBcrypt, HasherArgon2id:
	default:
		errs = append(errs, fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher))
	}

	if !c.IsDevelopment() && len(c.JWTSecret) < minSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLength))
	}

	if c.TokenTTL < 0 {
		errs = append(errs, errors.New("TOKEN_TTL must not be negative"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
