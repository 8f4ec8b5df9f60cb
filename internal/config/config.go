package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Session persistence backends
const (
	BackendMemory  = "memory"
	BackendKeyring = "keyring"
	BackendRedis   = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// Remote appointment API
	API APIConfig

	// Portal HTTP server
	HTTP HTTPConfig

	// Session persistence
	Session SessionConfig

	// Redis Configuration
	Redis RedisConfig

	// Logging Configuration
	Logging LoggingConfig
}

// APIConfig holds the remote API settings
type APIConfig struct {
	BaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:5000"`
	Timeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`
}

// HTTPConfig holds portal server settings
type HTTPConfig struct {
	Addr         string   `env:"HTTP_ADDR" envDefault:"127.0.0.1:8080"`
	AllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`
}

// SessionConfig selects where the session snapshot is kept between runs
type SessionConfig struct {
	Backend string `env:"SESSION_BACKEND" envDefault:"memory"`
	Key     string `env:"SESSION_KEY" envDefault:"clinicgate:session"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Address string `env:"REDIS_ADDRESS" envDefault:"localhost:6379"` // Redis address (host:port)
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"` // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return Parse()
}

// Parse reads the configuration from the current environment only
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = BackendMemory
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values that env parsing alone cannot
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid API_BASE_URL %q: %w", c.API.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API_BASE_URL %q: scheme must be http or https", c.API.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid API_BASE_URL %q: missing host", c.API.BaseURL)
	}

	switch c.Session.Backend {
	case BackendMemory, BackendKeyring, BackendRedis:
	default:
		return fmt.Errorf("invalid SESSION_BACKEND %q, must be one of: memory, keyring, redis", c.Session.Backend)
	}

	if c.Session.Key == "" {
		return fmt.Errorf("SESSION_KEY must not be empty")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	return nil
}
