// Package config provides configuration loading and validation for the API server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Session store backends
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Defaults used when neither the config file nor the environment sets a value
const (
	DefaultPort            = 8080
	DefaultSessionTTL      = 2 * time.Hour
	DefaultSweepInterval   = time.Minute
	DefaultShutdownTimeout = 10 * time.Second
	DefaultLogMode         = "dev"
)

// Config is the server configuration. Values come from defaults, then the optional
// YAML (or JSON) file, then environment variables.
type Config struct {
	Port            int           `yaml:"port"`
	SessionStore    string        `yaml:"session_store"`
	RedisAddr       string        `yaml:"redis_addr"`
	RedisPassword   string        `yaml:"redis_password"`
	RedisDB         int           `yaml:"redis_db"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	SweepInterval   time.Duration `yaml:"sweep_interval"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DatabaseURL     string        `yaml:"database_url"`
	LogMode         string        `yaml:"log_mode"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:            DefaultPort,
		SessionStore:    StoreMemory,
		SessionTTL:      DefaultSessionTTL,
		SweepInterval:   DefaultSweepInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogMode:         DefaultLogMode,
		CORSOrigins:     []string{"*"},
	}
}

// LoadConfig builds the configuration. path may be empty, in which case only defaults
// and the environment are used.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	if v := os.Getenv("SESSION_STORE"); v != "" {
		c.SessionStore = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SESSION_TTL: %v", err)
		}
		c.SessionTTL = ttl
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("LOG_MODE"); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}
	return nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}

	switch strings.ToLower(c.SessionStore) {
	case StoreMemory:
	case StoreRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("config error: 'redis_addr' is required when session_store is redis")
		}
	default:
		return fmt.Errorf("config error: unknown session_store %q", c.SessionStore)
	}

	if c.SessionTTL < 0 {
		return fmt.Errorf("config error: 'session_ttl' must be non-negative")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("config error: 'sweep_interval' must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("config error: 'shutdown_timeout' must be positive")
	}

	switch strings.ToLower(c.LogMode) {
	case "dev", "development", "prod", "production":
	default:
		return fmt.Errorf("config error: unknown log_mode %q", c.LogMode)
	}
	return nil
}

// UsesRedis reports whether sessions live in Redis.
func (c *Config) UsesRedis() bool {
	return strings.EqualFold(c.SessionStore, StoreRedis)
}

// Addr returns the listen address for the configured port.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
