// Package config loads the service configuration from defaults, an
// optional YAML file, and environment overrides, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BaSui01/agentweave/agent"
	"github.com/BaSui01/agentweave/internal/database"
	"github.com/BaSui01/agentweave/internal/server"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig        `yaml:"server"`
	Database DatabaseConfig      `yaml:"database"`
	Cache    CacheConfig         `yaml:"cache"`
	Agents   agent.InvokerConfig `yaml:"agents"`
	Log      LogConfig           `yaml:"log"`
}

// ServerConfig configures the HTTP and metrics listeners.
type ServerConfig struct {
	HTTPPort    int           `yaml:"http_port"`
	MetricsPort int           `yaml:"metrics_port"`
	HTTP        server.Config `yaml:"http"`
}

// DatabaseConfig configures the persistence layer.
type DatabaseConfig struct {
	// Driver selects the dialect: postgres or sqlite.
	Driver string `yaml:"driver"`
	// DSN is the driver-specific connection string.
	DSN  string              `yaml:"dsn"`
	Pool database.PoolConfig `yaml:"pool"`
}

// CacheConfig configures the agent handle cache.
type CacheConfig struct {
	// Enabled turns the Redis handle cache on.
	Enabled bool `yaml:"enabled"`
	agent.CacheConfig `yaml:",inline"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Development switches to the human-readable console encoder.
	Development bool `yaml:"development"`
}

// Default returns the configuration used when nothing is provided.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:    8080,
			MetricsPort: 9090,
			HTTP:        server.DefaultConfig(),
		},
		Database: DatabaseConfig{
			Driver: "postgres",
			DSN:    "host=localhost user=agentweave dbname=agentweave sslmode=disable",
			Pool:   database.DefaultPoolConfig(),
		},
		Cache: CacheConfig{
			Enabled:     false,
			CacheConfig: agent.DefaultCacheConfig(),
		},
		Agents: agent.DefaultInvokerConfig(),
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration: defaults, then the YAML file at path (if
// non-empty), then environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort <= 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics_port: %d", c.Server.MetricsPort)
	}
	if c.Server.MetricsPort == c.Server.HTTPPort {
		return fmt.Errorf("metrics_port must differ from http_port")
	}
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Agents.BaseURL == "" {
		return fmt.Errorf("agents base_url is required")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	return nil
}

// applyEnvOverrides applies AGENTWEAVE_* environment variables on top of
// the file configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTWEAVE_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}
	if v := os.Getenv("AGENTWEAVE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.MetricsPort = port
		}
	}
	if v := os.Getenv("AGENTWEAVE_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("AGENTWEAVE_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("AGENTWEAVE_REDIS_ADDR"); v != "" {
		cfg.Cache.Enabled = true
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("AGENTWEAVE_AGENTS_URL"); v != "" {
		cfg.Agents.BaseURL = v
	}
	if v := os.Getenv("AGENTWEAVE_AGENTS_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Agents.Timeout = d
		}
	}
	if v := os.Getenv("AGENTWEAVE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
