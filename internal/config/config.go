// Package config provides configuration management for the nexonco server.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// Manager loads and validates server configuration using Viper
type Manager struct {
	config *domain.Config
}

// NewManager creates a new configuration manager
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults
func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/nexonco-mcp/")

	viper.SetEnvPrefix("NEXONCO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	// Config file is optional, defaults and env vars cover everything
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := viper.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	// HTTP server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// CIViC API defaults
	viper.SetDefault("civic.base_url", "https://civicdb.org/api")
	viper.SetDefault("civic.timeout", "30s")
	viper.SetDefault("civic.rate_limit", 5)
	viper.SetDefault("civic.page_size", 100)
	viper.SetDefault("civic.max_records", 500)

	// Cache defaults. Redis URL empty by default so the server runs
	// standalone; the in-memory report cache is always on.
	viper.SetDefault("cache.redis_url", "")
	viper.SetDefault("cache.default_ttl", "1h")
	viper.SetDefault("cache.memory_max_items", 256)
	viper.SetDefault("cache.memory_ttl", "15m")

	// Audit defaults
	viper.SetDefault("audit.backend", "sqlite")
	viper.SetDefault("audit.sqlite_path", defaultSQLitePath())
	viper.SetDefault("audit.postgres_url", "")
	viper.SetDefault("audit.migrations_path", "migrations")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	// MCP defaults
	viper.SetDefault("mcp.server_name", "nexonco")
	viper.SetDefault("mcp.server_version", Version)
	viper.SetDefault("mcp.transport_type", "stdio")
	viper.SetDefault("mcp.http_host", "0.0.0.0")
	viper.SetDefault("mcp.http_port", 8080)
	viper.SetDefault("mcp.max_clients", 100)
	viper.SetDefault("mcp.request_timeout", "60s")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.CIViC.BaseURL == "" {
		return fmt.Errorf("CIViC base URL is required")
	}
	if config.CIViC.PageSize <= 0 {
		return fmt.Errorf("invalid CIViC page size: %d", config.CIViC.PageSize)
	}
	if config.CIViC.MaxRecords <= 0 {
		return fmt.Errorf("invalid CIViC max records: %d", config.CIViC.MaxRecords)
	}

	switch config.Audit.Backend {
	case "sqlite":
		if config.Audit.SQLitePath == "" {
			return fmt.Errorf("audit SQLite path is required")
		}
	case "postgres":
		if config.Audit.PostgresURL == "" {
			return fmt.Errorf("audit Postgres URL is required")
		}
	default:
		return fmt.Errorf("invalid audit backend: %s", config.Audit.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}
