package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	CIViC   CIViCConfig   `mapstructure:"civic"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Audit   AuditConfig   `mapstructure:"audit"`
	Logging LoggingConfig `mapstructure:"logging"`
	MCP     MCPConfig     `mapstructure:"mcp"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CIViCConfig represents CIViC GraphQL API configuration
type CIViCConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RateLimit  int           `mapstructure:"rate_limit"`
	PageSize   int           `mapstructure:"page_size"`
	MaxRecords int           `mapstructure:"max_records"`
}

// CacheConfig represents cache configuration
type CacheConfig struct {
	RedisURL       string        `mapstructure:"redis_url"`
	DefaultTTL     time.Duration `mapstructure:"default_ttl"`
	MemoryMaxItems int           `mapstructure:"memory_max_items"`
	MemoryTTL      time.Duration `mapstructure:"memory_ttl"`
}

// AuditConfig represents search audit log configuration
type AuditConfig struct {
	Backend        string `mapstructure:"backend"` // "sqlite", "postgres"
	SQLitePath     string `mapstructure:"sqlite_path"`
	PostgresURL    string `mapstructure:"postgres_url"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MCPConfig represents MCP server configuration
type MCPConfig struct {
	ServerName     string        `mapstructure:"server_name"`
	ServerVersion  string        `mapstructure:"server_version"`
	TransportType  string        `mapstructure:"transport_type"` // "stdio", "http", "websocket"
	HTTPHost       string        `mapstructure:"http_host"`
	HTTPPort       int           `mapstructure:"http_port"`
	MaxClients     int           `mapstructure:"max_clients"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}
