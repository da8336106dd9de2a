package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// Version is the server version, overridable at build time via
// -ldflags "-X github.com/chrisgreenx-ctrl/nexonco-mcp/internal/config.Version=...".
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
)

// LoadEnvConfig builds a configuration from environment variables only.
// It is used by the MCP binary, which has to start without a config file
// when launched by an AI agent host.
func LoadEnvConfig() *domain.Config {
	cfg := &domain.Config{
		Server: domain.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		CIViC: domain.CIViCConfig{
			BaseURL:    "https://civicdb.org/api",
			Timeout:    30 * time.Second,
			RateLimit:  5,
			PageSize:   100,
			MaxRecords: 500,
		},
		Cache: domain.CacheConfig{
			DefaultTTL:     time.Hour,
			MemoryMaxItems: 256,
			MemoryTTL:      15 * time.Minute,
		},
		Audit: domain.AuditConfig{
			Backend:        "sqlite",
			SQLitePath:     defaultSQLitePath(),
			MigrationsPath: "migrations",
		},
		Logging: domain.LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stderr",
		},
		MCP: domain.MCPConfig{
			ServerName:     "nexonco",
			ServerVersion:  Version,
			TransportType:  "stdio",
			HTTPHost:       "0.0.0.0",
			HTTPPort:       8080,
			MaxClients:     100,
			RequestTimeout: 60 * time.Second,
		},
	}

	if v := os.Getenv("NEXONCO_CIVIC_BASE_URL"); v != "" {
		cfg.CIViC.BaseURL = v
	}
	if v := os.Getenv("NEXONCO_CIVIC_MAX_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CIViC.MaxRecords = n
		}
	}
	if v := os.Getenv("NEXONCO_CACHE_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
	}
	if v := os.Getenv("NEXONCO_AUDIT_BACKEND"); v != "" {
		cfg.Audit.Backend = v
	}
	if v := os.Getenv("NEXONCO_AUDIT_SQLITE_PATH"); v != "" {
		cfg.Audit.SQLitePath = v
	}
	if v := os.Getenv("NEXONCO_AUDIT_POSTGRES_URL"); v != "" {
		cfg.Audit.PostgresURL = v
	}
	if v := os.Getenv("NEXONCO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NEXONCO_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("MCP_TRANSPORT"); v != "" {
		cfg.MCP.TransportType = v
	}
	if v := os.Getenv("MCP_HTTP_HOST"); v != "" {
		cfg.MCP.HTTPHost = v
	}
	// PORT is the conventional hosting platform variable
	for _, name := range []string{"MCP_HTTP_PORT", "PORT"} {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				cfg.MCP.HTTPPort = n
				cfg.Server.Port = n
				break
			}
		}
	}

	return cfg
}

func defaultSQLitePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "nexonco", "audit.db")
	}
	return filepath.Join(homeDir, ".nexonco", "audit.db")
}
