package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func clearEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"NEXONCO_CIVIC_BASE_URL",
		"NEXONCO_CIVIC_MAX_RECORDS",
		"NEXONCO_CACHE_REDIS_URL",
		"NEXONCO_AUDIT_BACKEND",
		"NEXONCO_AUDIT_SQLITE_PATH",
		"NEXONCO_AUDIT_POSTGRES_URL",
		"NEXONCO_LOG_LEVEL",
		"NEXONCO_LOG_FORMAT",
		"MCP_TRANSPORT",
		"MCP_HTTP_HOST",
		"MCP_HTTP_PORT",
		"PORT",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}

func TestLoadEnvConfig_Defaults(t *testing.T) {
	clearEnvVars(t)

	cfg := LoadEnvConfig()

	assert.Equal(t, "https://civicdb.org/api", cfg.CIViC.BaseURL)
	assert.Equal(t, 100, cfg.CIViC.PageSize)
	assert.Equal(t, 500, cfg.CIViC.MaxRecords)
	assert.Equal(t, "sqlite", cfg.Audit.Backend)
	assert.NotEmpty(t, cfg.Audit.SQLitePath)
	assert.Equal(t, "stdio", cfg.MCP.TransportType)
	assert.Equal(t, 8080, cfg.MCP.HTTPPort)
	assert.Equal(t, "nexonco", cfg.MCP.ServerName)
	assert.Empty(t, cfg.Cache.RedisURL)
}

func TestLoadEnvConfig_EnvironmentOverrides(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	os.Setenv("NEXONCO_CIVIC_BASE_URL", "https://civic.example.org/api")
	os.Setenv("NEXONCO_CIVIC_MAX_RECORDS", "250")
	os.Setenv("NEXONCO_CACHE_REDIS_URL", "redis://localhost:6379/1")
	os.Setenv("NEXONCO_AUDIT_BACKEND", "postgres")
	os.Setenv("NEXONCO_AUDIT_POSTGRES_URL", "postgres://localhost/nexonco")
	os.Setenv("NEXONCO_LOG_LEVEL", "debug")
	os.Setenv("MCP_TRANSPORT", "http")
	os.Setenv("MCP_HTTP_PORT", "9090")

	cfg := LoadEnvConfig()

	assert.Equal(t, "https://civic.example.org/api", cfg.CIViC.BaseURL)
	assert.Equal(t, 250, cfg.CIViC.MaxRecords)
	assert.Equal(t, "redis://localhost:6379/1", cfg.Cache.RedisURL)
	assert.Equal(t, "postgres", cfg.Audit.Backend)
	assert.Equal(t, "postgres://localhost/nexonco", cfg.Audit.PostgresURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "http", cfg.MCP.TransportType)
	assert.Equal(t, 9090, cfg.MCP.HTTPPort)
	assert.Equal(t, 9090, cfg.Server.Port)
}

func TestLoadEnvConfig_PortFallback(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	os.Setenv("PORT", "3000")

	cfg := LoadEnvConfig()

	assert.Equal(t, 3000, cfg.MCP.HTTPPort)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestLoadEnvConfig_InvalidPortIgnored(t *testing.T) {
	clearEnvVars(t)
	defer clearEnvVars(t)

	os.Setenv("MCP_HTTP_PORT", "not-a-port")

	cfg := LoadEnvConfig()

	assert.Equal(t, 8080, cfg.MCP.HTTPPort)
}
