package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/api"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/audit"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/cache"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/config"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/database"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/service"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/pkg/civic"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()

	logger := logrus.New()
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	auditStore, err := buildAuditStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create audit store: %v", err)
	}
	defer auditStore.Close()

	civicClient := civic.NewClient(cfg.CIViC, logger)

	var cacheClient *civic.CacheClient
	if cfg.Cache.RedisURL != "" {
		cc, err := civic.NewCacheClient(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis cache unavailable, continuing without it")
		} else {
			cacheClient = cc
			defer cacheClient.Close()
		}
	}

	resilient := civic.NewResilientClient(civicClient, cacheClient, logger)
	reportCache := cache.NewReportCache(cfg.Cache.MemoryMaxItems, cfg.Cache.MemoryTTL)

	evidenceService := service.NewEvidenceService(
		resilient,
		resilient,
		logger,
		service.WithReportCache(reportCache),
		service.WithAuditStore(auditStore),
		service.WithTransport("http"),
	)

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting Nexonco HTTP server")

	server := api.NewServer(cfg, logger, evidenceService, auditStore, resilient)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}

	log.Println("Server stopped")
}

// buildAuditStore creates the configured audit backend, running Postgres
// migrations first when that backend is selected.
func buildAuditStore(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (audit.Store, error) {
	switch cfg.Audit.Backend {
	case "postgres":
		db, err := database.NewConnection(ctx, database.DefaultConfig(cfg.Audit.PostgresURL), logger)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		if err := db.Health(ctx); err != nil {
			return nil, err
		}

		runner, err := database.NewMigrationRunner(cfg.Audit.PostgresURL, cfg.Audit.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		defer runner.Close()
		if err := runner.Up(); err != nil {
			return nil, err
		}

		return audit.NewPostgresStoreFromURL(cfg.Audit.PostgresURL)
	default:
		return audit.NewSQLiteStore(cfg.Audit.SQLitePath)
	}
}
