// Package mcp assembles the MCP server: transports, JSON-RPC routing and
// the clinical evidence tool set.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/audit"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/cache"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/protocol"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/tools"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/transport"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/service"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/pkg/civic"
)

// Server is the nexonco MCP server. It wires the CIViC evidence pipeline
// behind the search_clinical_evidence tool and serves it over the detected
// transport.
type Server struct {
	config          *domain.Config
	logger          *logrus.Logger
	mcpServer       *mcp.Server
	transportMgr    *transport.Manager
	activeTransport transport.Transport
	router          *protocol.MessageRouter
	toolRegistry    *tools.ToolRegistry
	evidenceService *service.EvidenceService
	civicClient     *civic.ResilientClient
	auditStore      audit.Store
}

// ServerOption is a functional option for Server.
type ServerOption func(*Server) error

// WithLogger sets a custom logger.
func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.logger = logger
		return nil
	}
}

// WithAuditStore sets a custom audit store.
func WithAuditStore(store audit.Store) ServerOption {
	return func(s *Server) error {
		s.auditStore = store
		return nil
	}
}

// NewServer creates a new MCP server instance from the given configuration.
func NewServer(cfg *domain.Config, opts ...ServerOption) (*Server, error) {
	server := &Server{
		config: cfg,
		logger: newLogger(cfg.Logging),
	}

	for _, opt := range opts {
		if err := opt(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	civicClient := civic.NewClient(cfg.CIViC, server.logger)

	// Redis is optional; without it the resilient client still works,
	// it just loses the circuit breaker fallback path.
	var cacheClient *civic.CacheClient
	if cfg.Cache.RedisURL != "" {
		cc, err := civic.NewCacheClient(cfg.Cache)
		if err != nil {
			server.logger.WithError(err).Warn("Redis cache unavailable, continuing without it")
		} else {
			cacheClient = cc
		}
	}
	server.civicClient = civic.NewResilientClient(civicClient, cacheClient, server.logger)

	if server.auditStore == nil {
		store, err := newAuditStore(cfg.Audit)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit store: %w", err)
		}
		server.auditStore = store
	}

	reportCache := cache.NewReportCache(cfg.Cache.MemoryMaxItems, cfg.Cache.MemoryTTL)

	server.evidenceService = service.NewEvidenceService(
		server.civicClient,
		server.civicClient,
		server.logger,
		service.WithReportCache(reportCache),
		service.WithAuditStore(server.auditStore),
		service.WithTransport(cfg.MCP.TransportType),
	)

	server.router = protocol.NewMessageRouter(server.logger, protocol.ServerInfo{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	})

	server.toolRegistry = tools.NewToolRegistry(server.logger, server.router)
	server.toolRegistry.RegisterAllTools(server.evidenceService)
	if err := server.toolRegistry.ValidateAllTools(); err != nil {
		return nil, fmt.Errorf("tool validation failed: %w", err)
	}

	server.transportMgr = transport.NewManager(server.logger, &cfg.MCP)

	server.mcpServer = mcp.NewServer(&mcp.Implementation{
		Name:    cfg.MCP.ServerName,
		Version: cfg.MCP.ServerVersion,
	}, nil)

	if err := server.registerSDKTools(); err != nil {
		return nil, fmt.Errorf("failed to register MCP tools: %w", err)
	}

	server.logger.Info("MCP server initialized successfully")
	return server, nil
}

// Start detects the transport and serves MCP requests until the context is
// cancelled or the transport reaches EOF.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting nexonco MCP server...")

	activeTransport, err := s.transportMgr.StartTransport(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.activeTransport = activeTransport
	s.logger.WithField("transport_type", activeTransport.GetType()).Info("Transport initialized")

	if activeTransport.GetType() == string(transport.TransportStdio) {
		// The SDK owns the stdio session handshake.
		if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
			s.activeTransport.Close()
			return fmt.Errorf("MCP server failed: %w", err)
		}
		return nil
	}

	return s.serveTransport(ctx, activeTransport)
}

// serveTransport runs the JSON-RPC message loop over a network transport.
func (s *Server) serveTransport(ctx context.Context, t transport.Transport) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		message, err := t.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || t.IsClosed() {
				s.logger.Info("Transport closed, stopping message loop")
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		response, err := s.router.ProcessMessage(ctx, message)
		if err != nil {
			s.logger.WithError(err).Error("Failed to process message")
			continue
		}

		// Notifications produce no response.
		if response == nil {
			continue
		}

		if err := t.WriteMessage(response); err != nil {
			s.logger.WithError(err).Error("Failed to write response")
		}
	}
}

// Close cleans up server resources.
func (s *Server) Close() error {
	if s.auditStore != nil {
		if err := s.auditStore.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close audit store")
		}
	}
	if s.civicClient != nil {
		if err := s.civicClient.Close(); err != nil {
			s.logger.WithError(err).Error("Failed to close CIViC client")
		}
	}
	if s.activeTransport != nil {
		s.activeTransport.Close()
	}
	return nil
}

// GetAuditStore returns the audit store for external access.
func (s *Server) GetAuditStore() audit.Store {
	return s.auditStore
}

// GetEvidenceService returns the evidence service for external access.
func (s *Server) GetEvidenceService() *service.EvidenceService {
	return s.evidenceService
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func newAuditStore(cfg domain.AuditConfig) (audit.Store, error) {
	switch cfg.Backend {
	case "postgres":
		return audit.NewPostgresStoreFromURL(cfg.PostgresURL)
	case "sqlite", "":
		return audit.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Backend)
	}
}
