// Package api exposes the HTTP surface: MCP discovery endpoints, a REST
// search endpoint and the audit log.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/audit"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/config"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/middleware"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/service"
)

// UpstreamHealth reports the state of the circuit breaker guarding the
// CIViC upstream, surfaced through the health endpoint.
type UpstreamHealth interface {
	BreakerState() gobreaker.State
	BreakerCounts() gobreaker.Counts
}

// Server represents the HTTP server
type Server struct {
	config     *domain.Config
	logger     *logrus.Logger
	router     *gin.Engine
	server     *http.Server
	evidence   *service.EvidenceService
	auditStore audit.Store
	upstream   UpstreamHealth
}

// NewServer creates a new HTTP server instance. upstream may be nil when no
// circuit breaker guards the evidence source.
func NewServer(cfg *domain.Config, logger *logrus.Logger, evidence *service.EvidenceService, auditStore audit.Store, upstream UpstreamHealth) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS())

	server := &Server{
		config:     cfg,
		logger:     logger,
		router:     router,
		evidence:   evidence,
		auditStore: auditStore,
		upstream:   upstream,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("address", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler returns the underlying HTTP handler, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/version", s.handleVersion)

	// MCP Server Card discovery endpoints (SEP-1649) and aliases
	for _, path := range []string{
		"/.well-known/mcp.json",
		"/.well-known/mcp/server-card.json",
		"/.well-known/mcp",
		"/mcp.json",
		"/server-card.json",
		"/mcp",
	} {
		s.router.GET(path, s.handleServerCard)
		s.router.HEAD(path, s.handleServerCard)
	}

	s.router.GET("/.well-known/mcp-config", s.handleMCPConfig)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/evidence/search", s.handleEvidenceSearch)
		v1.GET("/audit/searches", s.handleListSearches)
		v1.GET("/audit/searches/:id", s.handleGetSearch)
	}
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "nexonco-mcp",
		"version": config.Version,
		"endpoints": gin.H{
			"/health":                 "Health check endpoint",
			"/version":                "Version information",
			"/.well-known/mcp.json":   "MCP server card",
			"/api/v1/evidence/search": "Clinical evidence search",
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")

	payload := gin.H{
		"status":    "healthy",
		"service":   "nexonco-mcp",
		"version":   config.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if s.upstream != nil {
		counts := s.upstream.BreakerCounts()
		payload["upstream"] = gin.H{
			"circuit_breaker": s.upstream.BreakerState().String(),
			"requests":        counts.Requests,
			"failures":        counts.TotalFailures,
		}
	}

	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleVersion(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.JSON(http.StatusOK, gin.H{
		"name":    "nexonco",
		"version": config.Version,
		"build":   config.BuildDate,
	})
}

func (s *Server) handleServerCard(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, serverCard())
}

func (s *Server) handleMCPConfig(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.JSON(http.StatusOK, mcpConfigSchema())
}

// searchRequest mirrors the MCP tool parameters for REST clients
type searchRequest struct {
	DiseaseName          string `json:"disease_name"`
	TherapyName          string `json:"therapy_name"`
	MolecularProfileName string `json:"molecular_profile_name"`
	PhenotypeName        string `json:"phenotype_name"`
	EvidenceType         string `json:"evidence_type"`
	EvidenceDirection    string `json:"evidence_direction"`
	FilterStrongEvidence bool   `json:"filter_strong_evidence"`
}

// errorResponse writes a structured MCPError payload carrying the request's
// correlation ID.
func (s *Server) errorResponse(c *gin.Context, status int, code, message, details string) {
	c.JSON(status, gin.H{
		"error": domain.NewMCPError(code, message, details, c.GetString("correlation_id")),
	})
}

func (s *Server) handleEvidenceSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, domain.ErrInvalidInput, "invalid request body", err.Error())
		return
	}

	filters := domain.SearchFilters{
		DiseaseName:          req.DiseaseName,
		TherapyName:          req.TherapyName,
		MolecularProfileName: req.MolecularProfileName,
		PhenotypeName:        req.PhenotypeName,
		EvidenceType:         req.EvidenceType,
		EvidenceDirection:    req.EvidenceDirection,
		FilterStrongEvidence: req.FilterStrongEvidence,
	}

	report, err := s.evidence.Search(c.Request.Context(), filters)
	if err != nil {
		s.logger.WithError(err).Error("Evidence search failed")
		s.errorResponse(c, http.StatusBadGateway, domain.ErrExternalAPI, "evidence search failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (s *Server) handleListSearches(c *gin.Context) {
	if s.auditStore == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit log not enabled"})
		return
	}

	limit := parseIntQuery(c, "limit", 50)
	offset := parseIntQuery(c, "offset", 0)

	searches, err := s.auditStore.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list audit entries")
		s.errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to list searches", err.Error())
		return
	}

	total, err := s.auditStore.Count(c.Request.Context())
	if err != nil {
		s.logger.WithError(err).Error("Failed to count audit entries")
		s.errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to count searches", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"searches": searches,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

func (s *Server) handleGetSearch(c *gin.Context) {
	if s.auditStore == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "audit log not enabled"})
		return
	}

	entry, err := s.auditStore.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "search not found"})
			return
		}
		s.logger.WithError(err).Error("Failed to get audit entry")
		s.errorResponse(c, http.StatusInternalServerError, domain.ErrDatabaseError, "failed to get search", err.Error())
		return
	}

	c.JSON(http.StatusOK, entry)
}

func parseIntQuery(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
