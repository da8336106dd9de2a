// Package service orchestrates the evidence search pipeline: filter
// normalization, retrieval, aggregation, ranking, citation resolution and
// report composition.
package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/audit"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/cache"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/report"
)

// EvidenceRetriever fetches evidence records matching the filters
type EvidenceRetriever interface {
	SearchEvidence(ctx context.Context, filters domain.SearchFilters) (domain.EvidenceCollection, error)
}

// CitationResolver resolves bibliographic sources for evidence items
type CitationResolver interface {
	GetSources(ctx context.Context, evidenceIDs []int) ([]domain.CitationRecord, error)
}

// EvidenceService runs the search pipeline end to end
type EvidenceService struct {
	retriever   EvidenceRetriever
	resolver    CitationResolver
	reportCache *cache.ReportCache
	auditStore  audit.Store
	logger      *logrus.Logger
	transport   string
}

// Option configures an EvidenceService
type Option func(*EvidenceService)

// WithReportCache enables in-memory caching of composed reports
func WithReportCache(c *cache.ReportCache) Option {
	return func(s *EvidenceService) {
		s.reportCache = c
	}
}

// WithAuditStore enables persistent logging of searches
func WithAuditStore(store audit.Store) Option {
	return func(s *EvidenceService) {
		s.auditStore = store
	}
}

// WithTransport labels audit entries with the serving transport
func WithTransport(transport string) Option {
	return func(s *EvidenceService) {
		s.transport = transport
	}
}

// NewEvidenceService creates the pipeline orchestrator
func NewEvidenceService(retriever EvidenceRetriever, resolver CitationResolver, logger *logrus.Logger, opts ...Option) *EvidenceService {
	if logger == nil {
		logger = logrus.New()
	}
	s := &EvidenceService{
		retriever: retriever,
		resolver:  resolver,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search executes one evidence query and returns the rendered report.
// An empty retrieval is not an error: the fixed empty-result message is
// returned and the aggregation stages never run. Retriever or resolver
// failures propagate unchanged; no partial report is produced.
func (s *EvidenceService) Search(ctx context.Context, filters domain.SearchFilters) (string, error) {
	filters = filters.Normalized()
	started := time.Now()

	if s.reportCache != nil {
		if cached, ok := s.reportCache.Get(filters.CacheKey()); ok {
			s.logger.WithField("cache", "hit").Debug("Serving evidence report from cache")
			return cached, nil
		}
	}

	records, err := s.retriever.SearchEvidence(ctx, filters)
	if err != nil {
		return "", err
	}

	if len(records) == 0 {
		s.recordAudit(ctx, filters, 0, started)
		return report.EmptyResultMessage, nil
	}

	stats := report.Aggregate(records)
	ranked := report.Rank(records)

	citations, err := s.resolver.GetSources(ctx, ranked.IDs())
	if err != nil {
		return "", err
	}

	composed := report.Compose(stats, ranked, citations)

	if s.reportCache != nil {
		s.reportCache.Set(filters.CacheKey(), composed)
	}
	s.recordAudit(ctx, filters, len(records), started)

	s.logger.WithFields(logrus.Fields{
		"records":     len(records),
		"citations":   len(citations),
		"duration_ms": time.Since(started).Milliseconds(),
	}).Info("Evidence search completed")

	return composed, nil
}

// recordAudit persists the search outcome. Audit failures are logged and
// never fail the search.
func (s *EvidenceService) recordAudit(ctx context.Context, filters domain.SearchFilters, resultCount int, started time.Time) {
	if s.auditStore == nil {
		return
	}
	entry := &audit.SearchLog{
		Filters:     filters,
		ResultCount: resultCount,
		DurationMs:  time.Since(started).Milliseconds(),
		Transport:   s.transport,
	}
	if err := s.auditStore.Save(ctx, entry); err != nil {
		s.logger.WithError(err).Warn("Failed to record search audit entry")
	}
}
