package civic

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// ResilientClient wraps the CIViC client with a circuit breaker and a Redis
// response cache. Cached responses are served first; when the breaker is open
// the cache is the only source and a miss surfaces as an error.
type ResilientClient struct {
	client  *Client
	cache   *CacheClient
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientClient creates a resilient CIViC client. The cache is optional;
// pass nil to run without response caching.
func NewResilientClient(client *Client, cache *CacheClient, logger *logrus.Logger) *ResilientClient {
	if logger == nil {
		logger = logrus.New()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "CIViC",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientClient{
		client:  client,
		cache:   cache,
		breaker: breaker,
		logger:  logger,
	}
}

// SearchEvidence queries CIViC evidence with circuit breaker and caching
func (r *ResilientClient) SearchEvidence(ctx context.Context, filters domain.SearchFilters) (domain.EvidenceCollection, error) {
	if r.cache != nil {
		if cached, found, err := r.cache.GetEvidence(ctx, filters); err == nil && found {
			return cached, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.SearchEvidence(ctx, filters)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			if r.cache != nil {
				if cached, found, cacheErr := r.cache.GetEvidence(ctx, filters); cacheErr == nil && found {
					return cached, nil
				}
			}
			return nil, fmt.Errorf("CIViC service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("CIViC evidence query failed: %w", err)
	}

	records := result.(domain.EvidenceCollection)

	if r.cache != nil {
		if cacheErr := r.cache.SetEvidence(ctx, filters, records, 0); cacheErr != nil {
			r.logger.WithError(cacheErr).Warn("Failed to cache CIViC evidence")
		}
	}

	return records, nil
}

// GetSources resolves citations with circuit breaker and caching
func (r *ResilientClient) GetSources(ctx context.Context, evidenceIDs []int) ([]domain.CitationRecord, error) {
	if len(evidenceIDs) == 0 {
		return nil, nil
	}

	if r.cache != nil {
		if cached, found, err := r.cache.GetCitations(ctx, evidenceIDs); err == nil && found {
			return cached, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.GetSources(ctx, evidenceIDs)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			if r.cache != nil {
				if cached, found, cacheErr := r.cache.GetCitations(ctx, evidenceIDs); cacheErr == nil && found {
					return cached, nil
				}
			}
			return nil, fmt.Errorf("CIViC service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("CIViC sources query failed: %w", err)
	}

	citations := result.([]domain.CitationRecord)

	if r.cache != nil {
		if cacheErr := r.cache.SetCitations(ctx, evidenceIDs, citations, 0); cacheErr != nil {
			r.logger.WithError(cacheErr).Warn("Failed to cache CIViC citations")
		}
	}

	return citations, nil
}

// BreakerState returns the current circuit breaker state
func (r *ResilientClient) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// BreakerCounts returns circuit breaker statistics
func (r *ResilientClient) BreakerCounts() gobreaker.Counts {
	return r.breaker.Counts()
}

// Close releases cache resources
func (r *ResilientClient) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
