package civic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// CacheClient wraps Redis with caching for CIViC API responses
type CacheClient struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewCacheClient creates a new cache client
func NewCacheClient(config domain.CacheConfig) (*CacheClient, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &CacheClient{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

// CachedEvidence represents cached evidence records with metadata
type CachedEvidence struct {
	Data      domain.EvidenceCollection `json:"data"`
	CachedAt  time.Time                 `json:"cached_at"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

// CachedCitations represents cached citation records with metadata
type CachedCitations struct {
	Data      []domain.CitationRecord `json:"data"`
	CachedAt  time.Time               `json:"cached_at"`
	ExpiresAt time.Time               `json:"expires_at"`
}

// GetEvidence retrieves cached evidence for the given filters
func (c *CacheClient) GetEvidence(ctx context.Context, filters domain.SearchFilters) (domain.EvidenceCollection, bool, error) {
	key := filters.CacheKey()

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get evidence cache: %w", err)
	}

	var cached CachedEvidence
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// SetEvidence caches evidence records for the given filters
func (c *CacheClient) SetEvidence(ctx context.Context, filters domain.SearchFilters, records domain.EvidenceCollection, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	cached := CachedEvidence{
		Data:      records,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal evidence cache data: %w", err)
	}

	return c.redis.Set(ctx, filters.CacheKey(), jsonData, ttl).Err()
}

// GetCitations retrieves cached citations for the given evidence ids
func (c *CacheClient) GetCitations(ctx context.Context, evidenceIDs []int) ([]domain.CitationRecord, bool, error) {
	key := citationsKey(evidenceIDs)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get citations cache: %w", err)
	}

	var cached CachedCitations
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// SetCitations caches citation records for the given evidence ids
func (c *CacheClient) SetCitations(ctx context.Context, evidenceIDs []int, citations []domain.CitationRecord, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	cached := CachedCitations{
		Data:      citations,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal citations cache data: %w", err)
	}

	return c.redis.Set(ctx, citationsKey(evidenceIDs), jsonData, ttl).Err()
}

// Close closes the Redis connection
func (c *CacheClient) Close() error {
	return c.redis.Close()
}

// citationsKey derives an order-insensitive cache key from evidence ids
func citationsKey(evidenceIDs []int) string {
	ids := make([]int, len(evidenceIDs))
	copy(ids, evidenceIDs)
	sort.Ints(ids)

	raw := fmt.Sprint(ids)
	sum := sha256.Sum256([]byte(raw))
	return "civic:sources:" + hex.EncodeToString(sum[:])
}
