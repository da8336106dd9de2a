// Package cache provides an in-memory cache for composed evidence reports,
// keyed by normalized search filters.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultMaxItems = 256
	defaultTTL      = 15 * time.Minute
)

// ReportCache is an expiring LRU cache of rendered reports. Entries expire
// after the TTL so long-running servers eventually pick up knowledge base
// updates.
type ReportCache struct {
	lru *expirable.LRU[string, string]
}

// NewReportCache creates a report cache with the given capacity and TTL.
// Non-positive values fall back to defaults.
func NewReportCache(maxItems int, ttl time.Duration) *ReportCache {
	if maxItems <= 0 {
		maxItems = defaultMaxItems
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ReportCache{
		lru: expirable.NewLRU[string, string](maxItems, nil, ttl),
	}
}

// Get returns the cached report for the key, if present and fresh
func (c *ReportCache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Set stores a rendered report under the key
func (c *ReportCache) Set(key, report string) {
	c.lru.Add(key, report)
}

// Len returns the number of live entries
func (c *ReportCache) Len() int {
	return c.lru.Len()
}

// Purge drops all entries
func (c *ReportCache) Purge() {
	c.lru.Purge()
}
