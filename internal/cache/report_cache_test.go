package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportCacheSetGet(t *testing.T) {
	c := NewReportCache(4, time.Minute)

	c.Set("key-a", "report a")

	got, ok := c.Get("key-a")
	assert.True(t, ok)
	assert.Equal(t, "report a", got)

	_, ok = c.Get("key-b")
	assert.False(t, ok)
}

func TestReportCacheEvictsAtCapacity(t *testing.T) {
	c := NewReportCache(2, time.Minute)

	c.Set("a", "1")
	c.Set("b", "2")
	c.Set("c", "3")

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry evicted")
}

func TestReportCacheExpires(t *testing.T) {
	c := NewReportCache(4, 20*time.Millisecond)

	c.Set("a", "1")
	time.Sleep(50 * time.Millisecond)

	_, ok := c.Get("a")
	assert.False(t, ok)
}

func TestReportCachePurge(t *testing.T) {
	c := NewReportCache(4, time.Minute)

	c.Set("a", "1")
	c.Purge()

	assert.Equal(t, 0, c.Len())
}
