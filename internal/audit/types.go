// Package audit provides persistent logging of evidence searches.
// Every tool invocation is recorded with its filters and outcome so that
// query volume and result quality can be reviewed later.
package audit

import (
	"context"
	"io"
	"time"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// SearchLog represents one recorded evidence search.
type SearchLog struct {
	ID          string               `json:"id"`
	Filters     domain.SearchFilters `json:"filters"`
	ResultCount int                  `json:"result_count"`
	EmptyResult bool                 `json:"empty_result"`
	DurationMs  int64                `json:"duration_ms"`
	Transport   string               `json:"transport,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// Store defines the interface for search log storage operations.
type Store interface {
	// Save persists a search log entry. A missing ID and CreatedAt are
	// filled in before the insert.
	Save(ctx context.Context, entry *SearchLog) error

	// Get retrieves a log entry by ID. Returns domain.ErrNotFound when no
	// entry exists.
	Get(ctx context.Context, id string) (*SearchLog, error)

	// List returns log entries newest first with pagination.
	List(ctx context.Context, limit, offset int) ([]*SearchLog, error)

	// Count returns the total number of log entries.
	Count(ctx context.Context) (int64, error)

	// Purge removes entries older than the cutoff and returns how many
	// were deleted.
	Purge(ctx context.Context, olderThan time.Time) (int64, error)

	// ExportJSON exports all log entries to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// SearchLogExport represents the JSON export format.
type SearchLogExport struct {
	Version    string       `json:"version"`
	ExportedAt time.Time    `json:"exported_at"`
	Count      int          `json:"count"`
	Searches   []*SearchLog `json:"searches"`
}
