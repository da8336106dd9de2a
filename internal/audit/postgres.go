package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL search log store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL search log store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save persists a search log entry.
func (s *PostgresStore) Save(ctx context.Context, entry *SearchLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.EmptyResult = entry.ResultCount == 0

	query := `
		INSERT INTO search_log (
			id, disease_name, therapy_name, molecular_profile_name,
			phenotype_name, evidence_type, evidence_direction, filter_strong_evidence,
			result_count, empty_result, duration_ms, transport, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.Filters.DiseaseName,
		entry.Filters.TherapyName,
		entry.Filters.MolecularProfileName,
		entry.Filters.PhenotypeName,
		entry.Filters.EvidenceType,
		entry.Filters.EvidenceDirection,
		entry.Filters.FilterStrongEvidence,
		entry.ResultCount,
		entry.EmptyResult,
		entry.DurationMs,
		entry.Transport,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}
	return nil
}

// Get retrieves a log entry by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*SearchLog, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM search_log WHERE id = $1", id)

	entry, err := scanSearchLog(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return entry, nil
}

// List returns log entries newest first with pagination.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*SearchLog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM search_log ORDER BY created_at DESC LIMIT $1 OFFSET $2",
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*SearchLog
	for rows.Next() {
		entry, err := scanSearchLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Count returns the total number of log entries.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_log").Scan(&count)
	return count, err
}

// Purge removes entries older than the cutoff.
func (s *PostgresStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM search_log WHERE created_at < $1", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge: %w", err)
	}
	return result.RowsAffected()
}

// ExportJSON exports all log entries to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list search log: %w", err)
	}

	export := &SearchLogExport{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Count:      len(all),
		Searches:   all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
