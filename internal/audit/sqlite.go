package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite search log store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanSearchLog scans a row into a SearchLog struct.
func scanSearchLog(s scanner) (*SearchLog, error) {
	entry := &SearchLog{}
	err := s.Scan(
		&entry.ID,
		&entry.Filters.DiseaseName,
		&entry.Filters.TherapyName,
		&entry.Filters.MolecularProfileName,
		&entry.Filters.PhenotypeName,
		&entry.Filters.EvidenceType,
		&entry.Filters.EvidenceDirection,
		&entry.Filters.FilterStrongEvidence,
		&entry.ResultCount,
		&entry.EmptyResult,
		&entry.DurationMs,
		&entry.Transport,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS search_log (
		id TEXT PRIMARY KEY,
		disease_name TEXT DEFAULT '',
		therapy_name TEXT DEFAULT '',
		molecular_profile_name TEXT DEFAULT '',
		phenotype_name TEXT DEFAULT '',
		evidence_type TEXT DEFAULT '',
		evidence_direction TEXT DEFAULT '',
		filter_strong_evidence INTEGER NOT NULL DEFAULT 0,
		result_count INTEGER NOT NULL DEFAULT 0,
		empty_result INTEGER NOT NULL DEFAULT 0,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		transport TEXT DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_search_log_disease ON search_log(disease_name);
	CREATE INDEX IF NOT EXISTS idx_search_log_created_at ON search_log(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

const selectColumns = `id, disease_name, therapy_name, molecular_profile_name,
		phenotype_name, evidence_type, evidence_direction, filter_strong_evidence,
		result_count, empty_result, duration_ms, transport, created_at`

// Save persists a search log entry.
func (s *SQLiteStore) Save(ctx context.Context, entry *SearchLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.EmptyResult = entry.ResultCount == 0

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO search_log (
			id, disease_name, therapy_name, molecular_profile_name,
			phenotype_name, evidence_type, evidence_direction, filter_strong_evidence,
			result_count, empty_result, duration_ms, transport, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
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
func (s *SQLiteStore) Get(ctx context.Context, id string) (*SearchLog, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM search_log WHERE id = ?", id)

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
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*SearchLog, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM search_log ORDER BY created_at DESC LIMIT ? OFFSET ?",
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM search_log").Scan(&count)
	return count, err
}

// Purge removes entries older than the cutoff.
func (s *SQLiteStore) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM search_log WHERE created_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to purge: %w", err)
	}
	return result.RowsAffected()
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all log entries to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
