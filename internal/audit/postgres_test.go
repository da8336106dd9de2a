package audit

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

func setupMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectPing()
	store, err := NewPostgresStore(db)
	require.NoError(t, err)

	return store, mock, db
}

func logColumns() []string {
	return []string{
		"id", "disease_name", "therapy_name", "molecular_profile_name",
		"phenotype_name", "evidence_type", "evidence_direction", "filter_strong_evidence",
		"result_count", "empty_result", "duration_ms", "transport", "created_at",
	}
}

func TestPostgresStoreSave(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectExec("INSERT INTO search_log").
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &SearchLog{
		Filters:     domain.SearchFilters{DiseaseName: "Glioblastoma"},
		ResultCount: 3,
		DurationMs:  50,
	}
	err := store.Save(context.Background(), entry)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGet(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	created := time.Now().UTC()
	rows := sqlmock.NewRows(logColumns()).
		AddRow("abc-123", "Melanoma", "", "BRAF V600E", "", "PREDICTIVE", "SUPPORTS", true,
			7, false, int64(120), "http", created)

	mock.ExpectQuery("SELECT (.+) FROM search_log WHERE id = \\$1").
		WithArgs("abc-123").
		WillReturnRows(rows)

	entry, err := store.Get(context.Background(), "abc-123")

	require.NoError(t, err)
	assert.Equal(t, "Melanoma", entry.Filters.DiseaseName)
	assert.Equal(t, "BRAF V600E", entry.Filters.MolecularProfileName)
	assert.True(t, entry.Filters.FilterStrongEvidence)
	assert.Equal(t, 7, entry.ResultCount)
	assert.Equal(t, "http", entry.Transport)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreGetNotFound(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT (.+) FROM search_log WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreList(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	now := time.Now().UTC()
	rows := sqlmock.NewRows(logColumns()).
		AddRow("id-2", "", "", "", "", "", "", false, 0, true, int64(10), "", now).
		AddRow("id-1", "", "", "", "", "", "", false, 5, false, int64(20), "", now.Add(-time.Minute))

	mock.ExpectQuery("SELECT (.+) FROM search_log ORDER BY created_at DESC").
		WithArgs(10, 0).
		WillReturnRows(rows)

	entries, err := store.List(context.Background(), 10, 0)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "id-2", entries[0].ID)
	assert.True(t, entries[0].EmptyResult)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreCount(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM search_log").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))

	count, err := store.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(9), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStorePurge(t *testing.T) {
	store, mock, _ := setupMockStore(t)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	mock.ExpectExec("DELETE FROM search_log WHERE created_at < \\$1").
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	purged, err := store.Purge(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(4), purged)
	assert.NoError(t, mock.ExpectationsWereMet())
}
