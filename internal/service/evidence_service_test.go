package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/audit"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/cache"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/report"
)

type fakeRetriever struct {
	records domain.EvidenceCollection
	err     error
	calls   int
	gotten  domain.SearchFilters
}

func (f *fakeRetriever) SearchEvidence(ctx context.Context, filters domain.SearchFilters) (domain.EvidenceCollection, error) {
	f.calls++
	f.gotten = filters
	return f.records, f.err
}

type fakeResolver struct {
	citations []domain.CitationRecord
	err       error
	gotIDs    []int
}

func (f *fakeResolver) GetSources(ctx context.Context, evidenceIDs []int) ([]domain.CitationRecord, error) {
	f.gotIDs = evidenceIDs
	return f.citations, f.err
}

type memoryAudit struct {
	entries []*audit.SearchLog
	err     error
}

func (m *memoryAudit) Save(ctx context.Context, entry *audit.SearchLog) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *memoryAudit) Get(ctx context.Context, id string) (*audit.SearchLog, error) {
	return nil, domain.ErrNotFound
}

func (m *memoryAudit) List(ctx context.Context, limit, offset int) ([]*audit.SearchLog, error) {
	return m.entries, nil
}

func (m *memoryAudit) Count(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *memoryAudit) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

func (m *memoryAudit) ExportJSON(ctx context.Context, w io.Writer) error { return nil }

func (m *memoryAudit) Close() error { return nil }

func rating(v float64) *float64 {
	return &v
}

func TestSearchEmptyResult(t *testing.T) {
	retriever := &fakeRetriever{}
	resolver := &fakeResolver{}
	svc := NewEvidenceService(retriever, resolver, nil)

	out, err := svc.Search(context.Background(), domain.SearchFilters{DiseaseName: "Nonexistent"})

	require.NoError(t, err)
	assert.Equal(t, "No evidence found for the specified filters.", out)
	assert.Nil(t, resolver.gotIDs, "resolver must not run on empty retrieval")
}

func TestSearchComposesReport(t *testing.T) {
	retriever := &fakeRetriever{
		records: domain.EvidenceCollection{
			{
				ID:                1,
				DiseaseName:       "Melanoma",
				GeneName:          "BRAF",
				VariantName:       "V600E",
				EvidenceType:      domain.PREDICTIVE,
				EvidenceDirection: domain.SUPPORTS,
				EvidenceRating:    rating(5),
			},
		},
	}
	resolver := &fakeResolver{
		citations: []domain.CitationRecord{
			{EvidenceID: 1, Citation: "Chapman et al., 2011", SourceURL: "https://civicdb.org/links/source/9"},
		},
	}
	svc := NewEvidenceService(retriever, resolver, nil)

	out, err := svc.Search(context.Background(), domain.SearchFilters{MolecularProfileName: "BRAF V600E"})

	require.NoError(t, err)
	assert.Equal(t, []int{1}, resolver.gotIDs)
	assert.Contains(t, out, "**Summary Statistics**")
	assert.Contains(t, out, "- Gene/Variant: BRAF / V600E\n")
	assert.Contains(t, out, "- Chapman et al., 2011 - https://civicdb.org/links/source/9\n")
	assert.True(t, strings.HasSuffix(out, report.Disclaimer))
}

func TestSearchNormalizesFilters(t *testing.T) {
	retriever := &fakeRetriever{}
	svc := NewEvidenceService(retriever, &fakeResolver{}, nil)

	_, err := svc.Search(context.Background(), domain.SearchFilters{DiseaseName: "  Melanoma "})

	require.NoError(t, err)
	assert.Equal(t, "Melanoma", retriever.gotten.DiseaseName)
}

func TestSearchRetrieverFailurePropagates(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("upstream unavailable")}
	svc := NewEvidenceService(retriever, &fakeResolver{}, nil)

	out, err := svc.Search(context.Background(), domain.SearchFilters{})

	require.Error(t, err)
	assert.Empty(t, out, "no partial report on failure")
}

func TestSearchResolverFailurePropagates(t *testing.T) {
	retriever := &fakeRetriever{
		records: domain.EvidenceCollection{{ID: 1, EvidenceRating: rating(4)}},
	}
	resolver := &fakeResolver{err: errors.New("sources unavailable")}
	svc := NewEvidenceService(retriever, resolver, nil)

	out, err := svc.Search(context.Background(), domain.SearchFilters{})

	require.Error(t, err)
	assert.Empty(t, out)
}

func TestSearchUsesReportCache(t *testing.T) {
	retriever := &fakeRetriever{
		records: domain.EvidenceCollection{{ID: 1, EvidenceRating: rating(4)}},
	}
	svc := NewEvidenceService(retriever, &fakeResolver{}, nil,
		WithReportCache(cache.NewReportCache(8, time.Minute)))

	first, err := svc.Search(context.Background(), domain.SearchFilters{DiseaseName: "Melanoma"})
	require.NoError(t, err)

	second, err := svc.Search(context.Background(), domain.SearchFilters{DiseaseName: " Melanoma "})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, retriever.calls, "second search served from cache")
}

func TestSearchRecordsAudit(t *testing.T) {
	store := &memoryAudit{}
	retriever := &fakeRetriever{
		records: domain.EvidenceCollection{{ID: 1, EvidenceRating: rating(4)}},
	}
	svc := NewEvidenceService(retriever, &fakeResolver{}, nil,
		WithAuditStore(store), WithTransport("stdio"))

	_, err := svc.Search(context.Background(), domain.SearchFilters{DiseaseName: "Melanoma"})

	require.NoError(t, err)
	require.Len(t, store.entries, 1)
	assert.Equal(t, "Melanoma", store.entries[0].Filters.DiseaseName)
	assert.Equal(t, 1, store.entries[0].ResultCount)
	assert.Equal(t, "stdio", store.entries[0].Transport)
}

func TestSearchAuditFailureDoesNotFailSearch(t *testing.T) {
	store := &memoryAudit{err: errors.New("disk full")}
	retriever := &fakeRetriever{
		records: domain.EvidenceCollection{{ID: 1, EvidenceRating: rating(4)}},
	}
	svc := NewEvidenceService(retriever, &fakeResolver{}, nil, WithAuditStore(store))

	out, err := svc.Search(context.Background(), domain.SearchFilters{})

	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
