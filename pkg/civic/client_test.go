package civic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(domain.CIViCConfig{
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
		RateLimit: 1000,
		PageSize:  100,
	}, nil)
	return client, server
}

func evidencePage(nodes []map[string]interface{}, endCursor string, hasNextPage bool) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"evidenceItems": map[string]interface{}{
				"pageInfo": map[string]interface{}{
					"endCursor":   endCursor,
					"hasNextPage": hasNextPage,
				},
				"nodes": nodes,
			},
		},
	}
}

func TestSearchEvidenceConvertsNodes(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/graphql", r.URL.Path)

		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Melanoma", req.Variables["diseaseName"])
		assert.NotContains(t, req.Variables, "therapyName", "absent filters must not be sent")

		json.NewEncoder(w).Encode(evidencePage([]map[string]interface{}{
			{
				"id":                101,
				"description":       "V600E confers sensitivity.",
				"evidenceType":      "PREDICTIVE",
				"evidenceDirection": "SUPPORTS",
				"evidenceRating":    4,
				"disease":           map[string]interface{}{"name": "Melanoma"},
				"therapies": []map[string]interface{}{
					{"name": "Dabrafenib"}, {"name": "Trametinib"},
				},
				"molecularProfile": map[string]interface{}{"name": "BRAF V600E"},
				"phenotypes":       []map[string]interface{}{{"name": "Metastasis"}},
			},
			{
				"id":               102,
				"molecularProfile": map[string]interface{}{"name": "KRAS"},
			},
		}, "", false))
	})

	records, err := client.SearchEvidence(context.Background(), domain.SearchFilters{DiseaseName: "Melanoma"})

	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 101, first.ID)
	assert.Equal(t, "Melanoma", first.DiseaseName)
	assert.Equal(t, "BRAF", first.GeneName)
	assert.Equal(t, "V600E", first.VariantName)
	assert.Equal(t, "Dabrafenib, Trametinib", first.TherapyNames)
	assert.Equal(t, "Metastasis", first.PhenotypeName)
	assert.Equal(t, domain.PREDICTIVE, first.EvidenceType)
	assert.Equal(t, domain.SUPPORTS, first.EvidenceDirection)
	require.NotNil(t, first.EvidenceRating)
	assert.Equal(t, 4.0, *first.EvidenceRating)

	second := records[1]
	assert.Equal(t, "KRAS", second.GeneName)
	assert.Empty(t, second.VariantName, "profile without a variant token keeps only the gene")
	assert.Nil(t, second.EvidenceRating)
}

func TestSearchEvidencePaginates(t *testing.T) {
	page := 0
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		page++
		switch page {
		case 1:
			assert.NotContains(t, req.Variables, "after")
			json.NewEncoder(w).Encode(evidencePage([]map[string]interface{}{{"id": 1}}, "cursor-1", true))
		case 2:
			assert.Equal(t, "cursor-1", req.Variables["after"])
			json.NewEncoder(w).Encode(evidencePage([]map[string]interface{}{{"id": 2}}, "", false))
		default:
			t.Errorf("unexpected page %d", page)
		}
	})

	records, err := client.SearchEvidence(context.Background(), domain.SearchFilters{})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, records.IDs())
	assert.Equal(t, 2, page)
}

func TestSearchEvidenceStrongFilter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(evidencePage([]map[string]interface{}{
			{"id": 1, "evidenceRating": 5},
			{"id": 2, "evidenceRating": 3},
			{"id": 3},
			{"id": 4, "evidenceRating": 4},
		}, "", false))
	})

	records, err := client.SearchEvidence(context.Background(), domain.SearchFilters{FilterStrongEvidence: true})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 4}, records.IDs(), "only ratings above 3 pass the strong filter")
}

func TestSearchEvidenceAPIError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]interface{}{{"message": "field does not exist"}},
		})
	})

	_, err := client.SearchEvidence(context.Background(), domain.SearchFilters{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field does not exist")
}

func TestSearchEvidenceHTTPError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	})

	_, err := client.SearchEvidence(context.Background(), domain.SearchFilters{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestGetSources(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Variables, "ids")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"evidenceItems": map[string]interface{}{
					"nodes": []map[string]interface{}{
						{
							"id": 1,
							"source": map[string]interface{}{
								"citation":  "Chapman et al., 2011",
								"sourceUrl": "https://civicdb.org/links/source/9",
							},
						},
						{"id": 2, "source": nil},
					},
				},
			},
		})
	})

	citations, err := client.GetSources(context.Background(), []int{1, 2})

	require.NoError(t, err)
	require.Len(t, citations, 1, "items without a source are omitted")
	assert.Equal(t, 1, citations[0].EvidenceID)
	assert.Equal(t, "Chapman et al., 2011", citations[0].Citation)
	assert.Equal(t, "https://civicdb.org/links/source/9", citations[0].SourceURL)
}

func TestGetSourcesEmptyInput(t *testing.T) {
	client := NewClient(domain.CIViCConfig{}, nil)

	citations, err := client.GetSources(context.Background(), nil)

	require.NoError(t, err)
	assert.Nil(t, citations)
}
