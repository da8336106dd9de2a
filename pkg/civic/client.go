// Package civic provides a client for the CIViC GraphQL API
// (https://civicdb.org), the evidence source behind the clinical
// evidence search pipeline.
package civic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

const (
	defaultBaseURL    = "https://civicdb.org/api"
	defaultPageSize   = 100
	defaultMaxRecords = 500

	// strongEvidenceThreshold: ratings above this count as high-confidence
	strongEvidenceThreshold = 3.0
)

// Client handles interactions with the CIViC GraphQL API
type Client struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	pageSize   int
	maxRecords int
	logger     *logrus.Logger
}

// NewClient creates a new CIViC API client
func NewClient(config domain.CIViCConfig, logger *logrus.Logger) *Client {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	maxRecords := config.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}
	rateLimit := config.RateLimit
	if rateLimit <= 0 {
		rateLimit = 5
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		rateLimit:  rate.NewLimiter(rate.Limit(rateLimit), 1),
		pageSize:   pageSize,
		maxRecords: maxRecords,
		logger:     logger,
	}
}

const evidenceQuery = `
query EvidenceItems($diseaseName: String, $therapyName: String, $molecularProfileName: String, $phenotypeName: String, $evidenceType: EvidenceItemType, $evidenceDirection: EvidenceDirection, $first: Int, $after: String) {
	evidenceItems(diseaseName: $diseaseName, therapyName: $therapyName, molecularProfileName: $molecularProfileName, phenotypeName: $phenotypeName, evidenceType: $evidenceType, evidenceDirection: $evidenceDirection, first: $first, after: $after) {
		pageInfo {
			endCursor
			hasNextPage
		}
		nodes {
			id
			description
			evidenceType
			evidenceDirection
			evidenceRating
			disease {
				name
			}
			therapies {
				name
			}
			molecularProfile {
				name
			}
			phenotypes {
				name
			}
		}
	}
}`

const sourcesQuery = `
query EvidenceSources($ids: [Int!]) {
	evidenceItems(ids: $ids, first: 50) {
		nodes {
			id
			source {
				citation
				sourceUrl
			}
		}
	}
}`

// evidenceResponse represents the JSON response for the evidence items query
type evidenceResponse struct {
	Data struct {
		EvidenceItems struct {
			PageInfo struct {
				EndCursor   string `json:"endCursor"`
				HasNextPage bool   `json:"hasNextPage"`
			} `json:"pageInfo"`
			Nodes []evidenceNode `json:"nodes"`
		} `json:"evidenceItems"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type evidenceNode struct {
	ID                int      `json:"id"`
	Description       string   `json:"description"`
	EvidenceType      string   `json:"evidenceType"`
	EvidenceDirection string   `json:"evidenceDirection"`
	EvidenceRating    *float64 `json:"evidenceRating"`
	Disease           *struct {
		Name string `json:"name"`
	} `json:"disease"`
	Therapies []struct {
		Name string `json:"name"`
	} `json:"therapies"`
	MolecularProfile *struct {
		Name string `json:"name"`
	} `json:"molecularProfile"`
	Phenotypes []struct {
		Name string `json:"name"`
	} `json:"phenotypes"`
}

// sourcesResponse represents the JSON response for the sources query
type sourcesResponse struct {
	Data struct {
		EvidenceItems struct {
			Nodes []struct {
				ID     int `json:"id"`
				Source *struct {
					Citation  string `json:"citation"`
					SourceURL string `json:"sourceUrl"`
				} `json:"source"`
			} `json:"nodes"`
		} `json:"evidenceItems"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SearchEvidence queries CIViC evidence items matching the filters, following
// the cursor until maxRecords is reached. When FilterStrongEvidence is set,
// only records rated above 3 are returned.
func (c *Client) SearchEvidence(ctx context.Context, filters domain.SearchFilters) (domain.EvidenceCollection, error) {
	filters = filters.Normalized()

	var records domain.EvidenceCollection
	cursor := ""
	for {
		if err := c.rateLimit.Wait(ctx); err != nil {
			return nil, err
		}

		page, err := c.queryEvidencePage(ctx, filters, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to query CIViC evidence: %w", err)
		}
		if len(page.Errors) > 0 {
			return nil, fmt.Errorf("CIViC API error: %s", page.Errors[0].Message)
		}

		for i := range page.Data.EvidenceItems.Nodes {
			rec := convertNode(&page.Data.EvidenceItems.Nodes[i])
			if filters.FilterStrongEvidence {
				if rec.EvidenceRating == nil || *rec.EvidenceRating <= strongEvidenceThreshold {
					continue
				}
			}
			records = append(records, rec)
		}

		if !page.Data.EvidenceItems.PageInfo.HasNextPage || len(records) >= c.maxRecords {
			break
		}
		cursor = page.Data.EvidenceItems.PageInfo.EndCursor
	}

	if len(records) > c.maxRecords {
		records = records[:c.maxRecords]
	}

	c.logger.WithFields(logrus.Fields{
		"records": len(records),
		"strong":  filters.FilterStrongEvidence,
	}).Debug("CIViC evidence search completed")

	return records, nil
}

// GetSources resolves citation and source URL for the given evidence items.
// Items without a resolvable source are omitted.
func (c *Client) GetSources(ctx context.Context, evidenceIDs []int) ([]domain.CitationRecord, error) {
	if len(evidenceIDs) == 0 {
		return nil, nil
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, err
	}

	variables := map[string]interface{}{"ids": evidenceIDs}
	var response sourcesResponse
	if err := c.queryGraphQL(ctx, sourcesQuery, variables, &response); err != nil {
		return nil, fmt.Errorf("failed to query CIViC sources: %w", err)
	}
	if len(response.Errors) > 0 {
		return nil, fmt.Errorf("CIViC API error: %s", response.Errors[0].Message)
	}

	citations := make([]domain.CitationRecord, 0, len(response.Data.EvidenceItems.Nodes))
	for _, node := range response.Data.EvidenceItems.Nodes {
		if node.Source == nil {
			continue
		}
		citations = append(citations, domain.CitationRecord{
			EvidenceID: node.ID,
			Citation:   node.Source.Citation,
			SourceURL:  node.Source.SourceURL,
		})
	}
	return citations, nil
}

// queryEvidencePage fetches one cursor page of evidence items
func (c *Client) queryEvidencePage(ctx context.Context, filters domain.SearchFilters, cursor string) (*evidenceResponse, error) {
	variables := map[string]interface{}{
		"first": c.pageSize,
	}
	if filters.DiseaseName != "" {
		variables["diseaseName"] = filters.DiseaseName
	}
	if filters.TherapyName != "" {
		variables["therapyName"] = filters.TherapyName
	}
	if filters.MolecularProfileName != "" {
		variables["molecularProfileName"] = filters.MolecularProfileName
	}
	if filters.PhenotypeName != "" {
		variables["phenotypeName"] = filters.PhenotypeName
	}
	if filters.EvidenceType != "" {
		variables["evidenceType"] = filters.EvidenceType
	}
	if filters.EvidenceDirection != "" {
		variables["evidenceDirection"] = filters.EvidenceDirection
	}
	if cursor != "" {
		variables["after"] = cursor
	}

	var response evidenceResponse
	if err := c.queryGraphQL(ctx, evidenceQuery, variables, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// queryGraphQL executes a GraphQL query against the CIViC API
func (c *Client) queryGraphQL(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	requestBody := map[string]interface{}{
		"query":     query,
		"variables": variables,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	queryURL := fmt.Sprintf("%s/graphql", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", queryURL, strings.NewReader(string(jsonBody)))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute GraphQL request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("CIViC API returned status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}
	return nil
}

// convertNode flattens a CIViC evidence node into the pipeline record shape.
// The molecular profile name's leading token is the gene symbol; the
// remainder, when present, is the variant name.
func convertNode(node *evidenceNode) domain.EvidenceRecord {
	rec := domain.EvidenceRecord{
		ID:                node.ID,
		Description:       node.Description,
		EvidenceType:      domain.EvidenceType(node.EvidenceType),
		EvidenceDirection: domain.EvidenceDirection(node.EvidenceDirection),
		EvidenceRating:    node.EvidenceRating,
	}
	if node.Disease != nil {
		rec.DiseaseName = node.Disease.Name
	}
	if node.MolecularProfile != nil {
		gene, variant, found := strings.Cut(node.MolecularProfile.Name, " ")
		rec.GeneName = gene
		if found {
			rec.VariantName = variant
		}
	}
	if len(node.Therapies) > 0 {
		names := make([]string, len(node.Therapies))
		for i, th := range node.Therapies {
			names[i] = th.Name
		}
		rec.TherapyNames = strings.Join(names, ", ")
	}
	if len(node.Phenotypes) > 0 {
		names := make([]string, len(node.Phenotypes))
		for i, ph := range node.Phenotypes {
			names[i] = ph.Name
		}
		rec.PhenotypeName = strings.Join(names, ", ")
	}
	return rec
}
