// Package tools implements the MCP tool handlers exposed by the server.
package tools

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/mcp/protocol"
	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/service"
)

// SearchToolName is the registered name of the evidence search tool.
const SearchToolName = "search_clinical_evidence"

// SearchToolDescription is the tool description advertised via tools/list.
const SearchToolDescription = "Perform a flexible search for clinical evidence using combinations of filters such as disease, therapy, " +
	"molecular profile, phenotype, evidence type, and direction. This flexible search system allows you to tailor " +
	"your query based on the data needed for research or clinical decision-making. It returns a detailed report that " +
	"includes summary statistics, a top 10 evidence listing, citation sources, and a disclaimer."

// EvidenceSearchTool implements the search_clinical_evidence MCP tool.
type EvidenceSearchTool struct {
	logger  *logrus.Logger
	service *service.EvidenceService
}

// EvidenceSearchParams defines parameters for the search_clinical_evidence tool.
type EvidenceSearchParams struct {
	DiseaseName          string `json:"disease_name,omitempty"`
	TherapyName          string `json:"therapy_name,omitempty"`
	MolecularProfileName string `json:"molecular_profile_name,omitempty"`
	PhenotypeName        string `json:"phenotype_name,omitempty"`
	EvidenceType         string `json:"evidence_type,omitempty"`
	EvidenceDirection    string `json:"evidence_direction,omitempty"`
	FilterStrongEvidence bool   `json:"filter_strong_evidence,omitempty"`
}

// NewEvidenceSearchTool creates a new evidence search tool handler.
func NewEvidenceSearchTool(logger *logrus.Logger, svc *service.EvidenceService) *EvidenceSearchTool {
	return &EvidenceSearchTool{
		logger:  logger,
		service: svc,
	}
}

// HandleTool processes a search_clinical_evidence request.
func (t *EvidenceSearchTool) HandleTool(ctx context.Context, req *protocol.JSONRPC2Request) *protocol.JSONRPC2Response {
	startTime := time.Now()
	t.logger.WithField("tool", SearchToolName).Info("Processing evidence search request")

	var params EvidenceSearchParams
	if err := t.parseAndValidateParams(req.Params, &params); err != nil {
		code := domain.ErrInvalidInput
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			code = domain.ErrValidation
		}
		return &protocol.JSONRPC2Response{
			Error: &protocol.RPCError{
				Code:    protocol.InvalidParams,
				Message: "Invalid parameters",
				Data:    domain.NewMCPError(code, err.Error(), "", ""),
			},
		}
	}

	filters := domain.SearchFilters{
		DiseaseName:          params.DiseaseName,
		TherapyName:          params.TherapyName,
		MolecularProfileName: params.MolecularProfileName,
		PhenotypeName:        params.PhenotypeName,
		EvidenceType:         params.EvidenceType,
		EvidenceDirection:    params.EvidenceDirection,
		FilterStrongEvidence: params.FilterStrongEvidence,
	}

	report, err := t.service.Search(ctx, filters)
	if err != nil {
		t.logger.WithError(err).Error("Evidence search failed")
		return &protocol.JSONRPC2Response{
			Error: &protocol.RPCError{
				Code:    protocol.MCPToolError,
				Message: "Evidence search failed",
				Data:    domain.NewMCPError(domain.ErrExternalAPI, "evidence search failed", err.Error(), ""),
			},
		}
	}

	t.logger.WithFields(logrus.Fields{
		"tool":            SearchToolName,
		"processing_time": time.Since(startTime).String(),
	}).Info("Evidence search completed")

	return &protocol.JSONRPC2Response{
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": report,
				},
			},
		},
	}
}

// GetToolInfo returns tool metadata.
func (t *EvidenceSearchTool) GetToolInfo() protocol.ToolInfo {
	return protocol.ToolInfo{
		Name:        SearchToolName,
		Description: SearchToolDescription,
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"disease_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the disease to filter evidence by (e.g., 'Von Hippel-Lindau Disease', 'Lung Non-small Cell Carcinoma', 'Colorectal Cancer'). Case-insensitive and optional.",
				},
				"therapy_name": map[string]interface{}{
					"type":        "string",
					"description": "Therapy or drug name involved in the evidence (e.g., 'Cetuximab', 'Imatinib', 'Trastuzumab'). Optional.",
				},
				"molecular_profile_name": map[string]interface{}{
					"type":        "string",
					"description": "Molecular profile, gene name or variant name (e.g., 'EGFR L858R', 'BRAF V600E', 'KRAS'). Optional.",
				},
				"phenotype_name": map[string]interface{}{
					"type":        "string",
					"description": "Name of the phenotype or histological subtype (e.g., 'Hemangioblastoma', 'Renal cell carcinoma', 'Childhood onset'). Optional.",
				},
				"evidence_type": map[string]interface{}{
					"type":        "string",
					"description": "Evidence classification: 'PREDICTIVE', 'DIAGNOSTIC', 'PROGNOSTIC', 'PREDISPOSING', or 'FUNCTIONAL'. Optional.",
					"enum":        []string{"PREDICTIVE", "DIAGNOSTIC", "PROGNOSTIC", "PREDISPOSING", "FUNCTIONAL"},
				},
				"evidence_direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction of the evidence: 'SUPPORTS' or 'DOES_NOT_SUPPORT'. Indicates if the evidence favors the association.",
					"enum":        []string{"SUPPORTS", "DOES_NOT_SUPPORT"},
				},
				"filter_strong_evidence": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, only evidence with a rating above 3 is included, indicating high-confidence evidence. The number of returned items may be quite low.",
					"default":     false,
				},
			},
			"required": []string{},
		},
	}
}

// ValidateParams validates tool parameters.
func (t *EvidenceSearchTool) ValidateParams(params interface{}) error {
	var searchParams EvidenceSearchParams
	return t.parseAndValidateParams(params, &searchParams)
}

func (t *EvidenceSearchTool) parseAndValidateParams(params interface{}, target *EvidenceSearchParams) error {
	if params != nil {
		if err := ParseParams(params, target); err != nil {
			return err
		}
	}

	target.EvidenceType = strings.ToUpper(strings.TrimSpace(target.EvidenceType))
	target.EvidenceDirection = strings.ToUpper(strings.TrimSpace(target.EvidenceDirection))

	if target.EvidenceType != "" && !domain.EvidenceType(target.EvidenceType).IsValid() {
		return domain.NewValidationError("evidence_type",
			"must be one of PREDICTIVE, DIAGNOSTIC, PROGNOSTIC, PREDISPOSING, FUNCTIONAL", target.EvidenceType)
	}

	if target.EvidenceDirection != "" && !domain.EvidenceDirection(target.EvidenceDirection).IsValid() {
		return domain.NewValidationError("evidence_direction",
			"must be SUPPORTS or DOES_NOT_SUPPORT", target.EvidenceDirection)
	}

	return nil
}
