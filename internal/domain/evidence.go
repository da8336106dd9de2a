// Package domain contains core business entities for clinical evidence search
// over the CIViC (Clinical Interpretation of Variants in Cancer) knowledge base.
//
// Reference: Griffith et al. (2017) CIViC is a community knowledgebase for expert
// crowdsourcing the clinical interpretation of variants in cancer.
// Nat Genet. 49(2):170-174. doi: 10.1038/ng.3774
package domain

import (
	"strconv"
)

// EvidenceType represents the clinical significance category of an evidence item
type EvidenceType string

const (
	PREDICTIVE   EvidenceType = "PREDICTIVE"
	DIAGNOSTIC   EvidenceType = "DIAGNOSTIC"
	PROGNOSTIC   EvidenceType = "PROGNOSTIC"
	PREDISPOSING EvidenceType = "PREDISPOSING"
	FUNCTIONAL   EvidenceType = "FUNCTIONAL"
)

// EvidenceDirection represents whether an evidence item supports or refutes
// the association it describes
type EvidenceDirection string

const (
	SUPPORTS         EvidenceDirection = "SUPPORTS"
	DOES_NOT_SUPPORT EvidenceDirection = "DOES_NOT_SUPPORT"
)

// IsValid validates the EvidenceType against the CIViC vocabulary
func (t EvidenceType) IsValid() bool {
	switch t {
	case PREDICTIVE, DIAGNOSTIC, PROGNOSTIC, PREDISPOSING, FUNCTIONAL:
		return true
	default:
		return false
	}
}

// IsValid validates the EvidenceDirection against the CIViC vocabulary
func (d EvidenceDirection) IsValid() bool {
	switch d {
	case SUPPORTS, DOES_NOT_SUPPORT:
		return true
	default:
		return false
	}
}

// EvidenceRecord is a flattened clinical evidence item as consumed by the
// report pipeline. Optional text fields use the empty string as absent;
// EvidenceRating uses nil as absent. Absent fields render as "N/A" through
// the OrNA helpers, never earlier.
type EvidenceRecord struct {
	ID                int               `json:"id"`
	DiseaseName       string            `json:"disease_name,omitempty"`
	GeneName          string            `json:"gene_name,omitempty"`
	VariantName       string            `json:"variant_name,omitempty"`
	PhenotypeName     string            `json:"phenotype_name,omitempty"`
	TherapyNames      string            `json:"therapy_names,omitempty"`
	EvidenceType      EvidenceType      `json:"evidence_type,omitempty"`
	EvidenceDirection EvidenceDirection `json:"evidence_direction,omitempty"`
	EvidenceRating    *float64          `json:"evidence_rating,omitempty"`
	Description       string            `json:"description,omitempty"`
}

// HasRating reports whether the record carries an evidence rating
func (r *EvidenceRecord) HasRating() bool {
	return r.EvidenceRating != nil
}

// EvidenceCollection is the retriever output handed to the aggregation stage
type EvidenceCollection []EvidenceRecord

// IDs returns the evidence item identifiers in collection order
func (c EvidenceCollection) IDs() []int {
	ids := make([]int, len(c))
	for i, rec := range c {
		ids[i] = rec.ID
	}
	return ids
}

// CitationRecord is a resolved bibliographic source for an evidence item
type CitationRecord struct {
	EvidenceID int    `json:"evidence_id"`
	Citation   string `json:"citation"`
	SourceURL  string `json:"source_url"`
}

// OrNA maps an absent string field to the "N/A" display sentinel
func OrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// RatingOrNA formats an optional evidence rating for display
func RatingOrNA(r *float64) string {
	if r == nil {
		return "N/A"
	}
	return strconv.FormatFloat(*r, 'g', -1, 64)
}
