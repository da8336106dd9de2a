package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// SearchFilters carries the user-supplied evidence search criteria.
// Empty strings mean "no constraint"; the pipeline never distinguishes a
// missing parameter from an explicitly empty one.
type SearchFilters struct {
	DiseaseName          string `json:"disease_name,omitempty"`
	TherapyName          string `json:"therapy_name,omitempty"`
	MolecularProfileName string `json:"molecular_profile_name,omitempty"`
	PhenotypeName        string `json:"phenotype_name,omitempty"`
	EvidenceType         string `json:"evidence_type,omitempty"`
	EvidenceDirection    string `json:"evidence_direction,omitempty"`
	FilterStrongEvidence bool   `json:"filter_strong_evidence,omitempty"`
}

// Normalized returns a copy with surrounding whitespace stripped so that
// whitespace-only input collapses to the absent value. Non-empty values pass
// through otherwise unchanged; vocabulary validation is left to the upstream
// knowledge base.
func (f SearchFilters) Normalized() SearchFilters {
	return SearchFilters{
		DiseaseName:          strings.TrimSpace(f.DiseaseName),
		TherapyName:          strings.TrimSpace(f.TherapyName),
		MolecularProfileName: strings.TrimSpace(f.MolecularProfileName),
		PhenotypeName:        strings.TrimSpace(f.PhenotypeName),
		EvidenceType:         strings.TrimSpace(f.EvidenceType),
		EvidenceDirection:    strings.TrimSpace(f.EvidenceDirection),
		FilterStrongEvidence: f.FilterStrongEvidence,
	}
}

// IsEmpty reports whether no constraint is set at all
func (f SearchFilters) IsEmpty() bool {
	return f.DiseaseName == "" && f.TherapyName == "" &&
		f.MolecularProfileName == "" && f.PhenotypeName == "" &&
		f.EvidenceType == "" && f.EvidenceDirection == "" &&
		!f.FilterStrongEvidence
}

// CacheKey derives a deterministic cache key from the normalized filters
func (f SearchFilters) CacheKey() string {
	n := f.Normalized()
	raw := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%t",
		n.DiseaseName, n.TherapyName, n.MolecularProfileName,
		n.PhenotypeName, n.EvidenceType, n.EvidenceDirection,
		n.FilterStrongEvidence)
	sum := sha256.Sum256([]byte(raw))
	return "evidence:search:" + hex.EncodeToString(sum[:])
}
