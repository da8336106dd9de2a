package domain

import (
	"testing"
)

func TestEvidenceTypeIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value EvidenceType
		valid bool
	}{
		{"Predictive", PREDICTIVE, true},
		{"Diagnostic", DIAGNOSTIC, true},
		{"Prognostic", PROGNOSTIC, true},
		{"Predisposing", PREDISPOSING, true},
		{"Functional", FUNCTIONAL, true},
		{"Empty", EvidenceType(""), false},
		{"Unknown", EvidenceType("ONCOGENIC"), false},
		{"Lowercase", EvidenceType("predictive"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsValid(); got != tt.valid {
				t.Errorf("Expected IsValid()=%v for %q, got %v", tt.valid, tt.value, got)
			}
		})
	}
}

func TestEvidenceDirectionIsValid(t *testing.T) {
	tests := []struct {
		name  string
		value EvidenceDirection
		valid bool
	}{
		{"Supports", SUPPORTS, true},
		{"Does not support", DOES_NOT_SUPPORT, true},
		{"Empty", EvidenceDirection(""), false},
		{"Unknown", EvidenceDirection("REFUTES"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.value.IsValid(); got != tt.valid {
				t.Errorf("Expected IsValid()=%v for %q, got %v", tt.valid, tt.value, got)
			}
		})
	}
}

func TestOrNA(t *testing.T) {
	if got := OrNA(""); got != "N/A" {
		t.Errorf("Expected N/A for empty string, got %q", got)
	}
	if got := OrNA("BRAF"); got != "BRAF" {
		t.Errorf("Expected BRAF, got %q", got)
	}
}

func TestRatingOrNA(t *testing.T) {
	if got := RatingOrNA(nil); got != "N/A" {
		t.Errorf("Expected N/A for nil rating, got %q", got)
	}

	four := 4.0
	if got := RatingOrNA(&four); got != "4" {
		t.Errorf("Expected 4, got %q", got)
	}

	half := 3.5
	if got := RatingOrNA(&half); got != "3.5" {
		t.Errorf("Expected 3.5, got %q", got)
	}
}

func TestEvidenceCollectionIDs(t *testing.T) {
	c := EvidenceCollection{{ID: 3}, {ID: 1}, {ID: 2}}

	ids := c.IDs()
	if len(ids) != 3 || ids[0] != 3 || ids[1] != 1 || ids[2] != 2 {
		t.Errorf("Expected [3 1 2], got %v", ids)
	}
}
