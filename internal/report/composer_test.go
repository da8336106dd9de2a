package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

func TestComposeSingleRecordReport(t *testing.T) {
	records := domain.EvidenceCollection{
		{
			ID:                7,
			DiseaseName:       "Lung Non-small Cell Carcinoma",
			GeneName:          "EGFR",
			VariantName:       "L858R",
			TherapyNames:      "Gefitinib",
			PhenotypeName:     "Adenocarcinoma",
			EvidenceType:      domain.PREDICTIVE,
			EvidenceDirection: domain.SUPPORTS,
			EvidenceRating:    rating(4),
			Description:       "Patients with L858R respond to gefitinib.",
		},
	}
	citations := []domain.CitationRecord{
		{EvidenceID: 7, Citation: "Lynch et al., 2004, N. Engl. J. Med.", SourceURL: "https://civicdb.org/links/source/1"},
	}

	out := Compose(Aggregate(records), Rank(records), citations)

	statsIdx := strings.Index(out, "**Summary Statistics**")
	listIdx := strings.Index(out, "**Top 10 Evidence Entries**")
	citeIdx := strings.Index(out, "**Sources & Citations**")
	disclaimerIdx := strings.Index(out, "**Disclaimer:**")
	require.NotEqual(t, -1, statsIdx)
	require.NotEqual(t, -1, listIdx)
	require.NotEqual(t, -1, citeIdx)
	require.NotEqual(t, -1, disclaimerIdx)
	assert.True(t, statsIdx < listIdx && listIdx < citeIdx && citeIdx < disclaimerIdx,
		"sections must appear in fixed order")

	assert.Contains(t, out, "- Total Evidence Items: 1\n")
	assert.Contains(t, out, "- Average Evidence Rating: 4.00\n")
	assert.Contains(t, out, "**PREDICTIVE (SUPPORTS)** | Rating: 4\n")
	assert.Contains(t, out, "- Disease: Lung Non-small Cell Carcinoma\n")
	assert.Contains(t, out, "- Gene/Variant: EGFR / L858R\n")
	assert.Contains(t, out, "- Therapy: Gefitinib\n")
	assert.Contains(t, out, "- Lynch et al., 2004, N. Engl. J. Med. - https://civicdb.org/links/source/1\n")
	assert.True(t, strings.HasSuffix(out, Disclaimer))
}

func TestComposeAbsentFieldsRenderNA(t *testing.T) {
	records := domain.EvidenceCollection{{ID: 1}}

	out := Compose(Aggregate(records), Rank(records), nil)

	assert.Contains(t, out, "**N/A (N/A)** | Rating: N/A\n")
	assert.Contains(t, out, "- Disease: N/A\n")
	assert.Contains(t, out, "- Phenotype: N/A\n")
	assert.Contains(t, out, "- Gene/Variant: N/A / N/A\n")
	assert.Contains(t, out, "- Therapy: N/A\n")
	assert.Contains(t, out, "- Description: N/A\n")
}

func TestComposeToleratesShortCitationList(t *testing.T) {
	records := domain.EvidenceCollection{
		{ID: 1, EvidenceRating: rating(5)},
		{ID: 2, EvidenceRating: rating(4)},
		{ID: 3, EvidenceRating: rating(3)},
	}
	citations := []domain.CitationRecord{
		{EvidenceID: 3, Citation: "C3", SourceURL: "https://example.org/3"},
		{EvidenceID: 1, Citation: "C1", SourceURL: "https://example.org/1"},
	}

	out := Compose(Aggregate(records), Rank(records), citations)

	assert.Contains(t, out, "- C3 - https://example.org/3\n")
	assert.Contains(t, out, "- C1 - https://example.org/1\n")
	assert.Equal(t, 1, strings.Count(out, "**Sources & Citations**"))
}

func TestComposeListsAtMostTenEntries(t *testing.T) {
	var records domain.EvidenceCollection
	for i := 1; i <= 12; i++ {
		records = append(records, domain.EvidenceRecord{
			ID:             i,
			EvidenceType:   domain.PROGNOSTIC,
			EvidenceRating: rating(float64(i)),
		})
	}

	out := Compose(Aggregate(records), Rank(records), nil)

	assert.Equal(t, 10, strings.Count(out, "**PROGNOSTIC ("))
	assert.Contains(t, out, "- Total Evidence Items: 12\n", "statistics cover the full collection, not just the listing")
}

func TestDisclaimerText(t *testing.T) {
	assert.Equal(t,
		"**Disclaimer:** This tool is intended exclusively for research purposes. It is not a substitute for professional medical advice, diagnosis, or treatment.",
		Disclaimer)
}
