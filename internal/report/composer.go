package report

import (
	"fmt"
	"strings"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// EmptyResultMessage is returned verbatim when no evidence matches the filters
const EmptyResultMessage = "No evidence found for the specified filters."

// Disclaimer is the fixed closing section of every report
const Disclaimer = "**Disclaimer:** This tool is intended exclusively for research purposes. It is not a substitute for professional medical advice, diagnosis, or treatment."

// Compose assembles the final report from its three computed sections plus
// the disclaimer. The caller guarantees a non-empty collection; ranked must
// already be sorted and capped by Rank. Citations may be fewer than the
// ranked entries and arrive in any order.
func Compose(stats Statistics, ranked domain.EvidenceCollection, citations []domain.CitationRecord) string {
	var b strings.Builder

	b.WriteString(stats.Section())
	b.WriteString("\n")

	b.WriteString("**Top 10 Evidence Entries**\n")
	for i := range ranked {
		rec := &ranked[i]
		fmt.Fprintf(&b, "\n**%s (%s)** | Rating: %s\n",
			domain.OrNA(string(rec.EvidenceType)),
			domain.OrNA(string(rec.EvidenceDirection)),
			domain.RatingOrNA(rec.EvidenceRating))
		fmt.Fprintf(&b, "- Disease: %s\n", domain.OrNA(rec.DiseaseName))
		fmt.Fprintf(&b, "- Phenotype: %s\n", domain.OrNA(rec.PhenotypeName))
		fmt.Fprintf(&b, "- Gene/Variant: %s / %s\n", domain.OrNA(rec.GeneName), domain.OrNA(rec.VariantName))
		fmt.Fprintf(&b, "- Therapy: %s\n", domain.OrNA(rec.TherapyNames))
		fmt.Fprintf(&b, "- Description: %s\n", domain.OrNA(rec.Description))
	}
	b.WriteString("\n")

	b.WriteString("**Sources & Citations**\n")
	for _, c := range citations {
		fmt.Fprintf(&b, "- %s - %s\n", domain.OrNA(c.Citation), domain.OrNA(c.SourceURL))
	}
	b.WriteString("\n")

	b.WriteString("\n")
	b.WriteString(Disclaimer)
	return b.String()
}
