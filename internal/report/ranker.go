package report

import (
	"sort"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// maxRanked caps the evidence listing at ten entries
const maxRanked = 10

// Rank orders records by evidence rating descending and returns at most ten.
// The sort is stable, so records with equal ratings keep their retrieval
// order. Records without a rating sort after all rated records. The input
// slice is not modified.
func Rank(records domain.EvidenceCollection) domain.EvidenceCollection {
	ranked := make(domain.EvidenceCollection, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i].EvidenceRating, ranked[j].EvidenceRating
		switch {
		case ri == nil:
			return false
		case rj == nil:
			return true
		default:
			return *ri > *rj
		}
	})

	if len(ranked) > maxRanked {
		ranked = ranked[:maxRanked]
	}
	return ranked
}
