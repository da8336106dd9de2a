package report

import (
	"fmt"
	"strings"

	"github.com/chrisgreenx-ctrl/nexonco-mcp/internal/domain"
)

// topEntries is the number of values shown per frequency summary line
const topEntries = 3

// Statistics holds the aggregate view of an evidence collection consumed by
// the summary section of the report.
type Statistics struct {
	TotalItems    int
	AverageRating *float64
	TopDiseases   string
	TopGenes      string
	TopVariants   string
	TopTherapies  string
	TopPhenotypes string
}

// Aggregate computes summary statistics over a non-empty evidence collection.
// The mean rating covers only records that carry a rating; a collection with
// no rated records yields a nil AverageRating, rendered as "N/A".
func Aggregate(records domain.EvidenceCollection) Statistics {
	diseases := NewOrderedCounter()
	genes := NewOrderedCounter()
	variants := NewOrderedCounter()
	therapies := NewOrderedCounter()
	phenotypes := NewOrderedCounter()

	var sum float64
	var rated int
	for i := range records {
		rec := &records[i]
		diseases.Add(rec.DiseaseName)
		genes.Add(rec.GeneName)
		variants.Add(rec.VariantName)
		therapies.Add(rec.TherapyNames)
		phenotypes.Add(rec.PhenotypeName)
		if rec.HasRating() {
			sum += *rec.EvidenceRating
			rated++
		}
	}

	stats := Statistics{
		TotalItems:    len(records),
		TopDiseases:   diseases.FormatTop(topEntries),
		TopGenes:      genes.FormatTop(topEntries),
		TopVariants:   variants.FormatTop(topEntries),
		TopTherapies:  therapies.FormatTop(topEntries),
		TopPhenotypes: phenotypes.FormatTop(topEntries),
	}
	if rated > 0 {
		avg := sum / float64(rated)
		stats.AverageRating = &avg
	}
	return stats
}

// Section renders the fixed-format summary statistics block
func (s Statistics) Section() string {
	avg := "N/A"
	if s.AverageRating != nil {
		avg = fmt.Sprintf("%.2f", *s.AverageRating)
	}

	var b strings.Builder
	b.WriteString("**Summary Statistics**\n")
	fmt.Fprintf(&b, "- Total Evidence Items: %d\n", s.TotalItems)
	fmt.Fprintf(&b, "- Average Evidence Rating: %s\n", avg)
	fmt.Fprintf(&b, "- Top Diseases: %s\n", s.TopDiseases)
	fmt.Fprintf(&b, "- Top Genes: %s\n", s.TopGenes)
	fmt.Fprintf(&b, "- Top Variants: %s\n", s.TopVariants)
	fmt.Fprintf(&b, "- Top Therapies: %s\n", s.TopTherapies)
	fmt.Fprintf(&b, "- Top Phenotypes: %s\n", s.TopPhenotypes)
	return b.String()
}
