// Package report implements the evidence aggregation and report synthesis
// pipeline: frequency aggregation, rating-based ranking, and composition of
// the final four-section text report.
package report

import (
	"fmt"
	"sort"
	"strings"
)

// CounterEntry is a counted value with its occurrence count
type CounterEntry struct {
	Value string
	Count int
}

// OrderedCounter counts string occurrences while remembering first-seen
// insertion order. Ties in Top are broken by whichever value was counted
// first, so repeated runs over the same input produce identical output.
type OrderedCounter struct {
	counts map[string]int
	order  []string
}

// NewOrderedCounter creates an empty counter
func NewOrderedCounter() *OrderedCounter {
	return &OrderedCounter{counts: make(map[string]int)}
}

// Add counts one occurrence of v. Absent values (empty strings) are skipped
// so they never surface in frequency summaries.
func (c *OrderedCounter) Add(v string) {
	if v == "" {
		return
	}
	if _, seen := c.counts[v]; !seen {
		c.order = append(c.order, v)
	}
	c.counts[v]++
}

// Len returns the number of distinct counted values
func (c *OrderedCounter) Len() int {
	return len(c.order)
}

// Top returns up to n entries ordered by count descending, first-seen first
// among equal counts.
func (c *OrderedCounter) Top(n int) []CounterEntry {
	entries := make([]CounterEntry, len(c.order))
	for i, v := range c.order {
		entries[i] = CounterEntry{Value: v, Count: c.counts[v]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// FormatTop renders the top n entries as "a (3), b (2), c (1)", or "N/A"
// when nothing was counted.
func (c *OrderedCounter) FormatTop(n int) string {
	if c.Len() == 0 {
		return "N/A"
	}
	parts := make([]string, 0, n)
	for _, e := range c.Top(n) {
		parts = append(parts, fmt.Sprintf("%s (%d)", e.Value, e.Count))
	}
	return strings.Join(parts, ", ")
}
