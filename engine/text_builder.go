package engine

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// ============================================================================
// TEXT BUILDER — Per-column summaries for quick terminal answers
// ============================================================================

// Summarize describes every column of table, in column order. NaN cells are
// ignored; an all-blank or empty column reports Count 0 and NaN extremes.
func Summarize(table *AggregatedTable) []ColumnSummary {
	if table == nil {
		return nil
	}
	labels := table.Labels()
	out := make([]ColumnSummary, 0, len(labels))
	for _, label := range labels {
		s, _ := table.Column(label)
		out = append(out, summarizeSeries(label, s))
	}
	return out
}

func summarizeSeries(label string, s Series) ColumnSummary {
	finite := make([]float64, 0, len(s))
	for _, v := range s {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	sum := ColumnSummary{Label: label, Count: len(finite)}
	if len(finite) == 0 {
		nan := math.NaN()
		sum.First, sum.Last, sum.Min, sum.Max = nan, nan, nan, nan
		return sum
	}
	sum.First = finite[0]
	sum.Last = finite[len(finite)-1]
	sum.Min = floats.Min(finite)
	sum.Max = floats.Max(finite)
	return sum
}

// BuildText renders summaries as one line per column.
func BuildText(table *AggregatedTable) string {
	summaries := Summarize(table)
	if len(summaries) == 0 {
		return "No columns."
	}
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		if s.Count == 0 {
			lines = append(lines, fmt.Sprintf("%s: no values", s.Label))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: n=%d first=%s last=%s min=%s max=%s",
			s.Label, s.Count,
			FormatValue(s.First), FormatValue(s.Last),
			FormatValue(s.Min), FormatValue(s.Max)))
	}
	return strings.Join(lines, "\n")
}
