package engine

import (
	"math"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Produces wide TableData from an AggregatedTable
// ============================================================================
// One column per label, in table order. Columns have different lengths after
// slicing or across runs; short columns are padded with blank cells.
// ============================================================================

// BuildTable renders table as rows of formatted cells.
func BuildTable(title string, table *AggregatedTable) *TableData {
	if table == nil || table.Len() == 0 {
		return &TableData{
			Title:   title,
			Columns: []Column{},
			Rows:    [][]string{},
		}
	}

	labels := table.Labels()
	columns := make([]Column, 0, len(labels))
	for _, label := range labels {
		columns = append(columns, Column{
			Key:   label,
			Label: label,
			Type:  "number",
			Align: "right",
		})
	}

	n := table.MaxRows()
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(labels))
		for c, label := range labels {
			s, _ := table.Column(label)
			if i < len(s) {
				row[c] = FormatValue(s[i])
			}
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   title,
		Columns: columns,
		Rows:    rows,
	}
}

// FormatValue formats a value with the shortest exact representation. NaN
// (a blank source cell) formats as an empty string.
func FormatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
