package export

import (
	"encoding/json"
	"io"

	"github.com/spektr-org/resagg/engine"
)

// Document is the JSON envelope for one aggregation.
type Document struct {
	Title   string                  `json:"title,omitempty"`
	Mode    engine.Mode             `json:"mode,omitempty"`
	Runs    []string                `json:"runs,omitempty"`
	Columns *engine.AggregatedTable `json:"columns"`
}

// WriteJSON writes doc. Columns keep table order; blank cells are null.
func WriteJSON(w io.Writer, doc Document, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}

// WriteChart writes a plot-ready chart config built from table.
func WriteChart(w io.Writer, table *engine.AggregatedTable, opts engine.ChartOptions) error {
	chart := engine.BuildChart(table, opts)
	if chart == nil {
		chart = &engine.ChartConfig{ChartType: "line", Title: opts.Title, Series: []engine.ChartSeries{}}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(chart)
}
