package main

import (
	"fmt"
	"io"

	"github.com/spektr-org/resagg/engine"
	"github.com/spektr-org/resagg/export"
)

// ============================================================================
// OUTPUT — One renderer per --format
// ============================================================================

func render(w io.Writer, format, title string, req engine.Request, titles []string, table *engine.AggregatedTable) error {
	switch format {
	case "csv":
		return export.WriteCSV(w, table)
	case "json", "pretty":
		doc := export.Document{
			Title:   title,
			Mode:    req.Mode,
			Runs:    runNames(req.Runs),
			Columns: table,
		}
		return export.WriteJSON(w, doc, format == "pretty")
	case "chart":
		return export.WriteChart(w, table, chartOptions(title, req, titles, table))
	case "yaml":
		return export.WriteYAML(w, table)
	case "text":
		_, err := fmt.Fprintln(w, engine.BuildText(table))
		return err
	default:
		return engine.NewConfigurationError(fmt.Sprintf("unknown format %q", format), nil)
	}
}

// chartOptions names series after run titles when there is one pair per run.
func chartOptions(title string, req engine.Request, titles []string, table *engine.AggregatedTable) engine.ChartOptions {
	opts := engine.ChartOptions{Title: title}
	if len(req.Properties) == 1 {
		opts.YAxis = req.Properties[0]
	}
	if len(titles) > 0 && len(titles) == len(table.Pairs()) {
		opts.SeriesNames = titles
	}
	return opts
}

// ============================================================================
// HELPERS
// ============================================================================

func runNames(runs []engine.Run) []string {
	names := make([]string, len(runs))
	for i, r := range runs {
		names[i] = r.String()
	}
	return names
}
