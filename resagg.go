// Package resagg aggregates geochemical reservoir simulator output for comparison.
//
// Usage:
//
//	import "github.com/spektr-org/resagg/engine"
//
//	facade := engine.NewFacade(helpers.NewTableReader(),
//	    engine.WithTimeUnit(engine.Year),
//	    engine.WithSliceBound(250),
//	)
//	table, err := facade.Aggregate(engine.Request{
//	    Mode:       engine.ModeTimeSeries,
//	    Runs:       []engine.Run{{Location: "runs/base", Title: "kddc"}},
//	    Properties: []string{"pH"},
//	    Key:        engine.BlockKey(0),
//	})
//
// The engine reads per-run output tables through a SeriesReader, converts time
// axes, slices paired series to an x window and merges everything into one
// AggregatedTable keyed by synthesized column labels. Rendering the table is left
// to the consumer; the export package writes it as CSV, JSON, YAML or SQLite.
package resagg
