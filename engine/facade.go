package engine

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// AGGREGATION FACADE — Single entry point
// ============================================================================
// Entry point: NewFacade(reader, opts...).Aggregate(request)
//
// Pipeline:
//   1. Validate the request (runs, properties, key, titles)
//   2. Pick the column layout from mode and property count
//   3. One run  → SingleRunAggregator, slice here
//      Many runs → MultiRunAggregator
//   4. Return a fully populated table or an error, never a partial table
//
// The layout does not depend on which aggregator ran: a one-run request yields
// the labels a multi-run call would produce for run index 0.
// ============================================================================

// Mode selects what is extracted from each run.
type Mode string

const (
	ModeTimeSeries     Mode = "timeseries" // one property per run over time at one block
	ModeProfile        Mode = "profile"    // values over all blocks at one time
	ModeLayerProfile   Mode = "layer"      // runs × properties over one layer's blocks at one time
	ModeTimeSeriesGrid Mode = "grid"       // runs × properties over time at one block
)

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeTimeSeries, ModeProfile, ModeLayerProfile, ModeTimeSeriesGrid:
		return m, nil
	case "time", "time_series", "time-series":
		return ModeTimeSeries, nil
	case "layer_profile", "layer-profile":
		return ModeLayerProfile, nil
	case "timeseries_grid", "timeseries-grid", "time-series-grid":
		return ModeTimeSeriesGrid, nil
	default:
		return "", configErrorf("unknown mode %q (want timeseries, grid, profile or layer)", s)
	}
}

// Request is one aggregation call.
type Request struct {
	Mode       Mode       `json:"mode"`
	Runs       []Run      `json:"runs"`
	Properties []string   `json:"properties"`
	Key        SpatialKey `json:"key"`
	Along      Direction  `json:"along,omitempty"` // layer profiles: x axis direction
}

// Facade selects single- or multi-run aggregation.
type Facade struct {
	cfg    *config
	single *SingleRunAggregator
	multi  *MultiRunAggregator
}

// NewFacade creates a facade over reader.
//
// Options:
//   - WithTimeUnit(u): display unit for time axes (default seconds)
//   - WithSliceBound(b): keep only x < b in every produced pair
//   - WithPerFile(true): property-major iteration for grid layouts
//   - WithTitles(...) / WithSimulator(s): cosmetic / informational
//   - WithLogger(l)
func NewFacade(reader SeriesReader, opts ...Option) *Facade {
	cfg := applyOptions(opts)
	return &Facade{
		cfg:    cfg,
		single: NewSingleRunAggregator(reader, cfg.Logger),
		multi:  newMultiRunAggregator(reader, cfg),
	}
}

// Aggregate runs req to completion.
func (f *Facade) Aggregate(req Request) (*AggregatedTable, error) {
	if err := f.validate(req); err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		table *AggregatedTable
		err   error
	)
	if len(req.Runs) == 1 {
		table, err = f.aggregateSingle(req)
	} else {
		table, err = f.aggregateMulti(req)
	}
	if err != nil {
		f.cfg.Logger.Warn("aggregation failed",
			zap.String("mode", string(req.Mode)),
			zap.Int("runs", len(req.Runs)),
			zap.Error(err))
		return nil, err
	}

	f.cfg.Logger.Info("aggregation complete",
		zap.String("mode", string(req.Mode)),
		zap.String("simulator", string(f.cfg.Simulator)),
		zap.Int("runs", len(req.Runs)),
		zap.Int("properties", len(req.Properties)),
		zap.Int("columns", table.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return table, nil
}

// Titles returns the cosmetic titles configured for this facade.
func (f *Facade) Titles() []string {
	return append([]string(nil), f.cfg.Titles...)
}

// TimeUnit returns the display unit for time axes.
func (f *Facade) TimeUnit() TimeUnit { return f.cfg.TimeUnit }

// ============================================================================
// VALIDATION
// ============================================================================

func (f *Facade) validate(req Request) error {
	if len(req.Runs) == 0 {
		return configErrorf("no run locations supplied")
	}
	for i, r := range req.Runs {
		if strings.TrimSpace(r.Location) == "" {
			return configErrorf("run %d has an empty location", i)
		}
	}
	if len(req.Properties) == 0 {
		return configErrorf("no properties supplied")
	}
	if len(f.cfg.Titles) > 0 && len(f.cfg.Titles) != len(req.Runs) {
		return configErrorf("%d titles for %d runs", len(f.cfg.Titles), len(req.Runs))
	}
	if _, err := f.cfg.TimeUnit.Seconds(); err != nil {
		return err
	}

	switch req.Mode {
	case ModeTimeSeries:
		if req.Key.Kind != KindBlock {
			return configErrorf("time series need a block key, got %s", req.Key.Kind)
		}
		if len(req.Properties) != 1 && len(req.Properties) != len(req.Runs) {
			return configErrorf("time series mode needs one property, or one per run: %d runs, %d properties",
				len(req.Runs), len(req.Properties))
		}
	case ModeTimeSeriesGrid:
		if req.Key.Kind != KindBlock {
			return configErrorf("time series need a block key, got %s", req.Key.Kind)
		}
		return validateGrid(req.Runs, req.Properties)
	case ModeProfile:
		if req.Key.Kind != KindTime {
			return configErrorf("profiles need a time key, got %s", req.Key.Kind)
		}
		if len(req.Properties) != len(req.Runs) {
			return configErrorf("profile mode needs one property per run: %d runs, %d properties",
				len(req.Runs), len(req.Properties))
		}
	case ModeLayerProfile:
		if req.Key.Kind != KindLayer {
			return configErrorf("layer profiles need a layer key, got %s", req.Key.Kind)
		}
		if req.Along == "" {
			return configErrorf("layer profiles need an x direction")
		}
		if req.Along == req.Key.Direction {
			return configErrorf("layer direction and x direction are both %s", req.Along)
		}
		return validateGrid(req.Runs, req.Properties)
	default:
		return configErrorf("unknown mode %q", req.Mode)
	}
	return nil
}

// ============================================================================
// DISPATCH
// ============================================================================

func (f *Facade) aggregateMulti(req Request) (*AggregatedTable, error) {
	switch req.Mode {
	case ModeTimeSeries:
		return f.multi.timeSeriesByRun(req.Runs, req.Properties, req.Key)
	case ModeTimeSeriesGrid:
		return f.multi.TimeSeriesGrid(req.Runs, req.Properties, req.Key)
	case ModeProfile:
		return f.multi.ProfileByRun(req.Runs, req.Properties, req.Key)
	default:
		return f.multi.LayerProfiles(req.Runs, req.Properties, req.Key, req.Along)
	}
}

func (f *Facade) aggregateSingle(req Request) (*AggregatedTable, error) {
	run := req.Runs[0]

	var (
		series []LabeledSeries
		xRole  Role
		err    error
	)
	switch req.Mode {
	case ModeTimeSeries, ModeTimeSeriesGrid:
		series, err = f.single.TimeSeriesFor(run, req.Properties, req.Key, f.cfg.TimeUnit)
		xRole = RoleTime
	case ModeProfile:
		series, err = f.single.ProfileFor(run, req.Properties, req.Key)
		xRole = RoleX
	default:
		series, err = f.single.LayerProfileFor(run, req.Properties, req.Key, req.Along)
		xRole = RoleX
	}
	if err != nil {
		return nil, err
	}

	// One-column-pair layouts (modes 1 and 2) are keyed by run index only.
	runKeyed := req.Mode == ModeProfile || req.Mode == ModeTimeSeries

	table := NewAggregatedTable()
	for j, s := range series {
		x, y, err := f.cfg.slice(s.X, s.Y)
		if err != nil {
			return nil, err
		}
		xLabel, yLabel := runLabel(xRole, 0), runLabel(RoleResult, 0)
		if !runKeyed {
			outer, inner := f.cfg.cell(0, j)
			xLabel = gridLabel(s.Property, xRole, outer, inner)
			yLabel = gridLabel(s.Property, RoleResult, outer, inner)
		}
		if err := table.AppendPair(xLabel, yLabel, x, y); err != nil {
			return nil, err
		}
	}
	return table, nil
}
