package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// MULTI RUN AGGREGATOR — runs × properties → one aligned table
// ============================================================================
// Four modes:
//   1. TimeSeriesByRun  one property, block key      → time<i>, result<i>
//      TimeSeriesPerRun properties[i] for run i       → time<i>, result<i>
//   2. ProfileByRun     properties[i] for run i       → x<i>, result<i>
//   3. LayerProfiles    runs × properties on a layer  → <p>x<o><n>, <p>result<o><n>
//   4. TimeSeriesGrid   runs × properties over time   → <p>time<o><n>, <p>result<o><n>
//
// Iteration is outer-major, inner-minor. Run-major by default; WithPerFile makes
// properties the outer loop. Any failing cell fails the whole call.
// ============================================================================

// MultiRunAggregator merges series from several runs into one table.
type MultiRunAggregator struct {
	reader SeriesReader
	single *SingleRunAggregator
	cfg    *config
}

// NewMultiRunAggregator creates an aggregator over reader.
func NewMultiRunAggregator(reader SeriesReader, opts ...Option) *MultiRunAggregator {
	return newMultiRunAggregator(reader, applyOptions(opts))
}

func newMultiRunAggregator(reader SeriesReader, cfg *config) *MultiRunAggregator {
	return &MultiRunAggregator{
		reader: reader,
		single: NewSingleRunAggregator(reader, cfg.Logger),
		cfg:    cfg,
	}
}

// TimeSeriesByRun is mode 1: the same property at the same block for every run.
func (a *MultiRunAggregator) TimeSeriesByRun(runs []Run, property string, key SpatialKey) (*AggregatedTable, error) {
	return a.timeSeriesByRun(runs, []string{property}, key)
}

// TimeSeriesPerRun is mode 1 with properties[i] read for runs[i]. The layout
// is the same as TimeSeriesByRun: time<i>, result<i>.
func (a *MultiRunAggregator) TimeSeriesPerRun(runs []Run, properties []string, key SpatialKey) (*AggregatedTable, error) {
	if len(properties) != len(runs) {
		return nil, configErrorf("per-run time series need one property per run: %d runs, %d properties",
			len(runs), len(properties))
	}
	return a.timeSeriesByRun(runs, properties, key)
}

// timeSeriesByRun takes either one property shared by every run or one per run.
func (a *MultiRunAggregator) timeSeriesByRun(runs []Run, properties []string, key SpatialKey) (*AggregatedTable, error) {
	if len(runs) == 0 {
		return nil, configErrorf("no runs supplied")
	}
	if len(properties) != 1 && len(properties) != len(runs) {
		return nil, configErrorf("time series mode needs one property, or one per run: %d runs, %d properties",
			len(runs), len(properties))
	}
	table := NewAggregatedTable()
	for i, run := range runs {
		property := properties[0]
		if len(properties) > 1 {
			property = properties[i]
		}
		series, err := a.single.TimeSeriesFor(run, []string{property}, key, a.cfg.TimeUnit)
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i, run, err)
		}
		if err := a.appendRunPair(table, RoleTime, i, series[0]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ProfileByRun is mode 2: properties[i] for runs[i], positioned along
// key.Direction at key.Time.
func (a *MultiRunAggregator) ProfileByRun(runs []Run, properties []string, key SpatialKey) (*AggregatedTable, error) {
	if len(runs) == 0 {
		return nil, configErrorf("no runs supplied")
	}
	if len(properties) != len(runs) {
		return nil, configErrorf("profile mode needs one property per run: %d runs, %d properties",
			len(runs), len(properties))
	}
	table := NewAggregatedTable()
	for i, run := range runs {
		series, err := a.single.ProfileFor(run, properties[i:i+1], key)
		if err != nil {
			return nil, fmt.Errorf("run %d (%s): %w", i, run, err)
		}
		if err := a.appendRunPair(table, RoleX, i, series[0]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// LayerProfiles is mode 3: every (run, property) pair on the layer addressed by
// key, positioned along `along`.
func (a *MultiRunAggregator) LayerProfiles(runs []Run, properties []string, key SpatialKey, along Direction) (*AggregatedTable, error) {
	return a.grid(runs, properties, RoleX, func(run Run, property string) (LabeledSeries, error) {
		series, err := a.single.LayerProfileFor(run, []string{property}, key, along)
		if err != nil {
			return LabeledSeries{}, err
		}
		return series[0], nil
	})
}

// TimeSeriesGrid is mode 4: every (run, property) pair as a time series at the
// block addressed by key.
func (a *MultiRunAggregator) TimeSeriesGrid(runs []Run, properties []string, key SpatialKey) (*AggregatedTable, error) {
	return a.grid(runs, properties, RoleTime, func(run Run, property string) (LabeledSeries, error) {
		series, err := a.single.TimeSeriesFor(run, []string{property}, key, a.cfg.TimeUnit)
		if err != nil {
			return LabeledSeries{}, err
		}
		return series[0], nil
	})
}

// ============================================================================
// GRID ITERATION
// ============================================================================

type cellReader func(run Run, property string) (LabeledSeries, error)

func (a *MultiRunAggregator) grid(runs []Run, properties []string, xRole Role, read cellReader) (*AggregatedTable, error) {
	if err := validateGrid(runs, properties); err != nil {
		return nil, err
	}

	outerN, innerN := len(runs), len(properties)
	if a.cfg.PerFile {
		outerN, innerN = len(properties), len(runs)
	}

	table := NewAggregatedTable()
	for o := 0; o < outerN; o++ {
		for n := 0; n < innerN; n++ {
			ri, pj := o, n
			if a.cfg.PerFile {
				ri, pj = n, o
			}
			run, property := runs[ri], properties[pj]

			series, err := read(run, property)
			if err != nil {
				return nil, fmt.Errorf("run %d (%s), property %q: %w", ri, run, property, err)
			}
			x, y, err := a.cfg.slice(series.X, series.Y)
			if err != nil {
				return nil, fmt.Errorf("run %d (%s), property %q: %w", ri, run, property, err)
			}

			outer, inner := a.cfg.cell(ri, pj)
			a.cfg.Logger.Debug("cell aggregated",
				zap.Int("outer", outer),
				zap.Int("inner", inner),
				zap.Stringer("run", run),
				zap.String("property", property),
				zap.Int("points", len(y)))

			if err := table.AppendPair(
				gridLabel(property, xRole, outer, inner),
				gridLabel(property, RoleResult, outer, inner),
				x, y,
			); err != nil {
				return nil, err
			}
		}
	}
	return table, nil
}

func (a *MultiRunAggregator) appendRunPair(table *AggregatedTable, xRole Role, i int, series LabeledSeries) error {
	x, y, err := a.cfg.slice(series.X, series.Y)
	if err != nil {
		return fmt.Errorf("run %d, property %q: %w", i, series.Property, err)
	}
	a.cfg.Logger.Debug("run aggregated",
		zap.Int("run", i),
		zap.String("property", series.Property),
		zap.Int("points", len(y)))
	return table.AppendPair(runLabel(xRole, i), runLabel(RoleResult, i), x, y)
}

// validateGrid rejects inputs whose labels could not be told apart. With
// distinct property names, <property><role><outer><inner> is injective: a
// property fixes its own index, so only the run index varies within it.
func validateGrid(runs []Run, properties []string) error {
	if len(runs) == 0 {
		return configErrorf("no runs supplied")
	}
	if len(properties) == 0 {
		return configErrorf("no properties supplied")
	}
	seen := make(map[string]bool, len(properties))
	for _, p := range properties {
		if p == "" {
			return configErrorf("empty property name")
		}
		if seen[p] {
			return configErrorf("property %q listed twice", p)
		}
		seen[p] = true
	}
	return nil
}
