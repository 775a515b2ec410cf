package engine

import (
	"fmt"

	"go.uber.org/zap"
)

// ============================================================================
// SINGLE RUN AGGREGATOR — one run, one or more properties
// ============================================================================
// Output order is input property order. Nothing here slices; callers that want
// a window apply SliceRange themselves.
// ============================================================================

// SingleRunAggregator reads and converts series for one run.
type SingleRunAggregator struct {
	reader SeriesReader
	log    *zap.Logger
}

// NewSingleRunAggregator creates an aggregator over reader.
func NewSingleRunAggregator(reader SeriesReader, logger *zap.Logger) *SingleRunAggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SingleRunAggregator{reader: reader, log: logger}
}

// TimeSeriesFor returns one time series per property at the block addressed by
// key, with the time axis converted to unit.
func (a *SingleRunAggregator) TimeSeriesFor(run Run, properties []string, key SpatialKey, unit TimeUnit) ([]LabeledSeries, error) {
	if key.Kind != KindBlock {
		return nil, configErrorf("time series need a block key, got %s", key.Kind)
	}
	out := make([]LabeledSeries, 0, len(properties))
	for _, property := range properties {
		seconds, values, err := a.reader.TimeSeries(run, property, key)
		if err != nil {
			return nil, err
		}
		if err := checkPaired(seconds, values); err != nil {
			return nil, fmt.Errorf("time series %s/%s: %w", run, property, err)
		}
		t, err := ConvertTime(seconds, unit)
		if err != nil {
			return nil, err
		}
		a.log.Debug("time series read",
			zap.Stringer("run", run),
			zap.String("property", property),
			zap.Int("points", len(values)))
		out = append(out, LabeledSeries{Property: property, X: t, Y: values})
	}
	return out, nil
}

// ProfileFor returns, per property, the block positions along key.Direction and
// the property values at key.Time. The position axis is read once and shared.
func (a *SingleRunAggregator) ProfileFor(run Run, properties []string, key SpatialKey) ([]LabeledSeries, error) {
	if key.Kind != KindTime {
		return nil, configErrorf("profiles need a time key, got %s", key.Kind)
	}
	axis, err := a.reader.CoordinateAxis(run, key.Direction, key.Time)
	if err != nil {
		return nil, err
	}
	out := make([]LabeledSeries, 0, len(properties))
	for _, property := range properties {
		values, err := a.reader.ElementSnapshot(run, property, key.Time)
		if err != nil {
			return nil, err
		}
		if err := checkPaired(axis, values); err != nil {
			return nil, fmt.Errorf("profile %s/%s: %w", run, property, err)
		}
		out = append(out, LabeledSeries{Property: property, X: axis, Y: values})
	}
	return out, nil
}

// LayerProfileFor returns, per property, the positions along `along` of the
// blocks on the layer addressed by key, and the property values on that layer.
func (a *SingleRunAggregator) LayerProfileFor(run Run, properties []string, key SpatialKey, along Direction) ([]LabeledSeries, error) {
	if key.Kind != KindLayer {
		return nil, configErrorf("layer profiles need a layer key, got %s", key.Kind)
	}
	axis, err := a.reader.LayerAxis(run, key.Direction, key.Layer, key.Time, along)
	if err != nil {
		return nil, err
	}
	out := make([]LabeledSeries, 0, len(properties))
	for _, property := range properties {
		values, err := a.reader.LayerSnapshot(run, key.Direction, key.Layer, key.Time, property)
		if err != nil {
			return nil, err
		}
		if err := checkPaired(axis, values); err != nil {
			return nil, fmt.Errorf("layer profile %s/%s: %w", run, property, err)
		}
		out = append(out, LabeledSeries{Property: property, X: axis, Y: values})
	}
	return out, nil
}
