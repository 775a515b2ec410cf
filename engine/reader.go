package engine

// ============================================================================
// SERIES READER — boundary to the run-table parser
// ============================================================================
// The engine never parses raw simulator output. Everything it knows about a run
// comes through this interface. helpers.TableReader is the CSV implementation.
// ============================================================================

// SeriesReader extracts numeric series from one run's output table.
//
// Implementations return *MissingPropertyError when a property column is absent
// and *NoMatchingBlockError when a key, layer or time addresses no block. A
// zero-length series is never used to signal "no data".
type SeriesReader interface {
	// TimeSeries returns the time axis in seconds and the property's values at
	// the block addressed by key, one entry per time step.
	TimeSeries(run Run, property string, key SpatialKey) (time Series, values Series, err error)

	// CoordinateAxis returns every block's position along direction at the time
	// step selected by atTime, in block order.
	CoordinateAxis(run Run, direction Direction, atTime float64) (Series, error)

	// ElementSnapshot returns one value per block at the selected time step.
	ElementSnapshot(run Run, property string, atTime float64) (Series, error)

	// LayerSnapshot returns the property for the blocks on layer n along direction.
	LayerSnapshot(run Run, direction Direction, layer int, atTime float64, property string) (Series, error)

	// LayerAxis returns the positions along `along` of the blocks on layer n
	// along direction, in the same order as LayerSnapshot.
	LayerAxis(run Run, direction Direction, layer int, atTime float64, along Direction) (Series, error)
}
