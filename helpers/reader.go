package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/resagg/engine"
)

// DefaultTableTitle is the run table read when a Run has no Title.
const DefaultTableTitle = "results"

// TableReader implements engine.SeriesReader over CSV run tables on disk. It
// holds no state: every call opens and parses the run's table read-only.
type TableReader struct {
	readFile func(string) ([]byte, error)
}

// NewTableReader returns a reader over the local filesystem.
func NewTableReader() *TableReader {
	return &TableReader{readFile: os.ReadFile}
}

var _ engine.SeriesReader = (*TableReader)(nil)

// TablePath returns the file holding run's table: <Location>/<Title>, with
// ".csv" appended when the title has no extension.
func TablePath(run engine.Run) string {
	title := strings.TrimSpace(run.Title)
	if title == "" {
		title = DefaultTableTitle
	}
	if filepath.Ext(title) == "" {
		title += ".csv"
	}
	return filepath.Join(run.Location, title)
}

// Load reads and parses run's table.
func (r *TableReader) Load(run engine.Run) (*RunTable, error) {
	path := TablePath(run)
	data, err := r.readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run table %s: %w", path, err)
	}
	t, err := ParseRunTable(data)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", run, err)
	}
	return t, nil
}

// ============================================================================
// engine.SeriesReader
// ============================================================================

// TimeSeries reads property at a block over every time step. Only block keys
// address a time series.
func (r *TableReader) TimeSeries(run engine.Run, property string, key engine.SpatialKey) (engine.Series, engine.Series, error) {
	if key.Kind != engine.KindBlock {
		return nil, nil, engine.NewConfigurationError(fmt.Sprintf("time series needs a block key, got %s", key), nil)
	}
	t, err := r.Load(run)
	if err != nil {
		return nil, nil, err
	}
	col, ok := t.PropertyIndex(property)
	if !ok {
		return nil, nil, &engine.MissingPropertyError{Run: run, Property: property}
	}
	if key.Block < 0 || key.Block >= t.Blocks() {
		return nil, nil, &engine.NoMatchingBlockError{
			Run: run, Key: key,
			Detail: fmt.Sprintf("table has %d blocks", t.Blocks()),
		}
	}
	return engine.Series(t.Times()), engine.Series(t.ColumnOverTime(key.Block, col)), nil
}

// CoordinateAxis reads every block's coordinate along direction.
func (r *TableReader) CoordinateAxis(run engine.Run, direction engine.Direction, atTime float64) (engine.Series, error) {
	t, step, err := r.loadAt(run, engine.TimeKey(direction, atTime))
	if err != nil {
		return nil, err
	}
	col, err := coordinate(t, run, direction)
	if err != nil {
		return nil, err
	}
	return engine.Series(t.ColumnAt(step, col)), nil
}

// ElementSnapshot reads property for every block.
func (r *TableReader) ElementSnapshot(run engine.Run, property string, atTime float64) (engine.Series, error) {
	t, err := r.Load(run)
	if err != nil {
		return nil, err
	}
	col, ok := t.PropertyIndex(property)
	if !ok {
		return nil, &engine.MissingPropertyError{Run: run, Property: property}
	}
	step, err := stepAt(t, run, engine.SpatialKey{Kind: engine.KindTime, Time: atTime})
	if err != nil {
		return nil, err
	}
	return engine.Series(t.ColumnAt(step, col)), nil
}

// LayerSnapshot reads property for the blocks on a layer.
func (r *TableReader) LayerSnapshot(run engine.Run, direction engine.Direction, layer int, atTime float64, property string) (engine.Series, error) {
	t, err := r.Load(run)
	if err != nil {
		return nil, err
	}
	col, ok := t.PropertyIndex(property)
	if !ok {
		return nil, &engine.MissingPropertyError{Run: run, Property: property}
	}
	step, blocks, err := layerBlocks(t, run, direction, layer, atTime)
	if err != nil {
		return nil, err
	}
	return engine.Series(t.Pick(step, col, blocks)), nil
}

// LayerAxis reads the coordinate along `along` for the blocks on a layer.
func (r *TableReader) LayerAxis(run engine.Run, direction engine.Direction, layer int, atTime float64, along engine.Direction) (engine.Series, error) {
	t, err := r.Load(run)
	if err != nil {
		return nil, err
	}
	col, err := coordinate(t, run, along)
	if err != nil {
		return nil, err
	}
	step, blocks, err := layerBlocks(t, run, direction, layer, atTime)
	if err != nil {
		return nil, err
	}
	return engine.Series(t.Pick(step, col, blocks)), nil
}

// ============================================================================
// HELPERS
// ============================================================================

func (r *TableReader) loadAt(run engine.Run, key engine.SpatialKey) (*RunTable, int, error) {
	t, err := r.Load(run)
	if err != nil {
		return nil, 0, err
	}
	step, err := stepAt(t, run, key)
	if err != nil {
		return nil, 0, err
	}
	return t, step, nil
}

func stepAt(t *RunTable, run engine.Run, key engine.SpatialKey) (int, error) {
	if t.Blocks() == 0 {
		return 0, &engine.NoMatchingBlockError{Run: run, Key: key, Detail: "table has no rows"}
	}
	step, ok := t.StepAt(key.Time)
	if !ok {
		return 0, &engine.NoMatchingBlockError{
			Run: run, Key: key,
			Detail: fmt.Sprintf("first time step is %g", t.times[0]),
		}
	}
	return step, nil
}

// coordinate resolves a direction's column. A missing coordinate column is
// reported like a missing property, named by its upper-case axis.
func coordinate(t *RunTable, run engine.Run, direction engine.Direction) (int, error) {
	col, ok := t.CoordinateIndex(string(direction))
	if !ok {
		return -1, &engine.MissingPropertyError{Run: run, Property: strings.ToUpper(string(direction))}
	}
	return col, nil
}

func layerBlocks(t *RunTable, run engine.Run, direction engine.Direction, layer int, atTime float64) (int, []int, error) {
	key := engine.LayerKey(direction, layer, atTime)
	dcol, err := coordinate(t, run, direction)
	if err != nil {
		return 0, nil, err
	}
	step, err := stepAt(t, run, key)
	if err != nil {
		return 0, nil, err
	}
	blocks := t.LayerBlocks(step, dcol, layer)
	if len(blocks) == 0 {
		return 0, nil, &engine.NoMatchingBlockError{
			Run: run, Key: key,
			Detail: fmt.Sprintf("%d layers along %s", len(t.Layers(step, dcol)), direction),
		}
	}
	return step, blocks, nil
}
