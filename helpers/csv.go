package helpers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/spektr-org/resagg/schema"
)

// ============================================================================
// CSV HELPER — Parses a simulator run table into a RunTable
// ============================================================================
// Consumer reads the table from wherever it lives; TableReader does it from
// disk. Rows are grouped into time steps by consecutive equal Time values.
// The block ordinal is a row's position inside its time step, starting at 0.
// ============================================================================

// timeTolerance is the relative tolerance used when matching times and
// coordinates.
const timeTolerance = 1e-9

// RunTable is a parsed run table: one row of cells per (time step, block).
type RunTable struct {
	Layout *schema.Layout

	times    []float64
	elements []string      // block names from the first time step
	cells    [][][]float64 // [step][block][column]; NaN for blank or text cells
}

// ParseRunTable parses CSV bytes into a RunTable. The header is classified by
// schema.DiscoverFromCSV. Every time step must list the same number of blocks
// and time steps must be ascending.
func ParseRunTable(data []byte) (*RunTable, error) {
	layout, err := schema.DiscoverFromCSV(data, schema.DiscoverOptions{SampleSize: -1})
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = len(layout.Headers)

	// Header already classified
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read run table headers: %w", err)
	}

	timeIdx := layout.Index(layout.TimeColumn)
	elemIdx := -1
	if layout.ElementColumn != "" {
		elemIdx = layout.Index(layout.ElementColumn)
	}
	numeric := numericColumns(layout)

	t := &RunTable{Layout: layout}
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("malformed run table: %w", err)
		}

		tv, err := schema.ParseNumber(row[timeIdx])
		if err != nil || math.IsNaN(tv) || math.IsInf(tv, 0) {
			return nil, fmt.Errorf("run table line %d: invalid time %q", line, row[timeIdx])
		}

		// ── step boundary ──
		if n := len(t.times); n == 0 || !approxEqual(tv, t.times[n-1]) {
			if n > 0 {
				if tv < t.times[n-1] {
					return nil, fmt.Errorf("run table line %d: time %g precedes previous step %g", line, tv, t.times[n-1])
				}
				if err := t.checkStep(n - 1); err != nil {
					return nil, err
				}
			}
			t.times = append(t.times, tv)
			t.cells = append(t.cells, nil)
		}

		// ── cells ──
		vals := make([]float64, len(row))
		for i, cell := range row {
			if !numeric[i] || schema.IsBlank(cell) {
				vals[i] = math.NaN()
				continue
			}
			f, err := schema.ParseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("run table line %d: column %q: invalid number %q", line, layout.Headers[i], cell)
			}
			vals[i] = f
		}

		step := len(t.cells) - 1
		if step == 0 && elemIdx >= 0 {
			t.elements = append(t.elements, strings.TrimSpace(row[elemIdx]))
		}
		t.cells[step] = append(t.cells[step], vals)
	}

	if len(t.times) > 0 {
		if err := t.checkStep(len(t.times) - 1); err != nil {
			return nil, err
		}
	}

	layout.TimeSteps = t.Steps()
	layout.Blocks = t.Blocks()
	return t, nil
}

func (t *RunTable) checkStep(step int) error {
	if got, want := len(t.cells[step]), len(t.cells[0]); got != want {
		return fmt.Errorf("run table time step %g lists %d blocks, first step lists %d", t.times[step], got, want)
	}
	return nil
}

// ============================================================================
// ACCESSORS
// ============================================================================

// Steps returns the number of time steps.
func (t *RunTable) Steps() int { return len(t.times) }

// Blocks returns the number of blocks per time step.
func (t *RunTable) Blocks() int {
	if len(t.cells) == 0 {
		return 0
	}
	return len(t.cells[0])
}

// Times returns a copy of the time axis in seconds.
func (t *RunTable) Times() []float64 {
	out := make([]float64, len(t.times))
	copy(out, t.times)
	return out
}

// Elements returns block names in block order, or nil without an element column.
func (t *RunTable) Elements() []string {
	if t.elements == nil {
		return nil
	}
	out := make([]string, len(t.elements))
	copy(out, t.elements)
	return out
}

// PropertyIndex returns the column index of a property.
func (t *RunTable) PropertyIndex(name string) (int, bool) {
	p, ok := t.Layout.Property(name)
	if !ok {
		return -1, false
	}
	return p.Index, true
}

// CoordinateIndex returns the column index of the coordinate along direction.
func (t *RunTable) CoordinateIndex(direction string) (int, bool) {
	h, ok := t.Layout.CoordinateColumn(direction)
	if !ok {
		return -1, false
	}
	return t.Layout.Index(h), true
}

// StepAt selects the last time step whose time is <= atTime. It reports false
// when atTime precedes the first step.
func (t *RunTable) StepAt(atTime float64) (int, bool) {
	// First step strictly after atTime, with tolerance
	i := sort.Search(len(t.times), func(i int) bool {
		return t.times[i] > atTime && !approxEqual(t.times[i], atTime)
	})
	return i - 1, i > 0
}

// ColumnOverTime returns column col of block, one value per time step.
func (t *RunTable) ColumnOverTime(block, col int) []float64 {
	out := make([]float64, len(t.cells))
	for s := range t.cells {
		out[s] = t.cells[s][block][col]
	}
	return out
}

// ColumnAt returns column col at step, one value per block.
func (t *RunTable) ColumnAt(step, col int) []float64 {
	return t.pick(step, col, nil)
}

// Layers returns the distinct values of coordinate column col at step, in
// ascending order. Values within tolerance collapse to the first seen.
func (t *RunTable) Layers(step, col int) []float64 {
	vals := t.ColumnAt(step, col)
	sorted := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	sort.Float64s(sorted)

	var layers []float64
	for _, v := range sorted {
		if n := len(layers); n == 0 || !approxEqual(v, layers[n-1]) {
			layers = append(layers, v)
		}
	}
	return layers
}

// LayerBlocks returns, in block order, the blocks on layer n (1-based) of
// coordinate column col at step. It returns nil when the layer does not exist.
func (t *RunTable) LayerBlocks(step, col, layer int) []int {
	layers := t.Layers(step, col)
	if layer < 1 || layer > len(layers) {
		return nil
	}
	want := layers[layer-1]

	var blocks []int
	for b, row := range t.cells[step] {
		if approxEqual(row[col], want) {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// Pick returns column col at step for the given blocks, in the given order.
func (t *RunTable) Pick(step, col int, blocks []int) []float64 {
	return t.pick(step, col, blocks)
}

func (t *RunTable) pick(step, col int, blocks []int) []float64 {
	rows := t.cells[step]
	if blocks == nil {
		out := make([]float64, len(rows))
		for b, row := range rows {
			out[b] = row[col]
		}
		return out
	}
	out := make([]float64, len(blocks))
	for i, b := range blocks {
		out[i] = rows[b][col]
	}
	return out
}

// ============================================================================
// HELPERS
// ============================================================================

func numericColumns(layout *schema.Layout) []bool {
	numeric := make([]bool, len(layout.Headers))
	numeric[layout.Index(layout.TimeColumn)] = true
	for _, h := range layout.Coordinates {
		numeric[layout.Index(h)] = true
	}
	for _, p := range layout.Properties {
		numeric[p.Index] = true
	}
	return numeric
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	if scale < 1 {
		scale = 1
	}
	return math.Abs(a-b) <= timeTolerance*scale
}
