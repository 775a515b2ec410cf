package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// RESAGG ENGINE TYPES — Runs, Keys, Series, Render Output
// ============================================================================
// A Run addresses one simulator execution's output table. Series are plain
// float64 slices; the engine never mutates a series it was handed and always
// returns fresh slices from conversion and slicing.
// ============================================================================

// ============================================================================
// RUN — one simulator execution
// ============================================================================

// Run identifies one simulator output table: a directory plus a table title.
// Several runs may share a Location and differ by Title.
type Run struct {
	Location string `json:"location"`
	Title    string `json:"title"`
}

func (r Run) String() string {
	if r.Title == "" {
		return r.Location
	}
	return r.Location + ":" + r.Title
}

// ParseRun parses "location[:title]". The title is split at the last colon.
func ParseRun(s string) (Run, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Run{}, configErrorf("empty run location")
	}
	if i := strings.LastIndex(s, ":"); i > 0 && i < len(s)-1 {
		return Run{Location: s[:i], Title: s[i+1:]}, nil
	}
	return Run{Location: strings.TrimSuffix(s, ":")}, nil
}

// SimulatorType names the simulator that produced a run. Informational only;
// the engine never dispatches on it.
type SimulatorType string

const (
	SimulatorToughReact SimulatorType = "toughreact"
	SimulatorTMVOC      SimulatorType = "tmvoc"
	SimulatorTough3     SimulatorType = "tough3"
	SimulatorUnknown    SimulatorType = ""
)

// ============================================================================
// DIRECTIONS + SPATIAL KEYS
// ============================================================================

// Direction is a coordinate axis of the simulation grid.
type Direction string

const (
	DirX Direction = "x"
	DirY Direction = "y"
	DirZ Direction = "z"
)

// ParseDirection accepts x, y or z in any case.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case DirX, DirY, DirZ:
		return d, nil
	default:
		return "", configErrorf("unknown direction %q (want x, y or z)", s)
	}
}

// KeyKind tells which addressing mode a SpatialKey uses.
type KeyKind int

const (
	KindBlock KeyKind = iota // grid-block ordinal
	KindLayer                // direction + layer number (at a fixed time)
	KindTime                 // direction + fixed time
)

func (k KeyKind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindLayer:
		return "layer"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("KeyKind(%d)", int(k))
	}
}

// SpatialKey addresses blocks of a run. Only the fields relevant to Kind are read.
type SpatialKey struct {
	Kind      KeyKind   `json:"kind"`
	Block     int       `json:"block,omitempty"`
	Direction Direction `json:"direction,omitempty"`
	Layer     int       `json:"layer,omitempty"` // 1-based
	Time      float64   `json:"time,omitempty"`  // seconds
}

// BlockKey addresses a single grid block by ordinal.
func BlockKey(block int) SpatialKey {
	return SpatialKey{Kind: KindBlock, Block: block}
}

// LayerKey addresses the blocks of layer n along d at a fixed time.
func LayerKey(d Direction, layer int, atTime float64) SpatialKey {
	return SpatialKey{Kind: KindLayer, Direction: d, Layer: layer, Time: atTime}
}

// TimeKey addresses every block, positioned along d, at a fixed time.
func TimeKey(d Direction, atTime float64) SpatialKey {
	return SpatialKey{Kind: KindTime, Direction: d, Time: atTime}
}

func (k SpatialKey) String() string {
	switch k.Kind {
	case KindBlock:
		return fmt.Sprintf("block %d", k.Block)
	case KindLayer:
		return fmt.Sprintf("layer %d along %s at t=%g", k.Layer, k.Direction, k.Time)
	case KindTime:
		return fmt.Sprintf("%s axis at t=%g", k.Direction, k.Time)
	default:
		return k.Kind.String()
	}
}

// ============================================================================
// SERIES
// ============================================================================

// Series is an ordered sequence of values. Series handed to the engine are
// treated as read-only.
type Series []float64

// Clone returns a copy that shares no storage with s.
func (s Series) Clone() Series {
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// LabeledSeries is one paired (x, y) series for a property.
type LabeledSeries struct {
	Property string `json:"property"`
	X        Series `json:"x"`
	Y        Series `json:"y"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData is a wide, row-oriented rendering of an AggregatedTable.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "number"
	Align string `json:"align"` // "left", "right"
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig is a plot-ready view of an AggregatedTable.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries is one x/y pair of table columns.
type ChartSeries struct {
	Name    string       `json:"name"`
	XColumn string       `json:"xColumn"`
	YColumn string       `json:"yColumn"`
	Data    []ChartPoint `json:"data"`
	Color   string       `json:"color,omitempty"`
}

// ChartPoint is a single data point.
type ChartPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ============================================================================
// SUMMARY TYPES
// ============================================================================

// ColumnSummary describes one column of an AggregatedTable.
type ColumnSummary struct {
	Label string  `json:"label"`
	Count int     `json:"count"`
	First float64 `json:"first"`
	Last  float64 `json:"last"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}
