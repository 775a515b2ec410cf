package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ============================================================================
// AGGREGATED TABLE — ordered label → series mapping
// ============================================================================
// Labels follow <property><role><outer><inner>. Insertion order is the
// iteration order of the aggregation call. Columns may alias the same backing
// array (a run's coordinate axis shared by several properties), so consumers
// must treat every column as read-only.
// ============================================================================

// Role is the part a column plays in a paired series.
type Role string

const (
	RoleTime   Role = "time"
	RoleResult Role = "result"
	RoleX      Role = "x"
)

// runLabel is the label for modes keyed by run index alone (time0, result1).
func runLabel(role Role, run int) string {
	return string(role) + strconv.Itoa(run)
}

// gridLabel is the label for a (outer, inner) cell of a runs × properties grid.
func gridLabel(property string, role Role, outer, inner int) string {
	return property + string(role) + strconv.Itoa(outer) + strconv.Itoa(inner)
}

// ColumnPair names the x and y columns of one paired series.
type ColumnPair struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// AggregatedTable is the engine's output.
type AggregatedTable struct {
	labels  []string
	columns map[string]Series
	pairs   []ColumnPair
}

// NewAggregatedTable returns an empty table.
func NewAggregatedTable() *AggregatedTable {
	return &AggregatedTable{columns: make(map[string]Series)}
}

// Append adds a column. A label already present is an ErrLabelCollision.
func (t *AggregatedTable) Append(label string, s Series) error {
	if _, exists := t.columns[label]; exists {
		return fmt.Errorf("%w: %q", ErrLabelCollision, label)
	}
	t.labels = append(t.labels, label)
	t.columns[label] = s
	return nil
}

// AppendPair adds an x column and its y column, x first. A rejected pair
// adds nothing.
func (t *AggregatedTable) AppendPair(xLabel, yLabel string, x, y Series) error {
	if err := checkPaired(x, y); err != nil {
		return err
	}
	if xLabel == yLabel {
		return fmt.Errorf("%w: %q", ErrLabelCollision, xLabel)
	}
	// Both labels are checked before either column lands
	for _, label := range []string{xLabel, yLabel} {
		if _, exists := t.columns[label]; exists {
			return fmt.Errorf("%w: %q", ErrLabelCollision, label)
		}
	}
	t.labels = append(t.labels, xLabel, yLabel)
	t.columns[xLabel] = x
	t.columns[yLabel] = y
	t.pairs = append(t.pairs, ColumnPair{X: xLabel, Y: yLabel})
	return nil
}

// Labels returns column labels in insertion order.
func (t *AggregatedTable) Labels() []string {
	out := make([]string, len(t.labels))
	copy(out, t.labels)
	return out
}

// Pairs returns the (x, y) column pairs in insertion order.
func (t *AggregatedTable) Pairs() []ColumnPair {
	out := make([]ColumnPair, len(t.pairs))
	copy(out, t.pairs)
	return out
}

// Column returns the series stored under label.
func (t *AggregatedTable) Column(label string) (Series, bool) {
	s, ok := t.columns[label]
	return s, ok
}

// Len returns the number of columns.
func (t *AggregatedTable) Len() int { return len(t.labels) }

// MaxRows returns the length of the longest column.
func (t *AggregatedTable) MaxRows() int {
	n := 0
	for _, s := range t.columns {
		if len(s) > n {
			n = len(s)
		}
	}
	return n
}

// Map returns the label → series mapping consumed by plotting code.
func (t *AggregatedTable) Map() map[string]Series {
	out := make(map[string]Series, len(t.columns))
	for k, v := range t.columns {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the table as a JSON object with keys in column order.
func (t *AggregatedTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, label := range t.labels {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteByte('[')
		for j, v := range t.columns[label] {
			if j > 0 {
				buf.WriteByte(',')
			}
			// Blank cells are NaN; JSON has no NaN.
			if math.IsNaN(v) || math.IsInf(v, 0) {
				buf.WriteString("null")
				continue
			}
			buf.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
