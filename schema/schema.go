package schema

import "strings"

// ============================================================================
// SCHEMA — Describes the column layout of one simulator run table
// ============================================================================
// Auto-discovered from the table header and a sample of rows. The reader uses
// it to find the time, element and coordinate columns; every remaining numeric
// column is a property addressable by exact (trimmed) header name.
// ============================================================================

// DefaultTimeColumn is the header of the time column in seconds.
const DefaultTimeColumn = "Time"

// Layout describes the complete shape of a run table.
type Layout struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`

	TimeColumn    string            `json:"timeColumn"`
	ElementColumn string            `json:"elementColumn,omitempty"`
	Coordinates   map[string]string `json:"coordinates,omitempty"` // "x" → header

	Properties []PropertyMeta `json:"properties"`

	// Filled by the table parser, not by discovery
	TimeSteps int `json:"timeSteps,omitempty"`
	Blocks    int `json:"blocks,omitempty"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty"`
}

// PropertyMeta describes one numeric property column.
type PropertyMeta struct {
	Name         string   `json:"name"`
	Index        int      `json:"index"`
	SampleValues []string `json:"sampleValues,omitempty"`
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column string `json:"column"`
	Reason string `json:"reason"`
}

// Index returns the position of header, or -1.
func (l Layout) Index(header string) int {
	for i, h := range l.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// Property returns the property named exactly name.
func (l Layout) Property(name string) (PropertyMeta, bool) {
	for _, p := range l.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyMeta{}, false
}

// PropertyNames returns property names in header order.
func (l Layout) PropertyNames() []string {
	names := make([]string, len(l.Properties))
	for i, p := range l.Properties {
		names[i] = p.Name
	}
	return names
}

// CoordinateColumn returns the header holding coordinates along direction.
func (l Layout) CoordinateColumn(direction string) (string, bool) {
	h, ok := l.Coordinates[strings.ToLower(direction)]
	return h, ok
}
