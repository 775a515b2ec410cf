package schema

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ============================================================================
// AUTO-DISCOVERY — Header + sample classification of a run table
// ============================================================================
// Classification pipeline per column:
//   1. Header match → time column, element column, x/y/z coordinate
//   2. Sample values → numeric or blank (property) or text (skipped)
//   3. Record skipped columns with a reason
// ============================================================================

var (
	// ErrNoTimeColumn means the table has no time column.
	ErrNoTimeColumn = errors.New("no time column")
	// ErrDuplicateColumn means two headers have the same trimmed name.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize     int      // Max rows to inspect (negative = all). Default: 200
	TimeColumn     string   // Default: "Time"
	ElementColumns []string // Headers accepted as the element column
	Name           string   // Layout name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize:     200,
		TimeColumn:     DefaultTimeColumn,
		ElementColumns: []string{"ELEM", "ELEM.", "ELEMENT", "ELEMENTS"},
	}
}

// DiscoverFromCSV generates a Layout by inspecting a run table.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Layout, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = mergeOptions(opt, opts[0])
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	// 1. Read headers
	raw, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read run table headers: %w", err)
	}
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		headers[i] = strings.TrimSpace(h)
		if seen[headers[i]] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, headers[i])
		}
		seen[headers[i]] = true
	}

	layout := &Layout{
		Name:           opt.Name,
		Headers:        headers,
		Coordinates:    make(map[string]string),
		DiscoveredFrom: "CSV",
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if layout.Name == "" {
		layout.Name = "Run table"
	}

	// 2. Special columns
	special := make(map[int]bool)
	for i, h := range headers {
		switch {
		case layout.TimeColumn == "" && strings.EqualFold(h, opt.TimeColumn):
			layout.TimeColumn = h
			special[i] = true
		case layout.ElementColumn == "" && containsFold(opt.ElementColumns, h):
			layout.ElementColumn = h
			special[i] = true
		default:
			if dir, ok := coordinateDirection(h); ok {
				if _, taken := layout.Coordinates[dir]; !taken {
					layout.Coordinates[dir] = h
					special[i] = true
				}
			}
		}
	}
	if layout.TimeColumn == "" {
		return nil, fmt.Errorf("%w: want a %q column", ErrNoTimeColumn, opt.TimeColumn)
	}

	// 3. Sample rows
	var rows [][]string
	limit := opt.SampleSize
	for limit <= 0 || len(rows) < limit {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read run table row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}

	// 4. Classify the remaining columns
	for i, h := range headers {
		if special[i] {
			continue
		}
		col := analyzeColumn(i, rows)
		if col.skipReason != "" {
			layout.SkippedColumns = append(layout.SkippedColumns, SkippedColumn{Column: h, Reason: col.skipReason})
			continue
		}
		layout.Properties = append(layout.Properties, PropertyMeta{
			Name:         h,
			Index:        i,
			SampleValues: col.samples,
		})
	}

	return layout, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnAnalysis struct {
	samples    []string
	skipReason string
}

// analyzeColumn inspects sampled values. Only a non-numeric value skips a
// column; an all-blank column is a property with no data yet.
func analyzeColumn(index int, rows [][]string) columnAnalysis {
	var col columnAnalysis
	for _, row := range rows {
		if index >= len(row) {
			continue
		}
		val := strings.TrimSpace(row[index])
		if IsBlank(val) {
			continue
		}
		if _, err := ParseNumber(val); err != nil {
			col.skipReason = fmt.Sprintf("Non-numeric value %q", val)
			return col
		}
		if len(col.samples) < 3 {
			col.samples = append(col.samples, val)
		}
	}
	return col
}

// ============================================================================
// HELPERS
// ============================================================================

// ParseNumber parses a numeric cell. Fortran double-precision exponents
// ("1.5D+03") are accepted.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	if strings.ContainsAny(s, "dD") {
		return strconv.ParseFloat(strings.NewReplacer("D", "E", "d", "e").Replace(s), 64)
	}
	return strconv.ParseFloat(s, 64)
}

// IsBlank reports whether a cell carries no value.
func IsBlank(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "NULL", "N/A", "n/a", "NaN", "nan":
		return true
	}
	return false
}

// coordinateDirection maps "X", "x", "X(m)" or "X (m)" to "x".
func coordinateDirection(header string) (string, bool) {
	base := strings.ToLower(strings.TrimSpace(header))
	if i := strings.IndexByte(base, '('); i > 0 {
		base = strings.TrimSpace(base[:i])
	}
	switch base {
	case "x", "y", "z":
		return base, true
	}
	return "", false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func mergeOptions(base, o DiscoverOptions) DiscoverOptions {
	if o.SampleSize != 0 {
		base.SampleSize = o.SampleSize
	}
	if o.TimeColumn != "" {
		base.TimeColumn = o.TimeColumn
	}
	if len(o.ElementColumns) > 0 {
		base.ElementColumns = o.ElementColumns
	}
	base.Name = o.Name
	return base
}
