package engine

import (
	"math"
	"strings"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from an AggregatedTable
// ============================================================================
// Each (x, result) column pair becomes one line series. The plotting layer
// draws these as-is; no alignment logic is re-derived there.
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// ChartOptions carries cosmetic chart settings.
type ChartOptions struct {
	Title       string
	XAxis       string
	YAxis       string
	SeriesNames []string // used when there is exactly one name per pair
}

// BuildChart produces a line chart with one series per column pair.
func BuildChart(table *AggregatedTable, opts ChartOptions) *ChartConfig {
	if table == nil || len(table.Pairs()) == 0 {
		return nil
	}

	pairs := table.Pairs()
	config := &ChartConfig{
		ChartType:  "line",
		Title:      opts.Title,
		XAxis:      opts.XAxis,
		YAxis:      opts.YAxis,
		ShowLegend: len(pairs) > 1,
		ShowGrid:   true,
	}
	if config.XAxis == "" {
		config.XAxis = inferXAxis(pairs[0].X)
	}

	config.Series = make([]ChartSeries, 0, len(pairs))
	for i, p := range pairs {
		x, _ := table.Column(p.X)
		y, _ := table.Column(p.Y)

		name := p.Y
		if len(opts.SeriesNames) == len(pairs) && opts.SeriesNames[i] != "" {
			name = opts.SeriesNames[i]
		}

		// Blank cells are gaps, not points
		points := make([]ChartPoint, 0, len(y))
		for k := range y {
			if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
				continue
			}
			points = append(points, ChartPoint{X: x[k], Y: y[k]})
		}
		config.Series = append(config.Series, ChartSeries{
			Name:    name,
			XColumn: p.X,
			YColumn: p.Y,
			Data:    points,
			Color:   defaultColors[i%len(defaultColors)],
		})
	}

	config.Colors = assignColors(len(config.Series))
	return config
}

// inferXAxis picks an axis title from the role encoded in an x label: the
// role is whatever precedes the trailing index digits.
func inferXAxis(label string) string {
	stem := strings.TrimRight(label, "0123456789")
	if strings.HasSuffix(stem, string(RoleTime)) {
		return "Time"
	}
	return "Position"
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
