package engine

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeriesByRunColumnOrder(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	table, err := agg.TimeSeriesByRun(testRuns(2), "pH", BlockKey(0))
	require.NoError(t, err)
	assert.Equal(t, []string{"time0", "result0", "time1", "result1"}, table.Labels())
	assert.Equal(t, 4, table.Len())

	res1, _ := table.Column("result1")
	assert.Equal(t, Series{110, 111, 112, 113}, res1)
	assert.Equal(t, []ColumnPair{{X: "time0", Y: "result0"}, {X: "time1", Y: "result1"}}, table.Pairs())
}

func TestTimeSeriesPerRun(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	table, err := agg.TimeSeriesPerRun(testRuns(2), []string{"pH", "CO2"}, BlockKey(2))
	require.NoError(t, err)
	assert.Equal(t, []string{"time0", "result0", "time1", "result1"}, table.Labels())
	res1, _ := table.Column("result1")
	assert.Equal(t, Series{120, 121, 122, 123}, res1)

	_, err = agg.TimeSeriesPerRun(testRuns(3), []string{"pH", "CO2"}, BlockKey(0))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestTimeSeriesByRunConvertsAndSlices(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader(), WithTimeUnit(Day), WithSliceBound(2))

	table, err := agg.TimeSeriesByRun(testRuns(1), "CO2", BlockKey(1))
	require.NoError(t, err)

	tm, _ := table.Column("time0")
	res, _ := table.Column("result0")
	assert.Equal(t, Series{0, 1}, tm)
	assert.Equal(t, Series{20, 21}, res)
}

func TestProfileByRun(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	table, err := agg.ProfileByRun(testRuns(2), []string{"pH", "Porosity"}, TimeKey(DirX, 0))
	require.NoError(t, err)
	want := map[string]Series{
		"x0":      {0.5, 1.5, 2.5},
		"result0": {10, 11, 12},
		"x1":      {0.5, 1.5, 2.5},
		"result1": {130, 131, 132},
	}
	if diff := cmp.Diff(want, table.Map()); diff != "" {
		t.Errorf("profile table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []string{"x0", "result0", "x1", "result1"}, table.Labels())

	_, err = agg.ProfileByRun(testRuns(2), []string{"pH"}, TimeKey(DirX, 0))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLayerProfilesRunMajor(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	table, err := agg.LayerProfiles(testRuns(2), []string{"pH", "CO2"}, LayerKey(DirZ, 1, 0), DirX)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pHx00", "pHresult00", "CO2x01", "CO2result01",
		"pHx10", "pHresult10", "CO2x11", "CO2result11",
	}, table.Labels())

	res, _ := table.Column("CO2result11")
	assert.Equal(t, Series{120, 121}, res)
}

func TestLayerProfilesPerFile(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader(), WithPerFile(true))

	table, err := agg.LayerProfiles(testRuns(2), []string{"pH", "CO2"}, LayerKey(DirZ, 2, 0), DirX)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"pHx00", "pHresult00", "pHx01", "pHresult01",
		"CO2x10", "CO2result10", "CO2x11", "CO2result11",
	}, table.Labels())

	// CO2 of run 1 is cell (property 1, run 1)
	res, _ := table.Column("CO2result11")
	assert.Equal(t, Series{120, 121}, res)
	res, _ = table.Column("CO2result10")
	assert.Equal(t, Series{20, 21}, res)
}

func TestTimeSeriesGridSlicing(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader(), WithTimeUnit(Day), WithSliceBound(3))

	table, err := agg.TimeSeriesGrid(testRuns(3), []string{"pH", "CO2", "Porosity"}, BlockKey(0))
	require.NoError(t, err)
	assert.Equal(t, 18, table.Len())

	// Labels unique and every pair equal length
	seen := map[string]bool{}
	for _, l := range table.Labels() {
		assert.False(t, seen[l], "duplicate label %s", l)
		seen[l] = true
	}
	for _, p := range table.Pairs() {
		x, _ := table.Column(p.X)
		y, _ := table.Column(p.Y)
		assert.Len(t, x, 3, p.X)
		assert.Len(t, y, 3, p.Y)
	}
	res, _ := table.Column("Porosityresult22")
	assert.Equal(t, Series{230, 231, 232}, res)
}

func TestTimeSeriesGridSliceEverything(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader(), WithSliceBound(-1))

	table, err := agg.TimeSeriesGrid(testRuns(2), []string{"pH", "CO2"}, BlockKey(0))
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len(), "empty pairs are kept")
	assert.Equal(t, 0, table.MaxRows())
}

// Suffixes like 1+11 and 11+1 concatenate to the same digits; the property
// name keeps such labels apart.
func TestGridLabelsUniqueWithTwoDigitIndices(t *testing.T) {
	runs := testRuns(12)
	props := make([]string, 11)
	for i := range props {
		props[i] = "prop" + strconv.Itoa(i)
	}

	for _, perFile := range []bool{false, true} {
		agg := NewMultiRunAggregator(newFakeReader(), WithPerFile(perFile))

		table, err := agg.TimeSeriesGrid(runs, props, BlockKey(0))
		require.NoError(t, err, "per_file=%v", perFile)
		assert.Equal(t, 12*11*2, table.Len())

		seen := make(map[string]bool, table.Len())
		for _, l := range table.Labels() {
			require.False(t, seen[l], "duplicate label %s (per_file=%v)", l, perFile)
			seen[l] = true
		}
	}
}

func TestGridFailsWithoutPartialTable(t *testing.T) {
	reader := newFakeReader()
	agg := NewMultiRunAggregator(reader)

	table, err := agg.TimeSeriesGrid(testRuns(3), []string{"pH", "Unobtainium"}, BlockKey(0))
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrMissingProperty)

	var mp *MissingPropertyError
	require.ErrorAs(t, err, &mp)
	assert.Equal(t, Run{Location: "run0"}, mp.Run)
	assert.Equal(t, 2, reader.calls, "stops at the first failing cell")
}

func TestGridRejectsAmbiguousInput(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	tests := []struct {
		name  string
		runs  []Run
		props []string
	}{
		{"no runs", nil, []string{"pH"}},
		{"no properties", testRuns(1), nil},
		{"duplicate property", testRuns(2), []string{"pH", "pH"}},
		{"empty property", testRuns(1), []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := agg.TimeSeriesGrid(tt.runs, tt.props, BlockKey(0))
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestMisalignedReaderFailsLoudly(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	_, err := agg.TimeSeriesByRun(testRuns(2), "short", BlockKey(0))
	assert.ErrorIs(t, err, ErrMisalignedSeries)

	_, err = agg.LayerProfiles(testRuns(1), []string{"short"}, LayerKey(DirZ, 1, 0), DirX)
	assert.ErrorIs(t, err, ErrMisalignedSeries)
}

func TestNoMatchingBlockPropagates(t *testing.T) {
	agg := NewMultiRunAggregator(newFakeReader())

	_, err := agg.TimeSeriesByRun(testRuns(2), "pH", BlockKey(7))
	assert.ErrorIs(t, err, ErrNoMatchingBlock)

	_, err = agg.LayerProfiles(testRuns(2), []string{"pH"}, LayerKey(DirZ, 5, 0), DirX)
	assert.ErrorIs(t, err, ErrNoMatchingBlock)
}
