package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFacadeRejectsInvalidRequests(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		req  Request
	}{
		{
			name: "no runs",
			req:  Request{Mode: ModeTimeSeries, Properties: []string{"pH"}, Key: BlockKey(0)},
		},
		{
			name: "blank location",
			req:  Request{Mode: ModeTimeSeries, Runs: []Run{{Location: " "}}, Properties: []string{"pH"}, Key: BlockKey(0)},
		},
		{
			name: "no properties",
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(1), Key: BlockKey(0)},
		},
		{
			name: "unknown mode",
			req:  Request{Mode: "histogram", Runs: testRuns(1), Properties: []string{"pH"}, Key: BlockKey(0)},
		},
		{
			name: "time series with a layer key",
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(1), Properties: []string{"pH"}, Key: LayerKey(DirZ, 1, 0)},
		},
		{
			name: "profile count mismatch",
			req:  Request{Mode: ModeProfile, Runs: testRuns(2), Properties: []string{"pH"}, Key: TimeKey(DirX, 0)},
		},
		{
			name: "layer without x direction",
			req:  Request{Mode: ModeLayerProfile, Runs: testRuns(1), Properties: []string{"pH"}, Key: LayerKey(DirZ, 1, 0)},
		},
		{
			name: "layer along its own direction",
			req:  Request{Mode: ModeLayerProfile, Runs: testRuns(1), Properties: []string{"pH"}, Key: LayerKey(DirZ, 1, 0), Along: DirZ},
		},
		{
			name: "duplicate property in a grid",
			req:  Request{Mode: ModeTimeSeriesGrid, Runs: testRuns(2), Properties: []string{"pH", "pH"}, Key: BlockKey(0)},
		},
		{
			name: "time series, two properties for one run",
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(1), Properties: []string{"pH", "CO2"}, Key: BlockKey(0)},
		},
		{
			name: "time series, two properties for three runs",
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(3), Properties: []string{"pH", "CO2"}, Key: BlockKey(0)},
		},
		{
			name: "grid with a layer key",
			req:  Request{Mode: ModeTimeSeriesGrid, Runs: testRuns(2), Properties: []string{"pH"}, Key: LayerKey(DirZ, 1, 0)},
		},
		{
			name: "titles do not match runs",
			opts: []Option{WithTitles("only one")},
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(2), Properties: []string{"pH"}, Key: BlockKey(0)},
		},
		{
			name: "unknown time unit",
			opts: []Option{WithTimeUnit("fortnight")},
			req:  Request{Mode: ModeTimeSeries, Runs: testRuns(1), Properties: []string{"pH"}, Key: BlockKey(0)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newFakeReader()
			table, err := NewFacade(reader, tt.opts...).Aggregate(tt.req)
			assert.Nil(t, table)
			assert.ErrorIs(t, err, ErrConfiguration)
			assert.Zero(t, reader.calls, "validation happens before any read")
		})
	}
}

// A one-run request must produce exactly what the multi-run path produces for
// run index 0.
func TestFacadeSingleRunMatchesMultiRun(t *testing.T) {
	tests := []struct {
		name  string
		opts  []Option
		req   Request
		multi func(*MultiRunAggregator) (*AggregatedTable, error)
	}{
		{
			name: "time series, one property",
			req:  Request{Mode: ModeTimeSeries, Properties: []string{"pH"}, Key: BlockKey(1)},
			multi: func(a *MultiRunAggregator) (*AggregatedTable, error) {
				return a.TimeSeriesByRun(testRuns(1), "pH", BlockKey(1))
			},
		},
		{
			name: "time series grid",
			opts: []Option{WithTimeUnit(Day)},
			req:  Request{Mode: ModeTimeSeriesGrid, Properties: []string{"pH", "CO2"}, Key: BlockKey(0)},
			multi: func(a *MultiRunAggregator) (*AggregatedTable, error) {
				return a.TimeSeriesGrid(testRuns(1), []string{"pH", "CO2"}, BlockKey(0))
			},
		},
		{
			name: "time series grid, per file",
			opts: []Option{WithPerFile(true)},
			req:  Request{Mode: ModeTimeSeriesGrid, Properties: []string{"pH", "CO2"}, Key: BlockKey(0)},
			multi: func(a *MultiRunAggregator) (*AggregatedTable, error) {
				return a.TimeSeriesGrid(testRuns(1), []string{"pH", "CO2"}, BlockKey(0))
			},
		},
		{
			name: "profile",
			req:  Request{Mode: ModeProfile, Properties: []string{"Porosity"}, Key: TimeKey(DirX, 0)},
			multi: func(a *MultiRunAggregator) (*AggregatedTable, error) {
				return a.ProfileByRun(testRuns(1), []string{"Porosity"}, TimeKey(DirX, 0))
			},
		},
		{
			name: "layer profile, sliced",
			opts: []Option{WithSliceBound(1)},
			req:  Request{Mode: ModeLayerProfile, Properties: []string{"pH", "CO2"}, Key: LayerKey(DirZ, 1, 0), Along: DirX},
			multi: func(a *MultiRunAggregator) (*AggregatedTable, error) {
				return a.LayerProfiles(testRuns(1), []string{"pH", "CO2"}, LayerKey(DirZ, 1, 0), DirX)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			req.Runs = testRuns(1)
			got, err := NewFacade(newFakeReader(), tt.opts...).Aggregate(req)
			require.NoError(t, err)

			want, err := tt.multi(NewMultiRunAggregator(newFakeReader(), tt.opts...))
			require.NoError(t, err)

			assert.Equal(t, want.Labels(), got.Labels())
			assert.Equal(t, want.Pairs(), got.Pairs())
			if diff := cmp.Diff(want.Map(), got.Map()); diff != "" {
				t.Errorf("single-run table mismatch (-multi +single):\n%s", diff)
			}
		})
	}
}

func TestFacadeSingleRunLabels(t *testing.T) {
	f := NewFacade(newFakeReader(), WithPerFile(true))

	table, err := f.Aggregate(Request{
		Mode:       ModeTimeSeriesGrid,
		Runs:       testRuns(1),
		Properties: []string{"pH", "CO2"},
		Key:        BlockKey(0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pHtime00", "pHresult00", "CO2time10", "CO2result10"}, table.Labels())
}

// The mode is chosen by the caller: two properties over two runs stay a
// four-column mode-1 table instead of turning into a grid.
func TestFacadeTimeSeriesOnePropertyPerRun(t *testing.T) {
	f := NewFacade(newFakeReader())

	table, err := f.Aggregate(Request{
		Mode:       ModeTimeSeries,
		Runs:       testRuns(2),
		Properties: []string{"pH", "CO2"},
		Key:        BlockKey(0),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"time0", "result0", "time1", "result1"}, table.Labels())

	res0, _ := table.Column("result0")
	res1, _ := table.Column("result1")
	assert.Equal(t, Series{10, 11, 12, 13}, res0, "pH of run 0")
	assert.Equal(t, Series{120, 121, 122, 123}, res1, "CO2 of run 1")

	grid, err := f.Aggregate(Request{
		Mode:       ModeTimeSeriesGrid,
		Runs:       testRuns(2),
		Properties: []string{"pH", "CO2"},
		Key:        BlockKey(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, grid.Len())
}

func TestFacadeSingleRunSlices(t *testing.T) {
	f := NewFacade(newFakeReader(), WithSliceBound(2*secondsPerDay))

	table, err := f.Aggregate(Request{Mode: ModeTimeSeries, Runs: testRuns(1), Properties: []string{"pH"}, Key: BlockKey(0)})
	require.NoError(t, err)

	tm, _ := table.Column("time0")
	assert.Equal(t, Series{0, secondsPerDay}, tm)
}

func TestFacadeMultiRunDispatch(t *testing.T) {
	f := NewFacade(newFakeReader())

	table, err := f.Aggregate(Request{Mode: ModeTimeSeries, Runs: testRuns(3), Properties: []string{"pH"}, Key: BlockKey(0)})
	require.NoError(t, err)
	assert.Equal(t, []string{"time0", "result0", "time1", "result1", "time2", "result2"}, table.Labels())

	table, err = f.Aggregate(Request{Mode: ModeTimeSeriesGrid, Runs: testRuns(2), Properties: []string{"pH", "CO2"}, Key: BlockKey(0)})
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())
	_, ok := table.Column("CO2result11")
	assert.True(t, ok)
}

func TestFacadeReadErrorReturnsNoTable(t *testing.T) {
	f := NewFacade(newFakeReader())

	table, err := f.Aggregate(Request{Mode: ModeTimeSeriesGrid, Runs: testRuns(1), Properties: []string{"pH", "Unobtainium"}, Key: BlockKey(0)})
	assert.Nil(t, table)
	assert.ErrorIs(t, err, ErrMissingProperty)
}

func TestFacadeLogsOutcome(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	f := NewFacade(newFakeReader(), WithLogger(zap.New(core)), WithSimulator(SimulatorToughReact))

	_, err := f.Aggregate(Request{Mode: ModeTimeSeries, Runs: testRuns(2), Properties: []string{"pH"}, Key: BlockKey(0)})
	require.NoError(t, err)

	entries := logs.FilterMessage("aggregation complete").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "timeseries", fields["mode"])
	assert.Equal(t, "toughreact", fields["simulator"])
	assert.EqualValues(t, 4, fields["columns"])

	_, err = f.Aggregate(Request{Mode: ModeTimeSeries, Runs: testRuns(2), Properties: []string{"nope"}, Key: BlockKey(0)})
	require.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("aggregation failed").Len())
}

func TestFacadeAccessors(t *testing.T) {
	f := NewFacade(newFakeReader(), WithTitles("a", "b"), WithTimeUnit(Hour))
	assert.Equal(t, []string{"a", "b"}, f.Titles())
	assert.Equal(t, Hour, f.TimeUnit())
}
