package engine

import (
	"strconv"
	"strings"
	"sync"
)

// fakeReader serves synthetic runs named "run<r>". Every run has `steps`
// time steps one day apart and `blocks` blocks 1 m apart along every axis.
// Layers hold two blocks each. A value encodes where it came from:
// 100*run + 10*property + position.
type fakeReader struct {
	steps  int
	blocks int

	mu    sync.Mutex
	calls int
}

var fakeProperties = map[string]int{"pH": 1, "CO2": 2, "Porosity": 3, "short": 4}

func newFakeReader() *fakeReader { return &fakeReader{steps: 4, blocks: 3} }

func (f *fakeReader) count() {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
}

func (f *fakeReader) lookup(run Run, property string) (int, int, error) {
	r, err := strconv.Atoi(strings.TrimPrefix(run.Location, "run"))
	if err != nil {
		return 0, 0, &NoMatchingBlockError{Run: run, Detail: "unknown run"}
	}
	p, ok := fakeProperties[property]
	if !ok {
		// "prop<k>" names any number of extra properties
		k, err := strconv.Atoi(strings.TrimPrefix(property, "prop"))
		if err != nil || !strings.HasPrefix(property, "prop") {
			return 0, 0, &MissingPropertyError{Run: run, Property: property}
		}
		p = 10 + k
	}
	return r, p, nil
}

func (f *fakeReader) values(r, p, n int) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = float64(100*r + 10*p + i)
	}
	// "short" drops its last value to simulate a broken reader
	if p == fakeProperties["short"] {
		out = out[:n-1]
	}
	return out
}

func (f *fakeReader) TimeSeries(run Run, property string, key SpatialKey) (Series, Series, error) {
	f.count()
	r, p, err := f.lookup(run, property)
	if err != nil {
		return nil, nil, err
	}
	if key.Block < 0 || key.Block >= f.blocks {
		return nil, nil, &NoMatchingBlockError{Run: run, Key: key}
	}
	t := make(Series, f.steps)
	for i := range t {
		t[i] = float64(i) * secondsPerDay
	}
	return t, f.values(r, p, f.steps), nil
}

func (f *fakeReader) CoordinateAxis(run Run, _ Direction, _ float64) (Series, error) {
	f.count()
	axis := make(Series, f.blocks)
	for i := range axis {
		axis[i] = float64(i) + 0.5
	}
	return axis, nil
}

func (f *fakeReader) ElementSnapshot(run Run, property string, _ float64) (Series, error) {
	f.count()
	r, p, err := f.lookup(run, property)
	if err != nil {
		return nil, err
	}
	return f.values(r, p, f.blocks), nil
}

func (f *fakeReader) LayerSnapshot(run Run, direction Direction, layer int, atTime float64, property string) (Series, error) {
	f.count()
	r, p, err := f.lookup(run, property)
	if err != nil {
		return nil, err
	}
	if layer < 1 || layer > 2 {
		return nil, &NoMatchingBlockError{Run: run, Key: LayerKey(direction, layer, atTime)}
	}
	return f.values(r, p, 2), nil
}

func (f *fakeReader) LayerAxis(run Run, direction Direction, layer int, atTime float64, _ Direction) (Series, error) {
	f.count()
	if layer < 1 || layer > 2 {
		return nil, &NoMatchingBlockError{Run: run, Key: LayerKey(direction, layer, atTime)}
	}
	return Series{0.5, 1.5}, nil
}

func testRuns(n int) []Run {
	out := make([]Run, n)
	for i := range out {
		out[i] = Run{Location: "run" + strconv.Itoa(i)}
	}
	return out
}
