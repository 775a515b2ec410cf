package schema

import (
	"errors"
	"testing"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

// Two time steps of a three-block 1-D column, TOUGHREACT style
var reactCSV = []byte(`ELEM, X(m), Y(m), Z(m), Time, pH, Porosity, SMgas, Mineral
A11 1, 0.5, 0, 0, 0, 7.0, 0.30, 0.0, calcite
A11 2, 1.5, 0, 0, 0, 7.1, 0.30, 0.0, calcite
A11 3, 2.5, 0, 0, 0, 7.2, 0.30, 0.0, calcite
A11 1, 0.5, 0, 0, 3.1536D+07, 6.8, 0.31, , calcite
A11 2, 1.5, 0, 0, 3.1536D+07, 6.9, 0.31, , calcite
A11 3, 2.5, 0, 0, 3.1536D+07, 7.0, 0.31, , calcite
`)

// All-blank property column and no element column
var sparseCSV = []byte(`Time,x,Temp,Notes
0,1,25.0,
10,1,25.5,
`)

func TestDiscoverReactCSV(t *testing.T) {
	layout, err := DiscoverFromCSV(reactCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	if layout.TimeColumn != "Time" {
		t.Errorf("TimeColumn = %q, want Time", layout.TimeColumn)
	}
	if layout.ElementColumn != "ELEM" {
		t.Errorf("ElementColumn = %q, want ELEM", layout.ElementColumn)
	}
	for dir, want := range map[string]string{"x": "X(m)", "y": "Y(m)", "z": "Z(m)"} {
		got, ok := layout.CoordinateColumn(dir)
		if !ok || got != want {
			t.Errorf("CoordinateColumn(%q) = %q, %v; want %q", dir, got, ok, want)
		}
	}

	props := layout.PropertyNames()
	assertContains(t, props, "pH", "pH should be a property")
	assertContains(t, props, "Porosity", "Porosity should be a property")
	assertContains(t, props, "SMgas", "SMgas should be a property (partly blank)")
	assertNotContains(t, props, "Mineral", "Mineral is text and must be skipped")
	assertNotContains(t, props, "Time", "Time is not a property")

	if len(layout.SkippedColumns) != 1 || layout.SkippedColumns[0].Column != "Mineral" {
		t.Errorf("SkippedColumns = %+v, want only Mineral", layout.SkippedColumns)
	}

	ph, ok := layout.Property("pH")
	if !ok {
		t.Fatal("Property(pH) not found")
	}
	if ph.Index != layout.Index("pH") {
		t.Errorf("pH index = %d, want %d", ph.Index, layout.Index("pH"))
	}
	if len(ph.SampleValues) != 3 {
		t.Errorf("pH samples = %v, want 3 values", ph.SampleValues)
	}
}

func TestDiscoverSparseCSV(t *testing.T) {
	layout, err := DiscoverFromCSV(sparseCSV, DiscoverOptions{Name: "sparse"})
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	if layout.Name != "sparse" {
		t.Errorf("Name = %q, want sparse", layout.Name)
	}
	if layout.ElementColumn != "" {
		t.Errorf("ElementColumn = %q, want none", layout.ElementColumn)
	}
	if _, ok := layout.CoordinateColumn("y"); ok {
		t.Error("no y coordinate column expected")
	}
	assertContains(t, layout.PropertyNames(), "Temp", "Temp should be a property")
	assertContains(t, layout.PropertyNames(), "Notes", "all-blank Notes is still a property")
	if len(layout.SkippedColumns) != 0 {
		t.Errorf("SkippedColumns = %+v, want none", layout.SkippedColumns)
	}
}

func TestDiscoverHeaderOnly(t *testing.T) {
	layout, err := DiscoverFromCSV([]byte("Time,pH,Porosity\n"))
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	if len(layout.Properties) != 2 {
		t.Errorf("got %d properties, want 2", len(layout.Properties))
	}
}

func TestDiscoverErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"no time column", "ELEM,pH\nA1,7\n", ErrNoTimeColumn},
		{"duplicate header", "Time,pH, pH\n0,7,7\n", ErrDuplicateColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DiscoverFromCSV([]byte(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := DiscoverFromCSV(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestDiscoverCustomTimeColumn(t *testing.T) {
	layout, err := DiscoverFromCSV([]byte("t_sec,pH\n0,7\n"), DiscoverOptions{TimeColumn: "t_sec"})
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	if layout.TimeColumn != "t_sec" {
		t.Errorf("TimeColumn = %q, want t_sec", layout.TimeColumn)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1.5", 1.5},
		{" 2e3 ", 2000},
		{"3.1536D+07", 3.1536e7},
		{"1.0d-2", 0.01},
	}
	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseNumber("calcite"); err == nil {
		t.Error("ParseNumber(calcite) should fail")
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			return
		}
	}
	t.Errorf("%s: %q not found in %v", msg, item, slice)
}

func assertNotContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			t.Errorf("%s: %q found in %v", msg, item, slice)
			return
		}
	}
}
