package dem

import (
	"errors"
	"math"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		z        float64
		expected bool
	}{
		{0, true},
		{-12.5, true},
		{math.NaN(), false},
		{math.Inf(1), false},
		{math.Inf(-1), false},
	}

	for _, tc := range tests {
		if IsValid(tc.z) != tc.expected {
			t.Errorf("IsValid(%v) = %v, expected %v", tc.z, IsValid(tc.z), tc.expected)
		}
	}
}

func TestElevation(t *testing.T) {
	e := ValidElevation(4.5)
	z, ok := e.Value()
	if !ok || z != 4.5 {
		t.Errorf("expected valid 4.5, got %v %v", z, ok)
	}
	if e.String() != "4.500m" {
		t.Errorf("expected 4.500m, got %s", e.String())
	}

	nan := ValidElevation(math.NaN())
	if _, ok := nan.Value(); ok {
		t.Error("NaN should wrap to no data")
	}
	if nan.String() != "nodata" {
		t.Errorf("expected nodata, got %s", nan.String())
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	if _, err := NewGrid(0, 3, 1, 0); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions, got %v", err)
	}
	if _, err := NewGrid(MaxDimension+1, 3, 1, 0); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for oversized grid, got %v", err)
	}
	if _, err := NewGrid(3, 3, 0, 0); !errors.Is(err, ErrInvalidCellSize) {
		t.Errorf("expected ErrInvalidCellSize, got %v", err)
	}
	if _, err := NewGrid(3, 3, math.NaN(), 0); !errors.Is(err, ErrInvalidCellSize) {
		t.Errorf("expected ErrInvalidCellSize for NaN, got %v", err)
	}
}

func TestFromRows(t *testing.T) {
	g, err := FromRows([][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}, 0.5)
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	if g.Rows != 2 || g.Cols != 3 {
		t.Errorf("expected 2x3, got %dx%d", g.Rows, g.Cols)
	}
	if g.At(1, 2) != 6 {
		t.Errorf("expected At(1,2) = 6, got %v", g.At(1, 2))
	}

	if _, err := FromRows([][]float64{{1, 2}, {3}}, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("expected ErrInvalidDimensions for ragged rows, got %v", err)
	}
}

func TestGrid_Bounds(t *testing.T) {
	g, _ := NewGrid(3, 4, 1, 7)

	if !g.Valid(2, 3) {
		t.Error("(2,3) should be valid")
	}
	for _, p := range [][2]int{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		if g.InBounds(p[0], p[1]) {
			t.Errorf("(%d,%d) should be out of bounds", p[0], p[1])
		}
		if !math.IsNaN(g.At(p[0], p[1])) {
			t.Errorf("At(%d,%d) should be NoData", p[0], p[1])
		}
		if _, ok := g.Elevation(p[0], p[1]).Value(); ok {
			t.Errorf("Elevation(%d,%d) should be invalid", p[0], p[1])
		}
	}
}

func TestGrid_RectValid(t *testing.T) {
	g, _ := NewGrid(5, 5, 1, 1)
	g.Set(2, 2, NoData)

	if g.RectValid(0, 2, 0, 5) != true {
		t.Error("rows 0-1 should be valid")
	}
	if g.RectValid(1, 4, 1, 4) {
		t.Error("rectangle containing (2,2) should be invalid")
	}
	if g.RectValid(3, 6, 0, 2) {
		t.Error("rectangle past the last row should be invalid")
	}
	if !g.RectValid(2, 2, 2, 2) {
		t.Error("empty rectangle should be valid")
	}
}

func TestGrid_WindowValid(t *testing.T) {
	g, _ := NewGrid(3, 3, 1, 1)
	g.Set(0, 0, NoData)

	if g.WindowValid(0, 0) {
		t.Error("window (0,0) uses the no-data corner")
	}
	if !g.WindowValid(1, 1) {
		t.Error("window (1,1) should be valid")
	}
	if g.WindowValid(2, 2) {
		t.Error("window (2,2) extends past the grid")
	}
}

func TestGrid_Stats(t *testing.T) {
	g, _ := FromRows([][]float64{
		{1, NoData, 3},
		{4, 5, NoData},
	}, 1)

	s := g.Stats()
	if s.Cells != 6 || s.Valid != 4 || s.NoData != 2 {
		t.Errorf("expected 6/4/2 cells, got %d/%d/%d", s.Cells, s.Valid, s.NoData)
	}
	if s.Min != 1 || s.Max != 5 {
		t.Errorf("expected range 1..5, got %v..%v", s.Min, s.Max)
	}
	if s.Mean != 13.0/4 {
		t.Errorf("expected mean 3.25, got %v", s.Mean)
	}

	empty, _ := NewGrid(2, 2, 1, NoData)
	if s := empty.Stats(); !math.IsNaN(s.Min) || s.Valid != 0 {
		t.Errorf("expected NaN stats for empty grid, got %+v", s)
	}
}
