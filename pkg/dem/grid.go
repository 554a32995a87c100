// Package dem provides digital elevation model grids and their file formats.
package dem

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid errors.
var (
	ErrInvalidDimensions = errors.New("invalid grid dimensions")
	ErrInvalidCellSize   = errors.New("invalid cell size")
)

// MaxDimension bounds rows and columns so corrupt headers cannot force a
// huge allocation.
const MaxDimension = 1 << 16

// NoData is the in-memory marker for a cell without a measured elevation.
var NoData = math.NaN()

// IsValid reports whether z is a usable elevation. Every consumer of raw
// grid values must go through this predicate.
func IsValid(z float64) bool {
	return !math.IsNaN(z) && !math.IsInf(z, 0)
}

// Elevation is a grid value that is either a measured elevation or no data.
type Elevation struct {
	value float64
	ok    bool
}

// ValidElevation wraps a measured elevation.
func ValidElevation(z float64) Elevation {
	if !IsValid(z) {
		return Elevation{}
	}
	return Elevation{value: z, ok: true}
}

// Value returns the elevation and whether it is valid.
func (e Elevation) Value() (float64, bool) {
	return e.value, e.ok
}

// String formats the elevation in metres, or "nodata".
func (e Elevation) String() string {
	if !e.ok {
		return "nodata"
	}
	return fmt.Sprintf("%.3fm", e.value)
}

// Grid is a row-major raster of elevations in metres. A grid is not
// modified once measurement begins; all readers share it without locking.
type Grid struct {
	Rows     int
	Cols     int
	CellSize float64   // metres per cell edge
	Data     []float64 // Rows*Cols values, NoData where unmeasured
}

// NewGrid returns a grid of the given size with every cell set to z.
func NewGrid(rows, cols int, cellSize, z float64) (*Grid, error) {
	if rows <= 0 || cols <= 0 || rows > MaxDimension || cols > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, rows, cols)
	}
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCellSize, cellSize)
	}
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = z
	}
	return &Grid{Rows: rows, Cols: cols, CellSize: cellSize, Data: data}, nil
}

// FromRows builds a grid from a slice of equally long rows.
func FromRows(rows [][]float64, cellSize float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidDimensions)
	}
	g, err := NewGrid(len(rows), len(rows[0]), cellSize, NoData)
	if err != nil {
		return nil, err
	}
	for r, row := range rows {
		if len(row) != g.Cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d",
				ErrInvalidDimensions, r, len(row), g.Cols)
		}
		copy(g.Data[r*g.Cols:(r+1)*g.Cols], row)
	}
	return g, nil
}

// InBounds reports whether (r, c) is a cell of the grid.
func (g *Grid) InBounds(r, c int) bool {
	return r >= 0 && c >= 0 && r < g.Rows && c < g.Cols
}

// At returns the raw value at (r, c), or NoData when out of bounds.
func (g *Grid) At(r, c int) float64 {
	if !g.InBounds(r, c) {
		return NoData
	}
	return g.Data[r*g.Cols+c]
}

// Elevation returns the value at (r, c) as a tagged elevation.
func (g *Grid) Elevation(r, c int) Elevation {
	return ValidElevation(g.At(r, c))
}

// Valid reports whether (r, c) is inside the grid and holds data.
func (g *Grid) Valid(r, c int) bool {
	return IsValid(g.At(r, c))
}

// Set stores z at (r, c). It is intended for building grids, not for use
// while a measurement is running.
func (g *Grid) Set(r, c int, z float64) {
	if g.InBounds(r, c) {
		g.Data[r*g.Cols+c] = z
	}
}

// RectValid reports whether every cell in rows [r0, r1) and columns
// [c0, c1) lies inside the grid and holds data. An empty rectangle is valid.
func (g *Grid) RectValid(r0, r1, c0, c1 int) bool {
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			if !g.Valid(r, c) {
				return false
			}
		}
	}
	return true
}

// WindowValid reports whether the 2x2 window anchored at (r, c) has four valid corners.
func (g *Grid) WindowValid(r, c int) bool {
	return g.Valid(r, c) && g.Valid(r, c+1) && g.Valid(r+1, c) && g.Valid(r+1, c+1)
}

// Stats summarises the grid contents.
type Stats struct {
	Cells  int
	Valid  int
	NoData int
	Min    float64
	Max    float64
	Mean   float64
}

// Stats scans the grid once. Min, Max and Mean are NaN when no cell is valid.
func (g *Grid) Stats() Stats {
	valid := make([]float64, 0, len(g.Data))
	for _, z := range g.Data {
		if IsValid(z) {
			valid = append(valid, z)
		}
	}
	s := Stats{
		Cells:  len(g.Data),
		Valid:  len(valid),
		NoData: len(g.Data) - len(valid),
		Min:    math.NaN(),
		Max:    math.NaN(),
		Mean:   math.NaN(),
	}
	if len(valid) > 0 {
		s.Min = floats.Min(valid)
		s.Max = floats.Max(valid)
		s.Mean = floats.Sum(valid) / float64(len(valid))
	}
	return s
}
