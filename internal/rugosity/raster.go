package rugosity

import "math"

// Raster stepping constants.
const (
	StepSize         = 0.33    // cells per step along the line
	BackwardFraction = 1.0 / 3 // extension behind the start, as a fraction of the length
	ForwardFraction  = 0.5     // extension ahead of the start
)

// Point is a continuous position in grid coordinates.
type Point struct {
	Row, Col float64
}

// Cell is an integer grid position.
type Cell struct {
	Row, Col int
}

// RasterPath is a line laid over the grid.
type RasterPath struct {
	// Points holds the start followed by every backward step, then every
	// forward step, in the order they were taken.
	Points []Point

	// Cells is the duplicate-free raster trace running from the backward
	// extreme through the start cell to the forward extreme.
	Cells []Cell
}

// Rasterize steps from start in both directions along angleDeg (see
// Footprint for the convention), a third of lengthCells backward and half
// of it forward, and returns the cells the line passes through.
func Rasterize(start Point, angleDeg, lengthCells float64) RasterPath {
	angle := angleDeg * math.Pi / 180

	points := []Point{start}
	back, backCells := walkLine(start, angle+math.Pi, lengthCells*BackwardFraction)
	fwd, fwdCells := walkLine(start, angle, lengthCells*ForwardFraction)
	points = append(points, back...)
	points = append(points, fwd...)

	backCells = dedupCells(backCells)
	fwdCells = dedupCells(fwdCells)

	cells := make([]Cell, 0, len(backCells)+len(fwdCells))
	for i := len(backCells) - 1; i >= 0; i-- {
		cells = append(cells, backCells[i])
	}
	cells = append(cells, fwdCells...)

	// Only the start cell can appear in both halves.
	return RasterPath{Points: points, Cells: dedupCells(cells)}
}

// walkLine steps from start along angle until it is at least limit cells
// away, returning each position and its nearest cell.
func walkLine(start Point, angle, limit float64) ([]Point, []Cell) {
	dr := math.Cos(angle) * StepSize
	dc := math.Sin(angle) * StepSize

	var points []Point
	var cells []Cell
	p := start
	for math.Hypot(p.Row-start.Row, p.Col-start.Col) < limit {
		p.Row += dr
		p.Col += dc
		points = append(points, p)
		cells = append(cells, nearestCell(p))
	}
	return points, cells
}

func nearestCell(p Point) Cell {
	return Cell{Row: int(math.RoundToEven(p.Row)), Col: int(math.RoundToEven(p.Col))}
}

// dedupCells drops every repeat of a cell, keeping first occurrences in order.
func dedupCells(cells []Cell) []Cell {
	seen := make(map[Cell]bool, len(cells))
	out := make([]Cell, 0, len(cells))
	for _, c := range cells {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
