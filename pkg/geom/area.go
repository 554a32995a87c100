package geom

import "math"

// TriangleArea returns the area of the triangle abc using Heron's formula.
// A negative radicand from cancellation on near-degenerate triangles yields 0.
func TriangleArea(a, b, c Vec3) float64 {
	ab := a.Distance(b)
	bc := b.Distance(c)
	ac := a.Distance(c)

	s := (ab + bc + ac) / 2
	radicand := s * (s - ab) * (s - bc) * (s - ac)
	if radicand <= 0 || math.IsNaN(radicand) {
		return 0
	}
	return math.Sqrt(radicand)
}

// CellArea returns the 3D surface area of one grid cell whose corner
// elevations are z00 (row 0, col 0), z01, z10 and z11.
//
// The cell is split along the z00-z11 diagonal into two triangles. Corner
// (r, c) sits at (r*cellSize, c*cellSize, zrc). Callers must not pass
// no-data corners; the result would be meaningless.
func CellArea(z00, z01, z10, z11, cellSize float64) float64 {
	if z00 == z01 && z00 == z10 && z00 == z11 {
		// Horizontal cell: the projected area is exact.
		return FlatArea(cellSize)
	}

	p00 := Vec3{0, 0, z00}
	p01 := Vec3{0, cellSize, z01}
	p10 := Vec3{cellSize, 0, z10}
	p11 := Vec3{cellSize, cellSize, z11}

	return TriangleArea(p00, p01, p11) + TriangleArea(p00, p10, p11)
}

// FlatArea returns the projected 2D area of one grid cell.
func FlatArea(cellSize float64) float64 {
	return cellSize * cellSize
}
