package rugosity

import (
	"fmt"

	"github.com/Faultbox/rugosity/pkg/dem"
	"github.com/Faultbox/rugosity/pkg/geom"
)

// Complexity is the result of a whole-grid surface complexity sweep.
type Complexity struct {
	Ratio   float64 // Area3D / Area2D
	Area3D  float64 // m²
	Area2D  float64 // m²
	Windows int     // 2x2 windows measured
	Skipped int     // windows with a no-data corner
}

// EstimateComplexity sweeps every 2x2 window of g, summing triangulated
// surface area and flat area over windows with four valid corners.
// Progress is reported once per window row.
//
// A grid with no valid window fails with ErrDegenerateResult.
func EstimateComplexity(g *dem.Grid, progress Progress) (Complexity, error) {
	var res Complexity
	cs := g.CellSize
	flat := geom.FlatArea(cs)

	rows := g.Rows - 1
	for i := 0; i < rows; i++ {
		for j := 0; j < g.Cols-1; j++ {
			if !g.WindowValid(i, j) {
				res.Skipped++
				continue
			}
			res.Area3D += geom.CellArea(g.At(i, j), g.At(i, j+1), g.At(i+1, j), g.At(i+1, j+1), cs)
			res.Area2D += flat
			res.Windows++
		}
		progress.report(i+1, rows)
	}

	if res.Windows == 0 || res.Area2D == 0 {
		return res, fmt.Errorf("%w: no valid data in %dx%d grid", ErrDegenerateResult, g.Rows, g.Cols)
	}
	res.Ratio = res.Area3D / res.Area2D
	return res, nil
}
