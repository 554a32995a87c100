// Package render draws elevation grids, chain traces and rugosity
// distributions to image files.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Faultbox/rugosity/internal/rugosity"
	"github.com/Faultbox/rugosity/pkg/dem"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("nothing to plot")

var (
	noDataColor = color.RGBA{R: 40, G: 40, B: 40, A: 255}
	traceColor  = color.RGBA{R: 30, G: 90, B: 220, A: 255}
	pathColor   = color.RGBA{R: 200, G: 200, B: 200, A: 160}
	siteColor   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// gridXYZ adapts a dem.Grid to plotter.GridXYZ with north up.
type gridXYZ struct {
	g *dem.Grid
}

func (x gridXYZ) Dims() (c, r int)   { return x.g.Cols, x.g.Rows }
func (x gridXYZ) Z(c, r int) float64 { return x.g.At(x.g.Rows-1-r, c) }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }

func (x gridXYZ) xy(cell rugosity.Cell) plotter.XY {
	return plotter.XY{X: float64(cell.Col), Y: float64(x.g.Rows - 1 - cell.Row)}
}

// DEM renders the grid as a heat map with any collected traces drawn over
// it. The output format follows the file extension.
func DEM(g *dem.Grid, title string, traces *Traces, path string) error {
	if g == nil || g.Rows < 2 || g.Cols < 2 {
		return fmt.Errorf("%w: grid needs at least 2x2 cells", ErrNoData)
	}
	st := g.Stats()
	if st.Valid == 0 {
		return fmt.Errorf("%w: grid has no valid elevations", ErrNoData)
	}

	xyz := gridXYZ{g: g}
	heat := plotter.NewHeatMap(xyz, palette.Heat(64, 1))
	heat.NaN = noDataColor
	heat.Min, heat.Max = st.Min, st.Max
	if heat.Max == heat.Min {
		heat.Max = heat.Min + 1
	}
	heat.Rasterized = true

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = fmt.Sprintf("Column (%gm cells)", g.CellSize)
	p.Y.Label.Text = "Row from south edge"
	p.Add(heat)

	if traces != nil {
		for _, tr := range traces.Lines() {
			if traces.ShowPaths {
				if err := addCells(p, xyz, tr.Path, pathColor, vg.Points(0.5)); err != nil {
					return err
				}
			}
			if err := addCells(p, xyz, tr.Cells, traceColor, vg.Points(1)); err != nil {
				return err
			}
		}

		sites := traces.Sites()
		if len(sites) > 0 {
			pts := make(plotter.XYs, len(sites))
			for i, c := range sites {
				pts[i] = xyz.xy(c)
			}
			sc, err := plotter.NewScatter(pts)
			if err != nil {
				return err
			}
			sc.GlyphStyle.Color = siteColor
			sc.GlyphStyle.Radius = vg.Points(1.5)
			sc.GlyphStyle.Shape = draw.CircleGlyph{}
			p.Add(sc)
		}
	}

	width := 10 * vg.Inch
	height := vg.Length(math.Min(math.Max(float64(g.Rows)/float64(g.Cols), 0.3), 3)) * width
	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("save dem plot: %w", err)
	}
	return nil
}

func addCells(p *plot.Plot, xyz gridXYZ, cells []rugosity.Cell, c color.Color, width vg.Length) error {
	if len(cells) < 2 {
		return nil
	}
	pts := make(plotter.XYs, len(cells))
	for i, cell := range cells {
		pts[i] = xyz.xy(cell)
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = c
	line.Width = width
	p.Add(line)
	return nil
}

// Histogram renders the distribution of sampled rugosity values.
func Histogram(values []float64, title string, bins int, path string) error {
	if len(values) == 0 {
		return ErrNoData
	}

	hist, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return err
	}
	hist.FillColor = traceColor

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Rugosity"
	p.Y.Label.Text = "Chains"
	p.Add(plotter.NewGrid())
	p.Add(hist)

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
