package render

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/rugosity/internal/rugosity"
	"github.com/Faultbox/rugosity/pkg/dem"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func checkPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("%s is not a PNG", path)
	}
}

func testGrid(t *testing.T) *dem.Grid {
	t.Helper()
	g, err := dem.NewGrid(30, 40, 1, 0)
	if err != nil {
		t.Fatalf("failed to create grid: %v", err)
	}
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			g.Set(r, c, math.Sin(float64(r)/4)+math.Cos(float64(c)/5))
		}
	}
	g.Set(0, 0, dem.NoData)
	return g
}

func TestDEM(t *testing.T) {
	g := testGrid(t)
	s := rugosity.NewSampler(g, 3)
	traces := NewTraces(0)
	s.Trace = traces.Add
	if _, err := s.Run(rugosity.SessionParams{Trials: 5, LengthM: 8, RandomOrientation: true}); err != nil {
		t.Fatalf("sampling failed: %v", err)
	}
	if len(traces.Lines()) != 5 {
		t.Fatalf("expected 5 traces, got %d", len(traces.Lines()))
	}
	traces.ShowPaths = true

	path := filepath.Join(t.TempDir(), "dem.png")
	if err := DEM(g, "test", traces, path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	checkPNG(t, path)
}

func TestDEMFlatGrid(t *testing.T) {
	g, _ := dem.NewGrid(4, 4, 1, 7)
	path := filepath.Join(t.TempDir(), "flat.png")
	if err := DEM(g, "flat", nil, path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	checkPNG(t, path)
}

func TestDEMNoData(t *testing.T) {
	g, _ := dem.NewGrid(4, 4, 1, dem.NoData)
	err := DEM(g, "empty", nil, filepath.Join(t.TempDir(), "x.png"))
	if !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestHistogram(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hist.png")
	values := []float64{1.01, 1.02, 1.02, 1.05, 1.1, 1.2}
	if err := Histogram(values, "rugosity", 5, path); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	checkPNG(t, path)

	if err := Histogram(nil, "empty", 5, path); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
}

func TestTracesLimit(t *testing.T) {
	traces := NewTraces(2)
	for i := 0; i < 5; i++ {
		traces.Add(rugosity.Trial{
			Index: i,
			Site:  rugosity.Site{Row: i, Col: i},
			Chain: rugosity.Chain{Surface: 2, Planar: 1},
		})
	}
	lines := traces.Lines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 kept traces, got %d", len(lines))
	}
	if traces.Dropped() != 3 {
		t.Errorf("expected 3 dropped, got %d", traces.Dropped())
	}
	if lines[1].Site != (rugosity.Cell{Row: 1, Col: 1}) {
		t.Errorf("expected second site at 1,1, got %+v", lines[1].Site)
	}
	if lines[0].Rugosity != 2 {
		t.Errorf("expected rugosity 2, got %v", lines[0].Rugosity)
	}
}

func TestTracesWalkedCells(t *testing.T) {
	path := rugosity.Rasterize(rugosity.Point{Row: 40, Col: 40}, 0, 30)
	if len(path.Cells) < 6 {
		t.Fatalf("expected a long trace, got %d cells", len(path.Cells))
	}

	traces := NewTraces(0)
	traces.Add(rugosity.Trial{
		Path:  path,
		Chain: rugosity.Chain{Surface: 4, Planar: 3, Steps: 3},
	})
	traces.Add(rugosity.Trial{Chain: rugosity.Chain{Surface: 1, Planar: 1, Steps: 2}})

	lines := traces.Lines()
	if len(lines[0].Cells) != 4 {
		t.Errorf("expected Steps+1 = 4 drawn cells, got %d", len(lines[0].Cells))
	}
	if lines[0].Cells[0] != path.Cells[0] || lines[0].Cells[3] != path.Cells[3] {
		t.Errorf("drawn chain does not follow the trace: %v", lines[0].Cells)
	}
	if len(lines[0].Path) != len(path.Cells) {
		t.Errorf("expected the full trace kept, got %d cells", len(lines[0].Path))
	}
	if len(lines[1].Cells) != 0 {
		t.Errorf("expected no cells without a trace, got %v", lines[1].Cells)
	}
}
