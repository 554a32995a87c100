package rugosity

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/Faultbox/rugosity/pkg/dem"
)

// DefaultStallAttempts is how many draws the placer makes before it lowers
// its target by one site.
const DefaultStallAttempts = 10000

// Site is the centre of a rectangular sampling region, in grid indices.
type Site struct {
	Row        int
	Col        int
	HalfHeight float64 // cells
	HalfWidth  float64 // cells
}

// Bounds returns the half-open row and column ranges covered by the site.
func (s Site) Bounds() (r0, r1, c0, c1 int) {
	r, c := float64(s.Row), float64(s.Col)
	return int(r - s.HalfHeight), int(r + s.HalfHeight), int(c - s.HalfWidth), int(c + s.HalfWidth)
}

// Conflicts reports whether other lies too close to s: within twice the
// half-width in columns and twice the half-height in rows. This is an
// axis-aligned proximity test on centres, not a rectangle intersection.
func (s Site) Conflicts(other Site) bool {
	r, c := float64(s.Row), float64(s.Col)
	or, oc := float64(other.Row), float64(other.Col)
	return oc < c+2*s.HalfWidth && oc > c-2*s.HalfWidth &&
		or < r+2*s.HalfHeight && or > r-2*s.HalfHeight
}

// Placer finds non-overlapping sites by rejection sampling.
type Placer struct {
	Grid *dem.Grid
	Rand *rand.Rand

	// StallAttempts is the number of draws after which the target count is
	// reduced by one. Zero means DefaultStallAttempts.
	StallAttempts int

	Log *zap.Logger
}

// HalfExtents converts a footprint in metres to half extents in cells.
func HalfExtents(heightM, widthM, cellSize float64) (halfHeight, halfWidth float64) {
	return float64(int(heightM/cellSize)) / 2, float64(int(widthM/cellSize)) / 2
}

// Place returns up to count sites of the given footprint. Every site lies
// inside the grid, covers only valid cells and does not conflict with any
// other returned site.
//
// After every StallAttempts draws the target shrinks by one, so the search
// always terminates. Fewer sites than requested is not an error; none at
// all fails with ErrConfiguration.
func (p *Placer) Place(heightM, widthM float64, count int) ([]Site, error) {
	g := p.Grid
	if count <= 0 {
		return nil, fmt.Errorf("%w: site count must be positive, got %d", ErrConfiguration, count)
	}
	hh, hw := HalfExtents(heightM, widthM, g.CellSize)
	if 2*hh > float64(g.Rows) || 2*hw > float64(g.Cols) {
		return nil, fmt.Errorf("%w: %.2fx%.2fm site does not fit %dx%d grid",
			ErrConfiguration, heightM, widthM, g.Rows, g.Cols)
	}

	stall := p.StallAttempts
	if stall <= 0 {
		stall = DefaultStallAttempts
	}
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}

	target := count
	var sites []Site
	for attempts := 1; len(sites) < target; attempts++ {
		if attempts%stall == 0 {
			target--
			log.Debug("lowering site target",
				zap.Int("target", target),
				zap.Int("found", len(sites)),
				zap.Int("attempts", attempts))
			if len(sites) >= target {
				break
			}
		}

		cand := Site{
			Row:        p.Rand.IntN(g.Rows),
			Col:        p.Rand.IntN(g.Cols),
			HalfHeight: hh,
			HalfWidth:  hw,
		}
		if !p.accept(cand, sites) {
			continue
		}
		sites = append(sites, cand)
	}

	if len(sites) == 0 {
		return nil, fmt.Errorf("%w: no valid %.2fx%.2fm site found", ErrConfiguration, heightM, widthM)
	}
	if len(sites) < count {
		log.Warn("placed fewer sites than requested",
			zap.Int("requested", count),
			zap.Int("placed", len(sites)))
	}
	return sites, nil
}

func (p *Placer) accept(cand Site, sites []Site) bool {
	g := p.Grid
	if !g.Valid(cand.Row, cand.Col) {
		return false
	}

	r, c := float64(cand.Row), float64(cand.Col)
	if r-cand.HalfHeight < 0 || r+cand.HalfHeight > float64(g.Rows) ||
		c-cand.HalfWidth < 0 || c+cand.HalfWidth > float64(g.Cols) {
		return false
	}

	r0, r1, c0, c1 := cand.Bounds()
	if !g.RectValid(r0, r1, c0, c1) {
		return false
	}

	for _, s := range sites {
		if cand.Conflicts(s) {
			return false
		}
	}
	return true
}
