package rugosity

import (
	"fmt"
	"math"

	"github.com/Faultbox/rugosity/pkg/dem"
)

// Halt says why a chain walk stopped.
type Halt int

const (
	HaltComplete  Halt = iota // reached the target length
	HaltNoData                // next cell had no elevation
	HaltExhausted             // ran off the trace or the grid
)

// String returns a human-readable halt reason.
func (h Halt) String() string {
	switch h {
	case HaltComplete:
		return "complete"
	case HaltNoData:
		return "nodata"
	case HaltExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("Unknown(%d)", int(h))
	}
}

// Err maps the halt reason onto the error taxonomy; nil when complete.
func (h Halt) Err() error {
	switch h {
	case HaltNoData:
		return ErrInvalidCell
	case HaltExhausted:
		return ErrBoundsExhausted
	default:
		return nil
	}
}

// Chain is the outcome of draping one virtual chain over the grid.
type Chain struct {
	Surface float64 // terrain-following length, m
	Planar  float64 // horizontal length actually traversed, m
	Steps   int     // cell-to-cell steps taken
	Start   Cell
	End     Cell
	Halt    Halt
}

// Rugosity returns Surface / Planar.
func (c Chain) Rugosity() float64 {
	return c.Surface / c.Planar
}

// WalkChain follows cells pairwise, adding the surface distance
// sqrt(dz² + d²) and the planar distance d of each step, until the surface
// length reaches lengthM. A no-data elevation stops the walk where it is;
// so does running off the trace or the grid.
//
// A walk with zero planar length fails with ErrDegenerateResult.
func WalkChain(g *dem.Grid, cells []Cell, lengthM float64) (Chain, error) {
	var ch Chain
	if len(cells) == 0 {
		return ch, fmt.Errorf("%w: empty trace", ErrDegenerateResult)
	}
	ch.Start = cells[0]

	j := 0
	for ch.Surface < lengthM {
		if j+1 >= len(cells) {
			ch.Halt = HaltExhausted
			break
		}
		a, b := cells[j], cells[j+1]
		if !g.InBounds(a.Row, a.Col) || !g.InBounds(b.Row, b.Col) {
			ch.Halt = HaltExhausted
			break
		}
		za, okA := g.Elevation(a.Row, a.Col).Value()
		zb, okB := g.Elevation(b.Row, b.Col).Value()
		if !okA || !okB {
			ch.Halt = HaltNoData
			break
		}

		dz := za - zb
		d := math.Hypot(float64(a.Row-b.Row), float64(a.Col-b.Col)) * g.CellSize
		ch.Planar += d
		ch.Surface += math.Sqrt(dz*dz + d*d)
		j++
	}
	ch.Steps = j
	ch.End = cells[j]

	if ch.Planar == 0 {
		return ch, fmt.Errorf("%w: zero-length chain at (%d,%d), halt %s",
			ErrDegenerateResult, ch.Start.Row, ch.Start.Col, ch.Halt)
	}
	return ch, nil
}
