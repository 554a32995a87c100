package render

import (
	"sync"

	"github.com/Faultbox/rugosity/internal/rugosity"
)

// Trace is the drawable part of one trial.
type Trace struct {
	Site     rugosity.Cell
	Cells    []rugosity.Cell // cells the chain walked, start to end
	Path     []rugosity.Cell // full raster trace, backward extreme to forward extreme
	Rugosity float64
}

// Traces collects trials for drawing. Its Add method satisfies
// rugosity.TraceFunc. Past Limit trials are counted but not kept.
// ShowPaths also draws each full raster trace under the walked chain.
type Traces struct {
	Limit     int
	ShowPaths bool

	mu      sync.Mutex
	lines   []Trace
	dropped int
}

// NewTraces returns a collector keeping at most limit traces.
// A limit of zero or less keeps everything.
func NewTraces(limit int) *Traces {
	return &Traces{Limit: limit}
}

// Add records a trial.
func (t *Traces) Add(trial rugosity.Trial) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Limit > 0 && len(t.lines) >= t.Limit {
		t.dropped++
		return
	}
	path := trial.Path.Cells
	walked := min(trial.Chain.Steps+1, len(path))
	t.lines = append(t.lines, Trace{
		Site:     rugosity.Cell{Row: trial.Site.Row, Col: trial.Site.Col},
		Cells:    path[:walked:walked],
		Path:     path,
		Rugosity: trial.Chain.Rugosity(),
	})
}

// Lines returns the kept traces in the order they were added.
func (t *Traces) Lines() []Trace {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Trace, len(t.lines))
	copy(out, t.lines)
	return out
}

// Sites returns the site centre of every kept trace.
func (t *Traces) Sites() []rugosity.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]rugosity.Cell, len(t.lines))
	for i, l := range t.lines {
		out[i] = l.Site
	}
	return out
}

// Dropped returns how many trials arrived after the limit was reached.
func (t *Traces) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}
