package rugosity

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/Faultbox/rugosity/pkg/dem"
)

// SessionParams describes a chain sampling session.
type SessionParams struct {
	Trials int

	// LengthM is the chain length when RandomLength is false. Otherwise each
	// trial draws an integer length from [MinLengthM, MaxLengthM).
	LengthM      float64
	RandomLength bool
	MinLengthM   int
	MaxLengthM   int

	// OrientationDeg is the chain angle when RandomOrientation is false.
	// Otherwise each trial draws an integer angle from [0, 180).
	OrientationDeg    float64
	RandomOrientation bool
}

// Validate checks the parameters against the grid.
func (p SessionParams) Validate(g *dem.Grid) error {
	if p.Trials <= 0 {
		return fmt.Errorf("%w: trials must be positive, got %d", ErrConfiguration, p.Trials)
	}
	if p.RandomLength {
		if p.MinLengthM <= 0 || p.MaxLengthM <= p.MinLengthM {
			return fmt.Errorf("%w: length range [%d, %d) is empty or non-positive",
				ErrConfiguration, p.MinLengthM, p.MaxLengthM)
		}
	} else if !(p.LengthM > 0) {
		return fmt.Errorf("%w: chain length must be positive, got %v", ErrConfiguration, p.LengthM)
	} else if p.LengthM < g.CellSize {
		return fmt.Errorf("%w: chain length %vm is shorter than one %vm cell",
			ErrConfiguration, p.LengthM, g.CellSize)
	}
	if math.IsNaN(p.OrientationDeg) || math.IsInf(p.OrientationDeg, 0) {
		return fmt.Errorf("%w: invalid orientation %v", ErrConfiguration, p.OrientationDeg)
	}
	return nil
}

// Trial is one placed, rasterized and walked chain.
type Trial struct {
	Index          int
	LengthM        float64
	OrientationDeg float64
	Site           Site
	Path           RasterPath
	Chain          Chain
}

// Distribution is the result of a sampling session.
type Distribution struct {
	Values    []float64 // one rugosity per kept trial, in trial order
	Trials    int       // trials run
	Discarded int       // trials dropped for a zero-length chain
	Mean      float64
	StdDev    float64 // NaN with fewer than two values
	Median    float64
	P05       float64
	P95       float64
}

// Summarize fills the summary statistics from Values.
func (d *Distribution) Summarize() {
	if len(d.Values) == 0 {
		d.Mean, d.StdDev, d.Median, d.P05, d.P95 = math.NaN(), math.NaN(), math.NaN(), math.NaN(), math.NaN()
		return
	}
	d.Mean, d.StdDev = stat.MeanStdDev(d.Values, nil)

	sorted := slices.Clone(d.Values)
	slices.Sort(sorted)
	d.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	d.P05 = stat.Quantile(0.05, stat.Empirical, sorted, nil)
	d.P95 = stat.Quantile(0.95, stat.Empirical, sorted, nil)
}

// Sampler runs chain trials over one grid. The generator is owned by the
// sampler; seed it explicitly for reproducible sessions.
type Sampler struct {
	Grid *dem.Grid
	Rand *rand.Rand

	// StallAttempts is passed to the site placer.
	StallAttempts int

	Log      *zap.Logger
	Progress Progress
	Trace    TraceFunc
}

// NewSampler returns a sampler with a PCG generator seeded from seed.
func NewSampler(g *dem.Grid, seed uint64) *Sampler {
	return &Sampler{
		Grid: g,
		Rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Log:  zap.NewNop(),
	}
}

func (s *Sampler) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// Run executes p.Trials independent trials and returns the rugosity
// distribution. Trials with a zero-length chain are omitted. The session
// fails with ErrConfiguration if a site cannot be placed, and with
// ErrDegenerateResult if every trial was omitted.
func (s *Sampler) Run(p SessionParams) (*Distribution, error) {
	if err := p.Validate(s.Grid); err != nil {
		return nil, err
	}
	log := s.logger()

	dist := &Distribution{Values: make([]float64, 0, p.Trials)}
	for i := 0; i < p.Trials; i++ {
		length := p.LengthM
		if p.RandomLength {
			length = float64(p.MinLengthM + s.Rand.IntN(p.MaxLengthM-p.MinLengthM))
		}
		orientation := p.OrientationDeg
		if p.RandomOrientation {
			orientation = float64(s.Rand.IntN(180))
		}

		trial, err := s.Trial(i, length, orientation)
		dist.Trials++
		switch {
		case err == nil:
			dist.Values = append(dist.Values, trial.Chain.Rugosity())
		case errors.Is(err, ErrDegenerateResult):
			dist.Discarded++
			log.Debug("discarding trial", zap.Int("trial", i), zap.Error(err))
		default:
			return nil, fmt.Errorf("trial %d: %w", i, err)
		}
		s.Progress.report(i+1, p.Trials)
	}

	if len(dist.Values) == 0 {
		return nil, fmt.Errorf("%w: all %d trials degenerate", ErrDegenerateResult, dist.Trials)
	}
	dist.Summarize()
	log.Info("sampling complete",
		zap.Int("trials", dist.Trials),
		zap.Int("kept", len(dist.Values)),
		zap.Float64("mean", dist.Mean))
	return dist, nil
}

// Trial places one site sized for the chain, lays a line from its centre
// at orientationDeg and walks a chain of lengthM metres along it.
func (s *Sampler) Trial(index int, lengthM, orientationDeg float64) (Trial, error) {
	g := s.Grid
	t := Trial{Index: index, LengthM: lengthM, OrientationDeg: orientationDeg}

	heightM, widthM := Footprint(lengthM, orientationDeg)
	placer := &Placer{Grid: g, Rand: s.Rand, StallAttempts: s.StallAttempts, Log: s.logger()}
	sites, err := placer.Place(heightM, widthM, 1)
	if err != nil {
		return t, err
	}
	t.Site = sites[0]

	lengthCells := float64(int(lengthM / g.CellSize))
	start := Point{Row: float64(t.Site.Row), Col: float64(t.Site.Col)}
	t.Path = Rasterize(start, orientationDeg, lengthCells)

	t.Chain, err = WalkChain(g, t.Path.Cells, lengthM)
	if err != nil {
		return t, err
	}
	if s.Trace != nil {
		s.Trace(t)
	}
	s.logger().Debug("trial",
		zap.Int("trial", index),
		zap.Float64("length_m", lengthM),
		zap.Float64("orientation_deg", orientationDeg),
		zap.Int("site_row", t.Site.Row),
		zap.Int("site_col", t.Site.Col),
		zap.Stringer("halt", t.Chain.Halt),
		zap.NamedError("halt_err", t.Chain.Halt.Err()),
		zap.Float64("rugosity", t.Chain.Rugosity()))
	return t, nil
}
