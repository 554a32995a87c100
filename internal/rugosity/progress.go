package rugosity

// Progress receives iteration counts from long sweeps: grid rows during
// complexity estimation, trials during sampling. It must not block.
type Progress func(done, total int)

func (p Progress) report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

// TraceFunc receives every completed trial, including its continuous
// line and raster trace, for rendering. It never affects the result.
type TraceFunc func(Trial)
