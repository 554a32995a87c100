// Package rugosity measures terrain roughness on a DEM grid.
//
// Two independent measurements are provided: surface complexity, the ratio
// of triangulated 3D surface area to flat projected area over the whole
// grid, and chain rugosity, the ratio of a terrain-following path length to
// its horizontal length along randomly placed and oriented virtual chains.
//
// Per-cell and per-trial failures are absorbed (skip, clamp or omit). Only
// session-level failures reach the caller, as one of the errors below.
package rugosity

import "errors"

var (
	// ErrInvalidCell reports a no-data elevation where a valid one was needed.
	ErrInvalidCell = errors.New("invalid cell")

	// ErrBoundsExhausted reports a walk or search that ran out of grid.
	ErrBoundsExhausted = errors.New("bounds exhausted")

	// ErrDegenerateResult reports a ratio whose denominator is zero.
	ErrDegenerateResult = errors.New("degenerate result")

	// ErrConfiguration reports a request that cannot fit the grid.
	ErrConfiguration = errors.New("configuration error")
)
