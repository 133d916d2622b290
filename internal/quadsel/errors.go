package quadsel

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing indicates a levels file that was required but not found.
	ErrMissing = errors.New("quadsel: levels file not found")

	// ErrMalformed indicates a levels file line that could not be parsed.
	ErrMalformed = errors.New("quadsel: malformed levels file")

	// ErrMismatch indicates a levels file written for a different grid.
	ErrMismatch = errors.New("quadsel: levels file does not match grid")

	// ErrUnconverged indicates a radial point whose search ran out of schemes.
	ErrUnconverged = errors.New("quadsel: quadrature not converged")
)

// PointError carries the radial point a selection failed at.
type PointError struct {
	Point   int
	Bin     int
	Node    int
	R       float64
	Scheme  string
	MaxDiff float64
	Wrapped error
}

func (e *PointError) Error() string {
	return fmt.Sprintf("%v: point %d (bin %d, node %d, r=%.4f) scheme %s max diff %.3e",
		e.Wrapped, e.Point, e.Bin, e.Node, e.R, e.Scheme, e.MaxDiff)
}

func (e *PointError) Unwrap() error {
	return e.Wrapped
}
