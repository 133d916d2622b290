package hamiltonian

import (
	"errors"
	"fmt"
)

var (
	// ErrLowerTriangle indicates a contribution below the diagonal.
	ErrLowerTriangle = errors.New("hamiltonian: contribution below the diagonal")

	// ErrIndex indicates a contribution outside the matrix.
	ErrIndex = errors.New("hamiltonian: index out of range")

	// ErrAsymmetric indicates a matrix that failed the symmetry check.
	ErrAsymmetric = errors.New("hamiltonian: matrix not symmetric")
)

// SymmetryError reports the first pair that violated the tolerance.
type SymmetryError struct {
	I, J  int
	Upper float64
	Lower float64
	Atol  float64
	Rtol  float64
}

func (e *SymmetryError) Error() string {
	return fmt.Sprintf("%v: H[%d,%d]=%.16e, H[%d,%d]=%.16e (atol %g, rtol %g)",
		ErrAsymmetric, e.I, e.J, e.Upper, e.J, e.I, e.Lower, e.Atol, e.Rtol)
}

func (e *SymmetryError) Unwrap() error {
	return ErrAsymmetric
}
