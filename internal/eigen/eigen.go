// Package eigen diagonalizes symmetric Hamiltonians and verifies the
// normalization of every eigenvector.
package eigen

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrFactorize = errors.New("eigen: symmetric eigendecomposition failed")
	ErrNorm      = errors.New("eigen: eigenvector not normalized")
)

// NormError reports an eigenvector whose self inner product is not 1.
type NormError struct {
	Index int
	Norm  float64
	Tol   float64
}

func (e *NormError) Error() string {
	return fmt.Sprintf("%v: vector %d has <v|v>=%.16f (tol %g)", ErrNorm, e.Index, e.Norm, e.Tol)
}

func (e *NormError) Unwrap() error {
	return ErrNorm
}

// Result holds ascending eigenvalues and column-matched eigenvectors.
type Result struct {
	Values  []float64
	Vectors *mat.Dense
}

func (r *Result) Dim() int { return len(r.Values) }

// Vector returns a copy of eigenvector k.
func (r *Result) Vector(k int) []float64 {
	return mat.Col(nil, k, r.Vectors)
}

// Solve computes the full spectrum of a.
func Solve(a mat.Symmetric, normTol float64) (*Result, error) {
	var es mat.EigenSym
	if ok := es.Factorize(a, true); !ok {
		return nil, ErrFactorize
	}
	res := &Result{Values: es.Values(nil), Vectors: &mat.Dense{}}
	es.VectorsTo(res.Vectors)

	if err := CheckNorms(res.Vectors, normTol); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckNorms verifies |<v|v> - 1| <= tol for every column.
func CheckNorms(vecs mat.Matrix, tol float64) error {
	_, c := vecs.Dims()
	for k := 0; k < c; k++ {
		col := mat.Col(nil, k, vecs)
		norm := floats.Dot(col, col)
		if math.Abs(norm-1) > tol || math.IsNaN(norm) {
			return &NormError{Index: k, Norm: norm, Tol: tol}
		}
	}
	return nil
}

// Truncate keeps the lowest k eigenpairs.
func (r *Result) Truncate(k int) *Result {
	if k <= 0 || k >= len(r.Values) {
		return r
	}
	n, _ := r.Vectors.Dims()
	vecs := mat.NewDense(n, k, nil)
	vecs.Copy(r.Vectors.Slice(0, n, 0, k))
	return &Result{Values: append([]float64(nil), r.Values[:k]...), Vectors: vecs}
}

// Level is a group of eigenvalues closer than a tolerance.
type Level struct {
	Energy     float64
	Degeneracy int
	FirstIndex int
}

// Levels groups ascending values into degenerate levels.
func Levels(values []float64, tol float64) []Level {
	var out []Level
	for i, v := range values {
		if n := len(out); n > 0 && math.Abs(v-out[n-1].Energy) <= tol {
			out[n-1].Degeneracy++
			continue
		}
		out = append(out, Level{Energy: v, Degeneracy: 1, FirstIndex: i})
	}
	return out
}
