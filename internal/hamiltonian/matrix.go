package hamiltonian

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/femdvr/internal/config"
)

// Matrix is a square real matrix in either storage format.
type Matrix interface {
	Dim() int
	At(i, j int) float64
	NNZ() int
	Format() config.StorageFormat
	// Range visits every stored entry. Dense storage visits all entries.
	Range(fn func(i, j int, v float64))
}

// Dense stores every entry.
type Dense struct {
	m *mat.Dense
}

func NewDense(n int, data []float64) *Dense {
	return &Dense{m: mat.NewDense(n, n, data)}
}

func (d *Dense) At(i, j int) float64          { return d.m.At(i, j) }
func (d *Dense) Format() config.StorageFormat { return config.FormatDense }
func (d *Dense) Raw() *mat.Dense              { return d.m }

func (d *Dense) Dim() int {
	n, _ := d.m.Dims()
	return n
}

func (d *Dense) NNZ() int {
	var nnz int
	d.Range(func(_, _ int, v float64) {
		if v != 0 {
			nnz++
		}
	})
	return nnz
}

func (d *Dense) Range(fn func(i, j int, v float64)) {
	n := d.Dim()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			fn(i, j, d.m.At(i, j))
		}
	}
}

// CSR is compressed sparse row storage with sorted column indices.
type CSR struct {
	N      int
	RowPtr []int
	ColInd []int
	Val    []float64
}

func (c *CSR) Dim() int                     { return c.N }
func (c *CSR) NNZ() int                     { return len(c.Val) }
func (c *CSR) Format() config.StorageFormat { return config.FormatCSR }

func (c *CSR) At(i, j int) float64 {
	start, end := c.RowPtr[i], c.RowPtr[i+1]
	cols := c.ColInd[start:end]
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return c.Val[start+k]
	}
	return 0
}

func (c *CSR) Range(fn func(i, j int, v float64)) {
	for i := 0; i < c.N; i++ {
		for k := c.RowPtr[i]; k < c.RowPtr[i+1]; k++ {
			fn(i, c.ColInd[k], c.Val[k])
		}
	}
}

// MulVec computes y = A x.
func (c *CSR) MulVec(x []float64) []float64 {
	y := make([]float64, c.N)
	for i := 0; i < c.N; i++ {
		var sum float64
		for k := c.RowPtr[i]; k < c.RowPtr[i+1]; k++ {
			sum += c.Val[k] * x[c.ColInd[k]]
		}
		y[i] = sum
	}
	return y
}

// Symmetric copies the upper triangle into a SymDense for the eigensolver.
func Symmetric(m Matrix) *mat.SymDense {
	n := m.Dim()
	out := mat.NewSymDense(n, nil)
	m.Range(func(i, j int, v float64) {
		if i <= j {
			out.SetSym(i, j, v)
		}
	})
	return out
}

// CheckSymmetric compares every stored (i,j) with (j,i) using
// |a - b| <= atol + rtol*|b|.
func CheckSymmetric(m Matrix, atol, rtol float64) error {
	var bad *SymmetryError
	m.Range(func(i, j int, v float64) {
		if bad != nil || i == j {
			return
		}
		w := m.At(j, i)
		if math.Abs(v-w) > atol+rtol*math.Abs(w) || math.IsNaN(v) || math.IsNaN(w) {
			bad = &SymmetryError{I: i, J: j, Upper: v, Lower: w, Atol: atol, Rtol: rtol}
		}
	})
	if bad != nil {
		return bad
	}
	return nil
}

// Equal reports whether two matrices hold identical values.
func Equal(a, b Matrix) bool {
	if a.Dim() != b.Dim() {
		return false
	}
	eq := true
	check := func(x, y Matrix) {
		x.Range(func(i, j int, v float64) {
			if eq && y.At(i, j) != v {
				eq = false
			}
		})
	}
	check(a, b)
	check(b, a)
	return eq
}
