package dvr

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNodes    = errors.New("dvr: need at least 3 nodes per bin")
	ErrGeometry = errors.New("dvr: invalid grid geometry")
	ErrEigen    = errors.New("dvr: node eigenproblem failed")
)

// GaussLobatto returns the n-point Gauss-Lobatto abscissas and weights on
// [-1, 1] in ascending order. Interior nodes are the roots of P'_{n-1},
// found as eigenvalues of the Jacobi(1,1) tridiagonal matrix.
func GaussLobatto(n int) (x, w []float64, err error) {
	if n < 3 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrNodes, n)
	}

	x = make([]float64, n)
	w = make([]float64, n)
	x[0], x[n-1] = -1, 1

	m := n - 2
	jac := mat.NewSymDense(m, nil)
	for k := 1; k < m; k++ {
		fk := float64(k)
		b := math.Sqrt(fk * (fk + 2) / ((2*fk + 1) * (2*fk + 3)))
		jac.SetSym(k-1, k, b)
	}

	var es mat.EigenSym
	if ok := es.Factorize(jac, false); !ok {
		return nil, nil, ErrEigen
	}
	copy(x[1:n-1], es.Values(nil))

	// roots come in +/- pairs
	for i := 1; i < n/2; i++ {
		a := 0.5 * (x[n-1-i] - x[i])
		x[i], x[n-1-i] = -a, a
	}
	if n%2 == 1 {
		x[n/2] = 0
	}

	norm := 2.0 / float64(n*(n-1))
	for i := range x {
		p := legendre(n-1, x[i])
		w[i] = norm / (p * p)
	}
	return x, w, nil
}

// legendre evaluates P_l(x) by the three-term recurrence.
func legendre(l int, x float64) float64 {
	if l == 0 {
		return 1
	}
	p0, p1 := 1.0, x
	for k := 2; k <= l; k++ {
		fk := float64(k)
		p0, p1 = p1, ((2*fk-1)*x*p1-(fk-1)*p0)/fk
	}
	return p1
}

// LagrangeDerivative returns f'_a(x_k), the derivative of the Lagrange
// interpolating polynomial centred on node a, evaluated at node k.
func LagrangeDerivative(x []float64, a, k int) float64 {
	if a == k {
		var s float64
		for mu := range x {
			if mu != a {
				s += 1.0 / (x[a] - x[mu])
			}
		}
		return s
	}

	prod := 1.0 / (x[a] - x[k])
	for mu := range x {
		if mu == a || mu == k {
			continue
		}
		prod *= (x[k] - x[mu]) / (x[a] - x[mu])
	}
	return prod
}

// DerivativeTable returns D with D[a][k] = f'_a(x_k).
func DerivativeTable(x []float64) [][]float64 {
	n := len(x)
	d := make([][]float64, n)
	for a := 0; a < n; a++ {
		d[a] = make([]float64, n)
		for k := 0; k < n; k++ {
			d[a][k] = LagrangeDerivative(x, a, k)
		}
	}
	return d
}
