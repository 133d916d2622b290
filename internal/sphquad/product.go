package sphquad

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/san-kum/femdvr/internal/config"
)

const productPrefix = "gauss_"

// DefaultProductMax is the largest polar order in the default product family.
const DefaultProductMax = config.ProductMaxOrder

// ProductScheme builds n Gauss-Legendre points in cos(theta) times 2n
// equally spaced azimuths. It integrates spherical polynomials of degree
// 2n-1 exactly.
func ProductScheme(n int) *Scheme {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)

	np := 2 * n
	nodes := make([]Node, 0, n*np)
	for i := range x {
		st := math.Sqrt(1 - x[i]*x[i])
		for j := 0; j < np; j++ {
			phi := 2 * math.Pi * (float64(j) + 0.5) / float64(np)
			sp, cp := math.Sincos(phi)
			nodes = append(nodes, Node{
				X: st * cp,
				Y: st * sp,
				Z: x[i],
				W: w[i] / (2 * float64(np)),
			})
		}
	}
	deg := 2*n - 1
	return newScheme(fmt.Sprintf("%s%03d", productPrefix, deg), deg, nodes)
}

// ProductFamily returns product schemes with polar order 2..maxN.
func ProductFamily(maxN int) *Family {
	if maxN < 2 {
		maxN = 2
	}
	schemes := make([]*Scheme, 0, maxN-1)
	for n := 2; n <= maxN; n++ {
		schemes = append(schemes, ProductScheme(n))
	}
	f, _ := NewFamily("product", schemes)
	return f
}
