// Package kinetic builds the kinetic-energy operator on the FEM-DVR
// radial grid, including the centrifugal term of every (l,m) channel.
//
// Matrix elements are derivative overlaps of Lagrange polynomials on
// Gauss-Lobatto nodes. Bridge functions straddle two bins and collect a
// contribution from each; their normalization uses the sum of the two
// boundary weights. The whole operator carries the factor 1/2.
package kinetic

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
	"github.com/san-kum/femdvr/internal/parallel"
)

const minChunk = 256

type Operator struct {
	bmap     *basis.Map
	grid     *dvr.Grid
	strategy config.Strategy
	workers  int

	x     []float64
	pw    []float64
	scale float64
	// overlap[a][b] = sum_k w_k f'_a(x_k) f'_b(x_k) in physical units,
	// filled only for the vectorized strategy
	overlap *mat.Dense
}

func New(bmap *basis.Map, strategy config.Strategy, workers int) *Operator {
	g := bmap.Grid()
	o := &Operator{
		bmap:     bmap,
		grid:     g,
		strategy: strategy,
		workers:  workers,
		x:        g.Abscissas(),
		pw:       g.PhysicalWeights(),
		scale:    2 / g.BinWidth(),
	}
	if strategy == config.StrategyVectorized {
		o.overlap = o.overlapMatrix()
	}
	return o
}

// overlapMatrix computes D diag(w) D^T with D[a][k] = f'_a(x_k).
func (o *Operator) overlapMatrix() *mat.Dense {
	n := len(o.x)
	table := dvr.DerivativeTable(o.x)
	d := mat.NewDense(n, n, nil)
	dw := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		for k := 0; k < n; k++ {
			v := table[a][k] * o.scale
			d.Set(a, k, v)
			dw.Set(a, k, v*o.pw[k])
		}
	}
	var f mat.Dense
	f.Mul(dw, d.T())
	return &f
}

// binOverlap returns the one-bin derivative overlap of local nodes a, b.
func (o *Operator) binOverlap(a, b int) float64 {
	if o.overlap != nil {
		return o.overlap.At(a, b)
	}
	var sum float64
	for k := range o.x {
		da := dvr.LagrangeDerivative(o.x, a, k) * o.scale
		db := dvr.LagrangeDerivative(o.x, b, k) * o.scale
		sum += o.pw[k] * da * db
	}
	return sum
}

// Radial returns the radial second-derivative element between radial
// points p and q, before the factor 1/2. Points that share no bin give an
// explicit zero.
func (o *Operator) Radial(p, q int) float64 {
	if q < p {
		p, q = q, p
	}
	a, b := o.grid.Point(p), o.grid.Point(q)
	last := o.grid.Nodes() - 1
	bridgeW := o.pw[last] + o.pw[0]

	switch {
	case !a.Bridge && !b.Bridge:
		if a.Bin != b.Bin {
			return 0
		}
		return o.binOverlap(a.Node, b.Node) / math.Sqrt(o.pw[a.Node]*o.pw[b.Node])

	case a.Bridge && b.Bridge:
		if p == q {
			return (o.binOverlap(last, last) + o.binOverlap(0, 0)) / bridgeW
		}
		if b.Bin == a.Bin+1 {
			// shared bin a.Bin: a is its left edge, b its right edge
			return o.binOverlap(0, last) / bridgeW
		}
		return 0

	default:
		in, br := a, b
		if a.Bridge {
			in, br = b, a
		}
		var f float64
		switch in.Bin {
		case br.Bin:
			f = o.binOverlap(in.Node, 0)
		case br.Bin - 1:
			f = o.binOverlap(in.Node, last)
		default:
			return 0
		}
		return f / math.Sqrt(o.pw[in.Node]*bridgeW)
	}
}

// Element returns K(i, j) for two basis functions.
func (o *Operator) Element(i, j int) float64 {
	fi, fj := o.bmap.Function(i), o.bmap.Function(j)
	if fi.L != fj.L || fi.M != fj.M {
		return 0
	}
	v := o.Radial(fi.Point, fj.Point)
	if fi.Point == fj.Point {
		r := o.grid.Point(fi.Point).R
		v += float64(fi.L*(fi.L+1)) / (r * r)
	}
	return 0.5 * v
}

// Elements evaluates every coupled pair in the upper triangle. Work is
// split into disjoint chunks of the pair list.
func (o *Operator) Elements(ctx context.Context) ([]basis.Element, error) {
	pairs := o.bmap.KineticPairs()
	out := make([]basis.Element, len(pairs))
	parallel.For(len(pairs), o.workers, minChunk, func(start, end int) {
		for k := start; k < end; k++ {
			if ctx.Err() != nil {
				return
			}
			p := pairs[k]
			out[k] = basis.Element{I: p.I, J: p.J, Value: o.Element(p.I, p.J)}
		}
	})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Matrix returns the full symmetric kinetic matrix.
func (o *Operator) Matrix(ctx context.Context) (*mat.SymDense, error) {
	elems, err := o.Elements(ctx)
	if err != nil {
		return nil, err
	}
	m := mat.NewSymDense(o.bmap.Len(), nil)
	for _, e := range elems {
		m.SetSym(e.I, e.J, e.Value)
	}
	return m, nil
}
