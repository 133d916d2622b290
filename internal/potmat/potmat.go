// Package potmat integrates products of real spherical harmonics against
// a sampled potential on a spherical quadrature scheme.
//
// For channels a, b at radius r the element is
//
//	4*pi * sum_k w_k Y_a(k) Y_b(k) V(r, k)
//
// The potential is local in r, so only channel pairs at the same radial
// point couple.
package potmat

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/parallel"
	"github.com/san-kum/femdvr/internal/potential"
	"github.com/san-kum/femdvr/internal/sphharm"
	"github.com/san-kum/femdvr/internal/sphquad"
)

var ErrSchemes = errors.New("potmat: scheme list does not match radial grid")

type Operator struct {
	bmap     *basis.Map
	sampler  potential.Sampler
	table    *sphharm.Table
	strategy config.Strategy
	workers  int

	mu     sync.Mutex
	tables map[string]*harmonics
}

// harmonics holds Y_a at every node of one scheme, row per channel.
type harmonics struct {
	once sync.Once
	y    [][]float64
	w    []float64
}

func New(bmap *basis.Map, sampler potential.Sampler, strategy config.Strategy, workers int) (*Operator, error) {
	tab, err := sphharm.NewTable(bmap.Lmax())
	if err != nil {
		return nil, fmt.Errorf("potmat: %w", err)
	}
	return &Operator{
		bmap:     bmap,
		sampler:  sampler,
		table:    tab,
		strategy: strategy,
		workers:  workers,
		tables:   make(map[string]*harmonics),
	}, nil
}

func (o *Operator) Sampler() potential.Sampler { return o.sampler }

// AngularMatrix returns the channel-by-channel potential matrix at radius r.
func (o *Operator) AngularMatrix(r float64, s *sphquad.Scheme) (*mat.SymDense, error) {
	v, err := o.sampler.Sample(r, s)
	if err != nil {
		return nil, fmt.Errorf("potmat: sample r=%g %s: %w", r, s.ID(), err)
	}
	if len(v) != s.Len() {
		return nil, fmt.Errorf("potmat: sampler returned %d values for %d nodes", len(v), s.Len())
	}

	na := o.bmap.AngularLen()
	out := mat.NewSymDense(na, nil)
	if o.strategy == config.StrategyLoop {
		o.fillLoop(out, v, s)
	} else {
		o.fillVectorized(out, v, s)
	}
	return out, nil
}

func (o *Operator) fillLoop(out *mat.SymDense, v []float64, s *sphquad.Scheme) {
	na := o.bmap.AngularLen()
	for a := 0; a < na; a++ {
		ca := o.bmap.Channel(a)
		for b := a; b < na; b++ {
			cb := o.bmap.Channel(b)
			var sum float64
			for k := 0; k < s.Len(); k++ {
				n := s.Node(k)
				ya := o.table.Y(ca.L, ca.M, n.Theta, n.Phi)
				yb := o.table.Y(cb.L, cb.M, n.Theta, n.Phi)
				sum += n.W * ya * yb * v[k]
			}
			out.SetSym(a, b, 4*math.Pi*sum)
		}
	}
}

func (o *Operator) fillVectorized(out *mat.SymDense, v []float64, s *sphquad.Scheme) {
	h := o.harmonics(s)
	na := o.bmap.AngularLen()
	wv := make([]float64, len(v))
	floats.MulTo(wv, h.w, v)
	tmp := make([]float64, len(v))
	for a := 0; a < na; a++ {
		floats.MulTo(tmp, wv, h.y[a])
		for b := a; b < na; b++ {
			out.SetSym(a, b, 4*math.Pi*floats.Dot(tmp, h.y[b]))
		}
	}
}

func (o *Operator) harmonics(s *sphquad.Scheme) *harmonics {
	o.mu.Lock()
	h, ok := o.tables[s.ID()]
	if !ok {
		h = &harmonics{}
		o.tables[s.ID()] = h
	}
	o.mu.Unlock()

	h.once.Do(func() {
		size := o.table.Size()
		h.y = make([][]float64, size)
		for a := range h.y {
			h.y[a] = make([]float64, s.Len())
		}
		h.w = s.Weights()
		buf := make([]float64, size)
		for k := 0; k < s.Len(); k++ {
			n := s.Node(k)
			o.table.Eval(n.Theta, n.Phi, buf)
			for a := range buf {
				h.y[a][k] = buf[a]
			}
		}
	})
	return h
}

// Elements evaluates the potential contributions of every radial point,
// using schemes[p] at point p. Points run in parallel and the result is
// ordered by radial point.
func (o *Operator) Elements(ctx context.Context, schemes []*sphquad.Scheme) ([]basis.Element, error) {
	grid := o.bmap.Grid()
	if len(schemes) != grid.Len() {
		return nil, fmt.Errorf("%w: %d schemes for %d points", ErrSchemes, len(schemes), grid.Len())
	}

	perPoint := make([][]basis.Element, grid.Len())
	err := parallel.Each(ctx, grid.Len(), o.workers, func(_ context.Context, p int) error {
		m, err := o.AngularMatrix(grid.Point(p).R, schemes[p])
		if err != nil {
			return err
		}
		na := o.bmap.AngularLen()
		elems := make([]basis.Element, 0, na*(na+1)/2)
		for a := 0; a < na; a++ {
			for b := a; b < na; b++ {
				i, j := o.bmap.Global(p, a), o.bmap.Global(p, b)
				elems = append(elems, basis.Element{I: i, J: j, Value: m.At(a, b)})
			}
		}
		perPoint[p] = elems
		return nil
	})
	if err != nil {
		return nil, err
	}

	var total int
	for _, e := range perPoint {
		total += len(e)
	}
	out := make([]basis.Element, 0, total)
	for _, e := range perPoint {
		out = append(out, e...)
	}
	return out, nil
}
