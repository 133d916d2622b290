// Package basis enumerates the product basis of radial DVR functions and
// real spherical harmonics, and the pairs of basis functions that can
// couple through the kinetic or potential operator.
package basis

import (
	"cmp"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
)

// LM is one angular channel.
type LM struct {
	L, M int
}

// Function is one basis function. Point is the radial point index and
// Angular the (l,m) channel index.
type Function struct {
	Index   int
	Bin     int
	Node    int
	Point   int
	Angular int
	L       int
	M       int
}

// Pair references two basis functions with I <= J.
type Pair struct {
	I, J int
}

// Element is one upper-triangle matrix contribution.
type Element struct {
	I, J  int
	Value float64
}

type Map struct {
	grid    *dvr.Grid
	lmax    int
	variant config.MapVariant
	lm      []LM
	funcs   []Function
}

func NewMap(grid *dvr.Grid, lmax int, variant config.MapVariant) (*Map, error) {
	if lmax < 0 || lmax > config.MaxLmax {
		return nil, fmt.Errorf("basis: lmax %d outside [0,%d]", lmax, config.MaxLmax)
	}

	m := &Map{grid: grid, lmax: lmax, variant: variant}
	for l := 0; l <= lmax; l++ {
		for mm := -l; mm <= l; mm++ {
			m.lm = append(m.lm, LM{L: l, M: mm})
		}
	}

	m.funcs = make([]Function, grid.Len()*len(m.lm))
	for _, p := range grid.Points() {
		for a, ch := range m.lm {
			idx := m.Global(p.Index, a)
			m.funcs[idx] = Function{
				Index:   idx,
				Bin:     p.Bin,
				Node:    p.Node,
				Point:   p.Index,
				Angular: a,
				L:       ch.L,
				M:       ch.M,
			}
		}
	}
	return m, nil
}

func (m *Map) Grid() *dvr.Grid            { return m.grid }
func (m *Map) Lmax() int                  { return m.lmax }
func (m *Map) Variant() config.MapVariant { return m.variant }
func (m *Map) Len() int                   { return len(m.funcs) }
func (m *Map) AngularLen() int            { return len(m.lm) }
func (m *Map) RadialLen() int             { return m.grid.Len() }
func (m *Map) Function(i int) Function    { return m.funcs[i] }
func (m *Map) Channel(a int) LM           { return m.lm[a] }

// Channels returns the (l,m) list, l ascending and m from -l to l.
func (m *Map) Channels() []LM {
	return append([]LM(nil), m.lm...)
}

func (m *Map) Functions() []Function {
	return append([]Function(nil), m.funcs...)
}

// Global returns the basis index of radial point p in angular channel a.
func (m *Map) Global(p, a int) int {
	if m.variant == config.MapAngularMajor {
		return a*m.grid.Len() + p
	}
	return p*len(m.lm) + a
}

// AngularIndex returns the channel index of (l, m).
func AngularIndex(l, m int) int {
	return l*l + l + m
}

// RadialCoupled reports whether two radial points share a finite element.
// Interior points belong to their own bin, bridges to both adjacent bins.
func (m *Map) RadialCoupled(p, q int) bool {
	a, b := m.grid.Point(p), m.grid.Point(q)
	loA, hiA := span(a)
	loB, hiB := span(b)
	return loA <= hiB && loB <= hiA
}

func span(p dvr.Point) (int, int) {
	if p.Bridge {
		return p.Bin - 1, p.Bin
	}
	return p.Bin, p.Bin
}

// KineticPairs lists pairs with the same (l,m) whose radial points share a
// bin. Pairs in different channels are never produced.
func (m *Map) KineticPairs() []Pair {
	nr := m.grid.Len()
	var pairs []Pair
	for p := 0; p < nr; p++ {
		for q := p; q < nr; q++ {
			if !m.RadialCoupled(p, q) {
				if m.grid.Point(q).Bin > m.grid.Point(p).Bin+1 {
					break
				}
				continue
			}
			for a := range m.lm {
				pairs = append(pairs, Pair{I: m.Global(p, a), J: m.Global(q, a)})
			}
		}
	}
	sortPairs(pairs)
	return pairs
}

// PotentialPairs lists every channel pair at the same radial point. The
// potential is local in r so other pairs vanish.
func (m *Map) PotentialPairs() []Pair {
	na := len(m.lm)
	pairs := make([]Pair, 0, m.grid.Len()*na*(na+1)/2)
	for p := 0; p < m.grid.Len(); p++ {
		pairs = append(pairs, m.PointPairs(p)...)
	}
	sortPairs(pairs)
	return pairs
}

// PointPairs lists the channel pairs at radial point p.
func (m *Map) PointPairs(p int) []Pair {
	na := len(m.lm)
	pairs := make([]Pair, 0, na*(na+1)/2)
	for a1 := 0; a1 < na; a1++ {
		for a2 := a1; a2 < na; a2++ {
			pairs = append(pairs, Pair{I: m.Global(p, a1), J: m.Global(p, a2)})
		}
	}
	return pairs
}

func sortPairs(pairs []Pair) {
	slices.SortFunc(pairs, func(a, b Pair) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
}
