package metrics

import (
	"github.com/san-kum/femdvr/internal/sphquad"
)

// Fill is the fraction of stored Hamiltonian entries that are nonzero.
type Fill struct {
	value float64
}

func NewFill() *Fill { return &Fill{} }

func (f *Fill) Name() string { return "fill" }

func (f *Fill) Observe(s *Snapshot) {
	if s.Hamiltonian == nil {
		return
	}
	n := s.Hamiltonian.Dim()
	if n == 0 {
		return
	}
	f.value = float64(s.Hamiltonian.NNZ()) / float64(n*n)
}

func (f *Fill) Value() float64 { return f.value }
func (f *Fill) Reset()         { f.value = 0 }

// Unconverged is the fraction of radial points whose quadrature search
// ran out of schemes.
type Unconverged struct {
	bad, total int
}

func NewUnconverged() *Unconverged { return &Unconverged{} }

func (u *Unconverged) Name() string { return "unconverged_fraction" }

func (u *Unconverged) Observe(s *Snapshot) {
	if s.Quadrature == nil {
		return
	}
	u.bad += len(s.Quadrature.Unconverged())
	u.total += len(s.Quadrature.Levels)
}

func (u *Unconverged) Value() float64 {
	if u.total == 0 {
		return 0
	}
	return float64(u.bad) / float64(u.total)
}

func (u *Unconverged) Reset() { u.bad, u.total = 0, 0 }

// AngularPoints is the mean number of angular nodes per radial point,
// which is what potential assembly pays for.
type AngularPoints struct {
	sum, count int
}

func NewAngularPoints() *AngularPoints { return &AngularPoints{} }

func (a *AngularPoints) Name() string { return "mean_angular_points" }

func (a *AngularPoints) Observe(s *Snapshot) {
	if s.Quadrature == nil {
		return
	}
	for _, lv := range s.Quadrature.Levels {
		sch, err := sphquad.Lookup(lv.Scheme)
		if err != nil {
			continue
		}
		a.sum += sch.Len()
		a.count++
	}
}

func (a *AngularPoints) Value() float64 {
	if a.count == 0 {
		return 0
	}
	return float64(a.sum) / float64(a.count)
}

func (a *AngularPoints) Reset() { a.sum, a.count = 0, 0 }
