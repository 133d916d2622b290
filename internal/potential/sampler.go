package potential

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/femdvr/internal/sphquad"
)

// Sampler returns V at every node of s placed on the shell of radius r.
// Key identifies the field and every sampling setting that changes the
// returned values. Implementations are safe for concurrent use.
type Sampler interface {
	Name() string
	Key() string
	Sample(r float64, s *sphquad.Scheme) ([]float64, error)
}

// Exact evaluates the field at every node.
type Exact struct {
	field Field
}

func NewExact(f Field) *Exact { return &Exact{field: f} }

func (e *Exact) Name() string { return e.field.Name() }
func (e *Exact) Key() string  { return "exact|" + e.field.Key() }

func (e *Exact) Sample(r float64, s *sphquad.Scheme) ([]float64, error) {
	out := make([]float64, s.Len())
	for i := range out {
		n := s.Node(i)
		out[i] = e.field.At(r*n.X, r*n.Y, r*n.Z)
	}
	return out, nil
}

// Interpolated fits an Akima spline of r*V(r) along every node direction
// of a scheme, on first use of that scheme. Radii outside the knot range
// fall back to exact evaluation.
type Interpolated struct {
	field Field
	knots []float64

	mu      sync.Mutex
	schemes map[string]*directional
}

type directional struct {
	once    sync.Once
	splines []interp.AkimaSpline
}

func NewInterpolated(f Field, rmin, rmax float64, knots int) (*Interpolated, error) {
	if !(rmax > rmin) || rmin <= 0 || knots < 4 {
		return nil, ErrRange
	}
	ks := make([]float64, knots)
	h := (rmax - rmin) / float64(knots-1)
	for i := range ks {
		ks[i] = rmin + h*float64(i)
	}
	ks[knots-1] = rmax
	return &Interpolated{field: f, knots: ks, schemes: make(map[string]*directional)}, nil
}

func (p *Interpolated) Name() string { return p.field.Name() + "_interp" }

func (p *Interpolated) Key() string {
	return fmt.Sprintf("interp knots=%d r=[%s,%s]|%s",
		len(p.knots), fmtFloat(p.knots[0]), fmtFloat(p.knots[len(p.knots)-1]), p.field.Key())
}

func (p *Interpolated) Sample(r float64, s *sphquad.Scheme) ([]float64, error) {
	lo, hi := p.knots[0], p.knots[len(p.knots)-1]
	if r < lo || r > hi || r == 0 {
		return NewExact(p.field).Sample(r, s)
	}

	d := p.directions(s)
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = d.splines[i].Predict(r) / r
	}
	return out, nil
}

func (p *Interpolated) directions(s *sphquad.Scheme) *directional {
	p.mu.Lock()
	d, ok := p.schemes[s.ID()]
	if !ok {
		d = &directional{}
		p.schemes[s.ID()] = d
	}
	p.mu.Unlock()

	d.once.Do(func() {
		d.splines = make([]interp.AkimaSpline, s.Len())
		ys := make([]float64, len(p.knots))
		for i := range d.splines {
			n := s.Node(i)
			for k, r := range p.knots {
				ys[k] = r * p.field.At(r*n.X, r*n.Y, r*n.Z)
			}
			d.splines[i].Fit(p.knots, ys)
		}
	})
	return d
}

// MaxError reports the largest deviation of the interpolated samples from
// the exact field on scheme s at the given radii.
func (p *Interpolated) MaxError(s *sphquad.Scheme, radii []float64) float64 {
	exact := NewExact(p.field)
	var worst float64
	for _, r := range radii {
		a, _ := p.Sample(r, s)
		b, _ := exact.Sample(r, s)
		for i := range a {
			worst = math.Max(worst, math.Abs(a[i]-b[i]))
		}
	}
	return worst
}
