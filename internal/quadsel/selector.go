// Package quadsel chooses, per radial point, the coarsest spherical
// quadrature scheme that converges the potential matrix over all (l,m)
// channel pairs, and persists the choice as a levels file.
//
// The search at a point starts after the coarsest schemes, compares each
// candidate's channel matrix against the previous candidate (zeros before
// the first) and accepts the first one whose every entry moved by less
// than the tolerance. Points at or beyond the cutoff radius take a fixed
// minimal scheme. A point that exhausts the family keeps the finest
// scheme and is reported as unconverged; it does not stop the batch.
package quadsel

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
	"github.com/san-kum/femdvr/internal/logging"
	"github.com/san-kum/femdvr/internal/parallel"
	"github.com/san-kum/femdvr/internal/sphquad"
)

// Kernel evaluates the channel potential matrix at one radius.
type Kernel interface {
	AngularMatrix(r float64, s *sphquad.Scheme) (*mat.SymDense, error)
}

type Status int

const (
	Converged Status = iota
	Unconverged
	Cutoff
	Fixed
	Cached
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case Unconverged:
		return "unconverged"
	case Cutoff:
		return "cutoff"
	case Fixed:
		return "fixed"
	case Cached:
		return "cached"
	default:
		return "unknown"
	}
}

// Report describes how the scheme of one point was chosen.
type Report struct {
	Level
	R       float64
	Status  Status
	MaxDiff float64
	Tried   int
}

type Result struct {
	Levels  []Level
	Reports []Report
}

// Unconverged returns the reports of points that ran out of schemes.
func (r *Result) Unconverged() []Report {
	var out []Report
	for _, rep := range r.Reports {
		if rep.Status == Unconverged {
			out = append(out, rep)
		}
	}
	return out
}

// Schemes resolves the scheme of every level.
func (r *Result) Schemes() ([]*sphquad.Scheme, error) {
	out := make([]*sphquad.Scheme, len(r.Levels))
	memo := make(map[string]*sphquad.Scheme)
	for i, l := range r.Levels {
		s, ok := memo[l.Scheme]
		if !ok {
			var err error
			s, err = sphquad.Lookup(l.Scheme)
			if err != nil {
				return nil, fmt.Errorf("quadsel: level %d: %w", l.Index, err)
			}
			memo[l.Scheme] = s
		}
		out[i] = s
	}
	return out, nil
}

// Histogram counts points per scheme id.
func (r *Result) Histogram() map[string]int {
	h := make(map[string]int)
	for _, l := range r.Levels {
		h[l.Scheme]++
	}
	return h
}

type Selector struct {
	grid    *dvr.Grid
	lmax    int
	kernel  Kernel
	family  *sphquad.Family
	params  config.QuadratureParams
	workers int
	log     logrus.FieldLogger
}

func NewSelector(bmap *basis.Map, kernel Kernel, family *sphquad.Family, params config.QuadratureParams, workers int, log logrus.FieldLogger) *Selector {
	return &Selector{
		grid:    bmap.Grid(),
		lmax:    bmap.Lmax(),
		kernel:  kernel,
		family:  family,
		params:  params,
		workers: workers,
		log:     logging.OrDiscard(log),
	}
}

func (s *Selector) Family() *sphquad.Family { return s.family }

// Select runs the adaptive search for every radial point in parallel and
// merges the reports by point index.
func (s *Selector) Select(ctx context.Context) (*Result, error) {
	n := s.grid.Len()
	reports := make([]Report, n)
	err := parallel.Each(ctx, n, s.workers, func(ctx context.Context, p int) error {
		rep, err := s.SelectPoint(ctx, p)
		if err != nil {
			return err
		}
		reports[p] = rep
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &Result{Levels: make([]Level, n), Reports: reports}
	for i, rep := range reports {
		res.Levels[i] = rep.Level
	}

	bad := res.Unconverged()
	if len(bad) > 0 {
		s.log.WithFields(logrus.Fields{
			"unconverged": len(bad),
			"points":      n,
			"tolerance":   s.params.Tolerance,
		}).Warn("angular quadrature search incomplete")
		if s.params.RequireConvergence {
			rep := bad[0]
			return res, &PointError{
				Point: rep.Index, Bin: rep.Bin, Node: rep.Node, R: rep.R,
				Scheme: rep.Scheme, MaxDiff: rep.MaxDiff, Wrapped: ErrUnconverged,
			}
		}
	}
	return res, nil
}

// SelectPoint searches the family for radial point p.
func (s *Selector) SelectPoint(ctx context.Context, p int) (Report, error) {
	pt := s.grid.Point(p)
	rep := Report{
		Level: Level{Bin: pt.Bin, Node: pt.Node, Index: pt.Index},
		R:     pt.R,
	}

	if pt.R >= s.params.Cutoff {
		rep.Scheme = s.family.Minimal(s.lmax).ID()
		rep.Status = Cutoff
		return rep, nil
	}

	na := (s.lmax + 1) * (s.lmax + 1)
	prev := mat.NewSymDense(na, nil)
	start := s.family.Start(s.params.Skip)
	for i := start; i < s.family.Len(); i++ {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		scheme := s.family.At(i)
		cur, err := s.kernel.AngularMatrix(pt.R, scheme)
		if err != nil {
			return rep, &PointError{Point: p, Bin: pt.Bin, Node: pt.Node, R: pt.R, Scheme: scheme.ID(), Wrapped: err}
		}
		rep.Tried++
		rep.Scheme = scheme.ID()
		rep.MaxDiff = maxAbsDiff(cur, prev)
		if rep.MaxDiff < s.params.Tolerance {
			rep.Status = Converged
			return rep, nil
		}
		prev = cur
	}

	rep.Status = Unconverged
	s.log.WithFields(logrus.Fields{
		"point":     p,
		"bin":       pt.Bin,
		"node":      pt.Node,
		"r":         pt.R,
		"scheme":    rep.Scheme,
		"tolerance": s.params.Tolerance,
		"max_diff":  rep.MaxDiff,
	}).Warn("angular quadrature not converged, using finest scheme")
	return rep, nil
}

// Fixed assigns one scheme to every radial point.
func (s *Selector) Fixed(id string) (*Result, error) {
	if _, err := sphquad.Lookup(id); err != nil {
		return nil, fmt.Errorf("quadsel: %w", err)
	}
	res := &Result{
		Levels:  make([]Level, s.grid.Len()),
		Reports: make([]Report, s.grid.Len()),
	}
	for i, pt := range s.grid.Points() {
		lv := Level{Bin: pt.Bin, Node: pt.Node, Index: pt.Index, Scheme: id}
		res.Levels[i] = lv
		res.Reports[i] = Report{Level: lv, R: pt.R, Status: Fixed}
	}
	return res, nil
}

// Check verifies that levels were written for this grid.
func (s *Selector) Check(levels []Level) error {
	if len(levels) != s.grid.Len() {
		return fmt.Errorf("%w: %d levels for %d radial points", ErrMismatch, len(levels), s.grid.Len())
	}
	for i, l := range levels {
		pt := s.grid.Point(i)
		if l.Bin != pt.Bin || l.Node != pt.Node || l.Index != pt.Index {
			return fmt.Errorf("%w: level %d is (%d,%d,%d), grid has (%d,%d,%d)",
				ErrMismatch, i, l.Bin, l.Node, l.Index, pt.Bin, pt.Node, pt.Index)
		}
	}
	return nil
}

func maxAbsDiff(a, b *mat.SymDense) float64 {
	n := a.SymmetricDim()
	var worst float64
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			worst = math.Max(worst, math.Abs(a.At(i, j)-b.At(i, j)))
		}
	}
	return worst
}
