package metrics

import (
	"math"

	"github.com/san-kum/femdvr/internal/eigen"
)

// HydrogenLevel is the exact bound-state energy -Z²/(2n²).
func HydrogenLevel(z float64, n int) float64 {
	return -z * z / (2 * float64(n*n))
}

// GroundError is |E0 - reference|.
type GroundError struct {
	name      string
	reference float64
	value     float64
	seen      bool
}

func NewGroundError(reference float64) *GroundError {
	return &GroundError{name: "ground_error", reference: reference}
}

func (g *GroundError) Name() string { return g.name }

func (g *GroundError) Observe(s *Snapshot) {
	if len(s.Energies) == 0 {
		return
	}
	g.value = math.Abs(s.Energies[0] - g.reference)
	g.seen = true
}

func (g *GroundError) Value() float64 {
	if !g.seen {
		return math.Inf(1)
	}
	return g.value
}

func (g *GroundError) Reset() {
	g.value = 0
	g.seen = false
}

// LevelError is the largest deviation of the first count distinct levels
// from reference(n), n starting at 1. Levels closer than tol are merged.
type LevelError struct {
	name      string
	count     int
	tol       float64
	reference func(n int) float64
	maxErr    float64
	levels    int
}

func NewLevelError(count int, tol float64, reference func(n int) float64) *LevelError {
	return &LevelError{name: "level_error", count: count, tol: tol, reference: reference}
}

func NewHydrogenLevelError(z float64, count int) *LevelError {
	return NewLevelError(count, 1e-4, func(n int) float64 { return HydrogenLevel(z, n) })
}

func (l *LevelError) Name() string { return l.name }

func (l *LevelError) Observe(s *Snapshot) {
	var bound []float64
	for _, e := range s.Energies {
		if e < 0 {
			bound = append(bound, e)
		}
	}
	levels := eigen.Levels(bound, l.tol)
	for i := 0; i < len(levels) && i < l.count; i++ {
		l.maxErr = math.Max(l.maxErr, math.Abs(levels[i].Energy-l.reference(i+1)))
		l.levels++
	}
}

// Value is +Inf when fewer than count levels were found.
func (l *LevelError) Value() float64 {
	if l.levels < l.count {
		return math.Inf(1)
	}
	return l.maxErr
}

func (l *LevelError) Reset() {
	l.maxErr = 0
	l.levels = 0
}
