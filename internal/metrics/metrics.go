// Package metrics scores a finished run: spectral accuracy against a
// reference, Hamiltonian fill and angular quadrature effort.
package metrics

import (
	"github.com/san-kum/femdvr/internal/hamiltonian"
	"github.com/san-kum/femdvr/internal/quadsel"
)

// Snapshot is what a metric observes once the eigenproblem is solved.
type Snapshot struct {
	Energies    []float64
	Hamiltonian hamiltonian.Matrix
	Quadrature  *quadsel.Result
}

type Metric interface {
	Name() string
	Observe(s *Snapshot)
	Value() float64
	Reset()
}

// Evaluate observes s with every metric and collects their values by name.
func Evaluate(ms []Metric, s *Snapshot) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		m.Observe(s)
		out[m.Name()] = m.Value()
	}
	return out
}
