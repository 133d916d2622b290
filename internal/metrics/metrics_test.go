package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/hamiltonian"
	"github.com/san-kum/femdvr/internal/quadsel"
)

func TestHydrogenLevel(t *testing.T) {
	if got := HydrogenLevel(1, 1); got != -0.5 {
		t.Errorf("E1 = %f", got)
	}
	if got := HydrogenLevel(2, 2); got != -0.5 {
		t.Errorf("He+ E2 = %f", got)
	}
}

func TestGroundError(t *testing.T) {
	m := NewGroundError(-0.5)
	if !math.IsInf(m.Value(), 1) {
		t.Error("unobserved metric should be +Inf")
	}
	m.Observe(&Snapshot{Energies: []float64{-0.4999, 0.1}})
	if math.Abs(m.Value()-1e-4) > 1e-12 {
		t.Errorf("ground error = %g", m.Value())
	}
	m.Reset()
	if !math.IsInf(m.Value(), 1) {
		t.Error("reset should clear the value")
	}
}

func TestLevelError(t *testing.T) {
	energies := []float64{-0.5, -0.12501, -0.125, -0.125, -0.12499, -0.0555, 0.3}
	m := NewHydrogenLevelError(1, 3)
	m.Observe(&Snapshot{Energies: energies})
	want := math.Abs(-0.0555 - HydrogenLevel(1, 3))
	if math.Abs(m.Value()-want) > 1e-9 {
		t.Errorf("level error = %g, want %g", m.Value(), want)
	}

	short := NewHydrogenLevelError(1, 4)
	short.Observe(&Snapshot{Energies: energies})
	if !math.IsInf(short.Value(), 1) {
		t.Error("missing levels should give +Inf")
	}
}

func TestEvaluate(t *testing.T) {
	h, _, err := hamiltonian.Build(2, config.FormatCSR, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	q := &quadsel.Result{
		Levels: []quadsel.Level{{Scheme: "lebedev_003"}, {Scheme: "lebedev_005"}},
		Reports: []quadsel.Report{
			{Level: quadsel.Level{Scheme: "lebedev_003"}, Status: quadsel.Converged},
			{Level: quadsel.Level{Scheme: "lebedev_005"}, Status: quadsel.Unconverged},
		},
	}
	got := Evaluate([]Metric{NewFill(), NewUnconverged(), NewAngularPoints()}, &Snapshot{Hamiltonian: h, Quadrature: q})

	if got["fill"] != 0 {
		t.Errorf("empty matrix fill = %g", got["fill"])
	}
	if got["unconverged_fraction"] != 0.5 {
		t.Errorf("unconverged = %g", got["unconverged_fraction"])
	}
	if got["mean_angular_points"] != 10 {
		t.Errorf("mean points = %g, want (6+14)/2", got["mean_angular_points"])
	}
}
