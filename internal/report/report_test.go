package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/storage"
)

func TestSummary(t *testing.T) {
	meta := &storage.RunMetadata{
		ID: "hydrogen_1", Potential: "coulomb", Nodes: 10, Bins: 10, BinWidth: 4,
		Unconverged: 2, Energies: []float64{-0.5},
		Metrics: map[string]float64{"assemble_s": 0.25},
	}
	out := Summary(meta)
	for _, want := range []string{"hydrogen_1", "coulomb", "2 points", "-0.5000000000", "assemble_s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestLevelsTable(t *testing.T) {
	levels := eigen.Levels([]float64{-0.5, -0.125, -0.125, -0.125, -0.125}, 1e-6)
	var buf bytes.Buffer
	err := LevelsTable(&buf, levels, func(n int) float64 { return -0.5 / float64(n*n) })
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 levels, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], " 4 ") {
		t.Errorf("second level should have degeneracy 4: %q", lines[2])
	}
}

func TestSchemesTable(t *testing.T) {
	var buf bytes.Buffer
	if err := SchemesTable(&buf, map[string]int{"lebedev_017": 1, "lebedev_005": 3}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if strings.Index(out, "lebedev_005") > strings.Index(out, "lebedev_017") {
		t.Errorf("schemes should be ordered by degree:\n%s", out)
	}
}

func TestPlots(t *testing.T) {
	if out := SpectrumPlot([]float64{-0.5, -0.125, -0.05}, 30, 5); !strings.Contains(out, "energy") {
		t.Errorf("missing caption:\n%s", out)
	}
	if out := SpectrumPlot([]float64{-0.5}, 30, 5); out == "" {
		t.Error("single value should still plot")
	}

	levels := []quadsel.Level{{Index: 1, Scheme: "lebedev_009"}, {Index: 0, Scheme: "lebedev_005"}}
	if out := OrderPlot(levels, 30, 5); !strings.Contains(out, "degree") {
		t.Errorf("missing caption:\n%s", out)
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 4); !strings.Contains(got, "────") {
		t.Errorf("empty sparkline = %q", got)
	}
	if got := Sparkline([]float64{0, 1}, 2); !strings.ContainsRune(got, '█') {
		t.Errorf("max value should render full block: %q", got)
	}
}
