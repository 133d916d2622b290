package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/quadsel"
)

func TestLevelDiagram_Save(t *testing.T) {
	levels := eigen.Levels([]float64{-0.5, -0.125, -0.125, -0.125, -0.125, -0.0556}, 1e-6)
	p, err := LevelDiagram("hydrogen", levels, []float64{-0.5, -0.125, -0.5 / 9})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"levels.png", "levels.svg"} {
		path := filepath.Join(dir, name)
		if err := Save(p, path); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Size() == 0 {
			t.Errorf("%s is empty", name)
		}
	}
}

func TestSave_UnknownFormat(t *testing.T) {
	p, err := Spectrum("s", []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if err := Save(p, filepath.Join(t.TempDir(), "x.bmp")); !errors.Is(err, ErrFormat) {
		t.Errorf("expected ErrFormat, got %v", err)
	}
}

func TestWriteTo_SVG(t *testing.T) {
	p, err := Spectrum("spectrum", []float64{-0.5, -0.125})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteTo(p, &buf, "svg"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("output is not svg")
	}
}

func TestQuadratureOrder(t *testing.T) {
	levels := []quadsel.Level{
		{Index: 1, Scheme: "lebedev_009"},
		{Index: 0, Scheme: "lebedev_005"},
	}
	if _, err := QuadratureOrder("order", levels, []float64{0.5, 1.0}); err != nil {
		t.Fatal(err)
	}
	if _, err := QuadratureOrder("order", levels, []float64{0.5}); err == nil {
		t.Error("expected error for index outside radii")
	}
	bad := []quadsel.Level{{Index: 0, Scheme: "nope_001"}}
	if _, err := QuadratureOrder("order", bad, []float64{0.5}); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
