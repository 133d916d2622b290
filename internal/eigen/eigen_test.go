package eigen

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSolve_Tridiagonal(t *testing.T) {
	n := 8
	a := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetSym(i, i, 2)
		if i+1 < n {
			a.SetSym(i, i+1, -1)
		}
	}

	res, err := Solve(a, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k <= n; k++ {
		want := 2 - 2*math.Cos(float64(k)*math.Pi/float64(n+1))
		if math.Abs(res.Values[k-1]-want) > 1e-12 {
			t.Errorf("eigenvalue %d: expected %.12f, got %.12f", k, want, res.Values[k-1])
		}
	}

	// A v = lambda v for every column
	for k := 0; k < n; k++ {
		v := mat.NewVecDense(n, res.Vector(k))
		var av mat.VecDense
		av.MulVec(a, v)
		for i := 0; i < n; i++ {
			if math.Abs(av.AtVec(i)-res.Values[k]*v.AtVec(i)) > 1e-12 {
				t.Fatalf("column %d does not match eigenvalue %d", k, k)
			}
		}
	}
}

func TestSolve_Ascending(t *testing.T) {
	a := mat.NewSymDense(3, []float64{
		5, 0, 0,
		0, -1, 0,
		0, 0, 2,
	})
	res, err := Solve(a, 1e-10)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{-1, 2, 5}
	for i, v := range expected {
		if math.Abs(res.Values[i]-v) > 1e-14 {
			t.Errorf("value %d: expected %g, got %g", i, v, res.Values[i])
		}
	}
}

func TestCheckNorms(t *testing.T) {
	good := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if err := CheckNorms(good, 1e-12); err != nil {
		t.Errorf("identity: %v", err)
	}

	bad := mat.NewDense(2, 2, []float64{1, 0, 0, 1.1})
	err := CheckNorms(bad, 1e-8)
	if !errors.Is(err, ErrNorm) {
		t.Fatalf("expected ErrNorm, got %v", err)
	}
	var ne *NormError
	if !errors.As(err, &ne) || ne.Index != 1 {
		t.Errorf("expected NormError for column 1, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	a := mat.NewSymDense(4, []float64{
		4, 1, 0, 0,
		1, 3, 0, 0,
		0, 0, 2, 0,
		0, 0, 0, 1,
	})
	res, _ := Solve(a, 1e-10)
	tr := res.Truncate(2)
	if len(tr.Values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(tr.Values))
	}
	r, c := tr.Vectors.Dims()
	if r != 4 || c != 2 {
		t.Errorf("expected 4x2 vectors, got %dx%d", r, c)
	}
	for k := 0; k < 2; k++ {
		if tr.Vectors.At(0, k) != res.Vectors.At(0, k) {
			t.Errorf("column %d changed by truncation", k)
		}
	}
	if res.Truncate(10) != res {
		t.Error("truncating beyond the dimension should keep everything")
	}
}

func TestLevels(t *testing.T) {
	values := []float64{-0.5, -0.125, -0.125 + 1e-9, -0.125, -0.125, 0.3}
	levels := Levels(values, 1e-6)
	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(levels))
	}
	if levels[1].Degeneracy != 4 || levels[1].FirstIndex != 1 {
		t.Errorf("unexpected level %+v", levels[1])
	}
}
