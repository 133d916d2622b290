package dvr

import (
	"errors"
	"math"
	"testing"
)

func TestGaussLobatto_Known(t *testing.T) {
	tests := []struct {
		n int
		x []float64
		w []float64
	}{
		{3, []float64{-1, 0, 1}, []float64{1.0 / 3, 4.0 / 3, 1.0 / 3}},
		{4, []float64{-1, -1 / math.Sqrt(5), 1 / math.Sqrt(5), 1}, []float64{1.0 / 6, 5.0 / 6, 5.0 / 6, 1.0 / 6}},
		{5, []float64{-1, -math.Sqrt(3.0 / 7), 0, math.Sqrt(3.0 / 7), 1}, []float64{0.1, 49.0 / 90, 32.0 / 45, 49.0 / 90, 0.1}},
	}

	for _, tt := range tests {
		x, w, err := GaussLobatto(tt.n)
		if err != nil {
			t.Fatalf("n=%d: %v", tt.n, err)
		}
		for i := range tt.x {
			if math.Abs(x[i]-tt.x[i]) > 1e-12 {
				t.Errorf("n=%d x[%d]: expected %.15f, got %.15f", tt.n, i, tt.x[i], x[i])
			}
			if math.Abs(w[i]-tt.w[i]) > 1e-12 {
				t.Errorf("n=%d w[%d]: expected %.15f, got %.15f", tt.n, i, tt.w[i], w[i])
			}
		}
	}
}

func TestGaussLobatto_Exactness(t *testing.T) {
	for n := 3; n <= 20; n++ {
		x, w, err := GaussLobatto(n)
		if err != nil {
			t.Fatal(err)
		}
		// exact for polynomials up to degree 2n-3
		for deg := 0; deg <= 2*n-3; deg++ {
			var sum float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(deg))
			}
			expected := 0.0
			if deg%2 == 0 {
				expected = 2.0 / float64(deg+1)
			}
			if math.Abs(sum-expected) > 1e-11 {
				t.Errorf("n=%d deg=%d: expected %.12f, got %.12f", n, deg, expected, sum)
			}
		}
	}
}

func TestGaussLobatto_TooFew(t *testing.T) {
	if _, _, err := GaussLobatto(2); !errors.Is(err, ErrNodes) {
		t.Errorf("expected ErrNodes, got %v", err)
	}
}

func TestLagrangeDerivative(t *testing.T) {
	x, _, _ := GaussLobatto(6)
	d := DerivativeTable(x)

	// derivatives of the cardinal functions sum to zero at every node
	for k := range x {
		var sum float64
		for a := range x {
			sum += d[a][k]
		}
		if math.Abs(sum) > 1e-10 {
			t.Errorf("node %d: derivative sum %.3e", k, sum)
		}
	}

	// sum_a x_a^2 f'_a(x_k) reproduces d/dx x^2 = 2x
	for k := range x {
		var sum float64
		for a := range x {
			sum += x[a] * x[a] * d[a][k]
		}
		if math.Abs(sum-2*x[k]) > 1e-10 {
			t.Errorf("node %d: expected %.10f, got %.10f", k, 2*x[k], sum)
		}
	}
}

func TestGrid_Points(t *testing.T) {
	g, err := NewGrid(5, 4, 2.0, 0.5)
	if err != nil {
		t.Fatal(err)
	}

	pts := g.Points()
	if len(pts) != 4*4-1 {
		t.Fatalf("expected 15 points, got %d", len(pts))
	}
	if pts[0].Bin != 0 || pts[0].Node != 1 {
		t.Errorf("first point should be (0,1), got (%d,%d)", pts[0].Bin, pts[0].Node)
	}
	for i := 1; i < len(pts); i++ {
		if pts[i].R <= pts[i-1].R {
			t.Errorf("radii not increasing at %d", i)
		}
		if pts[i].Index != i {
			t.Errorf("index mismatch at %d", i)
		}
	}
	last := pts[len(pts)-1]
	if last.R >= g.Extent() {
		t.Errorf("last point %.3f should lie inside extent %.3f", last.R, g.Extent())
	}
}

func TestGrid_BridgeShared(t *testing.T) {
	g, _ := NewGrid(6, 3, 4.0, 0.0)
	for i := 1; i < g.Bins(); i++ {
		if math.Abs(g.Coord(i-1, g.Nodes()-1)-g.Coord(i, 0)) > 1e-12 {
			t.Errorf("bin %d: bridge radius mismatch", i)
		}
		if g.PointIndex(i-1, g.Nodes()-1) != g.PointIndex(i, 0) {
			t.Errorf("bin %d: bridge index mismatch", i)
		}
	}
	if g.PointIndex(0, 0) != -1 {
		t.Error("origin node should not be a radial point")
	}
	if g.PointIndex(g.Bins()-1, g.Nodes()-1) != -1 {
		t.Error("outer boundary node should not be a radial point")
	}
	for _, p := range g.Points() {
		if got := g.PointIndex(p.Bin, p.Node); got != p.Index {
			t.Errorf("(%d,%d): expected %d, got %d", p.Bin, p.Node, p.Index, got)
		}
	}
}

func TestGrid_WeightsCopied(t *testing.T) {
	g, _ := NewGrid(4, 2, 1.0, 0.0)
	w := g.Weights()
	w[0] = 100
	if g.Weights()[0] == 100 {
		t.Error("Weights must return a copy")
	}
}

func TestNewGrid_Invalid(t *testing.T) {
	if _, err := NewGrid(5, 0, 1.0, 0.0); !errors.Is(err, ErrGeometry) {
		t.Errorf("expected ErrGeometry, got %v", err)
	}
	if _, err := NewGrid(2, 3, 1.0, 0.0); !errors.Is(err, ErrNodes) {
		t.Errorf("expected ErrNodes, got %v", err)
	}
}
