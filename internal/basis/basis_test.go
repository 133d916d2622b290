package basis

import (
	"testing"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
)

func newTestMap(t *testing.T, nodes, bins, lmax int, variant config.MapVariant) *Map {
	t.Helper()
	g, err := dvr.NewGrid(nodes, bins, 2.0, 0.0)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMap(g, lmax, variant)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestMap_Size(t *testing.T) {
	tests := []struct {
		nodes, bins, lmax int
	}{
		{5, 4, 2},
		{10, 8, 3},
		{3, 1, 0},
	}

	for _, tt := range tests {
		m := newTestMap(t, tt.nodes, tt.bins, tt.lmax, config.MapRadialMajor)
		expected := (tt.bins*(tt.nodes-1) - 1) * (tt.lmax + 1) * (tt.lmax + 1)
		if m.Len() != expected {
			t.Errorf("nodes=%d bins=%d lmax=%d: expected %d, got %d", tt.nodes, tt.bins, tt.lmax, expected, m.Len())
		}

		// every bin has nodes points; two boundary nodes and bins-1 bridges are removed
		raw := tt.bins * tt.nodes
		if m.RadialLen() != raw-2-(tt.bins-1) {
			t.Errorf("bridge collapsing: expected %d radial points, got %d", raw-2-(tt.bins-1), m.RadialLen())
		}
	}
}

func TestMap_Channels(t *testing.T) {
	m := newTestMap(t, 4, 2, 2, config.MapRadialMajor)
	for a, ch := range m.Channels() {
		if AngularIndex(ch.L, ch.M) != a {
			t.Errorf("channel %d (%d,%d): index mismatch", a, ch.L, ch.M)
		}
		if ch.M < -ch.L || ch.M > ch.L {
			t.Errorf("invalid channel (%d,%d)", ch.L, ch.M)
		}
	}
}

func TestMap_Variants(t *testing.T) {
	for _, v := range []config.MapVariant{config.MapRadialMajor, config.MapAngularMajor} {
		m := newTestMap(t, 5, 3, 2, v)
		seen := make(map[int]bool)
		for i, f := range m.Functions() {
			if f.Index != i {
				t.Errorf("%v: function %d has index %d", v, i, f.Index)
			}
			if m.Global(f.Point, f.Angular) != i {
				t.Errorf("%v: Global(%d,%d) != %d", v, f.Point, f.Angular, i)
			}
			seen[i] = true
		}
		if len(seen) != m.Len() {
			t.Errorf("%v: expected %d distinct indices, got %d", v, m.Len(), len(seen))
		}
	}

	m := newTestMap(t, 5, 3, 1, config.MapAngularMajor)
	if f := m.Function(1); f.Angular != 0 || f.Point != 1 {
		t.Errorf("angular-major should run the radial index fastest, got %+v", f)
	}
}

func TestMap_KineticPairs(t *testing.T) {
	m := newTestMap(t, 4, 3, 1, config.MapRadialMajor)
	for _, p := range m.KineticPairs() {
		a, b := m.Function(p.I), m.Function(p.J)
		if p.I > p.J {
			t.Errorf("pair (%d,%d) not upper triangle", p.I, p.J)
		}
		if a.L != b.L || a.M != b.M {
			t.Errorf("pair (%d,%d) crosses channels", p.I, p.J)
		}
		if !m.RadialCoupled(a.Point, b.Point) {
			t.Errorf("pair (%d,%d) has uncoupled radial points", p.I, p.J)
		}
	}
}

func TestMap_RadialCoupled(t *testing.T) {
	m := newTestMap(t, 4, 3, 0, config.MapRadialMajor)
	g := m.Grid()
	bridge1 := g.PointIndex(1, 0)
	bridge2 := g.PointIndex(2, 0)

	tests := []struct {
		name string
		p, q int
		want bool
	}{
		{"same bin interior", g.PointIndex(0, 1), g.PointIndex(0, 2), true},
		{"interior of left bin with bridge", g.PointIndex(0, 1), bridge1, true},
		{"interior of right bin with bridge", g.PointIndex(1, 2), bridge1, true},
		{"adjacent bridges", bridge1, bridge2, true},
		{"different bins interior", g.PointIndex(0, 1), g.PointIndex(1, 1), false},
		{"far bridge", g.PointIndex(0, 2), bridge2, false},
	}

	for _, tt := range tests {
		if got := m.RadialCoupled(tt.p, tt.q); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestMap_PotentialPairs(t *testing.T) {
	m := newTestMap(t, 4, 2, 2, config.MapAngularMajor)
	pairs := m.PotentialPairs()
	na := m.AngularLen()
	expected := m.RadialLen() * na * (na + 1) / 2
	if len(pairs) != expected {
		t.Fatalf("expected %d pairs, got %d", expected, len(pairs))
	}
	for i, p := range pairs {
		if m.Function(p.I).Point != m.Function(p.J).Point {
			t.Errorf("pair (%d,%d) spans radial points", p.I, p.J)
		}
		if i > 0 && (pairs[i-1].I > p.I || (pairs[i-1].I == p.I && pairs[i-1].J >= p.J)) {
			t.Errorf("pairs not sorted at %d", i)
		}
	}
}

func TestNewMap_LmaxGuard(t *testing.T) {
	g, _ := dvr.NewGrid(4, 2, 1.0, 0.0)
	if _, err := NewMap(g, config.MaxLmax+1, config.MapRadialMajor); err == nil {
		t.Error("expected error for lmax above the factorial table")
	}
}
