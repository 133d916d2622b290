package sphquad

import (
	"fmt"
	"math"
)

const lebedevPrefix = "lebedev_"

type orbit struct {
	code int
	a    float64
	v    float64
}

// Octahedral orbits of the Lebedev-Laikov rules up to degree 17.
var lebedevTable = []struct {
	degree int
	orbits []orbit
}{
	{3, []orbit{{1, 0, 0.1666666666666667}}},
	{5, []orbit{{1, 0, 0.6666666666666667e-1}, {3, 0, 0.75e-1}}},
	{7, []orbit{
		{1, 0, 0.4761904761904762e-1},
		{2, 0, 0.3809523809523810e-1},
		{3, 0, 0.3214285714285714e-1},
	}},
	{9, []orbit{
		{1, 0, 0.9523809523809524e-2},
		{3, 0, 0.3214285714285714e-1},
		{5, 0.4597008433809831, 0.2857142857142857e-1},
	}},
	{11, []orbit{
		{1, 0, 0.1269841269841270e-1},
		{2, 0, 0.2257495590828924e-1},
		{3, 0, 0.2109375e-1},
		{4, 0.3015113445777636, 0.2017333553791887e-1},
	}},
	{13, []orbit{
		{1, 0, 0.5130671797338464e-3},
		{2, 0, 0.1660406956574204e-1},
		{3, 0, -0.2958603896103896e-1},
		{4, 0.4803844614152614, 0.2657620708215946e-1},
		{5, 0.3207726489807764, 0.1652217099371571e-1},
	}},
	{15, []orbit{
		{1, 0, 0.1154401154401154e-1},
		{3, 0, 0.1194390908585628e-1},
		{4, 0.3696028464541502, 0.1111055571060340e-1},
		{4, 0.6943540066026664, 0.1187650129453714e-1},
		{5, 0.3742430390903412, 0.1181230374959229e-1},
	}},
	{17, []orbit{
		{1, 0, 0.3828270494937162e-2},
		{3, 0, 0.9793737512487512e-2},
		{4, 0.1851156353447362, 0.8211737283191111e-2},
		{4, 0.6904210483822922, 0.9942814891178103e-2},
		{4, 0.3956894730559419, 0.9595471336070963e-2},
		{5, 0.4783690288121502, 0.9694996361663028e-2},
	}},
}

var lebedevSchemes = func() []*Scheme {
	out := make([]*Scheme, len(lebedevTable))
	for i, row := range lebedevTable {
		var nodes []Node
		for _, o := range row.orbits {
			nodes = append(nodes, octahedral(o)...)
		}
		out[i] = newScheme(fmt.Sprintf("%s%03d", lebedevPrefix, row.degree), row.degree, nodes)
	}
	return out
}()

// LebedevFamily returns the Lebedev rules from 6 to 110 points.
func LebedevFamily() *Family {
	f, _ := NewFamily("lebedev", lebedevSchemes)
	return f
}

// octahedral expands one orbit into all sign and permutation images of
// its generator.
func octahedral(o orbit) []Node {
	var g [3]float64
	switch o.code {
	case 1:
		g = [3]float64{1, 0, 0}
	case 2:
		s := 1 / math.Sqrt2
		g = [3]float64{0, s, s}
	case 3:
		s := 1 / math.Sqrt(3)
		g = [3]float64{s, s, s}
	case 4:
		g = [3]float64{o.a, o.a, math.Sqrt(1 - 2*o.a*o.a)}
	case 5:
		g = [3]float64{o.a, math.Sqrt(1 - o.a*o.a), 0}
	}

	perms := [6][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	seen := make(map[[3]int64]bool)
	var nodes []Node
	for _, p := range perms {
		for signs := 0; signs < 8; signs++ {
			var v [3]float64
			for k := 0; k < 3; k++ {
				v[k] = g[p[k]]
				if signs&(1<<k) != 0 {
					v[k] = -v[k]
				}
			}
			key := [3]int64{
				int64(math.Round(v[0] * 1e12)),
				int64(math.Round(v[1] * 1e12)),
				int64(math.Round(v[2] * 1e12)),
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			nodes = append(nodes, Node{X: v[0], Y: v[1], Z: v[2], W: o.v})
		}
	}
	return nodes
}
