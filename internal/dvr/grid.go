package dvr

import "fmt"

// Point is one radial DVR function.
type Point struct {
	Index  int
	Bin    int
	Node   int
	R      float64
	Bridge bool
}

type Grid struct {
	nodes    int
	bins     int
	binWidth float64
	shift    float64
	x        []float64
	w        []float64
	points   []Point
}

func NewGrid(nodes, bins int, binWidth, shift float64) (*Grid, error) {
	if bins < 1 || binWidth <= 0 || shift < 0 {
		return nil, fmt.Errorf("%w: bins=%d width=%g shift=%g", ErrGeometry, bins, binWidth, shift)
	}
	x, w, err := GaussLobatto(nodes)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		nodes:    nodes,
		bins:     bins,
		binWidth: binWidth,
		shift:    shift,
		x:        x,
		w:        w,
	}

	g.points = make([]Point, 0, bins*(nodes-1)-1)
	for i := 0; i < bins; i++ {
		for n := 0; n < nodes-1; n++ {
			if i == 0 && n == 0 {
				continue
			}
			g.points = append(g.points, Point{
				Index:  len(g.points),
				Bin:    i,
				Node:   n,
				R:      g.Coord(i, n),
				Bridge: n == 0,
			})
		}
	}
	return g, nil
}

func (g *Grid) Nodes() int        { return g.nodes }
func (g *Grid) Bins() int         { return g.bins }
func (g *Grid) BinWidth() float64 { return g.binWidth }
func (g *Grid) Shift() float64    { return g.shift }
func (g *Grid) Len() int          { return len(g.points) }

// Extent is the outer boundary radius.
func (g *Grid) Extent() float64 {
	return g.shift + float64(g.bins)*g.binWidth
}

// Coord maps (bin, node) to the physical radius. Node nodes-1 of bin i and
// node 0 of bin i+1 share the same radius.
func (g *Grid) Coord(bin, node int) float64 {
	return g.shift + g.binWidth*(float64(bin)+0.5*(g.x[node]+1))
}

// Abscissas returns a copy of the reference Gauss-Lobatto nodes.
func (g *Grid) Abscissas() []float64 {
	return append([]float64(nil), g.x...)
}

// Weights returns a copy of the reference Gauss-Lobatto weights.
func (g *Grid) Weights() []float64 {
	return append([]float64(nil), g.w...)
}

// PhysicalWeights returns the weights scaled to the bin width.
func (g *Grid) PhysicalWeights() []float64 {
	out := make([]float64, g.nodes)
	for i, w := range g.w {
		out[i] = w * 0.5 * g.binWidth
	}
	return out
}

// Points returns the radial points in traversal order.
func (g *Grid) Points() []Point {
	return append([]Point(nil), g.points...)
}

func (g *Grid) Point(i int) Point {
	return g.points[i]
}

// PointIndex returns the radial index of (bin, node), or -1 when the pair
// is not a radial function. Node nodes-1 is folded onto the next bin.
func (g *Grid) PointIndex(bin, node int) int {
	if node == g.nodes-1 {
		bin, node = bin+1, 0
	}
	if bin < 0 || bin >= g.bins || node < 0 || node >= g.nodes-1 {
		return -1
	}
	if bin == 0 && node == 0 {
		return -1
	}
	return bin*(g.nodes-1) + node - 1
}

// Radii returns the radius of every radial point.
func (g *Grid) Radii() []float64 {
	out := make([]float64, len(g.points))
	for i, p := range g.points {
		out[i] = p.R
	}
	return out
}
