// Package dvr provides the radial finite-element discrete-variable
// representation: Gauss-Lobatto rules on [-1, 1] and the binned radial grid
// built from them.
//
// A grid with B bins and N nodes per bin exposes B*(N-1)-1 radial points.
// Node 0 of bin i (i >= 1) is the bridge function shared with the last node
// of bin i-1. The first node of the first bin and the last node of the last
// bin are dropped so that every radial function vanishes at both ends.
//
// # Example
//
//	g, _ := dvr.NewGrid(10, 8, 4.0, 0.0)
//	for _, p := range g.Points() {
//		fmt.Println(p.Bin, p.Node, p.R)
//	}
//
// Grids are immutable; accessors return copies.
package dvr
