// Package potential samples a scalar potential on spherical quadrature
// shells.
//
// A [Field] evaluates V at a Cartesian point. A [Sampler] returns V at
// every node of a scheme scaled to radius r, either exactly or from radial
// splines. [SampleCache] persists samples on disk; a zero-byte sample file
// marks a sample that was never computed and is regenerated.
//
// Fields are registered by kind name:
//
//	coulomb   -Z/r
//	zero      V = 0
//	charges   softened point-charge cluster
package potential
