package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// MaxLmax bounds the angular degree so that (l+m)! stays inside the
// factorial table used for harmonic normalization.
const MaxLmax = 85

// Top of the built-in quadrature families. Lebedev rules stop at degree
// 17 (110 points); product rules at polar order ProductMaxOrder.
const (
	LebedevMaxDegree = 17
	ProductMaxOrder  = 24
)

var ErrInvalid = errors.New("config: invalid parameter")

type StorageFormat int

const (
	FormatDense StorageFormat = iota
	FormatCSR
)

func (f StorageFormat) String() string {
	switch f {
	case FormatCSR:
		return "csr"
	default:
		return "dense"
	}
}

func ParseStorageFormat(s string) (StorageFormat, error) {
	switch strings.ToLower(s) {
	case "", "dense", "regular":
		return FormatDense, nil
	case "csr", "sparse":
		return FormatCSR, nil
	}
	return 0, fmt.Errorf("%w: unknown hamiltonian format %q", ErrInvalid, s)
}

type PotentialMode int

const (
	PotentialExact PotentialMode = iota
	PotentialInterpolated
)

func (m PotentialMode) String() string {
	if m == PotentialInterpolated {
		return "interpolated"
	}
	return "exact"
}

func ParsePotentialMode(s string) (PotentialMode, error) {
	switch strings.ToLower(s) {
	case "", "exact":
		return PotentialExact, nil
	case "interpolated", "interpolation", "interpolate":
		return PotentialInterpolated, nil
	}
	return 0, fmt.Errorf("%w: unknown potential mode %q", ErrInvalid, s)
}

// Strategy selects how matrix-element kernels are evaluated. Both
// strategies produce the same values.
type Strategy int

const (
	StrategyVectorized Strategy = iota
	StrategyLoop
)

func (s Strategy) String() string {
	if s == StrategyLoop {
		return "loop"
	}
	return "vectorized"
}

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "vectorized", "tables":
		return StrategyVectorized, nil
	case "loop", "jit":
		return StrategyLoop, nil
	}
	return 0, fmt.Errorf("%w: unknown strategy %q", ErrInvalid, s)
}

type QuadratureMode int

const (
	// QuadAuto loads the levels file when present and generates it otherwise.
	QuadAuto QuadratureMode = iota
	QuadAdaptive
	QuadCached
	QuadFixed
)

func (m QuadratureMode) String() string {
	switch m {
	case QuadAdaptive:
		return "adaptive"
	case QuadCached:
		return "cached"
	case QuadFixed:
		return "fixed"
	default:
		return "auto"
	}
}

func ParseQuadratureMode(s string) (QuadratureMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return QuadAuto, nil
	case "adaptive", "generate":
		return QuadAdaptive, nil
	case "cached", "read":
		return QuadCached, nil
	case "fixed", "global":
		return QuadFixed, nil
	}
	return 0, fmt.Errorf("%w: unknown quadrature mode %q", ErrInvalid, s)
}

type Family int

const (
	FamilyLebedev Family = iota
	FamilyProduct
)

func (f Family) String() string {
	if f == FamilyProduct {
		return "product"
	}
	return "lebedev"
}

// MaxDegree is the highest spherical polynomial degree the finest scheme
// of the family integrates exactly.
func (f Family) MaxDegree() int {
	if f == FamilyProduct {
		return 2*ProductMaxOrder - 1
	}
	return LebedevMaxDegree
}

func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(s) {
	case "", "lebedev":
		return FamilyLebedev, nil
	case "product", "gauss":
		return FamilyProduct, nil
	}
	return 0, fmt.Errorf("%w: unknown quadrature family %q", ErrInvalid, s)
}

// MapVariant orders the global basis index.
type MapVariant int

const (
	// MapRadialMajor runs the angular index fastest.
	MapRadialMajor MapVariant = iota
	// MapAngularMajor runs the radial index fastest.
	MapAngularMajor
)

func (v MapVariant) String() string {
	if v == MapAngularMajor {
		return "angular"
	}
	return "radial"
}

func ParseMapVariant(s string) (MapVariant, error) {
	switch strings.ToLower(s) {
	case "", "radial", "bound":
		return MapRadialMajor, nil
	case "angular":
		return MapAngularMajor, nil
	}
	return 0, fmt.Errorf("%w: unknown map type %q", ErrInvalid, s)
}

type RadialParams struct {
	Nodes    int
	Bins     int
	BinWidth float64
	Shift    float64
}

type QuadratureParams struct {
	Mode               QuadratureMode
	Family             Family
	Scheme             string
	Tolerance          float64
	Cutoff             float64
	Skip               int
	LevelsFile         string
	RequireConvergence bool
}

type Center struct {
	X, Y, Z float64
	Charge  float64
}

type PotentialParams struct {
	Kind      string
	Mode      PotentialMode
	Charge    float64
	Softening float64
	Centers   []Center
	Knots     int
	CacheDir  string
}

type AssemblyParams struct {
	Format    StorageFormat
	Strategy  Strategy
	Threshold float64
	Atol      float64
	Rtol      float64
	NormTol   float64
}

type SaveParams struct {
	Hamiltonian bool
	Vectors     bool
	Energies    bool
}

// Params is the validated, immutable form of Config. Components receive
// it (or one of its sections) by pointer and never modify it.
type Params struct {
	Name       string
	Radial     RadialParams
	Lmax       int
	Map        MapVariant
	Quadrature QuadratureParams
	Potential  PotentialParams
	Assembly   AssemblyParams
	NumVectors int
	Save       SaveParams
	Workers    int
}

// Validate checks every field and resolves all string switches once.
func (c *Config) Validate() (*Params, error) {
	b := c.Basis
	if b.Nodes < 3 {
		return nil, fmt.Errorf("%w: nodes must be >= 3, got %d", ErrInvalid, b.Nodes)
	}
	if b.Bins < 1 {
		return nil, fmt.Errorf("%w: bins must be >= 1, got %d", ErrInvalid, b.Bins)
	}
	if b.BinWidth <= 0 {
		return nil, fmt.Errorf("%w: bin_width must be positive, got %g", ErrInvalid, b.BinWidth)
	}
	if b.Shift < 0 {
		return nil, fmt.Errorf("%w: shift must be >= 0, got %g", ErrInvalid, b.Shift)
	}
	if b.Lmax < 0 || b.Lmax > MaxLmax {
		return nil, fmt.Errorf("%w: lmax must be in [0,%d], got %d", ErrInvalid, MaxLmax, b.Lmax)
	}
	mapVariant, err := ParseMapVariant(b.MapType)
	if err != nil {
		return nil, err
	}

	q := c.Quadrature
	qmode, err := ParseQuadratureMode(q.Mode)
	if err != nil {
		return nil, err
	}
	family, err := ParseFamily(q.Family)
	if err != nil {
		return nil, err
	}
	if 2*b.Lmax > family.MaxDegree() {
		return nil, fmt.Errorf("%w: lmax %d needs degree %d, %s family stops at %d",
			ErrInvalid, b.Lmax, 2*b.Lmax, family, family.MaxDegree())
	}
	if q.Tolerance <= 0 {
		return nil, fmt.Errorf("%w: quadrature tolerance must be positive, got %g", ErrInvalid, q.Tolerance)
	}
	if q.Cutoff <= 0 {
		return nil, fmt.Errorf("%w: cutoff must be positive, got %g", ErrInvalid, q.Cutoff)
	}
	if q.Skip < 0 {
		return nil, fmt.Errorf("%w: skip must be >= 0, got %d", ErrInvalid, q.Skip)
	}
	if qmode == QuadFixed && q.Scheme == "" {
		return nil, fmt.Errorf("%w: fixed quadrature mode needs a scheme", ErrInvalid)
	}
	levels := q.LevelsFile
	if levels == "" {
		levels = DefaultLevelsFile
	}

	p := c.Potential
	pmode, err := ParsePotentialMode(p.Mode)
	if err != nil {
		return nil, err
	}
	if p.Kind == "" {
		return nil, fmt.Errorf("%w: potential kind is empty", ErrInvalid)
	}
	if p.Softening < 0 {
		return nil, fmt.Errorf("%w: softening must be >= 0, got %g", ErrInvalid, p.Softening)
	}
	knots := p.Knots
	if knots == 0 {
		knots = DefaultKnots
	}
	if pmode == PotentialInterpolated && knots < 4 {
		return nil, fmt.Errorf("%w: interpolation needs at least 4 knots, got %d", ErrInvalid, knots)
	}
	centers := make([]Center, len(p.Centers))
	for i, cc := range p.Centers {
		centers[i] = Center{X: cc.X, Y: cc.Y, Z: cc.Z, Charge: cc.Charge}
	}

	h := c.Hamiltonian
	format, err := ParseStorageFormat(h.Format)
	if err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(h.Strategy)
	if err != nil {
		return nil, err
	}
	if h.Threshold < 0 || h.Atol < 0 || h.Rtol < 0 || h.NormTol < 0 {
		return nil, fmt.Errorf("%w: threshold and tolerances must be >= 0", ErrInvalid)
	}
	normTol := h.NormTol
	if normTol == 0 {
		normTol = DefaultNormTol
	}

	if c.Output.NumVectors < 0 {
		return nil, fmt.Errorf("%w: num_vectors must be >= 0, got %d", ErrInvalid, c.Output.NumVectors)
	}
	workers := c.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &Params{
		Name:   c.Name,
		Radial: RadialParams{Nodes: b.Nodes, Bins: b.Bins, BinWidth: b.BinWidth, Shift: b.Shift},
		Lmax:   b.Lmax,
		Map:    mapVariant,
		Quadrature: QuadratureParams{
			Mode:               qmode,
			Family:             family,
			Scheme:             q.Scheme,
			Tolerance:          q.Tolerance,
			Cutoff:             q.Cutoff,
			Skip:               q.Skip,
			LevelsFile:         levels,
			RequireConvergence: q.RequireConvergence,
		},
		Potential: PotentialParams{
			Kind:      strings.ToLower(p.Kind),
			Mode:      pmode,
			Charge:    p.Charge,
			Softening: p.Softening,
			Centers:   centers,
			Knots:     knots,
			CacheDir:  p.CacheDir,
		},
		Assembly: AssemblyParams{
			Format:    format,
			Strategy:  strategy,
			Threshold: h.Threshold,
			Atol:      h.Atol,
			Rtol:      h.Rtol,
			NormTol:   normTol,
		},
		NumVectors: c.Output.NumVectors,
		Save: SaveParams{
			Hamiltonian: c.Output.SaveHamiltonian,
			Vectors:     c.Output.SaveVectors,
			Energies:    c.Output.SaveEnergies,
		},
		Workers: workers,
	}, nil
}

// RadialPoints is the number of distinct radial DVR functions: the first
// node of the first bin and the last node of the last bin are excluded.
func (r RadialParams) RadialPoints() int {
	return r.Bins*(r.Nodes-1) - 1
}

// AngularSize is the number of (l,m) pairs with l <= lmax.
func (p *Params) AngularSize() int {
	return (p.Lmax + 1) * (p.Lmax + 1)
}

// BasisSize is the total Hamiltonian dimension.
func (p *Params) BasisSize() int {
	return p.Radial.RadialPoints() * p.AngularSize()
}

// Extent is the outer radius of the grid.
func (r RadialParams) Extent() float64 {
	return r.Shift + float64(r.Bins)*r.BinWidth
}
