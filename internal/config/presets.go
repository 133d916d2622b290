package config

import "sort"

var Presets = map[string]*Config{
	"hydrogen": {
		Name: "hydrogen",
		Basis: BasisConfig{
			Nodes: 10, Bins: 10, BinWidth: 4.0, Shift: 0.0, Lmax: 2, MapType: "radial",
		},
		Quadrature: QuadratureConfig{
			Mode: "auto", Family: "lebedev", Tolerance: 1e-6, Cutoff: 100.0, Skip: 3,
			LevelsFile: "quad_levels_hydrogen.dat",
		},
		Potential: PotentialConfig{Kind: "coulomb", Mode: "exact", Charge: 1.0, Knots: DefaultKnots},
		Hamiltonian: HamiltonianConfig{
			Format: "dense", Strategy: "vectorized", Atol: 1e-8, Rtol: 1e-8, NormTol: 1e-8,
		},
		Output: OutputConfig{NumVectors: 10, SaveHamiltonian: true, SaveVectors: true, SaveEnergies: true},
	},
	"box": {
		Name: "box",
		Basis: BasisConfig{
			Nodes: 5, Bins: 4, BinWidth: 2.0, Shift: 0.0, Lmax: 2, MapType: "radial",
		},
		Quadrature: QuadratureConfig{
			Mode: "adaptive", Family: "lebedev", Tolerance: 1e-8, Cutoff: 100.0, Skip: 3,
			LevelsFile: "quad_levels_box.dat",
		},
		Potential: PotentialConfig{Kind: "zero", Mode: "exact", Knots: DefaultKnots},
		Hamiltonian: HamiltonianConfig{
			Format: "dense", Strategy: "loop", Atol: 1e-10, Rtol: 1e-10, NormTol: 1e-8,
		},
		Output: OutputConfig{NumVectors: 5, SaveEnergies: true},
	},
	"dimer": {
		Name: "dimer",
		Basis: BasisConfig{
			Nodes: 8, Bins: 6, BinWidth: 3.0, Shift: 0.05, Lmax: 4, MapType: "radial",
		},
		Quadrature: QuadratureConfig{
			Mode: "auto", Family: "product", Tolerance: 1e-5, Cutoff: 9.0, Skip: 3,
			LevelsFile: "quad_levels_dimer.dat",
		},
		Potential: PotentialConfig{
			Kind: "charges", Mode: "interpolated", Softening: 0.1, Knots: 300,
			Centers: []ChargeCenter{
				{X: 0, Y: 0, Z: 0.7, Charge: 0.5},
				{X: 0, Y: 0, Z: -0.7, Charge: 0.5},
			},
		},
		Hamiltonian: HamiltonianConfig{
			Format: "csr", Strategy: "vectorized", Threshold: 1e-12, Atol: 1e-8, Rtol: 1e-8, NormTol: 1e-8,
		},
		Output: OutputConfig{NumVectors: 8, SaveHamiltonian: true, SaveVectors: true, SaveEnergies: true},
	},
	"quick": {
		Name: "quick",
		Basis: BasisConfig{
			Nodes: 6, Bins: 4, BinWidth: 5.0, Shift: 0.0, Lmax: 1, MapType: "angular",
		},
		Quadrature: QuadratureConfig{
			Mode: "fixed", Family: "lebedev", Scheme: "lebedev_009", Tolerance: 1e-6, Cutoff: 100.0, Skip: 3,
			LevelsFile: "quad_levels_quick.dat",
		},
		Potential: PotentialConfig{Kind: "coulomb", Mode: "exact", Charge: 1.0, Knots: DefaultKnots},
		Hamiltonian: HamiltonianConfig{
			Format: "csr", Strategy: "loop", Atol: 1e-8, Rtol: 1e-8, NormTol: 1e-8,
		},
		Output: OutputConfig{NumVectors: 4, SaveEnergies: true},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
