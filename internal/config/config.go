package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultNodes       = 10
	DefaultBins        = 10
	DefaultBinWidth    = 4.0
	DefaultShift       = 0.0
	DefaultLmax        = 2
	DefaultQuadTol     = 1e-6
	DefaultCutoff      = 100.0
	DefaultThreshold   = 0.0
	DefaultNumVectors  = 10
	DefaultAtol        = 1e-8
	DefaultRtol        = 1e-8
	DefaultNormTol     = 1e-8
	DefaultSkipSchemes = 3
	DefaultKnots       = 400
	DefaultLevelsFile  = "quad_levels.dat"
)

type Config struct {
	Name        string            `yaml:"name"`
	Basis       BasisConfig       `yaml:"basis"`
	Quadrature  QuadratureConfig  `yaml:"quadrature"`
	Potential   PotentialConfig   `yaml:"potential"`
	Hamiltonian HamiltonianConfig `yaml:"hamiltonian"`
	Output      OutputConfig      `yaml:"output"`
	Workers     int               `yaml:"workers"`
}

type BasisConfig struct {
	Nodes    int     `yaml:"nodes"`
	Bins     int     `yaml:"bins"`
	BinWidth float64 `yaml:"bin_width"`
	Shift    float64 `yaml:"shift"`
	Lmax     int     `yaml:"lmax"`
	MapType  string  `yaml:"map_type"`
}

type QuadratureConfig struct {
	Mode               string  `yaml:"mode"`
	Family             string  `yaml:"family"`
	Scheme             string  `yaml:"scheme"`
	Tolerance          float64 `yaml:"tolerance"`
	Cutoff             float64 `yaml:"cutoff"`
	Skip               int     `yaml:"skip"`
	LevelsFile         string  `yaml:"levels_file"`
	RequireConvergence bool    `yaml:"require_convergence"`
}

type PotentialConfig struct {
	Kind      string         `yaml:"kind"`
	Mode      string         `yaml:"mode"`
	Charge    float64        `yaml:"charge"`
	Softening float64        `yaml:"softening"`
	Centers   []ChargeCenter `yaml:"centers"`
	Knots     int            `yaml:"knots"`
	CacheDir  string         `yaml:"cache_dir"`
}

type ChargeCenter struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Z      float64 `yaml:"z"`
	Charge float64 `yaml:"charge"`
}

type HamiltonianConfig struct {
	Format    string  `yaml:"format"`
	Strategy  string  `yaml:"strategy"`
	Threshold float64 `yaml:"threshold"`
	Atol      float64 `yaml:"atol"`
	Rtol      float64 `yaml:"rtol"`
	NormTol   float64 `yaml:"norm_tol"`
}

type OutputConfig struct {
	NumVectors      int  `yaml:"num_vectors"`
	SaveHamiltonian bool `yaml:"save_hamiltonian"`
	SaveVectors     bool `yaml:"save_vectors"`
	SaveEnergies    bool `yaml:"save_energies"`
}

func DefaultConfig() *Config {
	return &Config{
		Name: "hydrogen",
		Basis: BasisConfig{
			Nodes:    DefaultNodes,
			Bins:     DefaultBins,
			BinWidth: DefaultBinWidth,
			Shift:    DefaultShift,
			Lmax:     DefaultLmax,
			MapType:  "radial",
		},
		Quadrature: QuadratureConfig{
			Mode:       "auto",
			Family:     "lebedev",
			Tolerance:  DefaultQuadTol,
			Cutoff:     DefaultCutoff,
			Skip:       DefaultSkipSchemes,
			LevelsFile: DefaultLevelsFile,
		},
		Potential: PotentialConfig{
			Kind:   "coulomb",
			Mode:   "exact",
			Charge: 1.0,
			Knots:  DefaultKnots,
		},
		Hamiltonian: HamiltonianConfig{
			Format:    "dense",
			Strategy:  "vectorized",
			Threshold: DefaultThreshold,
			Atol:      DefaultAtol,
			Rtol:      DefaultRtol,
			NormTol:   DefaultNormTol,
		},
		Output: OutputConfig{
			NumVectors:      DefaultNumVectors,
			SaveHamiltonian: true,
			SaveVectors:     true,
			SaveEnergies:    true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy so presets can be modified without aliasing.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Potential.Centers = append([]ChargeCenter(nil), c.Potential.Centers...)
	return &cp
}
