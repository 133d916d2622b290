package config

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Potential.Kind != "coulomb" {
		t.Errorf("expected coulomb potential, got %s", cfg.Potential.Kind)
	}
	if cfg.Basis.Nodes < 3 {
		t.Error("nodes should be >= 3")
	}
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("box")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Basis.Nodes != 5 || cfg.Basis.Bins != 4 {
		t.Errorf("expected 5 nodes x 4 bins, got %d x %d", cfg.Basis.Nodes, cfg.Basis.Bins)
	}

	cfg.Basis.Nodes = 99
	if Presets["box"].Basis.Nodes == 99 {
		t.Error("GetPreset must return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("presets not sorted: %v", presets)
		}
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, name := range ListPresets() {
		if _, err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s: %v", name, err)
		}
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"too few nodes", func(c *Config) { c.Basis.Nodes = 2 }},
		{"zero bins", func(c *Config) { c.Basis.Bins = 0 }},
		{"negative width", func(c *Config) { c.Basis.BinWidth = -1 }},
		{"negative shift", func(c *Config) { c.Basis.Shift = -0.1 }},
		{"lmax above table", func(c *Config) { c.Basis.Lmax = MaxLmax + 1 }},
		{"lmax beyond lebedev", func(c *Config) { c.Basis.Lmax = 9 }},
		{"lmax beyond product", func(c *Config) { c.Quadrature.Family = "product"; c.Basis.Lmax = 24 }},
		{"unknown map", func(c *Config) { c.Basis.MapType = "spiral" }},
		{"zero tolerance", func(c *Config) { c.Quadrature.Tolerance = 0 }},
		{"unknown family", func(c *Config) { c.Quadrature.Family = "womersley" }},
		{"fixed without scheme", func(c *Config) { c.Quadrature.Mode = "fixed"; c.Quadrature.Scheme = "" }},
		{"unknown format", func(c *Config) { c.Hamiltonian.Format = "coo" }},
		{"unknown strategy", func(c *Config) { c.Hamiltonian.Strategy = "gpu" }},
		{"negative threshold", func(c *Config) { c.Hamiltonian.Threshold = -1 }},
		{"empty potential", func(c *Config) { c.Potential.Kind = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			_, err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestValidate_LmaxFitsFamily(t *testing.T) {
	tests := []struct {
		family string
		lmax   int
	}{
		{"lebedev", 8},
		{"product", 9},
		{"product", 23},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Quadrature.Family = tt.family
		cfg.Basis.Lmax = tt.lmax
		if _, err := cfg.Validate(); err != nil {
			t.Errorf("%s lmax=%d: unexpected error %v", tt.family, tt.lmax, err)
		}
	}
}

func TestValidate_ResolvesEnums(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Hamiltonian.Format = "csr"
	cfg.Hamiltonian.Strategy = "loop"
	cfg.Potential.Mode = "interpolated"
	cfg.Quadrature.Mode = "cached"
	cfg.Quadrature.Family = "product"
	cfg.Basis.MapType = "angular"

	p, err := cfg.Validate()
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if p.Assembly.Format != FormatCSR {
		t.Errorf("format = %v", p.Assembly.Format)
	}
	if p.Assembly.Strategy != StrategyLoop {
		t.Errorf("strategy = %v", p.Assembly.Strategy)
	}
	if p.Potential.Mode != PotentialInterpolated {
		t.Errorf("potential mode = %v", p.Potential.Mode)
	}
	if p.Quadrature.Mode != QuadCached || p.Quadrature.Family != FamilyProduct {
		t.Errorf("quadrature = %v/%v", p.Quadrature.Mode, p.Quadrature.Family)
	}
	if p.Map != MapAngularMajor {
		t.Errorf("map = %v", p.Map)
	}
	if p.Workers <= 0 {
		t.Error("workers should default to a positive count")
	}
}

func TestBasisSize(t *testing.T) {
	tests := []struct {
		nodes, bins, lmax int
		expected          int
	}{
		{5, 4, 2, (4*4 - 1) * 9},
		{10, 8, 0, 8*9 - 1},
		{3, 1, 1, 1 * 4},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		cfg.Basis.Nodes = tt.nodes
		cfg.Basis.Bins = tt.bins
		cfg.Basis.Lmax = tt.lmax
		p, err := cfg.Validate()
		if err != nil {
			t.Fatalf("validate: %v", err)
		}
		if got := p.BasisSize(); got != tt.expected {
			t.Errorf("nodes=%d bins=%d lmax=%d: expected %d, got %d", tt.nodes, tt.bins, tt.lmax, tt.expected, got)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("dimer")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Basis != cfg.Basis {
		t.Errorf("basis mismatch: %+v vs %+v", loaded.Basis, cfg.Basis)
	}
	if len(loaded.Potential.Centers) != 2 {
		t.Errorf("expected 2 charge centers, got %d", len(loaded.Potential.Centers))
	}
}
