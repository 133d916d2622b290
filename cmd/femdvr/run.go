package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/femdvr/internal/catalog"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/experiment"
	"github.com/san-kum/femdvr/internal/potential"
	"github.com/san-kum/femdvr/internal/report"
)

type runFlags struct {
	configFile string
	preset     string
	noSave     bool

	nodes, bins, lmax int
	binWidth, shift   float64
	mapType           string

	quadMode, family, scheme, levelsFile string
	quadTol, cutoff                      float64
	skip                                 int
	strict                               bool

	potKind, potMode, cacheDir string
	charge, softening          float64
	knots                      int

	format, strategy               string
	threshold, atol, rtol, normTol float64
	numVectors, workers            int
}

func (f *runFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fl.StringVar(&f.preset, "preset", "", "use preset configuration")

	fl.IntVar(&f.nodes, "nodes", config.DefaultNodes, "Gauss-Lobatto nodes per bin")
	fl.IntVar(&f.bins, "bins", config.DefaultBins, "number of finite-element bins")
	fl.Float64Var(&f.binWidth, "bin-width", config.DefaultBinWidth, "bin width (bohr)")
	fl.Float64Var(&f.shift, "shift", config.DefaultShift, "radial offset of the first bin")
	fl.IntVar(&f.lmax, "lmax", config.DefaultLmax, "maximum angular momentum")
	fl.StringVar(&f.mapType, "map", "radial", "basis ordering (radial, angular)")

	fl.StringVar(&f.quadMode, "quad-mode", "auto", "quadrature mode (auto, adaptive, cached, fixed)")
	fl.StringVar(&f.family, "family", "lebedev", "quadrature family (lebedev, product)")
	fl.StringVar(&f.scheme, "scheme", "", "scheme id for fixed mode")
	fl.Float64Var(&f.quadTol, "quad-tol", config.DefaultQuadTol, "quadrature convergence tolerance")
	fl.Float64Var(&f.cutoff, "cutoff", config.DefaultCutoff, "radius beyond which the minimal scheme is used")
	fl.IntVar(&f.skip, "skip", config.DefaultSkipSchemes, "schemes skipped at the start of the search")
	fl.StringVar(&f.levelsFile, "levels-file", config.DefaultLevelsFile, "quadrature levels file")
	fl.BoolVar(&f.strict, "strict", false, "fail when a radial point does not converge")

	fl.StringVar(&f.potKind, "potential", "coulomb", "potential kind")
	fl.StringVar(&f.potMode, "potential-mode", "exact", "potential sampling (exact, interpolated)")
	fl.Float64Var(&f.charge, "charge", 1.0, "nuclear charge")
	fl.Float64Var(&f.softening, "softening", 0, "point-charge softening length")
	fl.IntVar(&f.knots, "knots", config.DefaultKnots, "radial interpolation knots")
	fl.StringVar(&f.cacheDir, "cache-dir", "", "potential sample cache directory")

	fl.StringVar(&f.format, "format", "dense", "hamiltonian storage (dense, csr)")
	fl.StringVar(&f.strategy, "strategy", "vectorized", "kernel strategy (vectorized, loop)")
	fl.Float64Var(&f.threshold, "threshold", config.DefaultThreshold, "drop summed entries with |v| < threshold")
	fl.Float64Var(&f.atol, "atol", config.DefaultAtol, "symmetry absolute tolerance")
	fl.Float64Var(&f.rtol, "rtol", config.DefaultRtol, "symmetry relative tolerance")
	fl.Float64Var(&f.normTol, "norm-tol", config.DefaultNormTol, "eigenvector normalization tolerance")
	fl.IntVar(&f.numVectors, "num-vectors", config.DefaultNumVectors, "eigenvectors to keep")
	fl.IntVar(&f.workers, "workers", 0, "worker goroutines (0 = all CPUs)")
}

// resolve builds the config: defaults, then preset, then file, then any
// flag the user set explicitly.
func (f *runFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", f.preset, config.ListPresets())
		}
	}
	if f.configFile != "" {
		loaded, err := config.Load(f.configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("nodes") {
		cfg.Basis.Nodes = f.nodes
	}
	if changed("bins") {
		cfg.Basis.Bins = f.bins
	}
	if changed("bin-width") {
		cfg.Basis.BinWidth = f.binWidth
	}
	if changed("shift") {
		cfg.Basis.Shift = f.shift
	}
	if changed("lmax") {
		cfg.Basis.Lmax = f.lmax
	}
	if changed("map") {
		cfg.Basis.MapType = f.mapType
	}
	if changed("quad-mode") {
		cfg.Quadrature.Mode = f.quadMode
	}
	if changed("family") {
		cfg.Quadrature.Family = f.family
	}
	if changed("scheme") {
		cfg.Quadrature.Scheme = f.scheme
	}
	if changed("quad-tol") {
		cfg.Quadrature.Tolerance = f.quadTol
	}
	if changed("cutoff") {
		cfg.Quadrature.Cutoff = f.cutoff
	}
	if changed("skip") {
		cfg.Quadrature.Skip = f.skip
	}
	if changed("levels-file") {
		cfg.Quadrature.LevelsFile = f.levelsFile
	}
	if changed("strict") {
		cfg.Quadrature.RequireConvergence = f.strict
	}
	if changed("potential") {
		cfg.Potential.Kind = f.potKind
	}
	if changed("potential-mode") {
		cfg.Potential.Mode = f.potMode
	}
	if changed("charge") {
		cfg.Potential.Charge = f.charge
	}
	if changed("softening") {
		cfg.Potential.Softening = f.softening
	}
	if changed("knots") {
		cfg.Potential.Knots = f.knots
	}
	if changed("cache-dir") {
		cfg.Potential.CacheDir = f.cacheDir
	}
	if changed("format") {
		cfg.Hamiltonian.Format = f.format
	}
	if changed("strategy") {
		cfg.Hamiltonian.Strategy = f.strategy
	}
	if changed("threshold") {
		cfg.Hamiltonian.Threshold = f.threshold
	}
	if changed("atol") {
		cfg.Hamiltonian.Atol = f.atol
	}
	if changed("rtol") {
		cfg.Hamiltonian.Rtol = f.rtol
	}
	if changed("norm-tol") {
		cfg.Hamiltonian.NormTol = f.normTol
	}
	if changed("num-vectors") {
		cfg.Output.NumVectors = f.numVectors
	}
	if changed("workers") {
		cfg.Workers = f.workers
	}
	return cfg, nil
}

func newRunCmd() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "assemble and diagonalize the hamiltonian",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.resolve(cmd)
			if err != nil {
				return err
			}
			p, err := cfg.Validate()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return err
			}

			exp := experiment.New(p, experiment.Options{
				LevelsDir: dataDir,
				Registry:  potential.NewRegistry(),
				Metrics:   experiment.DefaultMetrics(p),
				Log:       log,
			})
			res, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}

			if f.noSave {
				levels := res.Levels(1e-6)
				fmt.Println(report.SpectrumPlot(res.Eigen.Values, 60, 10))
				return report.LevelsTable(os.Stdout, levels[:min(10, len(levels))], nil)
			}

			st := runStore()
			runID, err := st.Save(res.StorageRun(cfg), p.Save)
			if err != nil {
				return fmt.Errorf("save run: %w", err)
			}
			meta, err := st.Load(runID)
			if err != nil {
				return err
			}
			if cat, err := openCatalog(); err != nil {
				log.WithError(err).Warn("catalog unavailable")
			} else {
				if err := cat.Put(cmd.Context(), catalog.FromMetadata(*meta)); err != nil {
					log.WithError(err).Warn("catalog update failed")
				}
				cat.Close()
			}

			log.WithFields(logrus.Fields{"run": runID, "dir": st.Dir(runID)}).Info("run saved")
			fmt.Println(report.Summary(meta))
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "print the spectrum without storing the run")
	return cmd
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-10s %s, %d nodes x %d bins, lmax %d\n",
					name, cfg.Potential.Kind, cfg.Basis.Nodes, cfg.Basis.Bins, cfg.Basis.Lmax)
			}
			return nil
		},
	}
}
