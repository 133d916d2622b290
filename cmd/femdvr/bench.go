package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/experiment"
	"github.com/san-kum/femdvr/internal/optim"
)

func newBenchCmd() *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "time every strategy and storage format on a preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := config.GetPreset(preset)
			if base == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
			}
			levelsDir, err := os.MkdirTemp("", "femdvr-bench")
			if err != nil {
				return err
			}
			defer os.RemoveAll(levelsDir)

			fmt.Printf("benchmarking %s\n\n", preset)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STRATEGY\tFORMAT\tDIM\tNNZ\tQUAD\tASSEMBLE\tDIAG\tTOTAL\tGROUND")

			for _, strategy := range []string{"vectorized", "loop"} {
				for _, format := range []string{"dense", "csr"} {
					cfg := base.Clone()
					cfg.Hamiltonian.Strategy = strategy
					cfg.Hamiltonian.Format = format
					cfg.Quadrature.LevelsFile = filepath.Join(levelsDir, strategy+"_"+format+".dat")
					if cfg.Quadrature.Mode == "cached" {
						cfg.Quadrature.Mode = "adaptive"
					}
					p, err := cfg.Validate()
					if err != nil {
						return err
					}

					start := time.Now()
					res, err := experiment.New(p, experiment.Options{Log: log}).Run(cmd.Context())
					if err != nil {
						return err
					}
					total := time.Since(start)

					fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\t%v\t%v\t%v\t%.10f\n",
						strategy, format,
						res.Hamiltonian.Dim(), res.Hamiltonian.NNZ(),
						res.Timings["quadrature"].Round(time.Millisecond),
						res.Timings["assemble"].Round(time.Millisecond),
						res.Timings["diagonalize"].Round(time.Millisecond),
						total.Round(time.Millisecond),
						res.Energies[0],
					)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "quick", "preset to benchmark")
	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		preset  string
		params  []string
		metric  string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "grid search over discretization parameters",
		Long: "Each --param is name=v1,v2,... with name one of nodes, bins, bin_width, lmax, shift, tolerance.\n" +
			"Every combination is run and ranked by --metric.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := config.GetPreset(preset)
			if base == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
			}
			if cmd.Flags().Changed("workers") {
				base.Workers = workers
			}
			names, ranges, err := parseScanParams(params)
			if err != nil {
				return err
			}
			gs, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}
			levelsDir := filepath.Join(dataDir, "scan")
			if err := os.MkdirAll(levelsDir, 0755); err != nil {
				return err
			}

			points, err := gs.Search(cmd.Context(), optim.ConfigBuild(base, experiment.Options{LevelsDir: levelsDir, Log: log}), metric)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "SETTING\tDIM\t%s\n", strings.ToUpper(metric))
			for _, pt := range points {
				if pt.Err != nil {
					fmt.Fprintf(w, "%s\t-\terror: %v\n", pt.Key(names), pt.Err)
					continue
				}
				fmt.Fprintf(w, "%s\t%d\t%.3e\n", pt.Key(names), pt.Dim, pt.Value)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "hydrogen", "base preset")
	cmd.Flags().StringArrayVar(&params, "param", []string{"nodes=6,8,10", "bins=4,6"}, "name=v1,v2,... (repeatable)")
	cmd.Flags().StringVar(&metric, "metric", "ground_error", "metric to minimize")
	cmd.Flags().IntVar(&workers, "workers", 0, "worker goroutines per run")
	return cmd
}

func parseScanParams(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok || list == "" {
			return nil, nil, fmt.Errorf("bad --param %q, want name=v1,v2", spec)
		}
		var vals []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad value in --param %q: %w", spec, err)
			}
			vals = append(vals, v)
		}
		names = append(names, strings.TrimSpace(name))
		ranges = append(ranges, vals)
	}
	return names, ranges, nil
}
