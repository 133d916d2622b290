package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/san-kum/femdvr/internal/catalog"
	"github.com/san-kum/femdvr/internal/dvr"
	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/export"
	"github.com/san-kum/femdvr/internal/metrics"
	"github.com/san-kum/femdvr/internal/report"
	"github.com/san-kum/femdvr/internal/storage"
)

func newListCmd() *cobra.Command {
	var filter catalog.Filter
	cmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := openCatalog()
			if err != nil {
				return err
			}
			defer cat.Close()

			added, err := cat.Sync(cmd.Context(), runStore())
			if err != nil {
				return err
			}
			if added > 0 {
				log.WithField("added", added).Debug("catalog synced")
			}

			entries, err := cat.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no runs found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tPOTENTIAL\tGRID\tLMAX\tDIM\tGROUND\tUNCONV")
			for _, e := range entries {
				ground := "-"
				if e.Ground != nil {
					ground = fmt.Sprintf("%.10f", *e.Ground)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d/%g\t%d\t%d\t%s\t%d\n",
					e.ID,
					e.Created.Format("2006-01-02 15:04:05"),
					e.Potential,
					e.Nodes, e.Bins, e.BinWidth,
					e.Lmax,
					e.Dim,
					ground,
					e.Unconverged,
				)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter.Name, "name", "", "only runs with this config name")
	cmd.Flags().StringVar(&filter.Potential, "potential", "", "only runs with this potential")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of runs")
	return cmd
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "summary, spectrum and quadrature orders of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}

			fmt.Println(report.Summary(meta))
			fmt.Println()
			fmt.Println(report.SpectrumPlot(meta.Energies, 80, 10))
			fmt.Println()

			levels, err := st.LoadLevels(args[0])
			if err != nil {
				log.WithError(err).Warn("no quadrature levels stored")
				return nil
			}
			fmt.Println(report.OrderPlot(levels, 80, 8))
			fmt.Println()
			return report.SchemesTable(os.Stdout, meta.Schemes)
		},
	}
}

func newLevelsCmd() *cobra.Command {
	var (
		tol      float64
		hydrogen bool
		charge   float64
	)
	cmd := &cobra.Command{
		Use:   "levels [run_id]",
		Short: "grouped energy levels of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			energies, err := st.LoadEnergies(args[0])
			if err != nil {
				meta, merr := st.Load(args[0])
				if merr != nil {
					return err
				}
				energies = meta.Energies
			}

			var ref func(n int) float64
			if hydrogen {
				ref = func(n int) float64 { return metrics.HydrogenLevel(charge, n) }
			}
			return report.LevelsTable(os.Stdout, eigen.Levels(energies, tol), ref)
		},
	}
	cmd.Flags().Float64Var(&tol, "tol", 1e-6, "energies closer than this form one level")
	cmd.Flags().BoolVar(&hydrogen, "hydrogen", false, "compare with -Z^2/(2n^2)")
	cmd.Flags().Float64Var(&charge, "charge", 1.0, "nuclear charge for the hydrogenic reference")
	return cmd
}

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata, energies and quadrature levels as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			if out == "" {
				return st.ExportJSON(args[0], os.Stdout)
			}
			if err := st.ExportJSONFile(args[0], out); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newPlotCmd() *cobra.Command {
	var (
		out  string
		kind string
	)
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "write a level diagram, spectrum or quadrature-order figure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			energies, err := st.LoadEnergies(args[0])
			if err != nil {
				energies = meta.Energies
			}

			title := fmt.Sprintf("%s (%s)", meta.Name, meta.Potential)
			var fig *plot.Plot
			switch kind {
			case "levels":
				fig, err = export.LevelDiagram(title, eigen.Levels(energies, 1e-6), nil)
			case "spectrum":
				fig, err = export.Spectrum(title, energies)
			case "quadrature":
				fig, err = quadratureFigure(st, args[0], title)
			default:
				return fmt.Errorf("unknown plot kind %q (levels, spectrum, quadrature)", kind)
			}
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("%s_%s.png", args[0], kind)
			}
			if err := export.Save(fig, out); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (.png, .svg, .pdf)")
	cmd.Flags().StringVar(&kind, "kind", "levels", "figure kind (levels, spectrum, quadrature)")
	return cmd
}

func quadratureFigure(st *storage.Store, runID, title string) (*plot.Plot, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	levels, err := st.LoadLevels(runID)
	if err != nil {
		return nil, err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	grid, err := dvr.NewGrid(meta.Nodes, meta.Bins, meta.BinWidth, cfg.Basis.Shift)
	if err != nil {
		return nil, err
	}
	return export.QuadratureOrder(title, levels, grid.Radii())
}
