package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/femdvr/internal/catalog"
	"github.com/san-kum/femdvr/internal/logging"
	"github.com/san-kum/femdvr/internal/storage"
	"github.com/san-kum/femdvr/internal/tui"
)

var (
	dataDir  string
	logLevel string
	verbose  bool

	log *logrus.Logger
)

// main registers the femdvr commands and exits with status 1 when one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "femdvr",
		Short:        "FEM-DVR bound states in a spherical-harmonic basis",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(os.Stderr, logLevel, verbose)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".femdvr", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "browse stored runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(runStore())
		},
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newListCmd(),
		newShowCmd(),
		newLevelsCmd(),
		newExportCmd(),
		newPlotCmd(),
		newPresetsCmd(),
		newBenchCmd(),
		newScanCmd(),
		tuiCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runStore() *storage.Store {
	return storage.New(filepath.Join(dataDir, "runs"))
}

func openCatalog() (*catalog.Catalog, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	return catalog.Open(filepath.Join(dataDir, catalog.DefaultFile))
}
