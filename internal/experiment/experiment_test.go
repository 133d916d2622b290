package experiment_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/experiment"
	"github.com/san-kum/femdvr/internal/metrics"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/storage"
)

func params(cfg *config.Config) *config.Params {
	cfg.Workers = 2
	p, err := cfg.Validate()
	Expect(err).NotTo(HaveOccurred())
	return p
}

func tempDir() string {
	dir, err := os.MkdirTemp("", "femdvr-experiment")
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(os.RemoveAll, dir)
	return dir
}

var _ = Describe("Experiment", func() {
	var (
		ctx context.Context
		dir string
	)

	BeforeEach(func() {
		ctx = context.Background()
		dir = tempDir()
	})

	Context("hydrogen atom", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = config.GetPreset("hydrogen")
		})

		It("reproduces the three lowest Coulomb levels", func() {
			p := params(cfg)
			res, err := experiment.New(p, experiment.Options{
				LevelsDir: dir,
				Metrics:   experiment.DefaultMetrics(p),
			}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Hamiltonian.Dim()).To(Equal(p.BasisSize()))
			Expect(res.QuadSource).To(Equal(quadsel.Generated))
			Expect(res.Quadrature.Unconverged()).To(BeEmpty())

			levels := res.Levels(1e-3)
			Expect(len(levels)).To(BeNumerically(">=", 3))
			for n := 1; n <= 3; n++ {
				Expect(levels[n-1].Energy).To(BeNumerically("~", metrics.HydrogenLevel(1, n), 1e-3))
			}
			Expect(levels[0].Degeneracy).To(Equal(1))
			Expect(levels[1].Degeneracy).To(Equal(4))
			Expect(levels[2].Degeneracy).To(Equal(9))

			Expect(res.Metrics).To(HaveKey("ground_error"))
			Expect(res.Metrics["ground_error"]).To(BeNumerically("<", 1e-3))
			Expect(res.Metrics).To(HaveKey("assemble_s"))
			Expect(res.Eigen.Dim()).To(Equal(p.NumVectors))
		})

		It("loads the levels file on the second run and reproduces the spectrum", func() {
			cfg.Basis.Nodes, cfg.Basis.Bins, cfg.Basis.Lmax = 6, 4, 1
			p := params(cfg)
			opts := experiment.Options{LevelsDir: dir}

			first, err := experiment.New(p, opts).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.QuadSource).To(Equal(quadsel.Generated))
			Expect(filepath.Join(dir, p.Quadrature.LevelsFile)).To(BeAnExistingFile())

			second, err := experiment.New(p, opts).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.QuadSource).To(Equal(quadsel.Loaded))
			Expect(second.Quadrature.Levels).To(Equal(first.Quadrature.Levels))
			Expect(second.Energies).To(Equal(first.Energies))
		})

		It("fails in cached mode when no levels file exists", func() {
			cfg.Basis.Nodes, cfg.Basis.Bins, cfg.Basis.Lmax = 5, 3, 0
			cfg.Quadrature.Mode = "cached"
			_, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(err).To(HaveOccurred())
			Expect(quadsel.IsMissing(err)).To(BeTrue())
		})

		It("uses one scheme everywhere in fixed mode", func() {
			cfg := config.GetPreset("quick")
			res, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.QuadSource).To(Equal(quadsel.Assigned))
			Expect(res.Quadrature.Histogram()).To(HaveLen(1))
			Expect(res.Quadrature.Histogram()).To(HaveKey("lebedev_009"))
			Expect(res.Hamiltonian.Format()).To(Equal(config.FormatCSR))
		})
	})

	Context("free particle in a sphere", func() {
		It("has 2l+1 degenerate levels", func() {
			cfg := config.GetPreset("box")
			cfg.Basis.Nodes = 8
			res, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			levels := res.Levels(1e-8)
			var degs []int
			for _, lv := range levels[:6] {
				degs = append(degs, lv.Degeneracy)
			}
			Expect(degs).To(Equal([]int{1, 3, 5, 1, 3, 5}))
			Expect(levels[0].Energy).To(BeNumerically("~", 0.0771063, 1e-5))
		})
	})

	Context("off-center charges", func() {
		var cfg *config.Config

		BeforeEach(func() {
			cfg = config.GetPreset("dimer")
			cfg.Basis.Nodes, cfg.Basis.Bins, cfg.Basis.BinWidth, cfg.Basis.Lmax = 4, 2, 1.0, 2
			cfg.Quadrature.Mode = "adaptive"
			cfg.Quadrature.Family = "lebedev"
			cfg.Quadrature.Tolerance = 1e-14
			cfg.Potential.Mode = "exact"
		})

		It("keeps going when points do not converge", func() {
			res, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Quadrature.Unconverged()).NotTo(BeEmpty())
			for _, rep := range res.Quadrature.Unconverged() {
				Expect(rep.Scheme).To(Equal("lebedev_017"))
			}
		})

		It("fails in strict mode", func() {
			cfg.Quadrature.RequireConvergence = true
			_, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(errors.Is(err, quadsel.ErrUnconverged)).To(BeTrue())

			var perr *quadsel.PointError
			Expect(errors.As(err, &perr)).To(BeTrue())
		})

		It("falls back to the minimal scheme beyond the cutoff", func() {
			cfg.Quadrature.Cutoff = 0.5
			res, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			for _, rep := range res.Quadrature.Reports {
				if rep.R >= 0.5 {
					Expect(rep.Status).To(Equal(quadsel.Cutoff))
				}
			}
		})
	})

	It("packages a result for storage", func() {
		cfg := config.GetPreset("quick")
		res, err := experiment.New(params(cfg), experiment.Options{LevelsDir: dir}).Run(ctx)
		Expect(err).NotTo(HaveOccurred())

		st := storage.New(filepath.Join(dir, "runs"))
		id, err := st.Save(res.StorageRun(cfg), config.SaveParams{Hamiltonian: true, Energies: true})
		Expect(err).NotTo(HaveOccurred())

		meta, err := st.Load(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(meta.Dim).To(Equal(res.Hamiltonian.Dim()))
		Expect(meta.QuadSource).To(Equal("fixed"))
		Expect(meta.Schemes).To(HaveKeyWithValue("lebedev_009", res.Basis.RadialLen()))
	})
})
