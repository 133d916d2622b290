// Package experiment runs the whole bound-state calculation: radial grid,
// basis map, potential sampling, angular quadrature selection, Hamiltonian
// assembly and diagonalization.
package experiment

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/femdvr/internal/basis"
	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/dvr"
	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/hamiltonian"
	"github.com/san-kum/femdvr/internal/kinetic"
	"github.com/san-kum/femdvr/internal/logging"
	"github.com/san-kum/femdvr/internal/metrics"
	"github.com/san-kum/femdvr/internal/potential"
	"github.com/san-kum/femdvr/internal/potmat"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/sphquad"
	"github.com/san-kum/femdvr/internal/storage"
)

// Options carries the collaborators a run shares with other runs.
type Options struct {
	// LevelsDir resolves a relative levels file name. Empty means the
	// working directory.
	LevelsDir string
	Registry  *potential.Registry
	Cache     *quadsel.Cache
	Metrics   []metrics.Metric
	Log       logrus.FieldLogger
}

type Experiment struct {
	params *config.Params
	opts   Options
	log    logrus.FieldLogger
}

func New(p *config.Params, opts Options) *Experiment {
	if opts.Registry == nil {
		opts.Registry = potential.NewRegistry()
	}
	if opts.Cache == nil {
		opts.Cache = &quadsel.Cache{}
	}
	return &Experiment{params: p, opts: opts, log: logging.OrDiscard(opts.Log)}
}

func (e *Experiment) Params() *config.Params { return e.params }

// LevelsPath is where the quadrature levels file is read or written.
func (e *Experiment) LevelsPath() string {
	path := e.params.Quadrature.LevelsFile
	if filepath.IsAbs(path) || e.opts.LevelsDir == "" {
		return path
	}
	return filepath.Join(e.opts.LevelsDir, path)
}

type Result struct {
	Params      *config.Params
	Basis       *basis.Map
	Quadrature  *quadsel.Result
	QuadSource  quadsel.Source
	Hamiltonian hamiltonian.Matrix
	// Eigen keeps the lowest NumVectors pairs; Energies keeps them all.
	Eigen    *eigen.Result
	Energies []float64
	Metrics  map[string]float64
	Timings  map[string]time.Duration
}

// Run executes the pipeline. Quadrature, symmetry and normalization
// failures abort before anything is returned.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	p := e.params
	res := &Result{Params: p, Timings: make(map[string]time.Duration)}
	stage := func(name string, start time.Time) {
		res.Timings[name] = time.Since(start)
		e.log.WithFields(logrus.Fields{"stage": name, "elapsed": res.Timings[name]}).Debug("stage done")
	}

	start := time.Now()
	grid, err := dvr.NewGrid(p.Radial.Nodes, p.Radial.Bins, p.Radial.BinWidth, p.Radial.Shift)
	if err != nil {
		return nil, err
	}
	bmap, err := basis.NewMap(grid, p.Lmax, p.Map)
	if err != nil {
		return nil, err
	}
	res.Basis = bmap

	radii := grid.Radii()
	sampler, err := e.opts.Registry.Sampler(p.Potential, radii[0], radii[len(radii)-1], e.log)
	if err != nil {
		return nil, fmt.Errorf("experiment: potential: %w", err)
	}
	pot, err := potmat.New(bmap, sampler, p.Assembly.Strategy, p.Workers)
	if err != nil {
		return nil, err
	}
	stage("setup", start)
	e.log.WithFields(logrus.Fields{
		"radial":    bmap.RadialLen(),
		"angular":   bmap.AngularLen(),
		"dim":       bmap.Len(),
		"potential": sampler.Name(),
	}).Info("basis ready")

	start = time.Now()
	family := sphquad.ForKind(p.Quadrature.Family)
	sel := quadsel.NewSelector(bmap, pot, family, p.Quadrature, p.Workers, e.log)
	qres, source, err := e.opts.Cache.Resolve(ctx, sel, p.Quadrature.Mode, p.Quadrature.Scheme, e.LevelsPath())
	if err != nil {
		return nil, fmt.Errorf("experiment: quadrature: %w", err)
	}
	schemes, err := qres.Schemes()
	if err != nil {
		return nil, fmt.Errorf("experiment: quadrature: %w", err)
	}
	res.Quadrature, res.QuadSource = qres, source
	stage("quadrature", start)
	e.log.WithFields(logrus.Fields{
		"source":      source,
		"family":      family.Name(),
		"unconverged": len(qres.Unconverged()),
		"path":        e.LevelsPath(),
	}).Info("quadrature levels resolved")

	start = time.Now()
	kin := kinetic.New(bmap, p.Assembly.Strategy, p.Workers)
	asm := hamiltonian.NewAssembler(bmap, kin, pot, p.Assembly, e.log)
	h, err := asm.Assemble(ctx, schemes)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	res.Hamiltonian = h
	stage("assemble", start)

	start = time.Now()
	eig, err := eigen.Solve(hamiltonian.Symmetric(h), p.Assembly.NormTol)
	if err != nil {
		return nil, fmt.Errorf("experiment: %w", err)
	}
	res.Energies = eig.Values
	res.Eigen = eig.Truncate(p.NumVectors)
	stage("diagonalize", start)
	e.log.WithFields(logrus.Fields{"ground": eig.Values[0], "kept": res.Eigen.Dim()}).Info("diagonalization done")

	res.Metrics = metrics.Evaluate(e.opts.Metrics, &metrics.Snapshot{
		Energies:    res.Energies,
		Hamiltonian: h,
		Quadrature:  qres,
	})
	for name, d := range res.Timings {
		res.Metrics[name+"_s"] = d.Seconds()
	}
	return res, nil
}

// Levels groups the full spectrum into degenerate levels.
func (r *Result) Levels(tol float64) []eigen.Level {
	return eigen.Levels(r.Energies, tol)
}

// StorageRun packages the result for storage.Store.Save.
func (r *Result) StorageRun(cfg *config.Config) *storage.Run {
	p := r.Params
	meta := storage.RunMetadata{
		Name:        p.Name,
		Dim:         r.Hamiltonian.Dim(),
		NNZ:         r.Hamiltonian.NNZ(),
		Format:      r.Hamiltonian.Format().String(),
		Strategy:    p.Assembly.Strategy.String(),
		Potential:   p.Potential.Kind,
		Nodes:       p.Radial.Nodes,
		Bins:        p.Radial.Bins,
		BinWidth:    p.Radial.BinWidth,
		Lmax:        p.Lmax,
		QuadMode:    p.Quadrature.Mode.String(),
		QuadSource:  r.QuadSource.String(),
		Unconverged: len(r.Quadrature.Unconverged()),
		Schemes:     r.Quadrature.Histogram(),
		Energies:    r.Eigen.Values,
		Metrics:     r.Metrics,
	}
	return &storage.Run{
		Meta:        meta,
		Config:      cfg,
		Basis:       r.Basis,
		Hamiltonian: r.Hamiltonian,
		Eigen:       r.Eigen,
		Levels:      r.Quadrature.Levels,
	}
}

// DefaultMetrics picks the metrics that make sense for the potential.
func DefaultMetrics(p *config.Params) []metrics.Metric {
	ms := []metrics.Metric{metrics.NewFill(), metrics.NewUnconverged(), metrics.NewAngularPoints()}
	switch p.Potential.Kind {
	case "coulomb", "hydrogen":
		z := p.Potential.Charge
		if z == 0 {
			z = 1
		}
		ms = append(ms, metrics.NewGroundError(metrics.HydrogenLevel(z, 1)), metrics.NewHydrogenLevelError(z, 3))
	}
	return ms
}
