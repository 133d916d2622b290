// Package optim scans discretization parameters and scores each setting
// with a run metric, typically the error of the lowest levels.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/san-kum/femdvr/internal/config"
	"github.com/san-kum/femdvr/internal/experiment"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Point is one evaluated setting.
type Point struct {
	Params map[string]float64
	Value  float64
	Dim    int
	Err    error
}

// Key renders the setting as "name=value" pairs in parameter order.
func (p Point) Key(names []string) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%g", n, p.Params[n])
	}
	return strings.Join(parts, " ")
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	probe := config.DefaultConfig()
	for _, name := range params {
		if err := Apply(probe, name, 1); err != nil {
			return nil, err
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func (g *GridSearch) Names() []string { return g.paramNames }

// Build turns one setting into a ready experiment.
type Build func(params map[string]float64) (*experiment.Experiment, error)

// Search evaluates every combination and returns all points sorted by
// value, best first. Failed settings are kept with Value +Inf and Err set.
func (g *GridSearch) Search(ctx context.Context, build Build, metricName string) ([]Point, error) {
	var points []Point
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, metricName, &points); err != nil {
		return points, err
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Value < points[j].Value })
	return points, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Build,
	metricName string,
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		*points = append(*points, evaluate(ctx, current, build, metricName))
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, metricName, points); err != nil {
			return err
		}
	}
	return nil
}

func evaluate(ctx context.Context, params map[string]float64, build Build, metricName string) Point {
	pt := Point{Params: params, Value: math.Inf(1)}
	exp, err := build(params)
	if err != nil {
		pt.Err = err
		return pt
	}
	result, err := exp.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}
	pt.Dim = result.Hamiltonian.Dim()
	val, ok := result.Metrics[metricName]
	if !ok {
		pt.Err = fmt.Errorf("optim: run has no metric %q", metricName)
		return pt
	}
	pt.Value = val
	return pt
}

// Apply sets a scan parameter on cfg.
func Apply(cfg *config.Config, name string, val float64) error {
	switch name {
	case "nodes":
		cfg.Basis.Nodes = int(val)
	case "bins":
		cfg.Basis.Bins = int(val)
	case "bin_width":
		cfg.Basis.BinWidth = val
	case "lmax":
		cfg.Basis.Lmax = int(val)
	case "shift":
		cfg.Basis.Shift = val
	case "tolerance":
		cfg.Quadrature.Tolerance = val
	default:
		return fmt.Errorf("%w: %s", ErrUnknownParam, name)
	}
	return nil
}

// ConfigBuild builds experiments from a base config. Every setting gets
// its own levels file so runs do not read each other's quadrature. Without
// explicit metrics each run gets experiment.DefaultMetrics.
func ConfigBuild(base *config.Config, opts experiment.Options) Build {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := base.Clone()
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		tag := make([]string, 0, len(names))
		for _, name := range names {
			if err := Apply(cfg, name, params[name]); err != nil {
				return nil, err
			}
			tag = append(tag, fmt.Sprintf("%s%g", name, params[name]))
		}
		cfg.Quadrature.LevelsFile = fmt.Sprintf("quad_levels_scan_%s.dat", strings.Join(tag, "_"))

		p, err := cfg.Validate()
		if err != nil {
			return nil, err
		}
		o := opts
		if o.Metrics == nil {
			o.Metrics = experiment.DefaultMetrics(p)
		}
		return experiment.New(p, o), nil
	}
}
