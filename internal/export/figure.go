// Package export writes run figures to image files with gonum/plot.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/sphquad"
)

var ErrFormat = errors.New("export: unsupported image format")

var (
	DefaultWidth  = 6 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

var (
	levelColor = color.RGBA{R: 0x00, G: 0x66, B: 0xcc, A: 0xff}
	orderColor = color.RGBA{R: 0xcc, G: 0x33, B: 0x66, A: 0xff}
	refColor   = color.RGBA{R: 0x88, G: 0x88, B: 0x99, A: 0xff}
)

// LevelDiagram draws one horizontal bar per level labelled with its
// degeneracy. Reference energies, when given, are drawn dashed beside it.
func LevelDiagram(title string, levels []eigen.Level, reference []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "energy (hartree)"
	p.X.Tick.Marker = plot.ConstantTicks(nil)
	p.X.Min, p.X.Max = -0.2, 2.6
	p.Add(plotter.NewGrid())

	labels := plotter.XYLabels{}
	for _, lv := range levels {
		bar, err := plotter.NewLine(plotter.XYs{{X: 0, Y: lv.Energy}, {X: 1, Y: lv.Energy}})
		if err != nil {
			return nil, err
		}
		bar.LineStyle.Width = vg.Points(1.5)
		bar.LineStyle.Color = levelColor
		p.Add(bar)

		labels.XYs = append(labels.XYs, plotter.XY{X: 1.05, Y: lv.Energy})
		labels.Labels = append(labels.Labels, fmt.Sprintf("x%d", lv.Degeneracy))
	}
	if len(levels) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, err
		}
		p.Add(l)
	}

	for _, e := range reference {
		ref, err := plotter.NewLine(plotter.XYs{{X: 1.5, Y: e}, {X: 2.5, Y: e}})
		if err != nil {
			return nil, err
		}
		ref.LineStyle.Width = vg.Points(1)
		ref.LineStyle.Color = refColor
		ref.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(ref)
	}
	return p, nil
}

// Spectrum plots eigenvalue against index.
func Spectrum(title string, energies []float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "index"
	p.Y.Label.Text = "energy (hartree)"
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(energies))
	for i, e := range energies {
		pts[i] = plotter.XY{X: float64(i), Y: e}
	}
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(2)
	s.GlyphStyle.Color = levelColor
	p.Add(s)
	return p, nil
}

// QuadratureOrder plots the degree of the scheme chosen at each radial
// point against its radius. radii is indexed by point index.
func QuadratureOrder(title string, levels []quadsel.Level, radii []float64) (*plot.Plot, error) {
	ordered := append([]quadsel.Level(nil), levels...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	pts := make(plotter.XYs, 0, len(ordered))
	for _, lv := range ordered {
		if lv.Index < 0 || lv.Index >= len(radii) {
			return nil, fmt.Errorf("export: level index %d outside %d radii", lv.Index, len(radii))
		}
		s, err := sphquad.Lookup(lv.Scheme)
		if err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
		pts = append(pts, plotter.XY{X: radii[lv.Index], Y: float64(s.Degree())})
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "r (bohr)"
	p.Y.Label.Text = "quadrature degree"
	p.Add(plotter.NewGrid())

	line, points, err := linePoints(pts)
	if err != nil {
		return nil, err
	}
	p.Add(line, points)
	return p, nil
}

func linePoints(pts plotter.XYs) (*plotter.Line, *plotter.Scatter, error) {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, nil, err
	}
	line.LineStyle.Width = vg.Points(1)
	line.LineStyle.Color = orderColor

	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, nil, err
	}
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	s.GlyphStyle.Radius = vg.Points(1.5)
	s.GlyphStyle.Color = orderColor
	return line, s, nil
}

// Save writes p to path, choosing the format from the extension.
func Save(p *plot.Plot, path string) error {
	if _, err := format(path); err != nil {
		return err
	}
	return p.Save(DefaultWidth, DefaultHeight, path)
}

// WriteTo renders p in the given format ("png", "svg", "pdf").
func WriteTo(p *plot.Plot, w io.Writer, fmtName string) error {
	if _, err := format("x." + fmtName); err != nil {
		return err
	}
	wt, err := p.WriterTo(DefaultWidth, DefaultHeight, fmtName)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

func format(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf":
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrFormat, ext)
}
