package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/femdvr/internal/eigen"
	"github.com/san-kum/femdvr/internal/quadsel"
	"github.com/san-kum/femdvr/internal/sphquad"
	"github.com/san-kum/femdvr/internal/storage"
)

// Summary renders the metadata panel shown by `show` and after `run`.
func Summary(meta *storage.RunMetadata) string {
	lines := []string{
		Title.Render(meta.ID),
		"",
		Metric("potential", meta.Potential),
		Metric("grid", fmt.Sprintf("%d nodes x %d bins, width %g", meta.Nodes, meta.Bins, meta.BinWidth)),
		Metric("lmax", fmt.Sprintf("%d", meta.Lmax)),
		Metric("dimension", fmt.Sprintf("%d", meta.Dim)),
		Metric("storage", fmt.Sprintf("%s, %d nonzeros", meta.Format, meta.NNZ)),
		Metric("strategy", meta.Strategy),
		Metric("quadrature", fmt.Sprintf("%s (%s)", meta.QuadMode, meta.QuadSource)),
	}
	if meta.Unconverged > 0 {
		lines = append(lines, MetricLabel.Render("unconverged")+" "+Warn.Render(fmt.Sprintf("%d points", meta.Unconverged)))
	} else {
		lines = append(lines, MetricLabel.Render("unconverged")+" "+OK.Render("none"))
	}
	if len(meta.Energies) > 0 {
		lines = append(lines, Metric("ground", fmt.Sprintf("%.10f", meta.Energies[0])))
	}
	keys := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		lines = append(lines, Metric(k, fmt.Sprintf("%.4g", meta.Metrics[k])))
	}
	return Panel.Render(strings.Join(lines, "\n"))
}

// LevelsTable writes grouped eigenvalues. When reference is non-nil its
// value for the level number is printed alongside the difference.
func LevelsTable(w io.Writer, levels []eigen.Level, reference func(n int) float64) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if reference != nil {
		fmt.Fprintln(tw, "N\tENERGY\tDEG\tREFERENCE\tERROR")
	} else {
		fmt.Fprintln(tw, "N\tENERGY\tDEG")
	}
	for i, lv := range levels {
		if reference != nil {
			ref := reference(i + 1)
			fmt.Fprintf(tw, "%d\t%.10f\t%d\t%.10f\t%.2e\n", i+1, lv.Energy, lv.Degeneracy, ref, math.Abs(lv.Energy-ref))
			continue
		}
		fmt.Fprintf(tw, "%d\t%.10f\t%d\n", i+1, lv.Energy, lv.Degeneracy)
	}
	return tw.Flush()
}

// SchemesTable writes how many radial points use each scheme.
func SchemesTable(w io.Writer, histogram map[string]int) error {
	ids := make([]string, 0, len(histogram))
	total := 0
	for id, n := range histogram {
		ids = append(ids, id)
		total += n
	}
	sort.Slice(ids, func(i, j int) bool { return degree(ids[i]) < degree(ids[j]) })

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCHEME\tPOINTS\tSHARE")
	for _, id := range ids {
		share := float64(histogram[id]) / float64(max(total, 1))
		fmt.Fprintf(tw, "%s\t%d\t%s\n", id, histogram[id], Bar(share, 20))
	}
	return tw.Flush()
}

// SpectrumPlot draws the lowest eigenvalues against their index.
func SpectrumPlot(energies []float64, width, height int) string {
	if len(energies) == 0 {
		return Subtle.Render("no energies")
	}
	data := energies
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("energy vs index"),
	)
}

// OrderPlot draws the polynomial degree of the scheme chosen at each
// radial point, in point order.
func OrderPlot(levels []quadsel.Level, width, height int) string {
	if len(levels) == 0 {
		return Subtle.Render("no quadrature levels")
	}
	ordered := append([]quadsel.Level(nil), levels...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	data := make([]float64, len(ordered))
	for i, lv := range ordered {
		data[i] = float64(degree(lv.Scheme))
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption("quadrature degree vs radial point"),
	)
}

func degree(id string) int {
	s, err := sphquad.Lookup(id)
	if err != nil {
		return 0
	}
	return s.Degree()
}
