package render

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"profile-viz/internal/analyzer"
	"profile-viz/internal/timing"
)

// ErrRender wraps every failure while building or writing the figure.
var ErrRender = errors.New("render error")

const (
	impactTitle       = "Total Time Impact"
	impactLabel       = "Total Time (ms)"
	distributionTitle = "Duration Distribution"
	distributionLabel = "Duration (ms)"
)

var outlierColor = color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0x80}

// newImpactPlot draws one horizontal bar per function, colored from green
// (smallest total) to red (largest total) by rank.
func newImpactPlot(stats []analyzer.FunctionStats, names []string, band vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = impactTitle
	p.X.Label.Text = impactLabel
	p.X.Min = 0
	addValueGrid(p)

	cmap := moreland.SmoothGreenRed()
	cmap.SetMin(0)
	cmap.SetMax(1)

	for i, fs := range stats {
		bar, err := plotter.NewBarChart(plotter.Values{fs.TotalMs}, band)
		if err != nil {
			return nil, fmt.Errorf("%w: bar for %q: %w", ErrRender, fs.Name, err)
		}
		bar.Horizontal = true
		bar.XMin = float64(i)
		bar.LineStyle.Width = 0

		c, err := cmap.At(rank(i, len(stats)))
		if err != nil {
			return nil, fmt.Errorf("%w: color for %q: %w", ErrRender, fs.Name, err)
		}
		bar.Color = c

		p.Add(bar)
	}

	p.NominalY(names...)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(stats)) - 0.5

	return p, nil
}

// newDistributionPlot draws one horizontal box per function from its raw
// sample durations.
func newDistributionPlot(stats []analyzer.FunctionStats, durations map[string][]float64, names []string, band vg.Length) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = distributionTitle
	p.X.Label.Text = distributionLabel
	addValueGrid(p)

	for i, fs := range stats {
		values := durations[fs.Name]
		if len(values) == 0 {
			return nil, fmt.Errorf("%w: no samples for %q", ErrRender, fs.Name)
		}
		box, err := plotter.NewBoxPlot(band, float64(i), plotter.Values(values))
		if err != nil {
			return nil, fmt.Errorf("%w: box for %q: %w", ErrRender, fs.Name, err)
		}
		box.Horizontal = true
		box.GlyphStyle.Color = outlierColor
		box.GlyphStyle.Radius = vg.Points(2)

		p.Add(box)
	}

	p.NominalY(names...)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(stats)) - 0.5

	return p, nil
}

// addValueGrid draws grid lines across the value (x) axis only.
func addValueGrid(p *plot.Plot) {
	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	p.Add(grid)
}

// rank maps position i of n onto [0, 1].
func rank(i, n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(i) / float64(n-1)
}

// groupDurations collects the raw durations of each function name.
func groupDurations(rows []timing.SampleRow) map[string][]float64 {
	durations := make(map[string][]float64)
	for _, row := range rows {
		durations[row.Name] = append(durations[row.Name], row.Duration)
	}
	return durations
}
