package analyzer

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"

	"profile-viz/internal/timing"
)

// NotAvailable is printed in place of a statistic that is undefined,
// such as the standard deviation of a single sample.
const NotAvailable = "N/A"

// FunctionStats contains the descriptive statistics of one function's samples
type FunctionStats struct {
	Name    string
	Count   int
	Mean    float64
	StdDev  float64 // NaN when Count < 2
	Min     float64
	Max     float64
	Calls   int     // first value seen for Name
	AvgMs   float64 // first value seen for Name
	TotalMs float64 // Mean * Calls
}

type group struct {
	name      string
	calls     int
	avgMs     float64
	durations []float64
}

// Aggregate groups rows by function name and computes per-function
// statistics. The result is ordered ascending by TotalMs; functions with
// equal TotalMs keep the order in which they first appear.
func Aggregate(rows []timing.SampleRow) []FunctionStats {
	groups := make(map[string]*group)
	order := []string{}

	for _, row := range rows {
		g, exists := groups[row.Name]
		if !exists {
			g = &group{
				name:  row.Name,
				calls: row.Calls,
				avgMs: row.AvgMs,
			}
			groups[row.Name] = g
			order = append(order, row.Name)
		}
		g.durations = append(g.durations, row.Duration)
	}

	stats := make([]FunctionStats, 0, len(order))
	for _, name := range order {
		stats = append(stats, computeGroup(groups[name]))
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalMs < stats[j].TotalMs
	})

	return stats
}

func computeGroup(g *group) FunctionStats {
	fs := FunctionStats{
		Name:   g.name,
		Count:  len(g.durations),
		Calls:  g.calls,
		AvgMs:  g.avgMs,
		StdDev: math.NaN(),
	}

	fs.Mean = stat.Mean(g.durations, nil)
	if fs.Count > 1 {
		// Unbiased (N-1) estimator.
		fs.StdDev = stat.StdDev(g.durations, nil)
	}
	fs.Min = floats.Min(g.durations)
	fs.Max = floats.Max(g.durations)
	fs.TotalMs = fs.Mean * float64(fs.Calls)

	return fs
}

// Round3 rounds v to 3 decimal places for display.
func Round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return scalar.Round(v, 3)
}

// FormatMs formats v with prec decimals, or NotAvailable when v is not a
// finite number.
func FormatMs(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// Summary holds totals across all functions of a profile
type Summary struct {
	Functions    int
	TotalSamples int
	TotalCalls   int
	TotalMs      float64
	Slowest      string // function with the largest TotalMs
}

// Summarize computes totals over the aggregated statistics.
func Summarize(stats []FunctionStats) Summary {
	s := Summary{Functions: len(stats)}
	best := math.Inf(-1)

	for _, fs := range stats {
		s.TotalSamples += fs.Count
		s.TotalCalls += fs.Calls
		s.TotalMs += fs.TotalMs
		if fs.TotalMs > best {
			best = fs.TotalMs
			s.Slowest = fs.Name
		}
	}

	return s
}
