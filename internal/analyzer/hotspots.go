package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Hotspot represents a function that accounts for a large share of the
// total time impact
type Hotspot struct {
	Function    string
	TotalMs     float64
	Calls       int
	SampleCount int
	Percentage  float64 // share of the summed TotalMs of all functions
}

// FindHotspots returns the topN functions by total time impact, largest
// first. topN <= 0 returns all of them.
func FindHotspots(stats []FunctionStats, topN int) []Hotspot {
	total := 0.0
	for _, fs := range stats {
		total += fs.TotalMs
	}

	hotspots := make([]Hotspot, 0, len(stats))
	for _, fs := range stats {
		hs := Hotspot{
			Function:    fs.Name,
			TotalMs:     fs.TotalMs,
			Calls:       fs.Calls,
			SampleCount: fs.Count,
		}
		if total > 0 {
			hs.Percentage = (fs.TotalMs / total) * 100.0
		}
		hotspots = append(hotspots, hs)
	}

	sort.SliceStable(hotspots, func(i, j int) bool {
		return hotspots[i].TotalMs > hotspots[j].TotalMs
	})

	if topN > 0 && topN < len(hotspots) {
		return hotspots[:topN]
	}
	return hotspots
}

// PerformanceIssue is a heuristic finding about one function
type PerformanceIssue struct {
	Severity    string // "Critical", "High", "Medium", "Low"
	Category    string // e.g. "Time Hotspot", "Unstable Timing"
	Description string
	Function    string
	Impact      float64 // % of total time
}

const (
	criticalShare   = 20.0
	highShare       = 10.0
	maxVariation    = 1.0
	maxAverageDrift = 0.25
	driftEpsilonMs  = 0.001
)

// DetectPerformanceIssues identifies functions that dominate the run,
// have erratic timings, or whose reported average disagrees with the
// recorded samples.
func DetectPerformanceIssues(stats []FunctionStats) []PerformanceIssue {
	issues := []PerformanceIssue{}
	hotspots := FindHotspots(stats, 0)
	shares := make(map[string]float64, len(hotspots))

	for _, hs := range hotspots {
		shares[hs.Function] = hs.Percentage

		switch {
		case hs.Percentage > criticalShare:
			issues = append(issues, PerformanceIssue{
				Severity:    "Critical",
				Category:    "Time Hotspot",
				Description: fmt.Sprintf("Function accounts for %.2f%% of total time impact", hs.Percentage),
				Function:    hs.Function,
				Impact:      hs.Percentage,
			})
		case hs.Percentage > highShare:
			issues = append(issues, PerformanceIssue{
				Severity:    "High",
				Category:    "Time Hotspot",
				Description: fmt.Sprintf("Function accounts for %.2f%% of total time impact", hs.Percentage),
				Function:    hs.Function,
				Impact:      hs.Percentage,
			})
		}
	}

	for _, fs := range stats {
		if fs.Count > 1 && fs.Mean > 0 && !math.IsNaN(fs.StdDev) {
			if cv := fs.StdDev / fs.Mean; cv > maxVariation {
				issues = append(issues, PerformanceIssue{
					Severity:    "Medium",
					Category:    "Unstable Timing",
					Description: fmt.Sprintf("Sample durations vary widely (std dev %.3fms is %.0f%% of the mean)", fs.StdDev, cv*100),
					Function:    fs.Name,
					Impact:      shares[fs.Name],
				})
			}
		}

		diff := math.Abs(fs.AvgMs - fs.Mean)
		if fs.Mean > 0 && diff > driftEpsilonMs && diff/fs.Mean > maxAverageDrift {
			issues = append(issues, PerformanceIssue{
				Severity:    "Low",
				Category:    "Reported Average Drift",
				Description: fmt.Sprintf("Reported average %.3fms differs from sample mean %.3fms; samples may not cover all calls", fs.AvgMs, fs.Mean),
				Function:    fs.Name,
				Impact:      shares[fs.Name],
			})
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		return issues[i].Impact > issues[j].Impact
	})

	return issues
}

// FormatHotspot returns a human-readable string representation of a hotspot
func FormatHotspot(hs Hotspot, rank int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("#%d: %s\n", rank, hs.Function))
	sb.WriteString(fmt.Sprintf("    Total Time: %.1fms (%.2f%%)\n", hs.TotalMs, hs.Percentage))
	sb.WriteString(fmt.Sprintf("    Calls: %d\n", hs.Calls))
	sb.WriteString(fmt.Sprintf("    Samples: %d\n", hs.SampleCount))

	return sb.String()
}
