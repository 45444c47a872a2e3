package analyzer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFindHotspots(t *testing.T) {
	stats := []FunctionStats{
		{Name: "small", TotalMs: 10, Calls: 1, Count: 1},
		{Name: "medium", TotalMs: 30, Calls: 3, Count: 2},
		{Name: "large", TotalMs: 60, Calls: 6, Count: 3},
	}

	all := FindHotspots(stats, 0)
	require.Len(t, all, 3)
	require.Equal(t, "large", all[0].Function)
	require.InDelta(t, 60.0, all[0].Percentage, 1e-9)
	require.Equal(t, "small", all[2].Function)

	top := FindHotspots(stats, 2)
	require.Len(t, top, 2)
	require.Equal(t, "medium", top[1].Function)

	require.Contains(t, FormatHotspot(top[0], 1), "#1: large")
}

func TestFindHotspotsZeroTotal(t *testing.T) {
	hs := FindHotspots([]FunctionStats{{Name: "idle"}}, 5)
	require.Len(t, hs, 1)
	require.Zero(t, hs[0].Percentage)
}

func TestDetectPerformanceIssues(t *testing.T) {
	stats := []FunctionStats{
		{Name: "steady", Count: 3, Mean: 1, StdDev: 0.1, AvgMs: 1, TotalMs: 5},
		{Name: "spiky", Count: 3, Mean: 1, StdDev: 2, AvgMs: 1, TotalMs: 15},
		{Name: "drift", Count: 1, Mean: 1, StdDev: math.NaN(), AvgMs: 2, TotalMs: 5},
		{Name: "dominant", Count: 3, Mean: 10, StdDev: 1, AvgMs: 10, TotalMs: 75},
	}

	issues := DetectPerformanceIssues(stats)

	byFunc := map[string][]string{}
	for _, is := range issues {
		byFunc[is.Function] = append(byFunc[is.Function], is.Severity+"/"+is.Category)
	}

	require.Equal(t, []string{"Critical/Time Hotspot"}, byFunc["dominant"])
	require.ElementsMatch(t, []string{"High/Time Hotspot", "Medium/Unstable Timing"}, byFunc["spiky"])
	require.Equal(t, []string{"Low/Reported Average Drift"}, byFunc["drift"])
	require.NotContains(t, byFunc, "steady")

	for i := 1; i < len(issues); i++ {
		require.GreaterOrEqual(t, issues[i-1].Impact, issues[i].Impact)
	}
}
