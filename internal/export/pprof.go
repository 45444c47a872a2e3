package export

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/google/pprof/profile"

	"profile-viz/internal/analyzer"
)

// BuildProfile converts aggregated statistics into a pprof profile with one
// sample per function: its call count and its total time impact.
func BuildProfile(stats []analyzer.FunctionStats) (*profile.Profile, error) {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "calls", Unit: "count"},
			{Type: "time", Unit: "nanoseconds"},
		},
		DefaultSampleType: "time",
		PeriodType:        &profile.ValueType{Type: "time", Unit: "nanoseconds"},
		Period:            1,
	}

	for i, fs := range stats {
		id := uint64(i + 1)
		fn := &profile.Function{
			ID:         id,
			Name:       fs.Name,
			SystemName: fs.Name,
		}
		loc := &profile.Location{
			ID:   id,
			Line: []profile.Line{{Function: fn}},
		}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)
		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{int64(fs.Calls), msToNanos(fs.TotalMs)},
			NumLabel: map[string][]int64{
				"samples": {int64(fs.Count)},
			},
		})
	}

	if err := p.CheckValid(); err != nil {
		return nil, fmt.Errorf("invalid pprof profile: %w", err)
	}
	return p, nil
}

// WritePprof writes stats as a gzipped pprof profile.
func WritePprof(w io.Writer, stats []analyzer.FunctionStats) error {
	p, err := BuildProfile(stats)
	if err != nil {
		return err
	}
	if err := p.Write(w); err != nil {
		return fmt.Errorf("failed to write pprof profile: %w", err)
	}
	return nil
}

// WritePprofFile is WritePprof to a new file at path.
func WritePprofFile(path string, stats []analyzer.FunctionStats) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create pprof file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close pprof file: %w", cerr)
		}
	}()

	return WritePprof(f, stats)
}

func msToNanos(ms float64) int64 {
	return int64(math.Round(ms * 1e6))
}
