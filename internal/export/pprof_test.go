package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/pprof/profile"
	"github.com/stretchr/testify/require"

	"profile-viz/internal/analyzer"
)

func TestWritePprofRoundTrip(t *testing.T) {
	stats := []analyzer.FunctionStats{
		{Name: "Input::Poll", Count: 1, Calls: 1500, TotalMs: 30},
		{Name: "World::Update", Count: 5, Calls: 1500, TotalMs: 2940.5},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePprof(&buf, stats))

	p, err := profile.Parse(&buf)
	require.NoError(t, err)
	require.Len(t, p.Sample, 2)
	require.Equal(t, "calls", p.SampleType[0].Type)
	require.Equal(t, "nanoseconds", p.SampleType[1].Unit)

	got := map[string][]int64{}
	for _, s := range p.Sample {
		require.Len(t, s.Location, 1)
		name := s.Location[0].Line[0].Function.Name
		got[name] = s.Value
		require.NotEmpty(t, s.NumLabel["samples"])
	}
	require.Equal(t, []int64{1500, 30_000_000}, got["Input::Poll"])
	require.Equal(t, []int64{1500, 2_940_500_000}, got["World::Update"])
}

func TestWritePprofFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.pb.gz")
	require.NoError(t, WritePprofFile(path, []analyzer.FunctionStats{{Name: "f", Count: 1, Calls: 1, TotalMs: 1}}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	p, err := profile.Parse(f)
	require.NoError(t, err)
	require.Len(t, p.Function, 1)
}

func TestBuildProfileEmpty(t *testing.T) {
	p, err := BuildProfile(nil)
	require.NoError(t, err)
	require.Empty(t, p.Sample)
}
