package mcptools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-kit/log"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

const sampleProfile = `{"profiles":[
	{"name":"World::Update","samples":[1.2,1.4,1.1,9.5,1.3],"calls":1500,"averageMs":2.9,"minMs":1.1,"maxMs":9.5},
	{"name":"Renderer::DrawFrame","samples":[4,5,6],"calls":900,"averageMs":5,"minMs":4,"maxMs":6},
	{"name":"Input::Poll","samples":[0.02],"calls":1500,"averageMs":0.02,"minMs":0.02,"maxMs":0.02}
]}`

func writeProfile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile_results.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleProfile), 0o644))
	return path
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (string, bool) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text, res.IsError
}

func TestToolsRequireLoad(t *testing.T) {
	s := New(log.NewNopLogger(), "test")
	path := writeProfile(t)

	text, isErr := call(t, s.handleFunctionStatistics, map[string]any{"file_path": path})
	require.True(t, isErr)
	require.Equal(t, errNotLoaded, text)
}

func TestLoadAndAnalyze(t *testing.T) {
	s := New(log.NewNopLogger(), "test")
	path := writeProfile(t)

	text, isErr := call(t, s.handleLoadProfile, map[string]any{"file_path": path})
	require.False(t, isErr)
	require.Contains(t, text, "Functions: 3")
	require.Contains(t, text, "Samples: 9")
	require.Contains(t, text, "Slowest: Renderer::DrawFrame")

	text, isErr = call(t, s.handleFunctionStatistics, map[string]any{"file_path": path})
	require.False(t, isErr)
	require.Contains(t, text, "Function Statistics:")
	require.Contains(t, text, "Input::Poll:\n  Calls: 1,500")
	require.Contains(t, text, "Std Dev: N/A")

	text, isErr = call(t, s.handleFindHotspots, map[string]any{"file_path": path, "top_n": 1.0})
	require.False(t, isErr)
	require.Contains(t, text, "#1: Renderer::DrawFrame")
	require.NotContains(t, text, "#2:")

	text, isErr = call(t, s.handleDetectIssues, map[string]any{"file_path": path})
	require.False(t, isErr)
	require.Contains(t, text, "CRITICAL ISSUES")
	require.Contains(t, text, "SUMMARY")
}

func TestLoadProfileErrors(t *testing.T) {
	s := New(log.NewNopLogger(), "test")

	text, isErr := call(t, s.handleLoadProfile, map[string]any{})
	require.True(t, isErr)
	require.Contains(t, text, "file_path")

	text, isErr = call(t, s.handleLoadProfile, map[string]any{"file_path": filepath.Join(t.TempDir(), "missing.json")})
	require.True(t, isErr)
	require.Contains(t, text, "No profile data found")
}

func TestRenderChart(t *testing.T) {
	s := New(log.NewNopLogger(), "test")
	path := writeProfile(t)
	out := filepath.Join(t.TempDir(), "chart.svg")

	text, isErr := call(t, s.handleRenderChart, map[string]any{"file_path": path, "output_path": out})
	require.False(t, isErr, text)
	require.Contains(t, text, "Chart for 3 functions")

	info, err := os.Stat(out)
	require.NoError(t, err)
	require.NotZero(t, info.Size())

	text, isErr = call(t, s.handleRenderChart, map[string]any{"file_path": path, "output_path": filepath.Join(t.TempDir(), "chart.gif")})
	require.True(t, isErr)
	require.Contains(t, text, "Failed to render chart")
}
