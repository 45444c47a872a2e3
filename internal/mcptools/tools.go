package mcptools

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"profile-viz/internal/analyzer"
	"profile-viz/internal/render"
	"profile-viz/internal/timing"
)

const (
	serverName     = "profile-viz"
	defaultTopN    = 10
	rule           = "═══════════════════════════════════════════════════\n\n"
	errNotLoaded   = "Profile not loaded. Use load_profile tool first"
	filePathParam  = "file_path"
	outputParam    = "output_path"
	topNParam      = "top_n"
	filePathDetail = "Path to the loaded profile results JSON file"
)

type loaded struct {
	data  *timing.Data
	rows  []timing.SampleRow
	stats []analyzer.FunctionStats
}

// Server exposes profile analysis as MCP tools.
type Server struct {
	logger log.Logger
	mcp    *server.MCPServer

	mu    sync.Mutex
	cache map[string]*loaded
}

// New creates the MCP server and registers all tools.
func New(logger log.Logger, version string) *Server {
	s := &Server{
		logger: logger,
		cache:  make(map[string]*loaded),
		mcp: server.NewMCPServer(
			serverName,
			version,
			server.WithLogging(),
			server.WithRecovery(),
		),
	}
	s.registerTools()
	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func (s *Server) Serve() error {
	level.Info(s.logger).Log("msg", "serving MCP tools over stdio")
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("load_profile",
		mcp.WithDescription("Load a profile results JSON file (per-function timing samples) for analysis"),
		mcp.WithString(filePathParam,
			mcp.Required(),
			mcp.Description("Path to the profile results JSON file"),
		),
	), s.handleLoadProfile)

	s.mcp.AddTool(mcp.NewTool("function_statistics",
		mcp.WithDescription("Per-function call count, sample count, mean, standard deviation, min/max and total time, ordered by total time impact (ascending)."),
		mcp.WithString(filePathParam,
			mcp.Required(),
			mcp.Description(filePathDetail),
		),
	), s.handleFunctionStatistics)

	s.mcp.AddTool(mcp.NewTool("find_hotspots",
		mcp.WithDescription("Find the functions with the largest total time impact (mean sample duration × calls)."),
		mcp.WithString(filePathParam,
			mcp.Required(),
			mcp.Description(filePathDetail),
		),
		mcp.WithNumber(topNParam,
			mcp.Description("Number of top hotspots to return (default: 10)"),
		),
	), s.handleFindHotspots)

	s.mcp.AddTool(mcp.NewTool("detect_performance_issues",
		mcp.WithDescription("Detect dominant functions, unstable timings and reported averages that disagree with the samples."),
		mcp.WithString(filePathParam,
			mcp.Required(),
			mcp.Description(filePathDetail),
		),
	), s.handleDetectIssues)

	s.mcp.AddTool(mcp.NewTool("render_chart",
		mcp.WithDescription("Render the total time impact and duration distribution charts of a profile results file to an image (png, jpg, tif, svg, pdf or eps)."),
		mcp.WithString(filePathParam,
			mcp.Required(),
			mcp.Description("Path to the profile results JSON file"),
		),
		mcp.WithString(outputParam,
			mcp.Required(),
			mcp.Description("Path of the image to write; the extension selects the format"),
		),
	), s.handleRenderChart)
}

func (s *Server) load(path string) (*loaded, error) {
	data, err := timing.Load(path)
	if err != nil {
		return nil, err
	}
	rows := data.Rows()
	return &loaded{
		data:  data,
		rows:  rows,
		stats: analyzer.Aggregate(rows),
	}, nil
}

func (s *Server) cached(path string) (*loaded, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.cache[path]
	return l, ok
}

func (s *Server) handleLoadProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString(filePathParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l, err := s.load(filePath)
	if err != nil {
		level.Warn(s.logger).Log("msg", "failed to load profile", "path", filePath, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load profile: %v", err)), nil
	}

	s.mu.Lock()
	s.cache[filePath] = l
	s.mu.Unlock()

	sum := analyzer.Summarize(l.stats)
	result := fmt.Sprintf(`Profile loaded successfully!

File: %s
Functions: %d
Samples: %d
Calls: %d
Total Time: %.1fms
Slowest: %s

Use other tools to analyze this profile.
`,
		filePath,
		sum.Functions,
		sum.TotalSamples,
		sum.TotalCalls,
		sum.TotalMs,
		sum.Slowest,
	)

	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleFunctionStatistics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString(filePathParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l, ok := s.cached(filePath)
	if !ok {
		return mcp.NewToolResultError(errNotLoaded), nil
	}

	return mcp.NewToolResultText(render.FormatReport(l.stats)), nil
}

func (s *Server) handleFindHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString(filePathParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	topN := int(request.GetFloat(topNParam, defaultTopN))

	l, ok := s.cached(filePath)
	if !ok {
		return mcp.NewToolResultError(errNotLoaded), nil
	}

	hotspots := analyzer.FindHotspots(l.stats, topN)

	var sb strings.Builder
	sb.WriteString("🔥 TOP TIME HOTSPOTS (Functions With Most Total Time)\n")
	sb.WriteString(rule)

	if len(hotspots) == 0 {
		sb.WriteString("No hotspots found.\n")
	} else {
		for i, hs := range hotspots {
			sb.WriteString(analyzer.FormatHotspot(hs, i+1))
			sb.WriteString("\n")
		}
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleDetectIssues(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString(filePathParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l, ok := s.cached(filePath)
	if !ok {
		return mcp.NewToolResultError(errNotLoaded), nil
	}

	issues := analyzer.DetectPerformanceIssues(l.stats)

	var sb strings.Builder
	sb.WriteString("⚠️  AUTOMATED PERFORMANCE ISSUE DETECTION\n")
	sb.WriteString(rule)

	if len(issues) == 0 {
		sb.WriteString("✅ No significant performance issues detected!\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	bySeverity := map[string][]analyzer.PerformanceIssue{}
	for _, issue := range issues {
		bySeverity[issue.Severity] = append(bySeverity[issue.Severity], issue)
	}

	sections := []struct {
		severity string
		heading  string
	}{
		{"Critical", "🔴 CRITICAL ISSUES:\n\n"},
		{"High", "🟠 HIGH PRIORITY ISSUES:\n\n"},
		{"Medium", "🟡 MEDIUM PRIORITY ISSUES:\n\n"},
		{"Low", "🔵 LOW PRIORITY ISSUES:\n\n"},
	}
	for _, sec := range sections {
		list := bySeverity[sec.severity]
		if len(list) == 0 {
			continue
		}
		sb.WriteString(sec.heading)
		for i, issue := range list {
			sb.WriteString(fmt.Sprintf("%d. [%s] %s\n", i+1, issue.Category, issue.Description))
			sb.WriteString(fmt.Sprintf("   Function: %s\n", issue.Function))
			if issue.Impact > 0 {
				sb.WriteString(fmt.Sprintf("   Impact: %.2f%% of total time\n", issue.Impact))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("📊 SUMMARY:\n")
	for _, sec := range sections {
		sb.WriteString(fmt.Sprintf("   %s: %d\n", sec.severity, len(bySeverity[sec.severity])))
	}

	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleRenderChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filePath, err := request.RequireString(filePathParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	outputPath, err := request.RequireString(outputParam)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	l, ok := s.cached(filePath)
	if !ok {
		if l, err = s.load(filePath); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to load profile: %v", err)), nil
		}
	}

	fig, err := render.NewFigure(l.stats, l.rows, render.WithLogger(s.logger))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render chart: %v", err)), nil
	}
	defer fig.Close()

	if err := fig.Save(outputPath); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to render chart: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Chart for %d functions written to %s\n", len(l.stats), outputPath)), nil
}
