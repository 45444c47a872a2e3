package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"

	"profile-viz/internal/analyzer"
	"profile-viz/internal/export"
	"profile-viz/internal/logger"
	"profile-viz/internal/mcptools"
	"profile-viz/internal/render"
	"profile-viz/internal/timing"
)

var version = "dev"

type flags struct {
	LogLevel  string `enum:"error,warn,info,debug" default:"warn" help:"Log level."`
	LogFormat string `enum:"logfmt,json" default:"logfmt" help:"Log format."`

	Show  showCmd  `cmd:"" default:"withargs" help:"Render the timing charts and print function statistics (default)."`
	Serve serveCmd `cmd:"" help:"Serve profile analysis tools over MCP on stdio."`
}

type showCmd struct {
	Input  string `arg:"" optional:"" default:"profile_results.json" help:"Input JSON file (default: ${default})."`
	Output string `short:"o" help:"Output image file (optional); the chart is shown in a viewer when omitted."`
	Pprof  string `help:"Also write the aggregated statistics as a gzipped pprof profile to this path."`
	Viewer string `help:"Command used to display the chart when no output file is given."`
}

type serveCmd struct{}

// env carries what every command needs.
type env struct {
	ctx    context.Context
	stdout io.Writer
	logger log.Logger
}

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr, kong.Exit(os.Exit)))
}

func runMain(args []string, stdout, stderr io.Writer, opts ...kong.Option) int {
	cli := flags{}
	opts = append([]kong.Option{
		kong.Name("profile-viz"),
		kong.Description("Visualize profiler timing samples."),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
	}, opts...)

	parser, err := kong.New(&cli, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	e := &env{
		ctx:    context.Background(),
		stdout: stdout,
		logger: logger.NewLoggerTo(stderr, cli.LogLevel, cli.LogFormat, "profile-viz"),
	}

	return exitCode(stdout, kctx.Run(e))
}

// exitCode prints a message for err and returns the process exit code.
func exitCode(stdout io.Writer, err error) int {
	var sigErr run.SignalError

	switch {
	case err == nil:
		return 0
	case errors.Is(err, timing.ErrInputNotFound):
		fmt.Fprintf(stdout, "Error: %v\n", err)
	case errors.As(err, &sigErr), errors.Is(err, context.Canceled):
		fmt.Fprintln(stdout, "\nOperation cancelled by user")
	default:
		fmt.Fprintf(stdout, "Error processing profile data: %v\n", err)
	}
	return 1
}

func (c *showCmd) Run(e *env) error {
	if _, err := os.Stat(c.Input); err != nil {
		return &timing.InputNotFoundError{Path: c.Input}
	}

	ctx, cancel := context.WithCancel(e.ctx)
	defer cancel()

	var g run.Group
	g.Add(func() error {
		return c.visualize(ctx, e)
	}, func(error) {
		cancel()
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	return g.Run()
}

func (c *showCmd) visualize(ctx context.Context, e *env) error {
	data, err := timing.Load(c.Input)
	if err != nil {
		return err
	}
	rows := data.Rows()
	stats := analyzer.Aggregate(rows)
	level.Debug(e.logger).Log("msg", "loaded profile", "path", c.Input, "functions", len(stats), "samples", len(rows))

	fig, err := render.NewFigure(stats, rows,
		render.WithLogger(e.logger),
		render.WithViewer(render.ParseViewer(c.Viewer)),
	)
	if err != nil {
		return err
	}
	defer fig.Close()

	if c.Output != "" {
		if err := fig.Save(c.Output); err != nil {
			return err
		}
	} else if err := fig.Show(ctx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if c.Pprof != "" {
		if err := export.WritePprofFile(c.Pprof, stats); err != nil {
			return err
		}
		level.Info(e.logger).Log("msg", "wrote pprof profile", "path", c.Pprof)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return render.WriteReport(e.stdout, stats)
}

func (c *serveCmd) Run(e *env) error {
	return mcptools.New(e.logger, version).Serve()
}
