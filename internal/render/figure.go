package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"profile-viz/internal/analyzer"
	"profile-viz/internal/timing"
)

const (
	DefaultWidth  = 12 * vg.Inch
	DefaultHeight = 10 * vg.Inch
	DefaultDPI    = 300
)

// Figure is the two-panel chart of one profile. It owns the temporary files
// and viewer process created by Show; Close releases them.
type Figure struct {
	impact       *plot.Plot
	distribution *plot.Plot

	width, height vg.Length
	dpi           int
	viewer        []string
	logger        log.Logger

	mu     sync.Mutex
	proc   *os.Process
	temps  []string
	closed bool
}

// Option configures a Figure.
type Option func(*Figure)

// WithSize sets the figure dimensions.
func WithSize(w, h vg.Length) Option {
	return func(f *Figure) {
		f.width, f.height = w, h
	}
}

// WithDPI sets the resolution of raster output.
func WithDPI(dpi int) Option {
	return func(f *Figure) {
		f.dpi = dpi
	}
}

// WithViewer overrides the command used by Show. The image path is
// appended as the last argument.
func WithViewer(argv []string) Option {
	return func(f *Figure) {
		if len(argv) > 0 {
			f.viewer = argv
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(f *Figure) {
		f.logger = logger
	}
}

// NewFigure builds the impact and distribution panels. stats gives the
// order of the functions; rows supply the raw durations of each box.
func NewFigure(stats []analyzer.FunctionStats, rows []timing.SampleRow, opts ...Option) (*Figure, error) {
	if len(rows) == 0 || len(stats) == 0 {
		return nil, fmt.Errorf("%w: no data rows to plot", ErrRender)
	}

	f := &Figure{
		width:  DefaultWidth,
		height: DefaultHeight,
		dpi:    DefaultDPI,
		viewer: DefaultViewer(),
		logger: log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}

	names := make([]string, len(stats))
	for i, fs := range stats {
		names[i] = fs.Name
	}

	band := bandWidth(f.height, len(stats))

	var err error
	if f.impact, err = newImpactPlot(stats, names, band); err != nil {
		return nil, err
	}
	if f.distribution, err = newDistributionPlot(stats, groupDurations(rows), names, band); err != nil {
		return nil, err
	}

	return f, nil
}

// bandWidth sizes bars and boxes so that n of them fill about 60% of one
// panel.
func bandWidth(height vg.Length, n int) vg.Length {
	w := height / 2 * 0.6 / vg.Length(n)
	if hi := vg.Points(40); w > hi {
		return hi
	}
	if lo := vg.Points(2); w < lo {
		return lo
	}
	return w
}

func (f *Figure) draw(c vg.CanvasSizer) {
	dc := draw.New(c)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(18),
		PadY:      vg.Points(30),
	}

	plots := [][]*plot.Plot{{f.impact}, {f.distribution}}
	canvases := plot.Align(plots, tiles, dc)
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}
}

var formats = []string{"png", "jpg", "jpeg", "tif", "tiff", "svg", "pdf", "eps"}

// SupportedFormat reports whether Encode can write format.
func SupportedFormat(format string) bool {
	return slices.Contains(formats, format)
}

// Encode renders the figure in the given format ("png", "jpg", "jpeg",
// "tif", "tiff", "svg", "pdf" or "eps") to w.
func (f *Figure) Encode(w io.Writer, format string) error {
	var wt io.WriterTo

	switch format = strings.ToLower(format); format {
	case "png", "jpg", "jpeg", "tif", "tiff":
		c := vgimg.NewWith(vgimg.UseWH(f.width, f.height), vgimg.UseDPI(f.dpi))
		f.draw(c)
		switch format {
		case "png":
			wt = vgimg.PngCanvas{Canvas: c}
		case "jpg", "jpeg":
			wt = vgimg.JpegCanvas{Canvas: c}
		default:
			wt = vgimg.TiffCanvas{Canvas: c}
		}
	case "svg", "pdf", "eps":
		c, err := draw.NewFormattedCanvas(f.width, f.height, format)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		f.draw(c)
		wt = c
	default:
		return fmt.Errorf("%w: unsupported image format %q", ErrRender, format)
	}

	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("%w: failed to encode %s: %w", ErrRender, format, err)
	}
	return nil
}

// Save writes the figure to path, choosing the format from its extension.
func (f *Figure) Save(path string) (err error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if !SupportedFormat(format) {
		return fmt.Errorf("%w: unsupported output file %q (want one of %s)", ErrRender, path, strings.Join(formats, ", "))
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: failed to create output file: %w", ErrRender, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: failed to close output file: %w", ErrRender, cerr)
		}
	}()

	if err := f.Encode(out, format); err != nil {
		return err
	}

	level.Info(f.logger).Log("msg", "saved figure", "path", path, "format", format)
	return nil
}

// Show renders the figure to a temporary PNG and opens it in the viewer,
// blocking until the viewer exits or ctx is done. Cancelling ctx kills the
// viewer.
func (f *Figure) Show(ctx context.Context) error {
	tmp, err := os.CreateTemp("", "profile-viz-*.png")
	if err != nil {
		return fmt.Errorf("%w: failed to create temporary image: %w", ErrRender, err)
	}
	path := tmp.Name()
	if !f.track(path) {
		tmp.Close()
		os.Remove(path)
		return fmt.Errorf("%w: figure is closed", ErrRender)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}

	if err := f.Save(path); err != nil {
		return err
	}

	args := append(append([]string{}, f.viewer[1:]...), path)
	cmd := exec.CommandContext(ctx, f.viewer[0], args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr

	level.Debug(f.logger).Log("msg", "starting viewer", "cmd", strings.Join(cmd.Args, " "))
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: failed to start viewer %q: %w", ErrRender, f.viewer[0], err)
	}
	f.mu.Lock()
	f.proc = cmd.Process
	f.mu.Unlock()

	err = cmd.Wait()

	f.mu.Lock()
	f.proc = nil
	f.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		return fmt.Errorf("%w: viewer exited: %w", ErrRender, err)
	}

	// Launchers such as xdg-open return before the application has read the
	// image, so a cleanly displayed image is left for the viewer.
	f.untrack(path)
	level.Info(f.logger).Log("msg", "figure displayed", "path", path)
	return nil
}

// Close kills a running viewer and removes temporary images. It is safe to
// call more than once.
func (f *Figure) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	var errs []error
	if f.proc != nil {
		if err := f.proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("failed to stop viewer: %w", err))
		}
		f.proc = nil
	}

	for _, path := range f.temps {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove temporary image: %w", err))
		}
	}
	f.temps = nil

	if len(errs) > 0 {
		level.Warn(f.logger).Log("msg", "figure cleanup incomplete", "err", errors.Join(errs...))
	}
	return errors.Join(errs...)
}

func (f *Figure) track(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}
	f.temps = append(f.temps, path)
	return true
}

func (f *Figure) untrack(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, p := range f.temps {
		if p == path {
			f.temps = append(f.temps[:i], f.temps[i+1:]...)
			return
		}
	}
}
