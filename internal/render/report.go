package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/dustin/go-humanize"

	"profile-viz/internal/analyzer"
)

// FormatReport returns the per-function statistics text, in stats order.
func FormatReport(stats []analyzer.FunctionStats) string {
	var sb strings.Builder

	sb.WriteString("\nFunction Statistics:\n")
	for _, fs := range stats {
		sb.WriteString(fmt.Sprintf("\n%s:\n", fs.Name))
		sb.WriteString(fmt.Sprintf("  Calls: %s\n", humanize.Comma(int64(fs.Calls))))
		sb.WriteString(fmt.Sprintf("  Samples: %s\n", humanize.Comma(int64(fs.Count))))
		sb.WriteString(fmt.Sprintf("  Average: %sms\n", analyzer.FormatMs(fs.Mean, 3)))
		if math.IsNaN(fs.StdDev) {
			sb.WriteString(fmt.Sprintf("  Std Dev: %s\n", analyzer.NotAvailable))
		} else {
			sb.WriteString(fmt.Sprintf("  Std Dev: %sms\n", analyzer.FormatMs(fs.StdDev, 3)))
		}
		sb.WriteString(fmt.Sprintf("  Min/Max: %sms / %sms\n", analyzer.FormatMs(fs.Min, 3), analyzer.FormatMs(fs.Max, 3)))
		sb.WriteString(fmt.Sprintf("  Total Time: %sms\n", analyzer.FormatMs(fs.TotalMs, 1)))
	}

	return sb.String()
}

// WriteReport prints the statistics report to w.
func WriteReport(w io.Writer, stats []analyzer.FunctionStats) error {
	_, err := io.WriteString(w, FormatReport(stats))
	return err
}
