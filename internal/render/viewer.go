package render

import (
	"os/exec"
	"runtime"
	"strings"
)

// blockingViewers stay in the foreground until their window is closed.
var blockingViewers = [][]string{
	{"feh", "--scale-down"},
	{"display"},
	{"eog", "--new-instance"},
}

// DefaultViewer returns the command that opens an image on the current
// platform.
func DefaultViewer() []string {
	switch runtime.GOOS {
	case "darwin":
		// -W waits until the application quits, -n starts a new instance.
		return []string{"open", "-W", "-n"}
	case "windows":
		return []string{"cmd", "/c", "start", "/wait", ""}
	default:
		for _, argv := range blockingViewers {
			if _, err := exec.LookPath(argv[0]); err == nil {
				return argv
			}
		}
		// xdg-open hands the file to the desktop and returns at once.
		return []string{"xdg-open"}
	}
}

// ParseViewer splits a viewer command line such as "feh --scale-down".
// An empty string yields the platform default.
func ParseViewer(cmdline string) []string {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		return DefaultViewer()
	}
	return argv
}
