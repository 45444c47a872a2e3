package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "warn", LogFormatLogfmt, "profile-viz")

	level.Info(l).Log("msg", "hidden")
	level.Warn(l).Log("msg", "shown")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "msg=shown")
	require.Contains(t, out, "name=profile-viz")
	require.Contains(t, out, "level=warn")
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, "debug", LogFormatJSON, "")

	level.Debug(l).Log("msg", "loaded", "functions", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	require.Equal(t, "loaded", rec["msg"])
	require.Equal(t, "debug", rec["level"])
	require.NotContains(t, rec, "name")
}

func TestNewLoggerUnknownLevel(t *testing.T) {
	require.Panics(t, func() {
		NewLoggerTo(&bytes.Buffer{}, "verbose", LogFormatLogfmt, "")
	})
}
