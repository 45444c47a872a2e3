package logger

import (
	"io"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	LogFormatLogfmt = "logfmt"
	LogFormatJSON   = "json"
)

// NewLogger returns a leveled logger writing to stderr.
func NewLogger(logLevel, logFormat, debugName string) log.Logger {
	return NewLoggerTo(os.Stderr, logLevel, logFormat, debugName)
}

// NewLoggerTo is NewLogger with an explicit destination.
func NewLoggerTo(w io.Writer, logLevel, logFormat, debugName string) log.Logger {
	var lvl level.Option
	switch logLevel {
	case "error":
		lvl = level.AllowError()
	case "warn":
		lvl = level.AllowWarn()
	case "info":
		lvl = level.AllowInfo()
	case "debug":
		lvl = level.AllowDebug()
	default:
		// Unknown levels come from programming errors; kong validates the flag.
		panic("unexpected log level " + logLevel)
	}

	w = log.NewSyncWriter(w)
	logger := log.NewLogfmtLogger(w)
	if logFormat == LogFormatJSON {
		logger = log.NewJSONLogger(w)
	}

	logger = level.NewFilter(logger, lvl)

	if debugName != "" {
		logger = log.With(logger, "name", debugName)
	}

	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}
