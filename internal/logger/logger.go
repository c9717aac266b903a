// Package logger builds the structured logger used for diagnostics.
// Benchmark output goes to stdout separately; logs go to stderr or a
// rotated file.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Custom levels around the slog built-ins
const (
	LevelTrace = slog.Level(-8)
	LevelOff   = slog.Level(12)
)

// Options selects the level, encoding and destination of the logger
type Options struct {
	Level  string // TRACE, DEBUG, INFO, WARNING, ERROR or OFF
	Format string // text or json
	File   string // log file, stderr when empty
}

// New returns a logger and a closer for its destination
func New(opts Options) (*slog.Logger, io.Closer) {
	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // megabytes
			MaxBackups: 3,
		}
		w, closer = lj, lj
	}
	return NewWithWriter(w, opts), closer
}

// NewWithWriter returns a logger writing to w
func NewWithWriter(w io.Writer, opts Options) *slog.Logger {
	programLevel := new(slog.LevelVar)
	setLoggingLevel(opts.Level, programLevel)

	handlerOpts := &slog.HandlerOptions{
		Level:       programLevel,
		ReplaceAttr: replaceLevelName,
	}

	var h slog.Handler
	if strings.ToLower(opts.Format) == "json" {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h)
}

func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	// logs having severity >= the configured value will be logged.
	switch strings.ToUpper(level) {
	case "TRACE":
		programLevel.Set(LevelTrace)
	case "DEBUG":
		programLevel.Set(slog.LevelDebug)
	case "INFO":
		programLevel.Set(slog.LevelInfo)
	case "WARNING":
		programLevel.Set(slog.LevelWarn)
	case "ERROR":
		programLevel.Set(slog.LevelError)
	case "OFF":
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(slog.LevelInfo)
	}
}

// replaceLevelName prints severity names instead of slog's defaults
// (WARNING rather than WARN, TRACE rather than DEBUG-4)
func replaceLevelName(groups []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey || len(groups) != 0 {
		return a
	}
	level, ok := a.Value.Any().(slog.Level)
	if !ok {
		return a
	}
	switch {
	case level < slog.LevelDebug:
		a.Value = slog.StringValue("TRACE")
	case level == slog.LevelWarn:
		a.Value = slog.StringValue("WARNING")
	}
	a.Key = "severity"
	return a
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
