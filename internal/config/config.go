/*
 *
 * jesse galley <jesse@jessegalley.net>
 */

// Package config holds the benchmark configuration. Everything the
// harness used to keep as process-wide constants is carried here and
// passed explicitly into the drivers and the orchestrator.
package config

import (
	"fmt"
	"strings"

	"github.com/ncw/directio"
	"github.com/spf13/pflag"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
)

// Config holds all configuration parameters for a benchmark run
type Config struct {
	BufferSize int   `mapstructure:"buffer-size"` // bytes moved per io call, multiple of Alignment
	FileSize   int64 `mapstructure:"file-size"`   // extent of the benchmark file in bytes, multiple of BufferSize
	Iterations int   `mapstructure:"iterations"`  // io calls per benchmark
	Alignment  int   `mapstructure:"align"`       // memory and offset alignment in bytes
	DirectIO   bool  `mapstructure:"direct"`      // open the file with o_direct
	Seed       int64 `mapstructure:"seed"`        // random offset seed (0 picks one from the clock)

	OutFmt      string `mapstructure:"format"`       // output format (table, json, yaml or flat)
	LogLevel    string `mapstructure:"log-level"`    // TRACE, DEBUG, INFO, WARNING, ERROR or OFF
	LogFormat   string `mapstructure:"log-format"`   // text or json
	LogFile     string `mapstructure:"log-file"`     // log destination, stderr when empty
	MetricsFile string `mapstructure:"metrics-file"` // prometheus textfile destination (empty disables)
	Debug       bool   `mapstructure:"debug"`        // dump the effective config before running
}

// NewConfig creates a new Config instance with the defaults:
// 4k calls over a 256 MiB file, 100000 times
func NewConfig() *Config {
	return &Config{
		BufferSize: directio.BlockSize,
		FileSize:   256 * MiB,
		Iterations: 100000,
		Alignment:  directio.AlignSize,
		DirectIO:   true,
		Seed:       0,
		OutFmt:     "table",
		LogLevel:   "WARNING",
		LogFormat:  "text",
	}
}

var logLevels = map[string]bool{
	"TRACE": true, "DEBUG": true, "INFO": true, "WARNING": true, "ERROR": true, "OFF": true,
}

var outFormats = map[string]bool{
	"table": true, "json": true, "yaml": true, "flat": true,
}

// Validate checks all parameters for validity
func (c *Config) Validate() error {
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.FileSize <= 0 {
		return fmt.Errorf("file size must be positive, got %d", c.FileSize)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Alignment <= 0 || c.Alignment&(c.Alignment-1) != 0 {
		return fmt.Errorf("alignment must be a power of two, got %d", c.Alignment)
	}
	// the kernel rejects o_direct io below the platform's alignment
	if c.DirectIO && c.Alignment < directio.AlignSize {
		return fmt.Errorf("direct io needs an alignment of at least %d bytes, got %d", directio.AlignSize, c.Alignment)
	}
	if c.BufferSize%c.Alignment != 0 {
		return fmt.Errorf("buffer size %d is not a multiple of the %d byte alignment", c.BufferSize, c.Alignment)
	}
	if c.FileSize%int64(c.BufferSize) != 0 {
		return fmt.Errorf("file size %d is not a multiple of the %d byte buffer size", c.FileSize, c.BufferSize)
	}
	if !outFormats[strings.ToLower(c.OutFmt)] {
		return fmt.Errorf("invalid format '%s'. supported formats are: table, json, yaml, flat", c.OutFmt)
	}
	if !logLevels[strings.ToUpper(c.LogLevel)] {
		return fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		return fmt.Errorf("invalid log format '%s'. supported formats are: text, json", c.LogFormat)
	}
	return nil
}

// Blocks returns how many buffer-sized blocks fit in the file extent
func (c *Config) Blocks() int64 {
	return c.FileSize / int64(c.BufferSize)
}

// BindFlags registers a flag for every field, using the values already
// in c as defaults. Flag names match the mapstructure keys so viper can
// bind the same set.
func BindFlags(fs *pflag.FlagSet, c *Config) {
	fs.IntVarP(&c.BufferSize, "buffer-size", "b", c.BufferSize, "bytes transferred per io call")
	fs.Int64VarP(&c.FileSize, "file-size", "s", c.FileSize, "size of the benchmark file in bytes")
	fs.IntVarP(&c.Iterations, "iterations", "n", c.Iterations, "number of io calls per benchmark")
	fs.IntVar(&c.Alignment, "align", c.Alignment, "memory and offset alignment in bytes")
	fs.BoolVarP(&c.DirectIO, "direct", "d", c.DirectIO, "use direct io (o_direct)")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for random offsets (0 seeds from the clock)")
	fs.StringVar(&c.OutFmt, "format", c.OutFmt, "output format (table, json, yaml, or flat)")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log severity (TRACE, DEBUG, INFO, WARNING, ERROR, OFF)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text or json)")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "write logs to this file instead of stderr")
	fs.StringVar(&c.MetricsFile, "metrics-file", c.MetricsFile, "write prometheus metrics to this file after a successful run")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "dump the effective configuration before running")
}
