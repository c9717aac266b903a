// Package report renders benchmark results for the terminal or for
// machines
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jessegalley/fileio/internal/bench"
	"gopkg.in/yaml.v3"
)

// OutputFormat represents the supported output format types
type OutputFormat string

// supported output format constants
const (
	// table format outputs the two human readable summary lines
	TableFormat OutputFormat = "table"

	// json format outputs one json object per benchmark
	JSONFormat OutputFormat = "json"

	// yaml format outputs one yaml document per benchmark
	YAMLFormat OutputFormat = "yaml"

	// flat format outputs space-separated values
	FlatFormat OutputFormat = "flat"
)

const (
	kb = 1024
	mb = 1024 * 1024
)

// record is the machine readable shape of a result
type record struct {
	Mode           string  `json:"mode" yaml:"mode"`
	Op             string  `json:"op" yaml:"op"`
	BufferSize     int     `json:"buffer_size_bytes" yaml:"buffer_size_bytes"`
	FileSize       int64   `json:"file_size_bytes" yaml:"file_size_bytes"`
	Iterations     int     `json:"iterations" yaml:"iterations"`
	ElapsedNanos   int64   `json:"elapsed_ns" yaml:"elapsed_ns"`
	AvgLatencyNs   int64   `json:"avg_latency_ns" yaml:"avg_latency_ns"`
	ThroughputMBps float64 `json:"throughput_mbs" yaml:"throughput_mbs"`
}

func newRecord(r bench.Result) record {
	return record{
		Mode:           string(r.Mode),
		Op:             r.Op,
		BufferSize:     r.BufferSize,
		FileSize:       r.FileSize,
		Iterations:     r.Iterations,
		ElapsedNanos:   r.ElapsedNanos,
		AvgLatencyNs:   r.AvgLatencyNanos(),
		ThroughputMBps: r.ThroughputMB(),
	}
}

// FormatResult formats a Result according to the specified format
func FormatResult(r bench.Result, format OutputFormat) (string, error) {
	switch format {
	case TableFormat:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Executed the %s %s (buffer size: %dKB, file size: %dMB) syscall %d times.\n",
			r.Mode, r.Op, r.BufferSize/kb, r.FileSize/mb, r.Iterations)
		fmt.Fprintf(&sb, "Syscall average latency: %d nanoseconds, throughput: %.2f MB/s\n",
			r.AvgLatencyNanos(), r.ThroughputMB())
		return sb.String(), nil

	case JSONFormat:
		// one object per line so a run streams as json lines
		jsonBytes, err := json.Marshal(newRecord(r))
		if err != nil {
			return "", fmt.Errorf("failed to marshal json: %w", err)
		}
		return string(jsonBytes) + "\n", nil

	case YAMLFormat:
		yamlBytes, err := yaml.Marshal(newRecord(r))
		if err != nil {
			return "", fmt.Errorf("failed to marshal yaml: %w", err)
		}
		return "---\n" + string(yamlBytes), nil

	case FlatFormat:
		return fmt.Sprintf("%s %s %d %d %d %d %.2f\n",
			r.Mode, r.Op, r.BufferSize, r.FileSize, r.Iterations, r.AvgLatencyNanos(), r.ThroughputMB()), nil

	default:
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// ValidateFormat checks if the provided format string is a valid output format
func ValidateFormat(format string) (OutputFormat, error) {
	f := OutputFormat(strings.ToLower(format))

	switch f {
	case TableFormat, JSONFormat, YAMLFormat, FlatFormat:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format '%s'. supported formats are: table, json, yaml, flat", format)
	}
}
