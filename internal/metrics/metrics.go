// Package metrics exports benchmark results in the prometheus text
// format, suitable for the node_exporter textfile collector
package metrics

import (
	"fmt"

	"github.com/jessegalley/fileio/internal/bench"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fileio"

// Recorder holds one gauge family per derived value, labelled by the
// access mode and the io call
type Recorder struct {
	registry   *prometheus.Registry
	latency    *prometheus.GaugeVec
	throughput *prometheus.GaugeVec
	elapsed    *prometheus.GaugeVec
	iterations *prometheus.GaugeVec
	bufferSize prometheus.Gauge
	fileSize   prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry
func NewRecorder() *Recorder {
	labels := []string{"mode", "op"}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "avg_latency_nanoseconds",
			Help:      "Average latency of a single io call.",
		}, labels),
		throughput: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_bytes_per_second",
			Help:      "Bytes transferred per second over the benchmark.",
		}, labels),
		elapsed: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "elapsed_nanoseconds",
			Help:      "Total time spent in the benchmark loop.",
		}, labels),
		iterations: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "iterations",
			Help:      "Number of io calls issued.",
		}, labels),
		bufferSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_size_bytes",
			Help:      "Bytes moved per io call.",
		}),
		fileSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "file_size_bytes",
			Help:      "Extent of the benchmark file.",
		}),
	}
	r.registry.MustRegister(r.latency, r.throughput, r.elapsed, r.iterations, r.bufferSize, r.fileSize)
	return r
}

// Observe records a finished benchmark
func (r *Recorder) Observe(res bench.Result) {
	mode := string(res.Mode)
	r.latency.WithLabelValues(mode, res.Op).Set(float64(res.AvgLatencyNanos()))
	r.throughput.WithLabelValues(mode, res.Op).Set(res.Throughput())
	r.elapsed.WithLabelValues(mode, res.Op).Set(float64(res.ElapsedNanos))
	r.iterations.WithLabelValues(mode, res.Op).Set(float64(res.Iterations))
	r.bufferSize.Set(float64(res.BufferSize))
	r.fileSize.Set(float64(res.FileSize))
}

// WriteFile atomically replaces path with the current values
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
