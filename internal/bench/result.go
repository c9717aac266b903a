package bench

// Mode is the access pattern of a benchmark
type Mode string

const (
	Sequential Mode = "sequential"
	Random     Mode = "random"
)

// Result holds the raw measurement of one benchmark. The averages are
// derived on demand and never stored.
type Result struct {
	Mode         Mode
	Op           string
	BufferSize   int
	FileSize     int64
	Iterations   int
	ElapsedNanos int64
}

// BytesTransferred is the nominal payload moved by the run
func (r Result) BytesTransferred() int64 {
	return int64(r.BufferSize) * int64(r.Iterations)
}

// AvgLatencyNanos is the elapsed time divided by the call count
func (r Result) AvgLatencyNanos() int64 {
	if r.Iterations <= 0 {
		return 0
	}
	return r.ElapsedNanos / int64(r.Iterations)
}

// Throughput is bytes per second over the whole run
func (r Result) Throughput() float64 {
	if r.ElapsedNanos <= 0 {
		return 0
	}
	return float64(r.BytesTransferred()) / (float64(r.ElapsedNanos) / 1e9)
}

// ThroughputMB is Throughput in MiB per second
func (r Result) ThroughputMB() float64 {
	return r.Throughput() / (1024 * 1024)
}
