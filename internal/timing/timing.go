// Package timing reads the monotonic clock. Wall clock time is never
// used: an ntp step in the middle of a run would skew every latency.
package timing

import (
	"fmt"

	"golang.org/x/sys/unix"
)

const nanosPerSecond = 1_000_000_000

// Timestamp is a reading of CLOCK_MONOTONIC
type Timestamp struct {
	Sec  int64
	Nsec int64
}

// Clock supplies timestamps to the benchmark drivers
type Clock interface {
	Now() Timestamp
}

// Monotonic is the system monotonic clock
type Monotonic struct{}

// Now reads CLOCK_MONOTONIC. A missing monotonic clock leaves nothing
// meaningful to measure, so failure panics.
func (Monotonic) Now() Timestamp {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic(fmt.Sprintf("clock_gettime(CLOCK_MONOTONIC): %v", err))
	}
	return Timestamp{Sec: int64(ts.Sec), Nsec: int64(ts.Nsec)}
}

// ElapsedNanos returns end - start in nanoseconds using integer math only
func ElapsedNanos(start, end Timestamp) int64 {
	return (end.Sec-start.Sec)*nanosPerSecond + (end.Nsec - start.Nsec)
}
