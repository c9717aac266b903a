package bench

import (
	"fmt"
	"io"
	"log/slog"
	mathrand "math/rand"
	"time"

	"github.com/jessegalley/fileio/internal/buffer"
	"github.com/jessegalley/fileio/internal/config"
	"github.com/jessegalley/fileio/internal/timing"
)

// Driver runs single benchmarks against an open file. It owns no file
// state; every call allocates its own aligned buffer and releases it
// before returning, on success and on failure alike.
type Driver struct {
	cfg   *config.Config
	clock timing.Clock
	rng   *mathrand.Rand
	log   *slog.Logger

	// alloc is swapped out by tests to observe buffer lifetimes
	alloc func(size, align int) (*buffer.Aligned, error)
}

// NewDriver creates a driver for cfg. A nil clock selects the system
// monotonic clock and a nil rng is seeded from cfg.Seed.
func NewDriver(cfg *config.Config, clock timing.Clock, rng *mathrand.Rand, log *slog.Logger) *Driver {
	if clock == nil {
		clock = timing.Monotonic{}
	}
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Driver{
		cfg:   cfg,
		clock: clock,
		rng:   rng,
		log:   log,
		alloc: buffer.Alloc,
	}
}

// NewRand returns the random offset generator. Seed 0 seeds from the
// clock, anything else gives a repeatable offset sequence.
func NewRand(seed int64) *mathrand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return mathrand.New(mathrand.NewSource(seed))
}

func (d *Driver) allocBuffer() (*buffer.Aligned, error) {
	buf, err := d.alloc(d.cfg.BufferSize, d.cfg.Alignment)
	if err != nil {
		return nil, newError(AllocationError, "", err)
	}

	// o_direct rejects a misaligned buffer with EINVAL mid-run, so catch
	// a bad allocator here instead
	if buf.Len() != d.cfg.BufferSize || buf.Align() < d.cfg.Alignment || !buffer.IsAligned(buf.Bytes(), d.cfg.Alignment) {
		err := fmt.Errorf("%w: got %d bytes aligned to %d, want %d aligned to %d",
			buffer.ErrAllocation, buf.Len(), buf.Align(), d.cfg.BufferSize, d.cfg.Alignment)
		d.release(buf)
		return nil, newError(AllocationError, "", err)
	}
	return buf, nil
}

func (d *Driver) release(buf *buffer.Aligned) {
	if err := buf.Release(); err != nil {
		d.log.Warn("failed to release buffer", "error", err)
	}
}

// Resize sets the file to exactly the configured extent. Truncating to
// the size the file already has is a no-op, so it is safe to repeat.
func (d *Driver) Resize(f File) error {
	if err := f.Truncate(d.cfg.FileSize); err != nil {
		return &Error{Kind: ResizeError, Size: d.cfg.FileSize, Err: err}
	}
	return nil
}

// Fill writes zeroes over the whole extent, so every block the
// benchmarks touch is backed by allocated storage
func (d *Driver) Fill(f File) error {
	extent := d.cfg.FileSize

	buf, err := d.allocBuffer()
	if err != nil {
		return err
	}
	defer d.release(buf)
	buf.Zero()

	// always fill from the start, whatever the handle was doing before
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return newError(SeekError, "", err)
	}

	p := buf.Bytes()
	var offset int64
	for offset < extent {
		// the last chunk can be shorter than the buffer
		chunk := p
		if rem := extent - offset; rem < int64(len(chunk)) {
			chunk = chunk[:rem]
		}

		n, err := f.Write(chunk)
		if err != nil {
			return newError(WriteError, "write", err)
		}
		// nothing written and no error would spin forever
		if n == 0 {
			return newError(WriteError, "write", io.ErrShortWrite)
		}
		// a short write is progress, keep going from the new offset
		offset += int64(n)
	}

	d.log.Debug("filled file", "extent", extent)
	return nil
}

// Sequential issues op Iterations times at the kernel tracked position.
// The cursor mirrors that position and wraps to zero via an explicit
// seek once it reaches the extent. One fsync after the loop is included
// in the measured time.
func (d *Driver) Sequential(f File, op SequentialOp) (Result, error) {
	buf, err := d.allocBuffer()
	if err != nil {
		return Result{}, err
	}
	defer d.release(buf)

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Result{}, newError(SeekError, op.Name, err)
	}

	// cursor mirrors the kernel file position so we know when to wrap
	p := buf.Bytes()
	extent := d.cfg.FileSize
	var cursor int64

	start := d.clock.Now()
	for i := 0; i < d.cfg.Iterations; i++ {
		// reached the end of the extent, go back to the beginning
		if cursor >= extent {
			if _, err := f.Seek(0, io.SeekStart); err != nil {
				return Result{}, newError(SeekError, op.Name, err)
			}
			cursor = 0
		}

		n, err := op.Do(f, p)
		// a zero byte read at eof would otherwise loop without moving
		if err == nil && n == 0 {
			err = io.ErrNoProgress
		}
		if err != nil {
			return Result{}, newError(op.errKind(), op.Name, err)
		}
		cursor += int64(n)
	}

	// the fsync is part of the measured time
	if err := f.Sync(); err != nil {
		return Result{}, newError(SyncError, op.Name, err)
	}
	end := d.clock.Now()

	return d.result(Sequential, op.Name, start, end), nil
}

// Random issues op Iterations times, each at a block aligned offset
// drawn uniformly from the extent. There is no trailing fsync.
func (d *Driver) Random(f File, op RandomOp) (Result, error) {
	buf, err := d.allocBuffer()
	if err != nil {
		return Result{}, err
	}
	defer d.release(buf)

	p := buf.Bytes()
	blocks := d.cfg.Blocks()

	start := d.clock.Now()
	for i := 0; i < d.cfg.Iterations; i++ {
		// pread/pwrite take the offset directly, no seek needed
		off := randomOffset(d.rng, blocks, d.cfg.BufferSize)
		if _, err := op.Do(f, p, off); err != nil {
			return Result{}, newError(op.errKind(), op.Name, err)
		}
	}
	end := d.clock.Now()

	return d.result(Random, op.Name, start, end), nil
}

// randomOffset picks a block index in [0, blocks) and scales it, so the
// offset is a multiple of bufSize and offset+bufSize never passes the
// extent
func randomOffset(rng *mathrand.Rand, blocks int64, bufSize int) int64 {
	return rng.Int63n(blocks) * int64(bufSize)
}

func (d *Driver) result(mode Mode, op string, start, end timing.Timestamp) Result {
	r := Result{
		Mode:         mode,
		Op:           op,
		BufferSize:   d.cfg.BufferSize,
		FileSize:     d.cfg.FileSize,
		Iterations:   d.cfg.Iterations,
		ElapsedNanos: timing.ElapsedNanos(start, end),
	}
	d.log.Debug("benchmark finished",
		"mode", string(mode),
		"op", op,
		"elapsed_ns", r.ElapsedNanos,
		"avg_latency_ns", r.AvgLatencyNanos())
	return r
}
