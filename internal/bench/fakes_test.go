package bench

import (
	"errors"
	"fmt"
	"io"

	"github.com/jessegalley/fileio/internal/buffer"
	"github.com/jessegalley/fileio/internal/config"
	"github.com/jessegalley/fileio/internal/timing"
)

var errInjected = errors.New("injected failure")

// memFile is an in-memory File that records where every call landed and
// can fail or shorten calls on demand
type memFile struct {
	data []byte
	pos  int64

	positions []int64 // position at each Read/Write
	offsets   []int64 // offset of each ReadAt/WriteAt
	calls     map[string]int

	failOn   map[string]int // method -> 1-based call number that fails
	maxWrite int            // caps each Write when > 0

	truncErr error
	syncErr  error
	seekErr  error
}

func newMemFile(size int) *memFile {
	return &memFile{
		data:   make([]byte, size),
		calls:  map[string]int{},
		failOn: map[string]int{},
	}
}

func (m *memFile) hit(method string) error {
	m.calls[method]++
	if n, ok := m.failOn[method]; ok && n == m.calls[method] {
		return errInjected
	}
	return nil
}

func (m *memFile) Read(p []byte) (int, error) {
	m.positions = append(m.positions, m.pos)
	if err := m.hit("read"); err != nil {
		return 0, err
	}
	if m.pos >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *memFile) Write(p []byte) (int, error) {
	m.positions = append(m.positions, m.pos)
	if err := m.hit("write"); err != nil {
		return 0, err
	}
	n := len(p)
	if m.maxWrite > 0 && n > m.maxWrite {
		n = m.maxWrite
	}
	if end := m.pos + int64(n); end > int64(len(m.data)) {
		m.data = append(m.data, make([]byte, end-int64(len(m.data)))...)
	}
	copy(m.data[m.pos:], p[:n])
	m.pos += int64(n)
	return n, nil
}

func (m *memFile) checkBounds(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > int64(len(m.data)) {
		return fmt.Errorf("access [%d, %d) outside of %d byte file", off, off+int64(len(p)), len(m.data))
	}
	return nil
}

func (m *memFile) ReadAt(p []byte, off int64) (int, error) {
	m.offsets = append(m.offsets, off)
	if err := m.hit("pread"); err != nil {
		return 0, err
	}
	if err := m.checkBounds(p, off); err != nil {
		return 0, err
	}
	return copy(p, m.data[off:]), nil
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	m.offsets = append(m.offsets, off)
	if err := m.hit("pwrite"); err != nil {
		return 0, err
	}
	if err := m.checkBounds(p, off); err != nil {
		return 0, err
	}
	return copy(m.data[off:], p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	m.calls["seek"]++
	if m.seekErr != nil {
		return 0, m.seekErr
	}
	if whence != io.SeekStart {
		return 0, fmt.Errorf("unsupported whence %d", whence)
	}
	m.pos = offset
	return offset, nil
}

func (m *memFile) Sync() error {
	m.calls["sync"]++
	return m.syncErr
}

func (m *memFile) Truncate(size int64) error {
	m.calls["truncate"]++
	if m.truncErr != nil {
		return m.truncErr
	}
	if size <= int64(len(m.data)) {
		m.data = m.data[:size]
	} else {
		m.data = append(m.data, make([]byte, size-int64(len(m.data)))...)
	}
	return nil
}

// stepClock advances by step nanoseconds on every reading
type stepClock struct {
	now  int64
	step int64
}

func (c *stepClock) Now() timing.Timestamp {
	ts := timing.Timestamp{Sec: c.now / 1e9, Nsec: c.now % 1e9}
	c.now += c.step
	return ts
}

func smallConfig(bufSize int, fileSize int64, iterations int) *config.Config {
	c := config.NewConfig()
	c.BufferSize = bufSize
	c.FileSize = fileSize
	c.Iterations = iterations
	c.Alignment = 4096
	c.DirectIO = false
	c.Seed = 1
	return c
}

// trackAllocs records every buffer the driver allocates
func trackAllocs(d *Driver) *[]*buffer.Aligned {
	var bufs []*buffer.Aligned
	d.alloc = func(size, align int) (*buffer.Aligned, error) {
		b, err := buffer.Alloc(size, align)
		if err == nil {
			bufs = append(bufs, b)
		}
		return b, err
	}
	return &bufs
}

// prepare runs both preparation steps the way the runner does
func prepare(d *Driver, f File) error {
	if err := d.Resize(f); err != nil {
		return err
	}
	return d.Fill(f)
}
