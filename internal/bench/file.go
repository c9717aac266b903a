// Package bench contains the benchmark engine: file preparation, the
// sequential and random io drivers, and the orchestrator that runs them
// in order over one open file.
package bench

import "io"

// File is the subset of *os.File the drivers use. Tests substitute an
// in-memory implementation.
type File interface {
	io.ReadWriteSeeker
	io.ReaderAt
	io.WriterAt
	Sync() error
	Truncate(size int64) error
}

// SequentialOp is one io call issued at the file's current position,
// letting the kernel advance the offset
type SequentialOp struct {
	Name string
	Do   func(f File, p []byte) (int, error)
	Kind Kind // error kind reported when Do fails
}

// RandomOp is one io call issued at an explicit offset
type RandomOp struct {
	Name string
	Do   func(f File, p []byte, off int64) (int, error)
	Kind Kind // error kind reported when Do fails
}

var (
	// SeqRead is read(2) at the current position
	SeqRead = SequentialOp{
		Name: "read",
		Do:   func(f File, p []byte) (int, error) { return f.Read(p) },
		Kind: ReadError,
	}

	// SeqWrite is write(2) at the current position
	SeqWrite = SequentialOp{
		Name: "write",
		Do:   func(f File, p []byte) (int, error) { return f.Write(p) },
		Kind: WriteError,
	}

	// RandRead is pread(2)
	RandRead = RandomOp{
		Name: "pread",
		Do:   func(f File, p []byte, off int64) (int, error) { return f.ReadAt(p, off) },
		Kind: ReadError,
	}

	// RandWrite is pwrite(2)
	RandWrite = RandomOp{
		Name: "pwrite",
		Do:   func(f File, p []byte, off int64) (int, error) { return f.WriteAt(p, off) },
		Kind: WriteError,
	}
)

func (op SequentialOp) errKind() Kind {
	if op.Kind == 0 {
		return ReadError
	}
	return op.Kind
}

func (op RandomOp) errKind() Kind {
	if op.Kind == 0 {
		return ReadError
	}
	return op.Kind
}
