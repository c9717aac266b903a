package bench

import (
	"errors"
	"fmt"
)

// Kind classifies where in the harness a failure happened
type Kind int

const (
	AllocationError Kind = iota + 1 // aligned memory unavailable
	OpenError                       // file could not be opened in the required mode
	ResizeError                     // extent could not be set
	WriteError                      // a write call failed
	ReadError                       // a read call failed
	SyncError                       // final flush failed
	SeekError                       // cursor reset failed
	CloseError                      // releasing the file handle failed
	CleanupError                    // deleting the file after success failed
)

var kindNames = map[Kind]string{
	AllocationError: "allocation",
	OpenError:       "open",
	ResizeError:     "resize",
	WriteError:      "write",
	ReadError:       "read",
	SyncError:       "sync",
	SeekError:       "seek",
	CloseError:      "close",
	CleanupError:    "cleanup",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is returned by every stage of the harness. Op names the io call
// that failed (read, pwrite, ...) when there is one.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Size int64 // target extent of a failed resize
	Err  error
}

func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case AllocationError:
		msg = "failed to allocate memory"
	case OpenError:
		msg = "failed to open the file"
	case ResizeError:
		msg = "failed to truncate the file"
	case ReadError, WriteError:
		msg = fmt.Sprintf("failed to %s the file", e.Op)
	case SyncError:
		msg = "failed to sync the file"
	case SeekError:
		msg = "failed to seek the file"
	case CloseError:
		msg = "failed to close the file"
	case CleanupError:
		msg = "failed to delete the file"
	default:
		msg = e.Kind.String() + " failed"
	}
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Kind == ResizeError && e.Size > 0 {
		msg += fmt.Sprintf(" to size: %dMB", e.Size/(1<<20))
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err carries an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
