package bench

import (
	"os"

	"golang.org/x/sys/unix"
)

// OpenFile opens path read-write, creating it if needed. With direct
// set the page cache is bypassed via O_DIRECT; some filesystems (tmpfs)
// reject that with EINVAL.
func OpenFile(path string, direct bool) (*os.File, error) {
	flags := os.O_RDWR | os.O_CREATE
	if direct {
		flags |= unix.O_DIRECT
	}
	return os.OpenFile(path, flags, 0666)
}
