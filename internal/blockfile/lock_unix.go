//go:build unix

package blockfile

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

type flock struct{ f *os.File }

func (l flock) Close() error {
	return unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
}

func lockExclusive(f *os.File) (io.Closer, error) {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		return nil, err
	}
	return flock{f}, nil
}
