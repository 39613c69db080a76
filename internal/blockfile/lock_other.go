//go:build !unix

package blockfile

import (
	"io"
	"os"
)

// noLock is the fallback for GOOS values golang.org/x/sys/unix doesn't
// cover; this pack has no non-Unix CI target, so no portability shim
// (e.g. a Windows LockFileEx binding) is invented here -- see DESIGN.md.
type noLock struct{}

func (noLock) Close() error { return nil }

func lockExclusive(f *os.File) (io.Closer, error) {
	return noLock{}, nil
}
