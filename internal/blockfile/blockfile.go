// Package blockfile implements the block-file I/O interface named by
// spec.md section 6 ("Block file"): fixed 1024-byte records numbered from 1
// upward, a single-slot write-back cache keyed by block number, and an
// exclusive advisory lock held for the lifetime of the context. Disk layout
// beyond the byte-addressed 1024-byte buffer protocol is out of scope
// (spec.md section 1, explicit non-goal) -- there is no notion here of a
// directory of named blocks, only a flat, space-padded file of BlockSize
// records.
package blockfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// BlockSize is the fixed record size spec.md names.
const BlockSize = 1024

// ErrInUse is returned by Open when the working-directory copy of the block
// file could not be locked exclusively, before the $HOME fallback is tried
// (spec.md section 6).
var ErrInUse = errors.New("block file in use")

// File is an open block file plus its single dirty-buffer cache.
type File struct {
	f    *os.File
	path string
	lock io.Closer

	blockNum int // 0 means no block currently cached
	buf      [BlockSize]byte
	dirty    bool
}

// Open locks and opens path for block I/O. If path cannot be locked because
// it is in use, Open retries against the same base name inside home (the
// $HOME fallback spec.md section 6 describes); a permanent failure to lock
// either location is reported as ErrInUse wrapping the last error.
func Open(path, home string) (*File, error) {
	bf, err := openLocked(path)
	if err == nil {
		return bf, nil
	}
	if !errors.Is(err, ErrInUse) || home == "" {
		return nil, err
	}

	alt := filepath.Join(home, filepath.Base(path))
	bf, altErr := openLocked(alt)
	if altErr != nil {
		return nil, fmt.Errorf("%w: %v (and fallback %v: %v)", ErrInUse, err, alt, altErr)
	}
	return bf, nil
}

func openLocked(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	lock, err := lockExclusive(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrInUse, err)
	}

	return &File{f: f, path: path, lock: lock}, nil
}

// Path returns the path actually opened (which may be the $HOME fallback).
func (bf *File) Path() string { return bf.path }

// Block loads block n (1-based) into the cache, flushing any previously
// cached dirty block first, and returns a live view of its BlockSize bytes.
// Reading a block past the current end of file yields a space-filled
// buffer; the file itself is not extended until that block is written back
// by Flush.
func (bf *File) Block(n int) ([]byte, error) {
	if n < 1 {
		return nil, fmt.Errorf("invalid block number %d", n)
	}
	if n == bf.blockNum {
		return bf.buf[:], nil
	}
	if err := bf.Flush(); err != nil {
		return nil, err
	}

	off := int64(n-1) * BlockSize
	for i := range bf.buf {
		bf.buf[i] = ' '
	}
	if _, err := bf.f.ReadAt(bf.buf[:], off); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	bf.blockNum = n
	return bf.buf[:], nil
}

// Update marks the currently cached block dirty, as the BLOCK word's
// companion UPDATE does.
func (bf *File) Update() {
	if bf.blockNum != 0 {
		bf.dirty = true
	}
}

// Flush writes the cached block back if it is dirty (FLUSH / SAVE-BUFFERS).
func (bf *File) Flush() error {
	if !bf.dirty || bf.blockNum == 0 {
		return nil
	}
	off := int64(bf.blockNum-1) * BlockSize
	if _, err := bf.f.WriteAt(bf.buf[:], off); err != nil {
		return err
	}
	bf.dirty = false
	return nil
}

// SyncBatch flushes the live cache, then writes each of the given
// already-dirtied block snapshots concurrently (bounded), for a
// SAVE-BUFFERS call that follows a LOAD/THRU sweep touching many blocks.
// Concurrency is capped at 4 in-flight writes via errgroup so a large THRU
// doesn't open unbounded file-descriptor-adjacent goroutines.
func (bf *File) SyncBatch(blocks map[int][BlockSize]byte) error {
	if err := bf.Flush(); err != nil {
		return err
	}
	g := new(errgroup.Group)
	g.SetLimit(4)
	for n, data := range blocks {
		n, data := n, data
		g.Go(func() error {
			off := int64(n-1) * BlockSize
			_, err := bf.f.WriteAt(data[:], off)
			return err
		})
	}
	return g.Wait()
}

// Dirty reports whether the cached block has unwritten changes.
func (bf *File) Dirty() bool { return bf.dirty }

// Current reports the cached block number, or 0 if none is cached.
func (bf *File) Current() int { return bf.blockNum }

// EmptyBuffers discards the cached block without writing it back.
func (bf *File) EmptyBuffers() {
	bf.blockNum = 0
	bf.dirty = false
}

// Close flushes any dirty block, releases the advisory lock, and closes the
// underlying file.
func (bf *File) Close() error {
	ferr := bf.Flush()
	lerr := bf.lock.Close()
	cerr := bf.f.Close()
	for _, err := range []error{ferr, lerr, cerr} {
		if err != nil {
			return err
		}
	}
	return nil
}
