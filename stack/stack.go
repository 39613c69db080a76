// Package stack implements the fixed-capacity, sentinel-guarded cell stack
// used for the data, return, and float stacks (spec.md section 4.1). Every
// primitive is expected to check depth before it mutates the stack; push and
// pop themselves enforce capacity so a bug in a primitive's own bookkeeping
// still fails loudly rather than corrupting adjacent memory.
package stack

import (
	"fmt"

	"github.com/jcorbin/post4/cell"
)

// sentinel is written into the one extra slot beyond Capacity, and checked
// by Check to catch a primitive that wrote past the end of the stack.
const sentinel = cell.Cell(-0x2152411035014542) // 0xdeadbeefcafebabe as a signed cell

// Kind names which stack an error pertains to, so overflow/underflow reports
// the correct identity (data, return, or float) per spec.md section 4.1.
type Kind string

// The three stack identities the interpreter ever raises errors for.
const (
	Data   Kind = "data"
	Return Kind = "return"
	Float  Kind = "float"
)

// OverflowError reports that a push would exceed capacity.
type OverflowError struct{ Kind Kind }

func (e OverflowError) Error() string { return fmt.Sprintf("%s stack overflow", e.Kind) }

// UnderflowError reports that a pop/pick/drop asked for more depth than is
// present.
type UnderflowError struct{ Kind Kind }

func (e UnderflowError) Error() string { return fmt.Sprintf("%s stack underflow", e.Kind) }

// CorruptionError reports that the sentinel slot beyond capacity was
// overwritten -- a primitive wrote out of bounds.
type CorruptionError struct{ Kind Kind }

func (e CorruptionError) Error() string { return fmt.Sprintf("%s stack sentinel corrupted", e.Kind) }

// Stack is a LIFO buffer of cells with a fixed capacity. The zero value is
// not usable; construct with New.
type Stack struct {
	kind  Kind
	cells []cell.Cell // len == cap+1; cells[cap] holds the sentinel
	cap   int
	top   int // number of valid cells currently on the stack
}

// New allocates a stack of the given kind and capacity.
func New(kind Kind, capacity int) *Stack {
	s := &Stack{kind: kind, cap: capacity, cells: make([]cell.Cell, capacity+1)}
	s.cells[capacity] = sentinel
	return s
}

// Kind reports which of data/return/float this stack is.
func (s *Stack) Kind() Kind { return s.kind }

// Cap reports the stack's fixed capacity.
func (s *Stack) Cap() int { return s.cap }

// Len reports the number of cells currently on the stack.
func (s *Stack) Len() int { return s.top }

// Push appends a cell, failing with OverflowError if the stack is full.
func (s *Stack) Push(v cell.Cell) error {
	if s.top >= s.cap {
		return OverflowError{s.kind}
	}
	s.cells[s.top] = v
	s.top++
	return nil
}

// Pop removes and returns the top cell, failing with UnderflowError if empty.
func (s *Stack) Pop() (cell.Cell, error) {
	if s.top <= 0 {
		return 0, UnderflowError{s.kind}
	}
	s.top--
	return s.cells[s.top], nil
}

// Top returns the top cell without removing it.
func (s *Stack) Top() (cell.Cell, error) {
	if s.top <= 0 {
		return 0, UnderflowError{s.kind}
	}
	return s.cells[s.top-1], nil
}

// Pick returns the nth cell from the top (0 is the top itself), without
// modifying the stack.
func (s *Stack) Pick(n int) (cell.Cell, error) {
	if n < 0 || n >= s.top {
		return 0, UnderflowError{s.kind}
	}
	return s.cells[s.top-1-n], nil
}

// Drop removes the top n cells.
func (s *Stack) Drop(n int) error {
	if n < 0 || n > s.top {
		return UnderflowError{s.kind}
	}
	s.top -= n
	return nil
}

// Reset empties the stack, used on ABORT-class throw recovery.
func (s *Stack) Reset() { s.top = 0 }

// Snapshot returns a copy of the live cells, bottom first; intended for
// tests and the decompiler/dumper, not the hot path.
func (s *Stack) Snapshot() []cell.Cell {
	out := make([]cell.Cell, s.top)
	copy(out, s.cells[:s.top])
	return out
}

// Check verifies the sentinel slot is untouched, returning CorruptionError
// if some primitive wrote past capacity. Intended to be called after
// suspicious operations, not on every primitive (spec.md section 4.1).
func (s *Stack) Check() error {
	if s.cells[s.cap] != sentinel {
		return CorruptionError{s.kind}
	}
	return nil
}
