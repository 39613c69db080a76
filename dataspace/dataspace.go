// Package dataspace implements the bump-allocated data-space region
// described in spec.md section 3 ("Data space") and section 4.3 ("Data-space
// Allocator"): a single growable region with a bump pointer (Here) and a
// fixed upper bound (End), the target of ALLOT and the home of compiled
// code.
//
// The backing store is the paged integer memory kept from the teacher
// (internal/mem.Ints): addresses are cell indices rather than byte offsets,
// so the cell-alignment that spec.md section 4.3 asks Align to maintain is
// vacuous by construction -- every address already names a whole cell, the
// same model first.go's plain []int memory used.
package dataspace

import (
	"errors"
	"fmt"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/internal/mem"
)

// ErrAllocate is raised when Allot(n) with n >= 0 would advance Here past
// End.
var ErrAllocate = errors.New("data space exhausted")

// ResizeError is raised when Allot(n) with n < 0 would retract Here below
// the floor most recently recorded by SetFloor -- releasing space that
// belongs to already-committed code (spec.md section 4.3, "resize").
type ResizeError struct{ Floor, Would uint }

func (e ResizeError) Error() string {
	return fmt.Sprintf("allot would resize below committed floor %v (asked for %v)", e.Floor, e.Would)
}

// poison is the value newly allotted cells are filled with, rather than
// zero, once SetDebug(true) is in effect, to make use of uninitialized
// data-space cells easier to spot in tests and traces. Debug is off by
// default so that CREATEd variables read back as the standard-mandated zero.
const poison = cell.Cell(-0x5050505050505050 ^ 0x1) // an arbitrary, recognizable bit pattern

// Space is a bump allocator over a paged cell memory.
type Space struct {
	mem   mem.Ints
	here  uint
	end   uint // 0 means unbounded
	floor uint // the currently-compiling word's data base; Allot may not retract below it
	debug bool
}

// New constructs a Space with the given upper bound in cells (0 means
// unbounded, subject only to Go's own memory limits).
func New(end uint) *Space {
	return &Space{end: end}
}

// SetDebug enables poison-filling newly allotted cells, for tests that want
// to assert a primitive initializes everything it allots.
func (sp *Space) SetDebug(debug bool) { sp.debug = debug }

// Here returns the current bump pointer.
func (sp *Space) Here() uint { return sp.here }

// SetHere forcibly relocates the bump pointer, used by MARKER unwind
// (spec.md section 4.8) and by the REPL's abort-during-compile recovery
// (spec.md section 4.5).
func (sp *Space) SetHere(addr uint) { sp.here = addr }

// End returns the configured upper bound, or 0 if unbounded.
func (sp *Space) End() uint { return sp.end }

// SetEnd reconfigures the upper bound.
func (sp *Space) SetEnd(end uint) { sp.end = end }

// SetFloor records the data base of the word currently being compiled, below
// which a negative Allot may not retract Here (spec.md section 4.3).
func (sp *Space) SetFloor(addr uint) { sp.floor = addr }

// Floor returns the most recently recorded floor.
func (sp *Space) Floor() uint { return sp.floor }

// Align is a no-op in this cell-addressed model; see package doc. Kept so
// callers that mirror the byte-addressed original (word creation always
// aligns first) read the same regardless of addressing granularity.
func (sp *Space) Align() {}

// Allot advances Here by n cells (n may be negative to release space, but
// never below Floor), returning the prior value of Here. This is the
// primitive behind both ALLOT and the compiler's own code emission.
func (sp *Space) Allot(n int) (uint, error) {
	old := sp.here
	next := int(sp.here) + n
	if next < 0 {
		return old, ResizeError{sp.floor, 0}
	}
	if n >= 0 {
		if sp.end != 0 && uint(next) > sp.end {
			return old, ErrAllocate
		}
	} else if uint(next) < sp.floor {
		return old, ResizeError{sp.floor, uint(next)}
	}
	sp.here = uint(next)
	if n > 0 && sp.debug {
		for a := old; a < sp.here; a++ {
			sp.mem.Stor(a, int(poison))
		}
	}
	return old, nil
}

// Load reads a single cell.
func (sp *Space) Load(addr uint) cell.Cell {
	v, _ := sp.mem.Load(addr)
	return cell.Cell(v)
}

// LoadInto reads len(buf) consecutive cells starting at addr.
func (sp *Space) LoadInto(addr uint, buf []cell.Cell) {
	ints := make([]int, len(buf))
	sp.mem.LoadInto(addr, ints)
	for i, v := range ints {
		buf[i] = cell.Cell(v)
	}
}

// Store writes a single cell, growing the backing pages as needed. Store
// does not itself move Here -- callers that want to both write and advance
// should use Compile.
func (sp *Space) Store(addr uint, v cell.Cell) {
	sp.mem.Stor(addr, int(v))
}

// Compile allots one cell and writes v into it, returning its address. This
// is word_append from spec.md section 4.3, used by the compiler to emit
// execution tokens and inline literals.
func (sp *Space) Compile(v cell.Cell) (uint, error) {
	sp.Align()
	addr, err := sp.Allot(1)
	if err != nil {
		return 0, err
	}
	sp.Store(addr, v)
	return addr, nil
}

// SetLimit bounds every load/store to addresses at or below n, failing
// loudly instead of growing the backing store without bound; used by the
// host's -mem-limit flag.
func (sp *Space) SetLimit(n uint) { sp.mem.Limit = n }

// Size reports one past the highest cell address ever written, mirroring
// the teacher's memSize helper; used by the decompiler/dumper.
func (sp *Space) Size() uint { return sp.mem.Size() }
