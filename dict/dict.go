// Package dict implements the dictionary described in spec.md section 3
// ("Word (dictionary entry)") and section 4.2 ("Dictionary and Name
// Lookup"): a singly linked list of named words, newest first, searched
// case-insensitively, with deletion only through MARKER unwind.
//
// Each Word's header (name, flags, code) is an ordinary Go struct rather
// than cells packed into data space -- spec.md's design notes (section 9,
// "Cyclic references") license exactly this: treat execution tokens as
// opaque handles into a dictionary arena addressed by stable identity, not
// by replaying the original's byte layout. A Word's inline data (its
// compiled body, or a CREATEd word's payload) still lives in the shared,
// address-uniform data space, because branch displacements and DOES>
// continuations are arithmetic over that address space.
package dict

import (
	"strings"
)

// Bits is the flag set carried by a Word (spec.md section 3).
type Bits uint8

// The four flag bits spec.md names for a Word.
const (
	Immediate Bits = 1 << iota
	Created
	Hidden
	CompileOnly
)

// Has reports whether all bits in mask are set.
func (b Bits) Has(mask Bits) bool { return b&mask == mask }

// Code identifies the behavior bound to a Word: either one of the inner
// interpreter's built-in code handles (spec.md section 4.4) or a primitive
// registered by the host (native Go arithmetic, I/O, etc). It is an opaque
// handle from the Forth program's point of view, exactly the "execution
// token" of the glossary.
type Code int

// Word is one dictionary entry.
type Word struct {
	Prev *Word
	Name string
	Bits Bits
	Code Code

	// Addr is the base data-space address of this word's inline data: for
	// a colon definition, the first compiled execution token; for a
	// CREATEd word, the first cell of its param field (no cell is reserved
	// for DOES> bookkeeping -- see DoesAddr).
	Addr uint

	// NData is the number of cells written into this word's inline data,
	// set when a colon definition completes (';'). ALLOT and , after a
	// CREATE do not update it.
	NData int

	// DoesAddr is the data-space address of the DOES> action code applied
	// to a CREATEd word, or 0 if none was (spec.md section 4.9). It is
	// metadata about the word itself, not part of its addressable inline
	// data, so a CREATE ... , sequence and a later DOES> never collide over
	// the same cell.
	DoesAddr uint
}

// Dictionary is the newest-first linked list of every defined word, plus a
// reverse index from a word's data address to the Word itself -- the inner
// interpreter's indirect-threaded dispatch needs exactly this: given an
// execution token (a data-space address), find which word's Code governs
// execution there (spec.md section 4.4).
type Dictionary struct {
	Head  *Word
	byXT  map[uint]*Word
	count uint // monotonic count of Link calls; nothing reads it
}

// New constructs an empty dictionary.
func New() *Dictionary {
	return &Dictionary{byXT: make(map[uint]*Word)}
}

// Link publishes w as the new head of the dictionary, indexing it by its
// data address so the inner interpreter can resolve xt -> Word.
func (d *Dictionary) Link(w *Word) {
	w.Prev = d.Head
	d.Head = w
	d.byXT[w.Addr] = w
	d.count++
}

// ByXT resolves an execution token (a data-space address) back to the Word
// whose inline data begins there.
func (d *Dictionary) ByXT(xt uint) (*Word, bool) {
	w, ok := d.byXT[xt]
	return w, ok
}

// FindName walks the list from head to tail -- newest first, so later
// definitions shadow earlier ones -- comparing lengths then
// case-insensitive bytes, skipping HIDDEN and zero-length names (spec.md
// section 4.2).
func (d *Dictionary) FindName(name string) (*Word, bool) {
	if name == "" {
		return nil, false
	}
	for w := d.Head; w != nil; w = w.Prev {
		if w.Bits.Has(Hidden) || w.Name == "" {
			continue
		}
		if len(w.Name) == len(name) && strings.EqualFold(w.Name, name) {
			return w, true
		}
	}
	return nil, false
}

// Unwind removes mark and every word newer than it from the dictionary,
// restoring Head to mark.Prev. This is the only form of deletion the
// dictionary supports (spec.md section 4.2); individual FORGET is
// deliberately not exposed.
func (d *Dictionary) Unwind(mark *Word) {
	for w := d.Head; w != nil && w != mark.Prev; w = w.Prev {
		delete(d.byXT, w.Addr)
	}
	d.Head = mark.Prev
}

// UnwindTo removes every word newer than (but not including) keep. Used by
// the REPL's abort-during-compile recovery (spec.md section 4.5), where the
// in-progress HIDDEN word itself must be discarded.
func (d *Dictionary) UnwindTo(keep *Word) {
	for w := d.Head; w != nil && w != keep; w = w.Prev {
		delete(d.byXT, w.Addr)
	}
	d.Head = keep
}
