// Package cell defines the uniform machine word used by every stack and by
// data space: a single host-sized value that may be read back as a signed
// integer, an unsigned address, or (when the float stack is disabled) the
// bit pattern of a float64. The interpretation is purely syntactic -- Cell
// itself never tracks which view produced it.
package cell

import "math"

// Cell is the machine word. It is host-word sized (int64 on every platform
// Go targets), wide enough to hold an address into data space or a pointer
// to a dictionary word.
type Cell int64

// Int returns the cell as a signed integer.
func (c Cell) Int() int { return int(c) }

// Uint returns the cell as an address/unsigned magnitude.
func (c Cell) Uint() uint { return uint(c) }

// Addr returns the cell as a data-space address.
func (c Cell) Addr() uint { return uint(c) }

// Bool reports whether the cell is Forth-true (non-zero).
func (c Cell) Bool() bool { return c != 0 }

// FromBool renders a Go bool as a Forth flag: all-bits-set for true, 0 for
// false, matching the 2012 standard's canonical boolean representation.
func FromBool(b bool) Cell {
	if b {
		return -1
	}
	return 0
}

// Float reinterprets the cell's bit pattern as a float64, for float-stack
// cells produced by FromFloat.
func (c Cell) Float() float64 { return math.Float64frombits(uint64(c)) }

// FromFloat packs a float64's bit pattern into a cell.
func FromFloat(f float64) Cell { return Cell(math.Float64bits(f)) }

// FromInt packs a signed integer into a cell.
func FromInt(n int) Cell { return Cell(n) }

// FromAddr packs an address into a cell.
func FromAddr(addr uint) Cell { return Cell(addr) }
