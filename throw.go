package post4

import "fmt"

// Code is a THROW code: negative for the standard/ad-hoc fault codes spec.md
// section 7 names, zero or positive for a user-chosen ABORT"-style value
// thrown by Forth code itself via THROW.
type Code int

// The standard and ad-hoc throw codes spec.md section 7 names. Values below
// -256 are this implementation's own (ad-hoc codes the standard reserves for
// implementation use); -1 through -17-ish mirror the 2012 standard's
// well-known assignments closely enough for the test suite and SEE output to
// read naturally, without claiming full standard numbering.
const (
	ThrowAbort        Code = -1 // ABORT
	ThrowAbortQuote   Code = -2 // ABORT"
	ThrowStackOver    Code = -3
	ThrowStackUnder   Code = -4
	ThrowReturnOver   Code = -5
	ThrowReturnUnder  Code = -6
	ThrowFloatOver    Code = -45
	ThrowFloatUnder   Code = -46
	ThrowDivZero      Code = -10
	ThrowUndefined    Code = -13
	ThrowCompileOnly  Code = -14
	ThrowNotCreated   Code = -31 // attempt to use a word before CREATE gave it a body
	ThrowBadControl   Code = -22 // control structure mismatch (unbalanced IF/THEN, DO/LOOP, ...)
	ThrowBadBase      Code = -24
	ThrowAllocate     Code = -59
	ThrowResize       Code = -60
	ThrowBlockRead    Code = -61
	ThrowBlockWrite   Code = -62
	ThrowBlockBad     Code = -63 // invalid block number
	ThrowBlockIO      Code = -64
	ThrowQuit         Code = -56
	ThrowSigInt       Code = -28
	ThrowSigFPE       Code = -55
	ThrowSigSegv      Code = -57 // defined but never raised by a trapped signal; see signals.go
	ThrowInvalidForget Code = -58 // would-be FORGET target; FORGET itself is not defined
)

// ThrowError is the Go rendering of a Forth THROW: a negative (or
// implementation-chosen) code, optionally carrying the text an ABORT" or a
// diagnostic produced along the way.
type ThrowError struct {
	Code    Code
	Message string
}

func (e ThrowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("throw %d", int(e.Code))
}

// throw raises a Forth-level fault. It is always used via panic, never as a
// plain error return: primitives call vm.throw, and the single landing pad
// installed by catch recovers it. This mirrors the set/longjmp non-local
// exit spec.md section 9 calls for, rendered the idiomatic Go way.
func (vm *VM) throw(code Code) {
	panic(ThrowError{Code: code})
}

func (vm *VM) throwf(code Code, format string, args ...interface{}) {
	panic(ThrowError{Code: code, Message: fmt.Sprintf(format, args...)})
}

// catch runs f, recovering any ThrowError panic raised beneath it (by f
// itself, or anything it calls into) and cutting the data and return stacks
// back to the depths they had before f ran; a stack left shallower than
// that is not refilled, and the float stack is not touched. It returns 0 on
// normal completion, or the thrown code.
//
// Any panic that is not a ThrowError is re-panicked: those are host bugs,
// not Forth-level faults that CATCH traps.
func (vm *VM) catch(f func()) (code Code) {
	dataDepth := vm.Data.Len()
	returnDepth := vm.Return.Len()

	defer func() {
		if r := recover(); r != nil {
			te, ok := r.(ThrowError)
			if !ok {
				panic(r)
			}
			vm.Return.Drop(vm.Return.Len() - returnDepth)
			vm.Data.Drop(max0(vm.Data.Len() - dataDepth))
			code = te.Code
		}
	}()

	f()
	return 0
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
