package post4

import (
	"fmt"
	"io"
	"strings"

	"github.com/jcorbin/post4/dict"
)

// readRune pulls the next rune from the innermost active input source,
// transparently popping exhausted frames -- the input stack spec.md section
// 4.6 wants so that EVALUATE and INCLUDED can nest and return control to
// their caller's position on completion.
func (vm *VM) readRune() (rune, error) {
	for len(vm.in) > 0 {
		top := vm.in[len(vm.in)-1]
		r, _, err := top.ReadRune()
		if err == nil {
			return r, nil
		}
		if err == io.EOF {
			vm.in = vm.in[:len(vm.in)-1]
			continue
		}
		return 0, err
	}
	return 0, io.EOF
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// parseName implements parse-name (spec.md section 4.6): skip leading
// whitespace, then collect runes up to (not including) the next whitespace
// or end of input. ok is false only when there was nothing left to parse at
// all.
func (vm *VM) parseName() (string, bool) {
	var r rune
	var err error
	for {
		r, err = vm.readRune()
		if err != nil {
			return "", false
		}
		if !isSpace(r) {
			break
		}
	}

	var sb strings.Builder
	sb.WriteRune(r)
	for {
		r, err = vm.readRune()
		if err != nil || isSpace(r) {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String(), true
}

// parseDelim implements the parse primitive behind words like S" and .":
// it collects runes up to (not including) delim, or end of input/line.
func (vm *VM) parseDelim(delim rune) string {
	var sb strings.Builder
	for {
		r, err := vm.readRune()
		if err != nil || r == delim {
			break
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Interpret runs the outer interpreter (spec.md section 4.5) over whatever
// input source is currently on top of the stack, until that source and
// every source beneath it are exhausted, or a BYE throw escapes. Each
// top-level token is isolated by catch: an uncaught throw is reported and
// recovered per spec.md section 7's recovery-class table, and
// interpretation resumes with the next token.
func (vm *VM) Interpret() error {
	for {
		tok, ok := vm.parseName()
		if !ok {
			return nil
		}

		code := vm.catch(func() {
			vm.checkSignal()
			vm.processToken(tok)
		})
		if code == 0 {
			continue
		}
		if code == codeBye {
			return ErrBye
		}
		vm.reportThrow(code)
		vm.recoverThrow(code)
		vm.state = stateInterpret
	}
}

// recoverThrow applies spec.md section 7's recovery-class table. catch has
// already restored stack depths to what they were before the faulting
// token ran (CATCH's own restore semantics); this layers the REPL's
// additional, class-specific resets on top of that, plus the
// compile-in-progress discard that applies regardless of throw code.
func (vm *VM) recoverThrow(code Code) {
	switch code {
	case ThrowAbort, ThrowAbortQuote, ThrowStackOver, ThrowStackUnder:
		vm.Data.Reset()
		vm.Float.Reset()
	case ThrowQuit, ThrowSigSegv, ThrowReturnOver, ThrowReturnUnder, ThrowUndefined:
		vm.Return.Reset()
	}

	// "Any during compilation (HIDDEN set)": discard the in-progress word,
	// rewind here, and rewind the data/return stacks back to what they were
	// when the definition started (spec.md section 4.5's "abort during
	// compile"), since the control sentinel's own bookkeeping makes that
	// rewind point exactly recoverable.
	if w := vm.current; w != nil {
		vm.Dict.UnwindTo(w.Prev)
		vm.Space.SetHere(w.Addr)
		vm.Space.SetFloor(0)
		vm.Data.Drop(max0(vm.Data.Len() - vm.compileDataDepth))
		vm.Return.Drop(max0(vm.Return.Len() - vm.compileReturnDepth))
		vm.current = nil
	}
}

// codeBye is not a real throw code spec.md names; BYE is rendered as a
// sentinel throw so it can unwind through catch the same way every other
// exit does, then be distinguished by Interpret.
const codeBye Code = -1 << 30

// ErrBye is returned by Interpret when input ended via BYE, so a host can
// distinguish a clean exit from a genuine read error.
var ErrBye = fmt.Errorf("bye")

func (vm *VM) reportThrow(code Code) {
	vm.Log.Errorf("throw %d", int(code))
}

// processToken is the compile-vs-interpret dispatch spec.md section 4.5
// describes: a known word either executes immediately (interpreting, or
// compiling and marked IMMEDIATE) or is compiled as a call; anything else is
// tried as a numeric literal.
func (vm *VM) processToken(tok string) {
	if w, ok := vm.Dict.FindName(tok); ok {
		if vm.state == stateInterpret && w.Bits.Has(dict.CompileOnly) {
			vm.throwf(ThrowCompileOnly, "%s is compile-only", tok)
		}
		if vm.state == stateCompile && !w.Bits.Has(dict.Immediate) {
			vm.compileCall(w)
			return
		}
		vm.executeWord(w)
		return
	}

	v, isFloat, ok := vm.parseNumber(tok)
	if !ok {
		vm.throwf(ThrowUndefined, "%s ?", tok)
	}
	if vm.state == stateCompile {
		if isFloat {
			vm.compileFLit(v)
		} else {
			vm.compileLit(v)
		}
		return
	}
	if isFloat {
		vm.push(vm.Float, v)
	} else {
		vm.push(vm.Data, v)
	}
}
