package post4

import (
	"strconv"
	"strings"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/dict"
	"github.com/jcorbin/post4/stack"
)

// The inner interpreter's built-in code handles (spec.md section 4.4).
// Every dictionary Word's Code is either one of these, or
// codePrimitiveBase-or-above, meaning "call the native Go function at
// vm.prims[Code-codePrimitiveBase]".
const (
	codeEnter      dict.Code = iota // colon definition: call into Word.Addr
	codeExit                        // ";" -- return to the caller
	codeLit                         // inline literal follows in the next cell
	codeBranch                      // unconditional branch, displacement follows
	codeBranchZero                  // branch if top-of-stack is zero, displacement follows
	codeDataField                   // CREATEd word with no DOES>: push Addr (its param field)
	codeDoDoes                      // CREATEd word with DOES>: push Addr, then call w.DoesAddr
	codeFLit                        // inline float literal follows in the next cell, pushed to the float stack
	codeDoesSplice                  // compiled by DOES> itself; see define.go
	codeConstant                    // CONSTANT word: push the single cell stored at Addr
	codeLongjmp                     // reserved: non-local exit is realized via Go panic, see throw.go

	codePrimitiveBase // every Code at or above this is a primitive index
)

// Execute runs the word named by xt: a primitive runs directly; a colon
// definition or a DOES>-augmented CREATE word runs through the threaded
// dispatch loop in run. Faults (undefined xt, stack over/underflow) are
// raised via vm.throw, not returned.
func (vm *VM) Execute(xt uint) {
	w, ok := vm.Dict.ByXT(xt)
	if !ok {
		vm.throw(ThrowUndefined)
	}
	vm.executeWord(w)
}

func (vm *VM) executeWord(w *dict.Word) {
	if code := w.Code; code >= codePrimitiveBase {
		vm.callPrimitive(code)
		return
	}
	if w.Code == codeDataField {
		vm.push(vm.Data, cell.FromAddr(w.Addr))
		return
	}
	if w.Code == codeConstant {
		vm.push(vm.Data, vm.Space.Load(w.Addr))
		return
	}

	ip := w.Addr
	if w.Code == codeDoDoes {
		vm.push(vm.Data, cell.FromAddr(w.Addr))
		ip = w.DoesAddr
	}
	vm.push(vm.Return, cell.FromAddr(0)) // sentinel: return to caller of Execute
	vm.run(ip)
}

func (vm *VM) callPrimitive(code dict.Code) {
	idx := int(code - codePrimitiveBase)
	if idx < 0 || idx >= len(vm.prims) {
		vm.throw(ThrowUndefined)
	}
	if err := vm.prims[idx](vm); err != nil {
		panic(err)
	}
}

// run drives the indirect-threaded dispatch loop starting at ip until an
// EXIT unwinds back past the sentinel Execute (or a nested call) pushed.
func (vm *VM) run(ip uint) {
	for {
		xt := vm.Space.Load(ip).Addr()
		ip++

		w, ok := vm.Dict.ByXT(xt)
		if !ok {
			vm.throw(ThrowUndefined)
		}
		if vm.trace {
			vm.traceStep(ip-1, w)
		}

		switch w.Code {
		case codeExit:
			r := vm.pop(vm.Return)
			if r.Addr() == 0 {
				return
			}
			ip = r.Addr()

		case codeLit:
			v := vm.Space.Load(ip)
			ip++
			vm.push(vm.Data, v)

		case codeFLit:
			v := vm.Space.Load(ip)
			ip++
			vm.push(vm.Float, v)

		case codeBranch:
			disp := vm.Space.Load(ip).Int()
			ip = uint(int(ip) + disp)

		case codeBranchZero:
			disp := vm.Space.Load(ip).Int()
			ip++
			f := vm.pop(vm.Data)
			if !f.Bool() {
				ip = uint(int(ip-1) + disp)
			}

		case codeDataField:
			vm.push(vm.Data, cell.FromAddr(w.Addr))

		case codeConstant:
			vm.push(vm.Data, vm.Space.Load(w.Addr))

		case codeDoDoes:
			vm.push(vm.Data, cell.FromAddr(w.Addr))
			vm.push(vm.Return, cell.FromAddr(ip))
			ip = w.DoesAddr

		case codeDoesSplice:
			target := vm.mostRecentCreated()
			target.DoesAddr = ip
			target.Code = codeDoDoes
			r := vm.pop(vm.Return)
			if r.Addr() == 0 {
				return
			}
			ip = r.Addr()

		case codeEnter:
			vm.push(vm.Return, cell.FromAddr(ip))
			ip = w.Addr

		default: // primitive
			vm.callPrimitive(w.Code)
		}
	}
}

// push/pop wrap stack.Stack operations with the throw convention: a
// primitive never sees a Go error return for over/underflow, it sees a
// ThrowError panic, exactly like every other Forth-level fault.
func (vm *VM) push(s *stack.Stack, v cell.Cell) {
	if err := s.Push(v); err != nil {
		vm.throwStackErr(s.Kind(), err)
	}
}

func (vm *VM) pop(s *stack.Stack) cell.Cell {
	v, err := s.Pop()
	if err != nil {
		vm.throwStackErr(s.Kind(), err)
	}
	return v
}

// traceStep logs one dispatch step in the teacher's "@addr word.code
// r:[...] s:[...]" line format, read through -trace.
func (vm *VM) traceStep(ip uint, w *dict.Word) {
	vm.Log.Leveledf("TRACE")("@%d %s.%d r:%s s:%s", ip, nameOrAnon(w.Name), w.Code, snapshot(vm.Return), snapshot(vm.Data))
}

func snapshot(s *stack.Stack) string {
	vs := s.Snapshot()
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = strconv.Itoa(v.Int())
	}
	return "[" + strings.Join(out, " ") + "]"
}

func (vm *VM) throwStackErr(kind stack.Kind, err error) {
	switch kind {
	case stack.Return:
		if _, over := err.(stack.OverflowError); over {
			vm.throwf(ThrowReturnOver, "%v", err)
		}
		vm.throwf(ThrowReturnUnder, "%v", err)
	case stack.Float:
		if _, over := err.(stack.OverflowError); over {
			vm.throwf(ThrowFloatOver, "%v", err)
		}
		vm.throwf(ThrowFloatUnder, "%v", err)
	default:
		if _, over := err.(stack.OverflowError); over {
			vm.throwf(ThrowStackOver, "%v", err)
		}
		vm.throwf(ThrowStackUnder, "%v", err)
	}
}
