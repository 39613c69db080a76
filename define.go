package post4

import (
	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/dict"
)

// markers holds the execution tokens of the handful of internal words that
// exist only to be compiled inline by the definitions below -- LIT, FLIT,
// EXIT, BRANCH, and BRANCH0 from spec.md section 4.4. They carry no name a
// user could type (HIDDEN), they only ever appear as compiled xts.
type markers struct {
	lit, flit, exit, branch, branch0, doesSplice uint
}

func (vm *VM) installMarkers() {
	def := func(name string, code dict.Code) uint {
		addr, err := vm.Space.Compile(cell.FromInt(0))
		if err != nil {
			panic(err)
		}
		vm.Dict.Link(&dict.Word{Name: name, Bits: dict.Hidden, Code: code, Addr: addr})
		return addr
	}
	vm.marks = markers{
		lit:        def("(lit)", codeLit),
		flit:       def("(flit)", codeFLit),
		exit:       def("(exit)", codeExit),
		branch:     def("(branch)", codeBranch),
		branch0:    def("(branch0)", codeBranchZero),
		doesSplice: def("(does)", codeDoesSplice),
	}
}

func (vm *VM) compileXT(addr uint) uint {
	a, err := vm.Space.Compile(cell.FromAddr(addr))
	if err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
	return a
}

func (vm *VM) compileCall(w *dict.Word) { vm.compileXT(w.Addr) }

func (vm *VM) compileLit(v cell.Cell) {
	vm.compileXT(vm.marks.lit)
	if _, err := vm.Space.Compile(v); err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
}

func (vm *VM) compileFLit(v cell.Cell) {
	vm.compileXT(vm.marks.flit)
	if _, err := vm.Space.Compile(v); err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
}

// compileBranch compiles a branch/branch0 opcode followed by a placeholder
// displacement cell, returning the address of that placeholder so a later
// THEN/REPEAT/etc. can patch it via patchBranch.
func (vm *VM) compileBranch(xt uint) uint {
	vm.compileXT(xt)
	addr, err := vm.Space.Compile(cell.FromInt(0))
	if err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
	return addr
}

// patchBranch resolves a forward reference: the displacement convention is
// cell-count relative to the operand slot itself (ip already past the
// opcode when the operand is read), so disp = target - operandAddr.
func (vm *VM) patchBranch(operandAddr, target uint) {
	vm.Space.Store(operandAddr, cell.FromInt(int(target)-int(operandAddr)))
}

// beginDefinition starts compiling a new colon-class word: name is already
// HIDDEN (so recursive use by the old name of the same spelling still
// resolves, and so an aborted definition leaves no trace once unwound), and
// Floor is raised to protect its still-growing body from a negative ALLOT.
func (vm *VM) beginDefinition(name string, bits dict.Bits) *dict.Word {
	w := &dict.Word{Name: name, Bits: bits | dict.Hidden, Code: codeEnter, Addr: vm.Space.Here()}
	vm.Dict.Link(w)
	vm.Space.SetFloor(w.Addr)
	vm.current = w
	return w
}

// pushControlSentinel records the stack depths a definition starts at, so
// endDefinition can detect an unbalanced control structure (spec.md section
// 4.5): IF/BEGIN/DO and friends use the data stack as compile-time scratch,
// and every one of them must have been consumed by a matching THEN/UNTIL/
// LOOP by the time ";" runs.
func (vm *VM) pushControlSentinel() {
	vm.compileDataDepth = vm.Data.Len()
	vm.compileReturnDepth = vm.Return.Len()
}

// checkControlBalance is the sentinel's other half: ";" recomputes the
// current depths and requires they match what pushControlSentinel recorded,
// raising bad-control on mismatch (spec.md section 8 scenario 5, e.g.
// ": BAD 1 IF ;" with no matching THEN).
func (vm *VM) checkControlBalance() {
	if vm.Data.Len() != vm.compileDataDepth || vm.Return.Len() != vm.compileReturnDepth {
		vm.throwf(ThrowBadControl, "unbalanced control structure")
	}
}

func (vm *VM) endDefinition() {
	vm.checkControlBalance()
	vm.compileXT(vm.marks.exit)
	if vm.current != nil {
		vm.current.NData = int(vm.Space.Here() - vm.current.Addr)
		vm.current.Bits &^= dict.Hidden
		vm.current = nil
	}
	vm.Space.SetFloor(0)
}

func (vm *VM) registerDefiningWords() {
	vm.defineCode(":", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		vm.beginDefinition(name, 0)
		vm.pushControlSentinel()
		vm.state = stateCompile
		return nil
	})

	vm.defineCode(";", dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		vm.endDefinition()
		vm.state = stateInterpret
		return nil
	})

	vm.defineCode(":NONAME", 0, func(vm *VM) error {
		vm.markerSeq++
		w := vm.beginDefinition("", 0)
		vm.push(vm.Data, cell.FromAddr(w.Addr))
		vm.pushControlSentinel()
		vm.state = stateCompile
		return nil
	})

	vm.defineCode("IMMEDIATE", 0, func(vm *VM) error {
		if vm.Dict.Head != nil {
			vm.Dict.Head.Bits |= dict.Immediate
		}
		return nil
	})

	vm.defineCode("CREATE", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		// Addr is the future param field: CREATE commits no cells of its
		// own, so a following "," or ALLOT writes starting exactly here.
		w := &dict.Word{Name: name, Code: codeDataField, Bits: dict.Created, Addr: vm.Space.Here()}
		vm.Dict.Link(w)
		return nil
	})

	// DOES> is only ever meaningful inside a colon-style defining word
	// ("CREATE ... DOES> ..."); it compiles a codeDoesSplice opcode so that,
	// every time the defining word runs (once per word it creates), the
	// splice fires at exactly the right moment: Dict.Head is still the
	// word CREATE just linked, and ip already points at the does-action
	// code that follows -- that address becomes DoesAddr, and the word's
	// Code flips from codeDataField to codeDoDoes. The defining word's own
	// execution then returns early, per spec.md section 4.9; the does
	// action code only ever runs later, once per invocation of a word it
	// was applied to.
	vm.defineCode("DOES>", dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		if vm.current == nil {
			vm.throwf(ThrowBadControl, "DOES> outside a definition")
		}
		vm.compileXT(vm.marks.doesSplice)
		return nil
	})

	vm.defineCode("MARKER", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		mark := vm.Dict.Head
		here := vm.Space.Here()
		vm.defineCode(name, 0, func(vm *VM) error {
			vm.Dict.UnwindTo(mark)
			vm.Space.SetHere(here)
			return nil
		})
		return nil
	})

	vm.defineCode("'", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		w, ok := vm.Dict.FindName(name)
		if !ok {
			vm.throwf(ThrowUndefined, "%s ?", name)
		}
		vm.push(vm.Data, cell.FromAddr(w.Addr))
		return nil
	})

	vm.defineCode("POSTPONE", dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		w, ok := vm.Dict.FindName(name)
		if !ok {
			vm.throwf(ThrowUndefined, "%s ?", name)
		}
		if w.Bits.Has(dict.Immediate) {
			vm.executeWord(w)
		} else {
			vm.compileCall(w)
		}
		return nil
	})

	vm.defineCode("LITERAL", dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		v := vm.pop(vm.Data)
		vm.compileLit(v)
		return nil
	})
}

// mostRecentCreated finds the word a codeDoesSplice firing should patch:
// the most recently linked CREATEd word, which is Dict.Head at the moment
// the defining word's thread reaches the splice (CREATE having just run
// earlier in that same thread).
func (vm *VM) mostRecentCreated() *dict.Word {
	for w := vm.Dict.Head; w != nil; w = w.Prev {
		if w.Bits.Has(dict.Created) {
			return w
		}
	}
	vm.throwf(ThrowNotCreated, "DOES> without a CREATE")
	return nil
}
