package post4

import (
	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/dict"
)

// registerControlWords implements the compiling control-flow words (spec.md
// section 4.4/4.9): IF/ELSE/THEN, BEGIN/WHILE/REPEAT/UNTIL/AGAIN,
// DO/LOOP/+LOOP/I/J/LEAVE, and RECURSE. All but I and J (ordinary words
// that read the loop indices at run time) are IMMEDIATE and CompileOnly,
// and the compiling ones use the data stack as their own
// forward/backward-reference scratch space at compile time -- exactly how a
// classic Forth metacompiler resolves branches, and the same trick spec.md
// section 9's "branch displacement" note assumes a decompiler can reverse.
func (vm *VM) registerControlWords() {
	const icc = dict.Immediate | dict.CompileOnly

	vm.defineCode("IF", icc, func(vm *VM) error {
		addr := vm.compileBranch(vm.marks.branch0)
		vm.push(vm.Data, cell.FromAddr(addr))
		return nil
	})

	vm.defineCode("ELSE", icc, func(vm *VM) error {
		ifAddr := vm.pop(vm.Data).Addr()
		addr := vm.compileBranch(vm.marks.branch)
		vm.patchBranch(ifAddr, vm.Space.Here())
		vm.push(vm.Data, cell.FromAddr(addr))
		return nil
	})

	vm.defineCode("THEN", icc, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		vm.patchBranch(addr, vm.Space.Here())
		return nil
	})

	vm.defineCode("BEGIN", icc, func(vm *VM) error {
		vm.push(vm.Data, cell.FromAddr(vm.Space.Here()))
		return nil
	})

	vm.defineCode("UNTIL", icc, func(vm *VM) error {
		target := vm.pop(vm.Data).Addr()
		addr := vm.compileBranch(vm.marks.branch0)
		vm.patchBranch(addr, target)
		return nil
	})

	vm.defineCode("AGAIN", icc, func(vm *VM) error {
		target := vm.pop(vm.Data).Addr()
		addr := vm.compileBranch(vm.marks.branch)
		vm.patchBranch(addr, target)
		return nil
	})

	vm.defineCode("WHILE", icc, func(vm *VM) error {
		addr := vm.compileBranch(vm.marks.branch0)
		vm.push(vm.Data, cell.FromAddr(addr))
		return nil
	})

	vm.defineCode("REPEAT", icc, func(vm *VM) error {
		whileAddr := vm.pop(vm.Data).Addr()
		beginAddr := vm.pop(vm.Data).Addr()
		addr := vm.compileBranch(vm.marks.branch)
		vm.patchBranch(addr, beginAddr)
		vm.patchBranch(whileAddr, vm.Space.Here())
		return nil
	})

	vm.defineCode("RECURSE", icc, func(vm *VM) error {
		if vm.current == nil {
			vm.throwf(ThrowBadControl, "RECURSE outside a definition")
		}
		vm.compileXT(vm.current.Addr)
		return nil
	})

	doXT := vm.defineCode("(do)", dict.Hidden, func(vm *VM) error {
		start := vm.pop(vm.Data)
		limit := vm.pop(vm.Data)
		vm.push(vm.Return, limit)
		vm.push(vm.Return, start)
		return nil
	}).Addr

	loopXT := vm.defineCode("(loop)", dict.Hidden, func(vm *VM) error {
		idx := vm.pop(vm.Return)
		limit := vm.pop(vm.Return)
		idx++
		if idx == limit {
			vm.push(vm.Data, cell.FromBool(true))
			return nil
		}
		vm.push(vm.Return, limit)
		vm.push(vm.Return, idx)
		vm.push(vm.Data, cell.FromBool(false))
		return nil
	}).Addr

	plusLoopXT := vm.defineCode("(+loop)", dict.Hidden, func(vm *VM) error {
		step := vm.pop(vm.Data).Int()
		idx := vm.pop(vm.Return)
		limit := vm.pop(vm.Return)
		next := cell.FromInt(idx.Int() + step)
		done := (step > 0 && next.Int() >= limit.Int()) || (step <= 0 && next.Int() <= limit.Int())
		if done {
			vm.push(vm.Data, cell.FromBool(true))
			return nil
		}
		vm.push(vm.Return, limit)
		vm.push(vm.Return, next)
		vm.push(vm.Data, cell.FromBool(false))
		return nil
	}).Addr

	leaveXT := vm.defineCode("(leave)", dict.Hidden, func(vm *VM) error {
		vm.pop(vm.Return)
		vm.pop(vm.Return)
		return nil
	}).Addr

	vm.defineCode("DO", icc, func(vm *VM) error {
		vm.compileXT(doXT)
		vm.push(vm.Data, cell.FromAddr(vm.Space.Here()))
		vm.leaveFixups = append(vm.leaveFixups, nil)
		return nil
	})

	vm.defineCode("LOOP", icc, func(vm *VM) error {
		loopStart := vm.pop(vm.Data).Addr()
		vm.compileXT(loopXT)
		branchAddr := vm.compileBranch(vm.marks.branch0)
		vm.patchBranch(branchAddr, loopStart)
		vm.resolveLeaves()
		return nil
	})

	vm.defineCode("+LOOP", icc, func(vm *VM) error {
		loopStart := vm.pop(vm.Data).Addr()
		vm.compileXT(plusLoopXT)
		branchAddr := vm.compileBranch(vm.marks.branch0)
		vm.patchBranch(branchAddr, loopStart)
		vm.resolveLeaves()
		return nil
	})

	vm.defineCode("LEAVE", icc, func(vm *VM) error {
		if len(vm.leaveFixups) == 0 {
			vm.throwf(ThrowBadControl, "LEAVE outside a DO loop")
		}
		vm.compileXT(leaveXT)
		addr := vm.compileBranch(vm.marks.branch)
		n := len(vm.leaveFixups) - 1
		vm.leaveFixups[n] = append(vm.leaveFixups[n], addr)
		return nil
	})

	vm.defineCode("I", 0, func(vm *VM) error {
		v, err := vm.Return.Pick(0)
		if err != nil {
			vm.throwf(ThrowBadControl, "I outside a DO loop")
		}
		vm.push(vm.Data, v)
		return nil
	})

	vm.defineCode("J", 0, func(vm *VM) error {
		v, err := vm.Return.Pick(2)
		if err != nil {
			vm.throwf(ThrowBadControl, "J outside a nested DO loop")
		}
		vm.push(vm.Data, v)
		return nil
	})
}

// resolveLeaves patches every LEAVE branch compiled within the innermost
// open DO loop to land just past the loop, then pops that loop's fixup
// list -- LOOP/+LOOP call this once the post-loop address is known.
func (vm *VM) resolveLeaves() {
	n := len(vm.leaveFixups) - 1
	if n < 0 {
		return
	}
	post := vm.Space.Here()
	for _, addr := range vm.leaveFixups[n] {
		vm.patchBranch(addr, post)
	}
	vm.leaveFixups = vm.leaveFixups[:n]
}
