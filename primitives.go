package post4

import (
	"fmt"
	"os"
	"strings"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/dict"
)

// registerPrimitives wires up the native Go code behind the core word set
// SPEC_FULL.md section 4 names: stack shufflers, arithmetic, comparisons,
// logic, and the basic I/O words. Words expressible in terms of others
// (e.g. a DUP-built NIP) are left for a bootstrap library rather than
// wired natively; everything here is either too cheap to bother compiling
// or, like /MOD, awkward to express without a native divmod.
func (vm *VM) registerPrimitives() {
	d := vm.defineCode

	d("DUP", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		vm.push(vm.Data, v)
		vm.push(vm.Data, v)
		return nil
	})
	d("?DUP", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		vm.push(vm.Data, v)
		if v.Bool() {
			vm.push(vm.Data, v)
		}
		return nil
	})
	d("DROP", 0, func(vm *VM) error { vm.pop(vm.Data); return nil })
	d("SWAP", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, b)
		vm.push(vm.Data, a)
		return nil
	})
	d("OVER", 0, func(vm *VM) error {
		v, err := vm.Data.Pick(1)
		if err != nil {
			vm.throwStackErr(vm.Data.Kind(), err)
		}
		vm.push(vm.Data, v)
		return nil
	})
	d("ROT", 0, func(vm *VM) error {
		c := vm.pop(vm.Data)
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, b)
		vm.push(vm.Data, c)
		vm.push(vm.Data, a)
		return nil
	})
	d("-ROT", 0, func(vm *VM) error {
		c := vm.pop(vm.Data)
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, c)
		vm.push(vm.Data, a)
		vm.push(vm.Data, b)
		return nil
	})
	d("NIP", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		vm.pop(vm.Data)
		vm.push(vm.Data, b)
		return nil
	})
	d("TUCK", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, b)
		vm.push(vm.Data, a)
		vm.push(vm.Data, b)
		return nil
	})
	d("PICK", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		v, err := vm.Data.Pick(n)
		if err != nil {
			vm.throwStackErr(vm.Data.Kind(), err)
		}
		vm.push(vm.Data, v)
		return nil
	})
	d("DEPTH", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromInt(vm.Data.Len()))
		return nil
	})

	d(">R", 0, func(vm *VM) error { vm.push(vm.Return, vm.pop(vm.Data)); return nil })
	d("R>", 0, func(vm *VM) error { vm.push(vm.Data, vm.pop(vm.Return)); return nil })
	d("R@", 0, func(vm *VM) error {
		v, err := vm.Return.Top()
		if err != nil {
			vm.throwStackErr(vm.Return.Kind(), err)
		}
		vm.push(vm.Data, v)
		return nil
	})

	d("+", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, cell.FromInt(a.Int()+b.Int()))
		return nil
	})
	d("-", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, cell.FromInt(a.Int()-b.Int()))
		return nil
	})
	d("*", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		vm.push(vm.Data, cell.FromInt(a.Int()*b.Int()))
		return nil
	})
	d("/", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		if b.Int() == 0 {
			vm.throw(ThrowDivZero)
		}
		vm.push(vm.Data, cell.FromInt(a.Int()/b.Int()))
		return nil
	})
	d("MOD", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		if b.Int() == 0 {
			vm.throw(ThrowDivZero)
		}
		vm.push(vm.Data, cell.FromInt(a.Int()%b.Int()))
		return nil
	})
	d("/MOD", 0, func(vm *VM) error {
		b := vm.pop(vm.Data)
		a := vm.pop(vm.Data)
		if b.Int() == 0 {
			vm.throw(ThrowDivZero)
		}
		vm.push(vm.Data, cell.FromInt(a.Int()%b.Int()))
		vm.push(vm.Data, cell.FromInt(a.Int()/b.Int()))
		return nil
	})
	d("NEGATE", 0, func(vm *VM) error {
		a := vm.pop(vm.Data)
		vm.push(vm.Data, cell.FromInt(-a.Int()))
		return nil
	})
	d("ABS", 0, func(vm *VM) error {
		a := vm.pop(vm.Data).Int()
		if a < 0 {
			a = -a
		}
		vm.push(vm.Data, cell.FromInt(a))
		return nil
	})
	d("MIN", 0, func(vm *VM) error {
		b := vm.pop(vm.Data).Int()
		a := vm.pop(vm.Data).Int()
		if b < a {
			a = b
		}
		vm.push(vm.Data, cell.FromInt(a))
		return nil
	})
	d("MAX", 0, func(vm *VM) error {
		b := vm.pop(vm.Data).Int()
		a := vm.pop(vm.Data).Int()
		if b > a {
			a = b
		}
		vm.push(vm.Data, cell.FromInt(a))
		return nil
	})
	d("1+", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromInt(vm.pop(vm.Data).Int()+1))
		return nil
	})
	d("1-", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromInt(vm.pop(vm.Data).Int()-1))
		return nil
	})
	d("2*", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromInt(vm.pop(vm.Data).Int()*2))
		return nil
	})
	d("2/", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromInt(vm.pop(vm.Data).Int()/2))
		return nil
	})

	cmp := func(name string, f func(a, b int) bool) {
		d(name, 0, func(vm *VM) error {
			b := vm.pop(vm.Data).Int()
			a := vm.pop(vm.Data).Int()
			vm.push(vm.Data, cell.FromBool(f(a, b)))
			return nil
		})
	}
	cmp("=", func(a, b int) bool { return a == b })
	cmp("<>", func(a, b int) bool { return a != b })
	cmp("<", func(a, b int) bool { return a < b })
	cmp(">", func(a, b int) bool { return a > b })
	cmp("<=", func(a, b int) bool { return a <= b })
	cmp(">=", func(a, b int) bool { return a >= b })

	d("0=", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromBool(vm.pop(vm.Data).Int() == 0))
		return nil
	})
	d("0<", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromBool(vm.pop(vm.Data).Int() < 0))
		return nil
	})

	logic := func(name string, f func(a, b int64) int64) {
		d(name, 0, func(vm *VM) error {
			b := vm.pop(vm.Data)
			a := vm.pop(vm.Data)
			vm.push(vm.Data, cell.Cell(f(int64(a), int64(b))))
			return nil
		})
	}
	logic("AND", func(a, b int64) int64 { return a & b })
	logic("OR", func(a, b int64) int64 { return a | b })
	logic("XOR", func(a, b int64) int64 { return a ^ b })
	d("INVERT", 0, func(vm *VM) error {
		a := vm.pop(vm.Data)
		vm.push(vm.Data, ^a)
		return nil
	})
	d("NOT", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromBool(!vm.pop(vm.Data).Bool()))
		return nil
	})

	d("CR", 0, func(vm *VM) error { _, err := fmt.Fprintln(vm.Out); return err })
	d("SPACE", 0, func(vm *VM) error { _, err := fmt.Fprint(vm.Out, " "); return err })
	d("SPACES", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		for i := 0; i < n; i++ {
			if _, err := fmt.Fprint(vm.Out, " "); err != nil {
				return err
			}
		}
		return nil
	})
	d(".", 0, func(vm *VM) error {
		_, err := fmt.Fprintf(vm.Out, "%d ", vm.pop(vm.Data).Int())
		return err
	})
	d(".S", 0, func(vm *VM) error {
		snap := vm.Data.Snapshot()
		_, err := fmt.Fprint(vm.Out, "<")
		if err != nil {
			return err
		}
		fmt.Fprintf(vm.Out, "%d> ", len(snap))
		for _, v := range snap {
			if _, err := fmt.Fprintf(vm.Out, "%d ", v.Int()); err != nil {
				return err
			}
		}
		return nil
	})
	d("EMIT", 0, func(vm *VM) error {
		_, err := fmt.Fprintf(vm.Out, "%c", rune(vm.pop(vm.Data).Int()))
		return err
	})
	d("TYPE", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		addr := vm.pop(vm.Data).Addr()
		for i := 0; i < n; i++ {
			if _, err := fmt.Fprintf(vm.Out, "%c", rune(vm.Space.Load(addr+uint(i)).Int())); err != nil {
				return err
			}
		}
		return nil
	})

	d("KEY", 0, func(vm *VM) error {
		r, err := vm.readRune()
		if err != nil {
			vm.throwf(ThrowBlockRead, "KEY: %v", err)
		}
		vm.push(vm.Data, cell.FromInt(int(r)))
		return nil
	})
	d("KEY?", 0, func(vm *VM) error {
		// Non-blocking lookahead is out of scope without raw terminal mode
		// (an explicit non-goal); report false so polling loops built on
		// KEY? simply fall back to blocking KEY.
		vm.push(vm.Data, cell.FromBool(false))
		return nil
	})
	d("EMIT?", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromBool(true))
		return nil
	})

	d("WORD", 0, func(vm *VM) error {
		delim := rune(vm.pop(vm.Data).Int())
		text := vm.parseDelim(delim)
		addr := vm.stashCounted(text)
		vm.push(vm.Data, cell.FromAddr(addr))
		return nil
	})
	d("COUNT", 0, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		n := vm.Space.Load(addr).Int()
		vm.push(vm.Data, cell.FromAddr(addr+1))
		vm.push(vm.Data, cell.FromInt(n))
		return nil
	})
	d("CMOVE", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		dst := vm.pop(vm.Data).Addr()
		src := vm.pop(vm.Data).Addr()
		for i := 0; i < n; i++ {
			vm.Space.Store(dst+uint(i), vm.Space.Load(src+uint(i)))
		}
		return nil
	})
	d("FILL", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		n := vm.pop(vm.Data).Int()
		addr := vm.pop(vm.Data).Addr()
		for i := 0; i < n; i++ {
			vm.Space.Store(addr+uint(i), v)
		}
		return nil
	})

	d("HERE", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromAddr(vm.Space.Here()))
		return nil
	})
	d("ALLOT", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		if _, err := vm.Space.Allot(n); err != nil {
			vm.throwf(ThrowResize, "%v", err)
		}
		return nil
	})
	d(",", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		if _, err := vm.Space.Compile(v); err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		return nil
	})
	d("C,", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		if _, err := vm.Space.Compile(v); err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		return nil
	})
	d("@", 0, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		vm.push(vm.Data, vm.Space.Load(addr))
		return nil
	})
	d("!", 0, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		v := vm.pop(vm.Data)
		vm.Space.Store(addr, v)
		return nil
	})
	d("C@", 0, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		vm.push(vm.Data, vm.Space.Load(addr))
		return nil
	})
	d("C!", 0, func(vm *VM) error {
		addr := vm.pop(vm.Data).Addr()
		v := vm.pop(vm.Data)
		vm.Space.Store(addr, v)
		return nil
	})
	d(">BODY", 0, func(vm *VM) error {
		xt := vm.pop(vm.Data).Addr()
		w, ok := vm.Dict.ByXT(xt)
		if !ok {
			vm.throw(ThrowUndefined)
		}
		vm.push(vm.Data, cell.FromAddr(w.Addr))
		return nil
	})

	d("VARIABLE", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		addr, err := vm.Space.Compile(cell.FromInt(0))
		if err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		vm.Dict.Link(&dict.Word{Name: name, Code: codeDataField, Addr: addr, Bits: dict.Created})
		return nil
	})
	d("2VARIABLE", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		addr, err := vm.Space.Compile(cell.FromInt(0))
		if err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		if _, err := vm.Space.Compile(cell.FromInt(0)); err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		vm.Dict.Link(&dict.Word{Name: name, Code: codeDataField, Addr: addr, Bits: dict.Created})
		return nil
	})
	d("CONSTANT", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		v := vm.pop(vm.Data)
		addr, err := vm.Space.Compile(v)
		if err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
		vm.Dict.Link(&dict.Word{Name: name, Code: codeConstant, Addr: addr, Bits: dict.Created})
		return nil
	})

	d("BASE", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromAddr(vm.baseAddr))
		return nil
	})
	d("DECIMAL", 0, func(vm *VM) error { vm.Space.Store(vm.baseAddr, cell.FromInt(10)); return nil })
	d("HEX", 0, func(vm *VM) error { vm.Space.Store(vm.baseAddr, cell.FromInt(16)); return nil })

	d("ABORT", 0, func(vm *VM) error { vm.throw(ThrowAbort); return nil })

	abortQuoteXT := d("(abort\")", dict.Hidden, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		addr := vm.pop(vm.Data).Addr()
		flag := vm.pop(vm.Data)
		if flag.Bool() {
			vm.throwf(ThrowAbortQuote, "%s", vm.readString(addr, n))
		}
		return nil
	}).Addr

	d(`ABORT"`, dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		msg := vm.parseDelim('"')
		addr := vm.stashString(msg)
		vm.compileLit(cell.FromAddr(addr))
		vm.compileLit(cell.FromInt(len(msg)))
		vm.compileXT(abortQuoteXT)
		return nil
	})

	typeWord, ok := vm.Dict.FindName("TYPE")
	if !ok {
		panic("TYPE must be defined before \".\"")
	}
	typeXT := typeWord.Addr

	d(`."`, dict.Immediate|dict.CompileOnly, func(vm *VM) error {
		msg := vm.parseDelim('"')
		addr := vm.stashString(msg)
		vm.compileLit(cell.FromAddr(addr))
		vm.compileLit(cell.FromInt(len(msg)))
		vm.compileXT(typeXT)
		return nil
	})

	d(`S"`, dict.Immediate, func(vm *VM) error {
		msg := vm.parseDelim('"')
		addr := vm.stashString(msg)
		if vm.state == stateCompile {
			vm.compileLit(cell.FromAddr(addr))
			vm.compileLit(cell.FromInt(len(msg)))
		} else {
			vm.push(vm.Data, cell.FromAddr(addr))
			vm.push(vm.Data, cell.FromInt(len(msg)))
		}
		return nil
	})

	d("THROW", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		if n == 0 {
			return nil
		}
		vm.throw(Code(n))
		return nil
	})
	d("CATCH", 0, func(vm *VM) error {
		xt := vm.pop(vm.Data).Addr()
		code := vm.catch(func() { vm.Execute(xt) })
		vm.push(vm.Data, cell.FromInt(int(code)))
		return nil
	})

	d("EVALUATE", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		addr := vm.pop(vm.Data).Addr()
		vm.PushInput("EVALUATE", strings.NewReader(vm.readString(addr, n)))
		return nil
	})
	d("INCLUDED", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		addr := vm.pop(vm.Data).Addr()
		name := vm.readString(addr, n)
		data, err := os.ReadFile(name)
		if err != nil {
			vm.throwf(ThrowBlockIO, "%v", err)
		}
		vm.PushInput(name, strings.NewReader(string(data)))
		return nil
	})

	d("BYE", 0, func(vm *VM) error { vm.throw(codeBye); return nil })
	d("WORDS", 0, func(vm *VM) error {
		for w := vm.Dict.Head; w != nil; w = w.Prev {
			if w.Bits.Has(dict.Hidden) || w.Name == "" {
				continue
			}
			if _, err := fmt.Fprintf(vm.Out, "%s ", w.Name); err != nil {
				return err
			}
		}
		return nil
	})
}

// readString reads n bytes starting at addr back out as a Go string, the
// inverse of stashString.
func (vm *VM) readString(addr uint, n int) string {
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = byte(vm.Space.Load(addr + uint(i)).Int())
	}
	return string(buf)
}

// stashCounted writes s as a counted string (length cell, then one cell per
// byte) starting at Here, advancing Here, and returns its address -- the
// representation WORD and COUNT agree on.
func (vm *VM) stashCounted(s string) uint {
	addr, err := vm.Space.Compile(cell.FromInt(len(s)))
	if err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
	for i := 0; i < len(s); i++ {
		if _, err := vm.Space.Compile(cell.FromInt(int(s[i]))); err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
	}
	return addr
}

// stashString writes s as plain, uncounted bytes (one cell per byte)
// starting at Here, for S"/."'s addr/len convention. While compiling, the
// bytes land inside the definition's body, so they are preceded by a branch
// that jumps over them.
func (vm *VM) stashString(s string) uint {
	if vm.state == stateCompile {
		skip := vm.compileBranch(vm.marks.branch)
		defer func() { vm.patchBranch(skip, vm.Space.Here()) }()
	}
	if len(s) == 0 {
		return vm.Space.Here()
	}
	addr, err := vm.Space.Compile(cell.FromInt(int(s[0])))
	if err != nil {
		vm.throwf(ThrowAllocate, "%v", err)
	}
	for i := 1; i < len(s); i++ {
		if _, err := vm.Space.Compile(cell.FromInt(int(s[i]))); err != nil {
			vm.throwf(ThrowAllocate, "%v", err)
		}
	}
	return addr
}
