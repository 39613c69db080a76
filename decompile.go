package post4

import (
	"fmt"
	"strings"

	"github.com/jcorbin/post4/dict"
)

// registerDecompiler wires SEE (spec.md section 4.10): given a word name,
// print its compiled body as a sequence of xt names, recognizing the
// handful of inline-operand opcodes (literals, branches) specially so the
// output reads like source rather than a raw cell dump.
func (vm *VM) registerDecompiler() {
	vm.defineCode("SEE", 0, func(vm *VM) error {
		name, ok := vm.parseName()
		if !ok {
			vm.throwf(ThrowUndefined, "expected a name")
		}
		w, ok := vm.Dict.FindName(name)
		if !ok {
			vm.throwf(ThrowUndefined, "%s ?", name)
		}
		_, err := fmt.Fprint(vm.Out, vm.Decompile(w))
		return err
	})
}

// Decompile renders w's compiled body as Forth-like source text. Primitive
// and CREATEd words are reported by shape rather than walked, since they
// have no threaded body to walk.
func (vm *VM) Decompile(w *dict.Word) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, ": %s", nameOrAnon(w.Name))

	switch {
	case w.Code >= codePrimitiveBase:
		fmt.Fprintf(&sb, " ( primitive ) ;\n")
		return sb.String()
	case w.Code == codeDataField:
		fmt.Fprintf(&sb, " ( create, body @ %d ) ;\n", w.Addr)
		return sb.String()
	case w.Code == codeConstant:
		fmt.Fprintf(&sb, " ( constant %d ) ;\n", vm.Space.Load(w.Addr).Int())
		return sb.String()
	case w.Code == codeDoDoes:
		fmt.Fprintf(&sb, " ( does> @ %d, body @ %d ) ;\n", w.DoesAddr, w.Addr)
		return sb.String()
	}

	ip := w.Addr
	for {
		xt := vm.Space.Load(ip).Addr()
		ip++
		word, ok := vm.Dict.ByXT(xt)
		if !ok {
			fmt.Fprintf(&sb, " <bad xt %d>", xt)
			break
		}
		switch {
		case xt == vm.marks.exit:
			sb.WriteString(" ;")
			return sb.String()
		case xt == vm.marks.lit:
			v := vm.Space.Load(ip)
			ip++
			fmt.Fprintf(&sb, " %d", v.Int())
		case xt == vm.marks.flit:
			v := vm.Space.Load(ip)
			ip++
			fmt.Fprintf(&sb, " %g", v.Float())
		case xt == vm.marks.branch:
			disp := vm.Space.Load(ip).Int()
			fmt.Fprintf(&sb, " (branch %+d)", disp)
			ip++
		case xt == vm.marks.branch0:
			disp := vm.Space.Load(ip).Int()
			fmt.Fprintf(&sb, " (branch0 %+d)", disp)
			ip++
		case xt == vm.marks.doesSplice:
			fmt.Fprintf(&sb, " (does>)")
		default:
			fmt.Fprintf(&sb, " %s", nameOrAnon(word.Name))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

func nameOrAnon(name string) string {
	if name == "" {
		return ":noname"
	}
	return name
}
