package post4

import (
	"fmt"

	"github.com/jcorbin/post4/cell"
)

// registerFloatWords wires the float stack's word set: straight float64
// wrappers, per SPEC_FULL.md section 4 (spec.md's non-goal only excludes
// inventing a larger operator set than this).
func (vm *VM) registerFloatWords() {
	d := vm.defineCode

	binop := func(name string, f func(a, b float64) float64) {
		d(name, 0, func(vm *VM) error {
			b := vm.pop(vm.Float).Float()
			a := vm.pop(vm.Float).Float()
			vm.push(vm.Float, cell.FromFloat(f(a, b)))
			return nil
		})
	}
	binop("F+", func(a, b float64) float64 { return a + b })
	binop("F-", func(a, b float64) float64 { return a - b })
	binop("F*", func(a, b float64) float64 { return a * b })
	d("F/", 0, func(vm *VM) error {
		b := vm.pop(vm.Float).Float()
		a := vm.pop(vm.Float).Float()
		if b == 0 {
			vm.throw(ThrowDivZero)
		}
		vm.push(vm.Float, cell.FromFloat(a/b))
		return nil
	})

	d("F0=", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromBool(vm.pop(vm.Float).Float() == 0))
		return nil
	})
	d("F<", 0, func(vm *VM) error {
		b := vm.pop(vm.Float).Float()
		a := vm.pop(vm.Float).Float()
		vm.push(vm.Data, cell.FromBool(a < b))
		return nil
	})

	d("FDUP", 0, func(vm *VM) error {
		v := vm.pop(vm.Float)
		vm.push(vm.Float, v)
		vm.push(vm.Float, v)
		return nil
	})
	d("FSWAP", 0, func(vm *VM) error {
		b := vm.pop(vm.Float)
		a := vm.pop(vm.Float)
		vm.push(vm.Float, b)
		vm.push(vm.Float, a)
		return nil
	})
	d("FDROP", 0, func(vm *VM) error { vm.pop(vm.Float); return nil })

	d("F.", 0, func(vm *VM) error {
		_, err := fmt.Fprintf(vm.Out, "%g ", vm.pop(vm.Float).Float())
		return err
	})

	d(">FLOAT", 0, func(vm *VM) error {
		v := vm.pop(vm.Data)
		vm.push(vm.Float, cell.FromFloat(float64(v.Int())))
		return nil
	})
	d("FLOAT>", 0, func(vm *VM) error {
		v := vm.pop(vm.Float)
		vm.push(vm.Data, cell.FromInt(int(v.Float())))
		return nil
	})
}
