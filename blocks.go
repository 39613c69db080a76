package post4

import (
	"fmt"
	"strings"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/internal/blockfile"
)

// registerBlockWords wires BLOCK/BUFFER/UPDATE/FLUSH/SAVE-BUFFERS/
// EMPTY-BUFFERS/LIST/LOAD/THRU/-->/SCR (SPEC_FULL.md section 4) onto
// internal/blockfile. The single-slot cache's live byte buffer is mirrored
// into a dedicated 1024-cell region of data space every time BLOCK brings a
// new block into view, so ordinary @/C@/!/C! words can address it the same
// way they address anything else; UPDATE copies the mirror back out before
// marking the underlying cache dirty.
func (vm *VM) registerBlockWords() {
	d := vm.defineCode

	scrAddr, err := vm.Space.Compile(cell.FromInt(0)) // SCR: block number LIST last displayed
	if err != nil {
		panic(err)
	}
	bufAddr, err := vm.Space.Allot(blockfile.BlockSize)
	if err != nil {
		panic(err)
	}
	vm.blockBufAddr = bufAddr

	needBlocks := func(vm *VM) *blockfile.File {
		if vm.Blocks == nil {
			vm.throwf(ThrowBlockIO, "no block file open (see -blocks)")
		}
		return vm.Blocks
	}

	d("BLOCK", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		buf, err := needBlocks(vm).Block(n)
		if err != nil {
			vm.throwf(ThrowBlockRead, "%v", err)
		}
		vm.mirrorBlockIn(buf)
		vm.push(vm.Data, cell.FromAddr(vm.blockBufAddr))
		return nil
	})
	// BUFFER behaves like BLOCK but spec.md's block model never needs to
	// distinguish "don't bother reading the old contents" from a real
	// read, since reads are cheap in-process; it is kept as a distinct
	// word purely for source compatibility with standard block code.
	d("BUFFER", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		buf, err := needBlocks(vm).Block(n)
		if err != nil {
			vm.throwf(ThrowBlockRead, "%v", err)
		}
		vm.mirrorBlockIn(buf)
		vm.push(vm.Data, cell.FromAddr(vm.blockBufAddr))
		return nil
	})
	d("UPDATE", 0, func(vm *VM) error {
		bf := needBlocks(vm)
		vm.mirrorBlockOut(bf)
		bf.Update()
		return nil
	})
	d("FLUSH", 0, func(vm *VM) error {
		bf := needBlocks(vm)
		if err := bf.Flush(); err != nil {
			vm.throwf(ThrowBlockWrite, "%v", err)
		}
		return nil
	})
	d("SAVE-BUFFERS", 0, func(vm *VM) error {
		bf := needBlocks(vm)
		if bf.Dirty() {
			n := bf.Current()
			var data [blockfile.BlockSize]byte
			buf, _ := bf.Block(n)
			copy(data[:], buf)
			if err := bf.SyncBatch(map[int][blockfile.BlockSize]byte{n: data}); err != nil {
				vm.throwf(ThrowBlockWrite, "%v", err)
			}
		}
		return nil
	})
	d("EMPTY-BUFFERS", 0, func(vm *VM) error {
		needBlocks(vm).EmptyBuffers()
		return nil
	})

	d("SCR", 0, func(vm *VM) error {
		vm.push(vm.Data, cell.FromAddr(scrAddr))
		return nil
	})

	d("LIST", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		buf, err := needBlocks(vm).Block(n)
		if err != nil {
			vm.throwf(ThrowBlockRead, "%v", err)
		}
		vm.Space.Store(scrAddr, cell.FromInt(n))
		const cols = 64
		for row := 0; row*cols < len(buf); row++ {
			line := buf[row*cols : (row+1)*cols]
			if _, err := fmt.Fprintf(vm.Out, "%2d %s\n", row, string(line)); err != nil {
				return err
			}
		}
		return nil
	})

	d("LOAD", 0, func(vm *VM) error {
		n := vm.pop(vm.Data).Int()
		return vm.loadBlock(n)
	})
	d("THRU", 0, func(vm *VM) error {
		last := vm.pop(vm.Data).Int()
		first := vm.pop(vm.Data).Int()
		for n := first; n <= last; n++ {
			if err := vm.loadBlock(n); err != nil {
				return err
			}
		}
		return nil
	})
	d("-->", 0, func(vm *VM) error {
		vm.PopInput()
		return nil
	})
}

func (vm *VM) mirrorBlockIn(buf []byte) {
	for i, b := range buf {
		vm.Space.Store(vm.blockBufAddr+uint(i), cell.FromInt(int(b)))
	}
}

func (vm *VM) mirrorBlockOut(bf *blockfile.File) {
	buf, _ := bf.Block(bf.Current())
	for i := range buf {
		buf[i] = byte(vm.Space.Load(vm.blockBufAddr + uint(i)).Int())
	}
}

// loadBlock interprets block n's content as Forth source, isolated from
// whatever input was active before (spec.md section 4.6's INCLUDED/EVALUATE
// reentrancy, applied to blocks instead of files): the block's 1024 bytes,
// trailing spaces and all, become the sole input source for the nested
// Interpret call.
func (vm *VM) loadBlock(n int) error {
	buf, err := needBlocksForLoad(vm)
	if err != nil {
		return err
	}
	raw, err := buf.Block(n)
	if err != nil {
		vm.throwf(ThrowBlockRead, "%v", err)
	}

	saved := vm.in
	vm.in = nil
	vm.PushInput(fmt.Sprintf("block %d", n), strings.NewReader(string(raw)))
	err = vm.Interpret()
	vm.in = saved
	return err
}

func needBlocksForLoad(vm *VM) (*blockfile.File, error) {
	if vm.Blocks == nil {
		return nil, fmt.Errorf("no block file open")
	}
	return vm.Blocks, nil
}
