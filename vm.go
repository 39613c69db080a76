// Package post4 implements an interactive Forth-2012-style interpreter and
// compiler: a dictionary of named words, three cell stacks (data, return,
// and an optional float stack), a bump-allocated data space, an
// indirect-threaded inner interpreter, and an outer interpreter (REPL) that
// tokenizes, recognizes numeric literals, and dispatches between
// interpreting and compiling.
package post4

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/dataspace"
	"github.com/jcorbin/post4/dict"
	"github.com/jcorbin/post4/internal/blockfile"
	"github.com/jcorbin/post4/internal/fileinput"
	"github.com/jcorbin/post4/internal/flushio"
	"github.com/jcorbin/post4/internal/logio"
	"github.com/jcorbin/post4/stack"
)

// Default capacities, overridable via VMOption; chosen to comfortably run
// every scenario in spec.md section 8 without the test suite needing to
// tune them.
const (
	DefaultDataStack   = 256
	DefaultReturnStack = 256
	DefaultFloatStack  = 64
	DefaultDataSpace   = 64 * 1024 // cells
)

// VM is one interpreter instance: every piece of state spec.md section 3
// names, plus the ambient I/O and logging the host wires in through
// VMOptions.
type VM struct {
	Data   *stack.Stack
	Return *stack.Stack
	Float  *stack.Stack

	Space *dataspace.Space
	Dict  *dict.Dictionary

	baseAddr     uint // data-space cell holding the current numeric radix (spec.md section 4.7); BASE pushes this address
	blockBufAddr uint // data-space mirror of the block file's live 1024-byte buffer

	in     inputStack
	Out    flushio.WriteFlusher
	Log    *logio.Logger
	Blocks *blockfile.File

	state   compileState
	current *dict.Word // word currently being compiled, or nil

	prims       []primitive
	marks       markers
	leaveFixups [][]uint

	// compileDataDepth/compileReturnDepth record the data/return stack
	// depths as of the most recent ":"/":NONAME", spec.md section 4.5's
	// "control sentinel" that ";" checks for balance. Kept as VM-side
	// bookkeeping rather than an actual cell pushed on the data stack --
	// nested colon definitions are already impossible (compiling one
	// requires finishing or aborting the last), so there is never more
	// than one sentinel live at a time.
	compileDataDepth   int
	compileReturnDepth int

	// argv is the remaining positional command-line arguments, as handed
	// over by WithArgs; no word reads it.
	argv []string

	markerSeq uint

	pendingSignal atomic.Int32

	trace bool
}

type primitive func(vm *VM) error

type compileState int

const (
	stateInterpret compileState = iota
	stateCompile
)

// VMOption configures a VM at construction time; see New.
type VMOption func(vm *VM)

// WithDataStack sets the data stack's capacity.
func WithDataStack(capacity int) VMOption { return func(vm *VM) { vm.Data = stack.New(stack.Data, capacity) } }

// WithReturnStack sets the return stack's capacity.
func WithReturnStack(capacity int) VMOption {
	return func(vm *VM) { vm.Return = stack.New(stack.Return, capacity) }
}

// WithFloatStack sets the float stack's capacity.
func WithFloatStack(capacity int) VMOption {
	return func(vm *VM) { vm.Float = stack.New(stack.Float, capacity) }
}

// WithDataSpace sets the data space's upper bound, in cells.
func WithDataSpace(cells uint) VMOption { return func(vm *VM) { vm.Space = dataspace.New(cells) } }

// WithOutput directs VM output through w.
func WithOutput(w io.Writer) VMOption {
	return func(vm *VM) { vm.Out = flushio.NewWriteFlusher(w) }
}

// WithLog installs a logger other than the default stderr logger.
func WithLog(log *logio.Logger) VMOption { return func(vm *VM) { vm.Log = log } }

// WithMemLimit bounds data-space addressing at n cells, independent of the
// bump allocator's own End -- a lower, hard ceiling past which even Store
// through an explicit address fails loudly, for running untrusted scripts.
func WithMemLimit(n uint) VMOption { return func(vm *VM) { vm.Space.SetLimit(n) } }

// WithTrace enables the inner interpreter's step trace: every dispatch
// logs "@addr word" at TRACE level through vm.Log, in the same spirit as
// the teacher's own -trace flag.
func WithTrace(on bool) VMOption { return func(vm *VM) { vm.trace = on } }

// WithArgs seeds the positional arguments available to the startup
// sequence (cmd/post4 uses this to hand off flag.Args()).
func WithArgs(args []string) VMOption {
	return func(vm *VM) { vm.argv = append([]string(nil), args...) }
}

// WithBlocks opens path (falling back to a copy under home on contention)
// as the block file backing BLOCK/BUFFER/UPDATE/FLUSH.
func WithBlocks(path, home string) VMOption {
	return func(vm *VM) {
		bf, err := blockfile.Open(path, home)
		if err != nil {
			vm.Log.Errorf("opening block file %s: %v", path, err)
			return
		}
		vm.Blocks = bf
	}
}

// New constructs a VM with the given options applied over sensible
// defaults, registers the core word set, and installs signal forwarding.
func New(opts ...VMOption) *VM {
	vm := &VM{
		Data:   stack.New(stack.Data, DefaultDataStack),
		Return: stack.New(stack.Return, DefaultReturnStack),
		Float:  stack.New(stack.Float, DefaultFloatStack),
		Space:  dataspace.New(DefaultDataSpace),
		Dict:   dict.New(),
		Out:    flushio.NewWriteFlusher(os.Stdout),
		Log:    &logio.Logger{},
	}
	vm.Log.SetOutput(nopWriteCloser{os.Stderr})
	for _, opt := range opts {
		opt(vm)
	}
	baseAddr, err := vm.Space.Compile(cell.FromInt(10))
	if err != nil {
		panic(fmt.Errorf("allocating BASE cell: %w", err))
	}
	vm.baseAddr = baseAddr

	vm.installMarkers()
	vm.registerPrimitives()
	vm.registerDefiningWords()
	vm.registerControlWords()
	vm.registerFloatWords()
	vm.registerBlockWords()
	vm.registerDecompiler()
	installSignals(vm)
	return vm
}

// Close releases any block file and flushes output.
func (vm *VM) Close() error {
	var err error
	if vm.Blocks != nil {
		err = vm.Blocks.Close()
	}
	if ferr := vm.Out.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}

// PushInput adds src (named name) to the top of the input stack, for
// INCLUDED and the startup file.
func (vm *VM) PushInput(name string, src io.Reader) {
	in := &fileinput.Input{Queue: []io.Reader{namedReader{src, name}}}
	vm.in = append(vm.in, in)
}

// PopInput discards the current input frame, returning to its parent
// (used by -->; exhausted frames are popped by the outer interpreter's
// reader itself).
func (vm *VM) PopInput() {
	if n := len(vm.in); n > 0 {
		vm.in = vm.in[:n-1]
	}
}

type inputStack []*fileinput.Input

type namedReader struct {
	io.Reader
	name string
}

func (nr namedReader) Name() string { return nr.name }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// defineCode links a new primitive-backed Word into the dictionary, giving
// it a data-space cell to serve as its execution token (spec.md section
// 4.4: every word, primitive or compiled, is named by a plain cell address
// usable as an xt).
func (vm *VM) defineCode(name string, bits dict.Bits, fn primitive) *dict.Word {
	idx := len(vm.prims)
	vm.prims = append(vm.prims, fn)
	addr, err := vm.Space.Compile(cell.FromInt(idx))
	if err != nil {
		panic(fmt.Errorf("out of data space defining %s: %w", name, err))
	}
	w := &dict.Word{Name: name, Bits: bits, Code: codePrimitiveBase + dict.Code(idx), Addr: addr}
	vm.Dict.Link(w)
	return w
}
