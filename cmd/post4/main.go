// Command post4 runs the interactive Forth interpreter: with no arguments
// it reads from stdin; given a file argument, it INCLUDEs that file before
// falling through to stdin (unless -batch is set).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	post4 "github.com/jcorbin/post4"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("post4", flag.ContinueOnError)
	dataStack := fs.Int("data-stack", post4.DefaultDataStack, "data stack capacity, in cells")
	returnStack := fs.Int("return-stack", post4.DefaultReturnStack, "return stack capacity, in cells")
	floatStack := fs.Int("float-stack", post4.DefaultFloatStack, "float stack capacity, in cells")
	dataSpaceKB := fs.Int("data-space", post4.DefaultDataSpace/128, "data space size, in KB")
	blocks := fs.String("blocks", "", "path to a block file (enables BLOCK/BUFFER/...)")
	batch := fs.Bool("batch", false, "exit after the startup file instead of falling through to stdin")
	memLimit := fs.Int("mem-limit", 0, "hard data-space address ceiling, in cells (0 disables)")
	trace := fs.Bool("trace", false, "log every inner-interpreter dispatch step")
	timeout := fs.Duration("timeout", 0, "abort the whole run if it is still going after this long (0 disables)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	opts := []post4.VMOption{
		post4.WithDataStack(*dataStack),
		post4.WithReturnStack(*returnStack),
		post4.WithFloatStack(*floatStack),
		post4.WithDataSpace(uint(*dataSpaceKB) * 128),
		post4.WithOutput(os.Stdout),
		post4.WithArgs(fs.Args()),
		post4.WithTrace(*trace),
	}
	if *memLimit > 0 {
		opts = append(opts, post4.WithMemLimit(uint(*memLimit)))
	}
	if *blocks != "" {
		home, _ := os.UserHomeDir()
		opts = append(opts, post4.WithBlocks(*blocks, home))
	}

	vm := post4.New(opts...)
	defer vm.Close()

	var cancel context.CancelFunc
	if *timeout > 0 {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), *timeout)
		defer cancel()
		go func() {
			<-ctx.Done()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				vm.Log.Errorf("timeout after %s", *timeout)
				os.Exit(1)
			}
		}()
	}

	if startup := fs.Arg(0); startup != "" {
		f, err := os.Open(startup)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		vm.PushInput(startup, f)
		if err := vm.Interpret(); err != nil && !errors.Is(err, post4.ErrBye) {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		f.Close()
		if *batch {
			return vm.Log.ExitCode()
		}
	}

	vm.PushInput("<stdin>", os.Stdin)
	if err := vm.Interpret(); err != nil && !errors.Is(err, post4.ErrBye) {
		fmt.Fprintln(os.Stderr, err)
	}
	return vm.Log.ExitCode()
}
