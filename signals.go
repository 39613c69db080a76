package post4

import (
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// activeVM is the single atomic pointer to the currently running VM that
// spec.md section 9's "Global state" design note calls for: signal delivery
// is inherently process-wide in Go (os/signal), so there is exactly one
// slot, not one per VM. Only the most recently constructed VM receives
// forwarded signals.
var activeVM atomic.Pointer[VM]

// installSignals forwards SIGINT and SIGFPE into a throw against whichever
// VM is current when they arrive. SIGSEGV is deliberately never trapped: a
// real SIGSEGV leaves Go's own runtime state unreliable, so continuing
// after one is not safe regardless of what Forth code asks for (spec.md
// section 9's open question on this is resolved by simply not wiring a
// handler -- ThrowSigSegv remains a defined code, reachable only via an
// explicit THROW from Forth for test purposes).
func installSignals(vm *VM) {
	activeVM.Store(vm)

	ch := make(chan os.Signal, 4)
	signal.Notify(ch, os.Interrupt, syscall.SIGFPE)
	go func() {
		for sig := range ch {
			cur := activeVM.Load()
			if cur == nil {
				continue
			}
			switch sig {
			case os.Interrupt:
				cur.signalThrow(ThrowSigInt)
			case syscall.SIGFPE:
				cur.signalThrow(ThrowSigFPE)
			}
		}
	}()
}

// signalThrow records a pending signal-originated throw code for the next
// safe point the outer interpreter checks, rather than panicking directly
// from the signal-handling goroutine into a VM that may be running on a
// different goroutine entirely.
func (vm *VM) signalThrow(code Code) {
	vm.pendingSignal.Store(int32(code))
}

// checkSignal is polled by Interpret between top-level tokens; a pending
// signal throw is delivered there rather than preemptively, since Forth
// code has no notion of asynchronous interruption mid-primitive.
func (vm *VM) checkSignal() {
	if code := vm.pendingSignal.Swap(0); code != 0 {
		vm.throw(Code(code))
	}
}
