package post4_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIfElseThen_bothBranches(t *testing.T) {
	out, _ := run(t, `: SIGN DUP 0 > IF ." pos" ELSE ." nonpos" THEN ; 5 SIGN -5 SIGN`)
	assert.Equal(t, "posnonpos", out)
}

func TestIfThen_withoutElse(t *testing.T) {
	out, _ := run(t, `: MAYBE 0 > IF ." yes" THEN ; 1 MAYBE 0 MAYBE`)
	assert.Equal(t, "yes", out)
}

func TestBeginUntil_countsDown(t *testing.T) {
	// Each pass prints the value before decrementing, so the loop stops
	// as soon as the decremented value reaches zero -- 0 itself never
	// gets its own DUP . pass.
	out, _ := run(t, `: COUNTDOWN BEGIN DUP . 1- DUP 0= UNTIL DROP ; 3 COUNTDOWN`)
	assert.Equal(t, "3 2 1 ", out)
}

func TestBeginWhileRepeat_countsUpToLimit(t *testing.T) {
	out, _ := run(t, `: UPTO >R 0 BEGIN DUP R@ < WHILE DUP . 1+ REPEAT DROP R> DROP ; 4 UPTO`)
	assert.Equal(t, "0 1 2 3 ", out)
}

func TestLeave_exitsLoopEarly(t *testing.T) {
	out, _ := run(t, `: FINDTHREE 10 0 DO I 3 = IF I . LEAVE THEN LOOP ; FINDTHREE`)
	assert.Equal(t, "3 ", out)
}

func TestRecurse_computesFactorial(t *testing.T) {
	out, _ := run(t, `: FACT DUP 1 > IF DUP 1- RECURSE * ELSE DROP 1 THEN ; 5 FACT .`)
	assert.Equal(t, "120 ", out)
}

func TestPlusLoop_stepsByTwo(t *testing.T) {
	out, _ := run(t, `: EVENS 10 0 DO I . 2 +LOOP ; EVENS`)
	assert.Equal(t, "0 2 4 6 8 ", out)
}

func TestLeave_outsideLoopAbortsDefinition(t *testing.T) {
	// LEAVE throws ThrowBadControl at compile time since there is no open
	// DO loop; the in-progress (still HIDDEN) word never completes, so BAD
	// never becomes a callable name.
	_, vm := run(t, `: BAD LEAVE ; BAD`)
	_, ok := vm.Dict.FindName("BAD")
	assert.False(t, ok)
}
