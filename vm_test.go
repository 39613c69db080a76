package post4_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	post4 "github.com/jcorbin/post4"
)

// run feeds src through a fresh VM's outer interpreter and returns whatever
// it wrote to Out, exactly the shape spec.md section 8's scenarios check.
func run(t *testing.T, src string) (string, *post4.VM) {
	t.Helper()
	var out bytes.Buffer
	vm := post4.New(post4.WithOutput(&out))
	vm.PushInput("<test>", strings.NewReader(src))
	err := vm.Interpret()
	if err != nil && err != post4.ErrBye {
		require.NoError(t, err)
	}
	return out.String(), vm
}

// snapshotInts renders a VM's data stack as plain ints, bottom first, for
// assertions that don't want to deal with cell.Cell directly.
func snapshotInts(vm *post4.VM) []int {
	snap := vm.Data.Snapshot()
	out := make([]int, len(snap))
	for i, v := range snap {
		out[i] = v.Int()
	}
	return out
}

func TestScenario_simpleArithmetic(t *testing.T) {
	out, _ := run(t, "1 2 + .")
	assert.Equal(t, "3 ", out)
}

func TestScenario_colonDefinitionSquare(t *testing.T) {
	out, _ := run(t, ": SQR DUP * ; 7 SQR .")
	assert.Equal(t, "49 ", out)
}

func TestScenario_createDoesConstant(t *testing.T) {
	out, _ := run(t, `: CONST CREATE , DOES> @ ; 42 CONST ANSWER ANSWER .`)
	assert.Equal(t, "42 ", out)
}

func TestScenario_markerRemovesWord(t *testing.T) {
	_, vm := run(t, `MARKER FOO : TEMP 1 ; FOO`)
	_, ok := vm.Dict.FindName("TEMP")
	assert.False(t, ok, "MARKER should have unwound TEMP")
	_, ok = vm.Dict.FindName("FOO")
	assert.False(t, ok, "MARKER should remove itself too")
}

func TestScenario_unbalancedIfRaisesBadControl(t *testing.T) {
	// An IF with no matching THEN leaves the branch's placeholder address
	// sitting on the data stack at ";", so the control sentinel ";" checks
	// (spec.md section 4.5) finds the depth unbalanced and raises
	// bad-control (spec.md section 8 scenario 5) instead of silently
	// finishing the definition.
	_, vm := run(t, `: BAD 1 IF ;`)
	assert.Equal(t, 0, vm.Data.Len(), "the stray IF placeholder should be discarded along with the aborted definition")
	_, ok := vm.Dict.FindName("BAD")
	assert.False(t, ok, "a definition that fails its control balance check should never become visible")
}

func TestScenario_multiRadixArithmetic(t *testing.T) {
	out, _ := run(t, "HEX $10 DECIMAL . $A .")
	assert.Equal(t, "16 10 ", out)
}

func TestScenario_doLoopSumsIndex(t *testing.T) {
	out, _ := run(t, ": SUM5 0 5 0 DO I + LOOP . ; SUM5")
	assert.Equal(t, "10 ", out)
}

func TestScenario_nestedLoopUsesJ(t *testing.T) {
	out, _ := run(t, ": PAIRS 2 0 DO 2 0 DO J I + . LOOP LOOP ;  PAIRS")
	assert.Equal(t, "0 1 1 2 ", out)
}

func TestThrowCatch_roundTrip(t *testing.T) {
	out, _ := run(t, `: RISKY -43 THROW ; ' RISKY CATCH .`)
	assert.Equal(t, "-43 ", out)
}

func TestThrowCatch_noThrowPushesZero(t *testing.T) {
	out, _ := run(t, `: SAFE 1 2 + DROP ; ' SAFE CATCH .`)
	assert.Equal(t, "0 ", out)
}

func TestAbort_unwindsBothStacks(t *testing.T) {
	out, vm := run(t, `1 2.0 3 ABORT`)
	assert.Equal(t, "", out)
	assert.Equal(t, 0, vm.Data.Len())
	assert.Equal(t, 0, vm.Float.Len())
}

func TestAbortQuote_staysQuietWhenFlagFalse(t *testing.T) {
	out, _ := run(t, `: CHECK 0 > ABORT" too big" ." ok" ; 0 CHECK`)
	assert.Equal(t, "ok", out)
}

func TestAbortQuote_unwindsStackWhenFlagTrue(t *testing.T) {
	_, vm := run(t, `: CHECK 0 > ABORT" too big" ." ok" ; 9 9 1 CHECK`)
	assert.Equal(t, 0, vm.Data.Len(), "ABORT\" should reset the data stack like any other abort-class throw")
}

func TestUndefined_preservesDataStack(t *testing.T) {
	// spec.md section 7's recovery table resets only the return stack for an
	// "undefined" throw; the data stack -- and whatever catch already
	// restored it to -- must survive so it can still be inspected with .S.
	_, vm := run(t, `1 2 BOGUSWORD`)
	assert.Equal(t, []int{1, 2}, snapshotInts(vm), "1 2 should survive an undefined-word throw")
}

func TestWords_listsCoreWord(t *testing.T) {
	out, _ := run(t, "WORDS")
	assert.Contains(t, out, "DUP")
	assert.Contains(t, out, "SWAP")
}

func TestBye_endsInterpretWithErrBye(t *testing.T) {
	var outBuf bytes.Buffer
	vm := post4.New(post4.WithOutput(&outBuf))
	vm.PushInput("<test>", strings.NewReader("1 2 + . BYE 99 ."))
	err := vm.Interpret()
	assert.ErrorIs(t, err, post4.ErrBye)
	assert.Equal(t, "3 ", outBuf.String())
}
