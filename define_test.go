package post4

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runSrc(t *testing.T, src string) (string, *VM) {
	t.Helper()
	var out bytes.Buffer
	vm := New(WithOutput(&out))
	vm.PushInput("<test>", strings.NewReader(src))
	err := vm.Interpret()
	require.NoError(t, err)
	return out.String(), vm
}

func TestCreateDoes_classicConstant(t *testing.T) {
	out, _ := runSrc(t, `: CONST CREATE , DOES> @ ; 7 CONST SEVEN SEVEN .`)
	assert.Equal(t, "7 ", out)
}

func TestCreateDoes_independentInstances(t *testing.T) {
	out, _ := runSrc(t, `: CONST CREATE , DOES> @ ; 1 CONST ONE 2 CONST TWO ONE . TWO .`)
	assert.Equal(t, "1 2 ", out)
}

func TestCreateDoes_redefinitionDoesNotAffectOlderWord(t *testing.T) {
	out, _ := runSrc(t, `
		: CONST CREATE , DOES> @ ;
		1 CONST ONE
		: CONST CREATE , DOES> @ 2 * ;
		1 CONST DOUBLED
		ONE . DOUBLED .
	`)
	assert.Equal(t, "1 2 ", out)
}

func TestCreate_withoutDoesBehavesAsPlainVariable(t *testing.T) {
	out, _ := runSrc(t, `CREATE BUF 9 , BUF @ .`)
	assert.Equal(t, "9 ", out)
}

func TestMarker_restoresHereAndDictionary(t *testing.T) {
	vm := New()
	vm.PushInput("<test>", strings.NewReader(`MARKER RESET-POINT : LEFTOVER 1 2 3 ; VARIABLE V`))
	require.NoError(t, vm.Interpret())

	hereBefore := vm.Space.Here()
	_, ok := vm.Dict.FindName("LEFTOVER")
	require.True(t, ok)

	vm.PushInput("<test>", strings.NewReader("RESET-POINT"))
	require.NoError(t, vm.Interpret())

	assert.Less(t, vm.Space.Here(), hereBefore)
	_, ok = vm.Dict.FindName("LEFTOVER")
	assert.False(t, ok)
	_, ok = vm.Dict.FindName("V")
	assert.False(t, ok)
	_, ok = vm.Dict.FindName("RESET-POINT")
	assert.False(t, ok)
}

func TestVariable_readWriteRoundTrip(t *testing.T) {
	out, _ := runSrc(t, `VARIABLE X 5 X ! X @ .`)
	assert.Equal(t, "5 ", out)
}

func TestConstant_pushesStoredValue(t *testing.T) {
	out, _ := runSrc(t, `100 CONSTANT HUNDRED HUNDRED .`)
	assert.Equal(t, "100 ", out)
}

func TestNoName_definitionRunsThroughExecute(t *testing.T) {
	var out bytes.Buffer
	vm := New(WithOutput(&out))
	vm.PushInput("<test>", strings.NewReader(`:NONAME 3 3 * . ;`))
	require.NoError(t, vm.Interpret())
	require.Equal(t, 1, vm.Data.Len(), ":NONAME should leave its xt on the data stack")
	xt := vm.Data.Snapshot()[0].Addr()
	vm.Execute(xt)
	assert.Equal(t, "9 ", out.String())
}

func TestPostpone_compilesNonImmediateWordInline(t *testing.T) {
	out, _ := runSrc(t, `: TWICE POSTPONE DUP ; : DOUBLE 1 TWICE + . ; DOUBLE`)
	assert.Equal(t, "2 ", out)
}

func TestTick_pushesExecutionToken(t *testing.T) {
	vm := New()
	vm.PushInput("<test>", strings.NewReader(`' DUP`))
	require.NoError(t, vm.Interpret())
	require.Equal(t, 1, vm.Data.Len())
	xt := vm.Data.Snapshot()[0].Addr()
	w, ok := vm.Dict.ByXT(xt)
	require.True(t, ok)
	assert.Equal(t, "DUP", w.Name)
}
