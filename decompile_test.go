package post4_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	post4 "github.com/jcorbin/post4"
)

func TestDecompile_primitiveWordReportsAsPrimitive(t *testing.T) {
	_, vm := run(t, "")
	w, ok := vm.Dict.FindName("DUP")
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ": DUP")
	assert.Contains(t, out, "primitive")
}

func TestDecompile_colonDefinitionListsBodyAndExit(t *testing.T) {
	_, vm := run(t, ": SQR DUP * ;")
	w, ok := vm.Dict.FindName("SQR")
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ": SQR")
	assert.Contains(t, out, "DUP")
	assert.Contains(t, out, "*")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), ";"))
}

func TestDecompile_createdPlainWordReportsBodyAddress(t *testing.T) {
	_, vm := run(t, "CREATE BUF 9 ,")
	w, ok := vm.Dict.FindName("BUF")
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ": BUF")
	assert.Contains(t, out, "create, body @")
}

func TestDecompile_constantReportsStoredValue(t *testing.T) {
	_, vm := run(t, "42 CONSTANT FOO")
	w, ok := vm.Dict.FindName("FOO")
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ": FOO")
	assert.Contains(t, out, "constant 42")
}

func TestDecompile_doesWordReportsDoesAndBodyAddresses(t *testing.T) {
	_, vm := run(t, `: CONST CREATE , DOES> @ ; 7 CONST SEVEN`)
	w, ok := vm.Dict.FindName("SEVEN")
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ": SEVEN")
	assert.Contains(t, out, "does> @")
	assert.Contains(t, out, "body @")
}

func TestDecompile_noNameDefinitionReportsAnonymous(t *testing.T) {
	var vm *post4.VM
	{
		_, v := run(t, `:NONAME DUP ;`)
		vm = v
	}
	xt := vm.Data.Snapshot()[0].Addr()
	w, ok := vm.Dict.ByXT(xt)
	require.True(t, ok)
	out := vm.Decompile(w)
	assert.Contains(t, out, ":noname")
}

func TestSee_writesDecompiledBodyToOutput(t *testing.T) {
	out, _ := run(t, ": SQR DUP * ; SEE SQR")
	assert.Contains(t, out, ": SQR")
	assert.Contains(t, out, "DUP")
}

func TestSee_undefinedNameThrows(t *testing.T) {
	out, vm := run(t, "SEE NOSUCHWORD")
	_ = out
	assert.Equal(t, 0, vm.Data.Len())
}
