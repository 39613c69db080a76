package post4_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	post4 "github.com/jcorbin/post4"
)

func newBlockVM(t *testing.T) (*post4.VM, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blocks.img")
	var out bytes.Buffer
	vm := post4.New(post4.WithOutput(&out), post4.WithBlocks(path, t.TempDir()))
	t.Cleanup(func() { vm.Close() })
	return vm, path
}

func TestBlock_readExtendsWithSpacesPastEOF(t *testing.T) {
	vm, _ := newBlockVM(t)
	vm.PushInput("<test>", strings.NewReader("1 BLOCK C@"))
	require.NoError(t, vm.Interpret())
	require.Equal(t, 1, vm.Data.Len())
	assert.Equal(t, int(' '), vm.Data.Snapshot()[0].Int())
}

func TestBlock_updateAndFlushPersistToDisk(t *testing.T) {
	vm, path := newBlockVM(t)
	vm.PushInput("<test>", strings.NewReader(`1 BLOCK 65 SWAP C! UPDATE FLUSH`))
	require.NoError(t, vm.Interpret())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 1)
	assert.Equal(t, byte('A'), raw[0])
}

func TestBlock_saveBuffersOnlyWritesWhenDirty(t *testing.T) {
	vm, path := newBlockVM(t)
	vm.PushInput("<test>", strings.NewReader(`1 BLOCK DROP SAVE-BUFFERS`))
	require.NoError(t, vm.Interpret())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	// A read that never went through UPDATE leaves the cache clean, so
	// SAVE-BUFFERS has nothing to write and the file stays exactly as
	// Open's O_CREATE left it: empty.
	assert.Empty(t, raw)
}

func TestBlock_loadInterpretsBlockContentAsSource(t *testing.T) {
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "blocks.img")
	vm := post4.New(post4.WithOutput(&out), post4.WithBlocks(path, t.TempDir()))
	defer vm.Close()

	// '1' at offset 0, a space (already there from the read-extend) at
	// offset 1, '.' at offset 2: LOADing the block should run "1 ." as
	// ordinary source text.
	vm.PushInput("<test>", strings.NewReader(`
		VARIABLE BUFADDR
		1 BLOCK BUFADDR !
		BUFADDR @ 49 SWAP C!
		BUFADDR @ 2 + 46 SWAP C!
		UPDATE
		1 LOAD
	`))
	require.NoError(t, vm.Interpret())
	assert.Equal(t, "1 ", out.String())
}

func TestBlock_noBlocksOpenThrowsBlockIO(t *testing.T) {
	var out bytes.Buffer
	vm := post4.New(post4.WithOutput(&out))
	vm.PushInput("<test>", strings.NewReader("1 BLOCK"))
	require.NoError(t, vm.Interpret()) // the throw is caught and reported, not propagated
	assert.Equal(t, 0, vm.Data.Len())
}

func TestBlock_emptyBuffersDiscardsWithoutWriting(t *testing.T) {
	vm, path := newBlockVM(t)
	vm.PushInput("<test>", strings.NewReader(`1 BLOCK 65 SWAP C! UPDATE EMPTY-BUFFERS FLUSH`))
	require.NoError(t, vm.Interpret())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw, "EMPTY-BUFFERS should have discarded the dirty write before FLUSH ever saw it")
}
