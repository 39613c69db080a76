package blockfile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/post4/internal/blockfile"
)

func TestFile_readExtendsWithSpaces(t *testing.T) {
	dir := t.TempDir()
	bf, err := blockfile.Open(filepath.Join(dir, "blocks"), "")
	require.NoError(t, err)
	defer bf.Close()

	buf, err := bf.Block(3)
	require.NoError(t, err)
	require.Len(t, buf, blockfile.BlockSize)
	for _, b := range buf {
		assert.Equal(t, byte(' '), b)
	}
}

func TestFile_updateAndFlushRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks")

	func() {
		bf, err := blockfile.Open(path, "")
		require.NoError(t, err)
		defer bf.Close()

		buf, err := bf.Block(1)
		require.NoError(t, err)
		copy(buf, "hello block")
		bf.Update()
		require.NoError(t, bf.Flush())
	}()

	bf, err := blockfile.Open(path, "")
	require.NoError(t, err)
	defer bf.Close()

	buf, err := bf.Block(1)
	require.NoError(t, err)
	assert.Equal(t, "hello block", string(buf[:len("hello block")]))
}

func TestFile_switchingBlocksFlushesDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks")
	bf, err := blockfile.Open(path, "")
	require.NoError(t, err)
	defer bf.Close()

	b1, err := bf.Block(1)
	require.NoError(t, err)
	copy(b1, "first")
	bf.Update()

	_, err = bf.Block(2)
	require.NoError(t, err)

	b1again, err := bf.Block(1)
	require.NoError(t, err)
	assert.Equal(t, "first", string(b1again[:len("first")]))
}

func TestFile_emptyBuffersDiscardsDirty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blocks")
	bf, err := blockfile.Open(path, "")
	require.NoError(t, err)
	defer bf.Close()

	b1, err := bf.Block(1)
	require.NoError(t, err)
	copy(b1, "will be discarded")
	bf.Update()
	bf.EmptyBuffers()
	require.NoError(t, bf.Flush())

	b1again, err := bf.Block(1)
	require.NoError(t, err)
	assert.Equal(t, ' ', rune(b1again[0]))
}

func TestOpen_inUseFallsBackToHome(t *testing.T) {
	dir := t.TempDir()
	home := t.TempDir()
	path := filepath.Join(dir, "blocks")

	held, err := blockfile.Open(path, "")
	require.NoError(t, err)
	defer held.Close()

	fallback, err := blockfile.Open(path, home)
	require.NoError(t, err)
	defer fallback.Close()

	assert.Equal(t, filepath.Join(home, "blocks"), fallback.Path())
}
