package dict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/post4/dict"
)

func link(d *dict.Dictionary, name string, addr uint, bits dict.Bits) *dict.Word {
	w := &dict.Word{Name: name, Addr: addr, Bits: bits}
	d.Link(w)
	return w
}

func TestDictionary_findNameShadowing(t *testing.T) {
	d := dict.New()
	link(d, "dup", 10, 0)
	newer := link(d, "DUP", 20, 0)

	w, ok := d.FindName("Dup")
	require.True(t, ok)
	assert.Same(t, newer, w, "newest definition should shadow older ones")
}

func TestDictionary_hiddenSkipped(t *testing.T) {
	d := dict.New()
	link(d, "swap", 10, dict.Hidden)

	_, ok := d.FindName("swap")
	assert.False(t, ok, "hidden words must not be found")
}

func TestDictionary_emptyNameNeverFound(t *testing.T) {
	d := dict.New()
	link(d, "", 10, 0)
	_, ok := d.FindName("")
	assert.False(t, ok)
}

func TestDictionary_byXT(t *testing.T) {
	d := dict.New()
	w := link(d, "foo", 42, 0)

	got, ok := d.ByXT(42)
	require.True(t, ok)
	assert.Same(t, w, got)

	_, ok = d.ByXT(43)
	assert.False(t, ok)
}

func TestDictionary_unwindRestoresHead(t *testing.T) {
	d := dict.New()
	base := link(d, "base", 10, 0)
	mid := link(d, "mid", 20, 0)
	marker := link(d, "marker", 30, 0)
	link(d, "after", 40, 0)

	d.Unwind(marker)

	assert.Same(t, mid, d.Head)
	_, ok := d.ByXT(40)
	assert.False(t, ok)
	_, ok = d.ByXT(30)
	assert.False(t, ok)
	_, ok = d.ByXT(20)
	assert.True(t, ok)
	_, ok = d.ByXT(10)
	assert.True(t, ok)
}

func TestDictionary_unwindToDiscardsInProgressWord(t *testing.T) {
	d := dict.New()
	kept := link(d, "kept", 10, 0)
	link(d, "being-defined", 20, dict.Hidden)

	d.UnwindTo(kept)

	assert.Same(t, kept, d.Head)
	_, ok := d.ByXT(20)
	assert.False(t, ok)
}
