package stack_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/post4/cell"
	"github.com/jcorbin/post4/stack"
)

func TestStack_pushPop(t *testing.T) {
	s := stack.New(stack.Data, 4)
	require.Equal(t, 0, s.Len())

	for i, v := range []cell.Cell{1, 2, 3, 4} {
		require.NoError(t, s.Push(v), "push %d", i)
	}
	assert.Equal(t, 4, s.Len())
	assert.NoError(t, s.Check())

	err := s.Push(5)
	assert.EqualError(t, err, "data stack overflow")

	for _, want := range []cell.Cell{4, 3, 2, 1} {
		got, err := s.Pop()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = s.Pop()
	assert.EqualError(t, err, "data stack underflow")
}

func TestStack_pickDrop(t *testing.T) {
	s := stack.New(stack.Return, 8)
	for _, v := range []cell.Cell{10, 20, 30} {
		require.NoError(t, s.Push(v))
	}

	top, err := s.Pick(0)
	require.NoError(t, err)
	assert.Equal(t, cell.Cell(30), top)

	second, err := s.Pick(1)
	require.NoError(t, err)
	assert.Equal(t, cell.Cell(20), second)

	_, err = s.Pick(3)
	assert.EqualError(t, err, "return stack underflow")

	require.NoError(t, s.Drop(2))
	assert.Equal(t, 1, s.Len())

	assert.EqualError(t, s.Drop(5), "return stack underflow")
}

func TestStack_resetAndSnapshot(t *testing.T) {
	s := stack.New(stack.Float, 3)
	require.NoError(t, s.Push(cell.FromFloat(1.5)))
	require.NoError(t, s.Push(cell.FromFloat(2.5)))

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 1.5, snap[0].Float())
	assert.Equal(t, 2.5, snap[1].Float())

	s.Reset()
	assert.Equal(t, 0, s.Len())
	assert.NoError(t, s.Check())
}

func TestStack_capacityZero(t *testing.T) {
	s := stack.New(stack.Data, 0)
	assert.EqualError(t, s.Push(1), "data stack overflow")
	assert.NoError(t, s.Check())
}
