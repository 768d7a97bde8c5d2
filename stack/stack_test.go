// stack_test.go - Simple test-cases for our stack

package stack

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmpty(t *testing.T) {
	s := New[int]()
	require.True(t, s.Empty())

	s.Push(33)
	require.False(t, s.Empty())
	require.Equal(t, 1, s.Len())
}

func TestEmptyPop(t *testing.T) {
	s := New[int]()

	_, err := s.Pop()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestEmptyPeek(t *testing.T) {
	s := New[string]()

	_, err := s.Peek()
	require.ErrorIs(t, err, ErrEmpty)
}

func TestPushPopOrdering(t *testing.T) {
	s := New[int]()

	s.Push(1)
	s.Push(2)
	s.Push(3)

	top, err := s.Peek()
	require.NoError(t, err)
	require.Equal(t, 3, top)

	out, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, 3, out)

	out, err = s.Pop()
	require.NoError(t, err)
	require.Equal(t, 2, out)

	require.Equal(t, 1, s.Len())
}

func TestGenericStrings(t *testing.T) {
	s := New[string]()
	s.Push("33")

	out, err := s.Pop()
	require.NoError(t, err)
	require.Equal(t, "33", out)
}
