package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarOrderPopsCheapestFirst(t *testing.T) {
	o := newVarOrder()
	o.Put(0, -1.0)
	o.Put(1, -5.0)
	o.Put(2, -3.0)
	o.Put(3, -4.0)
	o.Put(4, -2.0)
	for _, exp := range []int{1, 3, 2, 4, 0} {
		v, ok := o.Pop()
		require.True(t, ok)
		require.Equal(t, exp, v)
	}
	_, ok := o.Pop()
	require.False(t, ok)
	require.True(t, o.empty())
}

func TestVarOrderUpdate(t *testing.T) {
	o := newVarOrder()
	o.Put(0, -1.0)
	o.Put(1, -2.0)
	o.Put(2, -3.0)
	o.Put(0, -10.0) // Bump 0 past the others
	v, ok := o.Pop()
	require.True(t, ok)
	require.Equal(t, 0, v)
}

func TestVarOrderRemove(t *testing.T) {
	o := newVarOrder()
	o.Put(0, -1.0)
	o.Put(1, -2.0)
	o.Put(2, -3.0)
	o.Remove(2)
	require.False(t, o.Contains(2))
	v, ok := o.Pop()
	require.True(t, ok)
	require.Equal(t, 1, v)
	o.Remove(7) // Absent vars are ignored
}

func TestVarOrderClearAndReuse(t *testing.T) {
	o := newVarOrder()
	o.Put(0, -1.0)
	o.Put(1, -2.0)
	o.Clear()
	require.True(t, o.empty())
	require.False(t, o.Contains(0))
	o.Put(5, -4.0) // Growth past the previous size
	v, ok := o.Pop()
	require.True(t, ok)
	require.Equal(t, 5, v)
}

func TestVarOrderRescale(t *testing.T) {
	o := newVarOrder()
	o.Put(0, -1e100)
	o.Put(1, -2e100)
	o.Rescale(1e-100)
	o.Put(2, -1.5)
	for _, exp := range []int{1, 2, 0} {
		v, ok := o.Pop()
		require.True(t, ok)
		require.Equal(t, exp, v)
	}
}
