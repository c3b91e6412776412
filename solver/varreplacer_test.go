package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReplaceEquivalentLits(t *testing.T) {
	// 1 and 2 are equivalent through the binary implication cycle.
	pb := ParseSlice([][]int{{-1, 2}, {1, -2}, {1, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.replaceEqLits())
	require.EqualValues(t, 1, s.Stats.NbReplaced)
	require.Equal(t, RemovedReplaced, s.removed[1])
	require.Equal(t, Sat, s.Solve())
	model := s.Model()
	require.Equal(t, model[0], model[1], "equivalent variables must agree")
	require.True(t, pb.Verify(model))
}

func TestReplaceAntiEquivalentLits(t *testing.T) {
	// 1 and 2 are opposite: 1 <-> not 2.
	pb := ParseSlice([][]int{{1, 2}, {-1, -2}, {1, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.replaceEqLits())
	require.EqualValues(t, 1, s.Stats.NbReplaced)
	require.Equal(t, Sat, s.Solve())
	model := s.Model()
	require.NotEqual(t, model[0], model[1], "anti-equivalent variables must disagree")
	require.True(t, pb.Verify(model))
}

func TestReplaceDetectsUnsat(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}})
	s := New(pb)
	require.Equal(t, Unsat, s.replaceEqLits())
	require.Equal(t, Unsat, s.Solve())
}

func TestReplacePreservesVerdict(t *testing.T) {
	cnf := [][]int{{-1, 2}, {1, -2}, {2, 3, 4}, {-3, -4}, {1, -4, 5}}
	pb := ParseSlice(cnf)
	plain := New(pb)
	require.Equal(t, Sat, plain.Solve())

	pb2 := ParseSlice(cnf)
	s := New(pb2)
	require.NotEqual(t, Unsat, s.replaceEqLits())
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb2.Verify(s.Model()))
}
