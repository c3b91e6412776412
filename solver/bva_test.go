package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBVAFactorsMatching(t *testing.T) {
	// {1,2} x {3,4,5}: six binary clauses compress into five through one
	// auxiliary variable.
	cnf := [][]int{{1, 3}, {1, 4}, {1, 5}, {2, 3}, {2, 4}, {2, 5}}
	pb := ParseSlice(cnf)
	s := New(pb)
	require.Equal(t, 6, s.wl.nbBin)
	require.Equal(t, Indet, s.runBVA())
	require.EqualValues(t, 1, s.Stats.NbBVAVars)
	require.Equal(t, 7, s.NbVars(), "one auxiliary variable should have been introduced")
	require.Equal(t, 5, s.wl.nbBin, "6 clauses should have become 5")
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb.Verify(s.Model()), "the model projected on the input variables must satisfy the formula")
}

func TestBVASkipsUnprofitableMatching(t *testing.T) {
	// {1,2} x {3,4} saves nothing (gain 4-2-2 = 0): no variable is added.
	pb := ParseSlice([][]int{{1, 3}, {1, 4}, {2, 3}, {2, 4}})
	s := New(pb)
	require.Equal(t, Indet, s.runBVA())
	require.EqualValues(t, 0, s.Stats.NbBVAVars)
	require.Equal(t, 4, s.NbVars())
}

func TestBVADisabled(t *testing.T) {
	conf := DefaultConfig()
	conf.DoBVA = false
	pb := ParseSlice([][]int{{1, 3}, {1, 4}, {1, 5}, {2, 3}, {2, 4}, {2, 5}})
	s := NewWithConfig(pb, conf)
	require.Equal(t, Indet, s.runBVA())
	require.EqualValues(t, 0, s.Stats.NbBVAVars)
}

func TestBVAOnLongerClauses(t *testing.T) {
	// The shared bodies have two literals here, so the replacement clauses
	// are ternary.
	cnf := [][]int{{1, 3, 6}, {1, 4, 6}, {1, 5, 7}, {2, 3, 6}, {2, 4, 6}, {2, 5, 7}}
	pb := ParseSlice(cnf)
	s := New(pb)
	require.Equal(t, Indet, s.runBVA())
	require.EqualValues(t, 1, s.Stats.NbBVAVars)
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb.Verify(s.Model()))
}
