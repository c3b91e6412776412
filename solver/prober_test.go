package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProbeFailedLiteral(t *testing.T) {
	// Probing 1 fails: it implies both 2 and not 2.
	pb := ParseSlice([][]int{{-1, 2}, {-1, -2}, {1, 3, 4}})
	s := New(pb)
	require.Equal(t, Indet, s.probe(false))
	require.Greater(t, s.Stats.NbFailedLits+s.Stats.NbBothProp, int64(0))
	require.Equal(t, Sat, s.litStatus(IntToLit(-1)), "the failed literal's negation must hold at top level")
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb.Verify(s.Model()))
}

func TestProbeForcesImpliedLit(t *testing.T) {
	// 3 follows from both polarities of 1, by bothprop or failed literal
	// depending on the probing order.
	pb := ParseSlice([][]int{{1, 2}, {-1, 3}, {-2, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.probe(false))
	require.Equal(t, Sat, s.litStatus(IntToLit(3)))
	require.Greater(t, s.Stats.NbBothProp+s.Stats.NbFailedLits, int64(0))
}

func TestProbeIntree(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 3}, {-2, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.probe(true))
	require.Equal(t, Sat, s.litStatus(IntToLit(3)))
}

func TestProbeDetectsUnsat(t *testing.T) {
	// Both polarities of 1 fail.
	pb := ParseSlice([][]int{{-1, 2}, {-1, -2}, {1, 3}, {1, -3}})
	s := New(pb)
	require.Equal(t, Unsat, s.probe(false))
}

func TestHyperBinaryResolution(t *testing.T) {
	// Probing 1 propagates 4 through the ternary clause once 2 and 3 are
	// set, which yields the hyper-binary (-1 4).
	pb := ParseSlice([][]int{{-1, 2}, {-1, 3}, {-2, -3, 4}, {1, -4, 5}})
	s := New(pb)
	require.Equal(t, Indet, s.probe(false))
	require.Greater(t, s.Stats.NbHyperBins, int64(0))
	require.True(t, s.hasBinary(IntToLit(-1), IntToLit(4)))
}
