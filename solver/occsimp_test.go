package solver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubsumption(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {1, 2, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.occSimplify(occSubsume))
	require.EqualValues(t, 1, s.Stats.NbSubsumed)
	require.Equal(t, 0, s.wl.nbTern, "the subsumed ternary clause should be gone")
	require.Equal(t, 1, s.wl.nbBin)
}

func TestSubsumptionIdempotent(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {1, 2, 3}, {2, 3, 4}})
	s := New(pb)
	require.Equal(t, Indet, s.occSimplify(occSubsume))
	before := s.Stats.NbSubsumed
	require.Equal(t, Indet, s.occSimplify(occSubsume))
	require.Equal(t, before, s.Stats.NbSubsumed, "a second run should remove nothing")
}

func TestStrengthening(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.occSimplify(occStrengthen))
	require.EqualValues(t, 1, s.Stats.NbStrengthened)
	require.Equal(t, 0, s.wl.nbTern)
	require.True(t, s.hasBinary(IntToLit(2), IntToLit(3)), "expected the strengthened clause (2 3)")
}

func TestBVE(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 3}, {-2, 3}})
	s := New(pb)
	require.Equal(t, Indet, s.occSimplify(occBVE))
	require.Greater(t, s.Stats.NbElimed, int64(0))
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb.Verify(s.Model()), "reconstructed model must satisfy the original formula")
}

func TestBVEKeepsUnsat(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}})
	s := New(pb)
	st := s.occSimplify(occBVE)
	if st != Unsat {
		st = s.Solve()
	}
	require.Equal(t, Unsat, st)
}

func TestBVERespectsResolventBound(t *testing.T) {
	// Resolving 1 out of these two clauses yields (2 3 4 5), which is larger
	// than the configured bound, so 1 must survive.
	conf := DefaultConfig()
	conf.VelimResolventTooLarge = 3
	pb := ParseSlice([][]int{{1, 2, 3}, {-1, 4, 5}})
	s := NewWithConfig(pb, conf)
	require.Equal(t, Indet, s.occSimplify(occBVE))
	require.Equal(t, NotRemoved, s.removed[0])
}
