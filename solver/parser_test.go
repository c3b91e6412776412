package solver

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCNF(t *testing.T) {
	cnf := `c a small example
p cnf 3 3
1 2 0
-1 3 0
-2 3 0
`
	pb, err := ParseCNF(strings.NewReader(cnf))
	require.NoError(t, err)
	require.Equal(t, 3, pb.NbVars)
	require.Len(t, pb.Clauses, 3)
	require.Equal(t, []Lit{IntToLit(1), IntToLit(2)}, pb.Clauses[0])
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	require.True(t, pb.Verify(s.Model()))
}

func TestParseCNFUnit(t *testing.T) {
	pb, err := ParseCNF(strings.NewReader("p cnf 1 1\n1 0\n"))
	require.NoError(t, err)
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	require.True(t, s.Model()[0])
}

func TestParseCNFRejectsOutOfRangeLit(t *testing.T) {
	_, err := ParseCNF(strings.NewReader("p cnf 2 1\n1 5 0\n"))
	require.Error(t, err)
}

func TestParseCNFUnfinishedClause(t *testing.T) {
	_, err := ParseCNF(strings.NewReader("p cnf 2 1\n1 2"))
	require.Error(t, err)
}

func TestProblemCNFRoundTrip(t *testing.T) {
	pb := ParseSlice([][]int{{1, -2}, {2, 3}})
	out := pb.CNF()
	pb2, err := ParseCNF(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, pb.NbVars, pb2.NbVars)
	require.Equal(t, pb.Clauses, pb2.Clauses)
}
