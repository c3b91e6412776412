package solver

import (
	"bytes"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestProofEndsWithEmptyClause(t *testing.T) {
	var buf bytes.Buffer
	pb := ParseSlice([][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}})
	s := NewSolver(DefaultConfig())
	s.SetProof(NewDRUPWriter(&buf))
	for i := 0; i < pb.NbVars; i++ {
		s.NewVar()
	}
	for _, lits := range pb.Clauses {
		if s.AddClause(lits) == Unsat {
			break
		}
	}
	require.Equal(t, Unsat, s.Solve())
	lines := nonEmptyLines(buf.String())
	require.NotEmpty(t, lines)
	require.Equal(t, "0", lines[len(lines)-1], "the proof must end with the empty clause")
}

func TestProofPassesRUPCheck(t *testing.T) {
	cnf := [][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}}
	var buf bytes.Buffer
	s := NewSolver(DefaultConfig())
	s.SetProof(NewDRUPWriter(&buf))
	for i := 0; i < 2; i++ {
		s.NewVar()
	}
	for _, c := range cnf {
		if s.AddIntClause(c) == Unsat {
			break
		}
	}
	require.Equal(t, Unsat, s.Solve())
	require.True(t, checkDRUP(t, cnf, buf.String()), "the emitted proof must pass a RUP check")
}

func TestProofTrivialUnsat(t *testing.T) {
	var buf bytes.Buffer
	s := NewSolver(DefaultConfig())
	s.SetProof(NewDRUPWriter(&buf))
	s.NewVar()
	s.AddIntClause([]int{1})
	require.Equal(t, Unsat, s.AddIntClause([]int{-1}))
	require.Equal(t, Unsat, s.Solve())
	require.Contains(t, nonEmptyLines(buf.String()), "0")
}

func nonEmptyLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// checkDRUP verifies a textual DRUP proof against the input formula: every
// addition must be derivable by unit propagation from the current clause set,
// and the proof must reach the empty clause.
func checkDRUP(t *testing.T, cnf [][]int, proof string) bool {
	t.Helper()
	clauses := make([][]int, len(cnf))
	copy(clauses, cnf)
	for _, line := range nonEmptyLines(proof) {
		del := false
		if strings.HasPrefix(line, "d ") {
			del = true
			line = line[2:]
		}
		var lits []int
		for _, f := range strings.Fields(line) {
			v, err := strconv.Atoi(f)
			require.NoError(t, err)
			if v != 0 {
				lits = append(lits, v)
			}
		}
		if del {
			clauses = removeClause(clauses, lits)
			continue
		}
		if !rupEntailed(clauses, lits) {
			t.Logf("clause %v is not RUP", lits)
			return false
		}
		if len(lits) == 0 {
			return true
		}
		clauses = append(clauses, lits)
	}
	t.Log("proof does not reach the empty clause")
	return false
}

// rupEntailed checks that negating every lit of the clause and propagating
// to fixpoint yields a conflict.
func rupEntailed(clauses [][]int, clause []int) bool {
	assign := map[int]bool{}
	set := func(l int) bool {
		v, val := l, true
		if l < 0 {
			v, val = -l, false
		}
		if cur, ok := assign[v]; ok {
			return cur == val
		}
		assign[v] = val
		return true
	}
	for _, l := range clause {
		if !set(-l) {
			return true
		}
	}
	for changed := true; changed; {
		changed = false
		for _, c := range clauses {
			unassigned, unit, sat := 0, 0, false
			for _, l := range c {
				v := l
				if l < 0 {
					v = -l
				}
				val, ok := assign[v]
				if !ok {
					unassigned++
					unit = l
					continue
				}
				if (l > 0) == val {
					sat = true
					break
				}
			}
			if sat {
				continue
			}
			if unassigned == 0 {
				return true // Conflict reached
			}
			if unassigned == 1 {
				if !set(unit) {
					return true
				}
				changed = true
			}
		}
	}
	return false
}

func removeClause(clauses [][]int, lits []int) [][]int {
	key := func(c []int) string {
		c2 := make([]int, len(c))
		copy(c2, c)
		sort.Ints(c2)
		parts := make([]string, len(c2))
		for i, v := range c2 {
			parts[i] = strconv.Itoa(v)
		}
		return strings.Join(parts, " ")
	}
	want := key(lits)
	for i, c := range clauses {
		if key(c) == want {
			return append(clauses[:i:i], clauses[i+1:]...)
		}
	}
	return clauses
}
