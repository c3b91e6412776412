package solver

import (
	"math/rand"
	"testing"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/stretchr/testify/require"
)

// A test associates a CNF with an expected status.
type test struct {
	name     string
	cnf      [][]int
	expected Status
}

var tests = []test{
	{"empty formula", nil, Sat},
	{"empty clause", [][]int{{}}, Unsat},
	{"single unit", [][]int{{1}}, Sat},
	{"contradictory units", [][]int{{1}, {-1}}, Unsat},
	{"all binary unsat", [][]int{{1, 2}, {-1, 2}, {1, -2}, {-1, -2}}, Unsat},
	{"implication chain", [][]int{{1, 2}, {-1, 3}, {-2, 3}}, Sat},
	{"forced by units", [][]int{{1, 2, 3}, {-1}, {-2}}, Sat},
	{"pigeonhole 3 into 2", pigeonhole32(), Unsat},
	{"two components", [][]int{{1, 2}, {-1, 3}, {-2, 3}, {4, 5}, {-4, 6}, {-5, 6}}, Sat},
}

func pigeonhole32() [][]int {
	// 3 pigeons, 2 holes: p_ij is var 2*(i-1)+j.
	cnf := [][]int{{1, 2}, {3, 4}, {5, 6}}
	for hole := 1; hole <= 2; hole++ {
		p1, p2, p3 := hole, 2+hole, 4+hole
		cnf = append(cnf, []int{-p1, -p2}, []int{-p1, -p3}, []int{-p2, -p3})
	}
	return cnf
}

func TestSolver(t *testing.T) {
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			pb := ParseSlice(test.cnf)
			s := New(pb)
			if status := s.Solve(); status != test.expected {
				t.Errorf("invalid result for %q: expected %v, got %v", test.name, test.expected, status)
			}
			if test.expected == Sat {
				if !pb.Verify(s.Model()) {
					t.Errorf("model for %q does not satisfy the formula", test.name)
				}
			}
			checkWatchInvariant(t, s)
		})
	}
}

func TestImplicationChainForces3(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 3}, {-2, 3}})
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	model := s.Model()
	require.True(t, model[2], "any model must set 3 to true")
}

func TestForcedByUnits(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2, 3}, {-1}, {-2}})
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	require.True(t, s.Model()[2])
}

func TestTwoComponentsBothSolved(t *testing.T) {
	cnf := [][]int{{1, 2}, {-1, 3}, {-2, 3}, {4, 5}, {-4, 6}, {-5, 6}}
	pb := ParseSlice(cnf)
	s := New(pb)
	require.Equal(t, Sat, s.Solve())
	model := s.Model()
	require.True(t, model[2])
	require.True(t, model[5])
	require.True(t, pb.Verify(model))
}

func TestInterrupt(t *testing.T) {
	pb := ParseSlice([][]int{{1, 2}, {-1, 3}})
	s := New(pb)
	s.Interrupt()
	require.Equal(t, Indet, s.Solve())
}

func TestMaxConflicts(t *testing.T) {
	conf := DefaultConfig()
	conf.MaxConfl = 1
	conf.SimplifyAtStartup = false
	conf.DoSimplifyProblem = false
	pb := ParseSlice(pigeonhole43())
	s := NewWithConfig(pb, conf)
	require.Equal(t, Indet, s.Solve())
}

func pigeonhole43() [][]int {
	// 4 pigeons, 3 holes: p_ij is var 3*(i-1)+j.
	var cnf [][]int
	for p := 0; p < 4; p++ {
		cnf = append(cnf, []int{3*p + 1, 3*p + 2, 3*p + 3})
	}
	for hole := 1; hole <= 3; hole++ {
		for p1 := 0; p1 < 4; p1++ {
			for p2 := p1 + 1; p2 < 4; p2++ {
				cnf = append(cnf, []int{-(3*p1 + hole), -(3*p2 + hole)})
			}
		}
	}
	return cnf
}

func TestPigeonhole43Unsat(t *testing.T) {
	pb := ParseSlice(pigeonhole43())
	s := New(pb)
	require.Equal(t, Unsat, s.Solve())
}

func randomCNF(rng *rand.Rand, nbVars, nbClauses int) [][]int {
	cnf := make([][]int, 0, nbClauses)
	for i := 0; i < nbClauses; i++ {
		clause := make([]int, 0, 3)
		used := make(map[int]bool)
		for len(clause) < 3 {
			v := rng.Intn(nbVars) + 1
			if used[v] {
				continue
			}
			used[v] = true
			if rng.Intn(2) == 0 {
				v = -v
			}
			clause = append(clause, v)
		}
		cnf = append(cnf, clause)
	}
	return cnf
}

// TestAgainstReference checks verdicts against gini on random 3-SAT instances
// near the phase transition.
func TestAgainstReference(t *testing.T) {
	for seed := int64(0); seed < 8; seed++ {
		rng := rand.New(rand.NewSource(seed))
		cnf := randomCNF(rng, 50, 215)
		pb := ParseSlice(cnf)
		s := New(pb)
		status := s.Solve()
		g := gini.New()
		for _, clause := range cnf {
			for _, l := range clause {
				g.Add(z.Dimacs2Lit(l))
			}
			g.Add(z.LitNull)
		}
		var expected Status
		switch g.Solve() {
		case 1:
			expected = Sat
		case -1:
			expected = Unsat
		}
		require.Equalf(t, expected, status, "wrong verdict on seed %d", seed)
		if status == Sat {
			require.Truef(t, pb.Verify(s.Model()), "invalid model on seed %d", seed)
		}
	}
}

// checkWatchInvariant verifies that every live long clause is watched by
// exactly two of its literals.
func checkWatchInvariant(t *testing.T, s *Solver) {
	t.Helper()
	for _, offs := range [][]ClOffset{s.longIrred, s.longRed} {
		for _, off := range offs {
			c := s.ca.clauses[off]
			if c.freed() {
				continue
			}
			count := 0
			for l := 0; l < 2*s.nbVars; l++ {
				for _, w := range s.wl.wlist[l] {
					if w.kind == watchLong && w.off == off {
						count++
						if !containsLit(c.lits, Lit(l).Negation()) {
							t.Errorf("clause %v watched by %d, which it does not contain", c.lits, Lit(l).Negation().Int())
						}
					}
				}
			}
			if count != 2 {
				t.Errorf("clause %v has %d watches instead of 2", c.lits, count)
			}
		}
	}
}
