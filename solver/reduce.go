package solver

import "sort"

// Reduction of the redundant clause database.

const (
	initNbMaxClauses  = 2000 // Fallback maximum # of redundant long clauses, at first.
	incrNbMaxClauses  = 300  // By how much the maximum is incremented at each reduction.
	incrPostponeNbMax = 1000 // By how much it is increased when lots of good clauses are currently learnt.
	clauseDecay       = 0.999
)

func (s *Solver) bumpNbMax() {
	s.wl.nbMax += incrNbMaxClauses
}

func (s *Solver) postponeNbMax() {
	s.wl.nbMax += incrPostponeNbMax
}

// Decays each clause's activity.
func (s *Solver) clauseDecayActivity() {
	s.clauseInc *= 1 / clauseDecay
}

// Bumps the given clause's activity.
func (s *Solver) clauseBumpActivity(c *Clause) {
	if !c.Redundant() {
		return
	}
	c.activity += s.clauseInc
	if c.activity > 1e30 { // Rescale to avoid overflow
		for _, off := range s.longRed {
			if !s.ca.clauses[off].freed() {
				s.ca.clauses[off].activity *= 1e-30
			}
		}
		s.clauseInc *= 1e-30
	}
}

// worseThan is the reduction ordering: clauses sorting first are deleted
// first. Glue takes precedence, then lower activity, then larger size, then
// age (younger clauses go first).
func (s *Solver) worseThan(off1, off2 ClOffset) bool {
	c1, c2 := s.ca.get(off1), s.ca.get(off2)
	if c1.glue() != c2.glue() {
		return c1.glue() > c2.glue()
	}
	if c1.activity != c2.activity {
		return c1.activity < c2.activity
	}
	if c1.Len() != c2.Len() {
		return c1.Len() > c2.Len()
	}
	return off1 > off2
}

// reduceLearnt removes about half of the redundant long clauses, preserving
// those with a low glue and those currently serving as a reason.
func (s *Solver) reduceLearnt() {
	sort.Slice(s.longRed, func(i, j int) bool {
		return s.worseThan(s.longRed[i], s.longRed[j])
	})
	length := len(s.longRed) / 2
	if length > 0 && s.ca.get(s.longRed[length-1]).glue() <= 3 {
		// Lots of good clauses, postpone reduction.
		s.postponeNbMax()
	}
	kept := s.longRed[:0]
	for i, off := range s.longRed {
		c := s.ca.get(off)
		if i >= length || c.glue() <= s.conf.GlueMustKeepIfBelowOrEq || c.isLocked() {
			kept = append(kept, off)
			continue
		}
		s.Stats.NbDeleted++
		s.detachClause(off)
		s.proof.DeleteClause(c.lits)
		s.ca.free(off)
	}
	s.longRed = kept
	if s.ca.needsCompact() {
		s.compactArena()
	}
}
