package solver

// Conflict analysis: first-UIP learning with recursive minimization.

// learnClause analyzes the given conflict at decision level lvl and returns
// the asserting clause. lits[0] is the asserting literal; if the clause is
// longer than 1, lits[1] is a literal from the backjump level. The clause's
// glue is returned as well.
func (s *Solver) learnClause(confl *conflict, lvl decLevel) (learnt []Lit, glue int) {
	if confl.off != ClOffsetUndef {
		s.clauseBumpActivity(s.ca.get(confl.off))
	}
	learnt = append(s.learntBuf[:0], LitUndef) // Slot 0 is for the asserting literal.
	counter := 0                               // Nb of vars of the current level waiting to be resolved.
	p := LitUndef
	reasonLits := confl.lits
	idx := len(s.trail) - 1
	for {
		for _, q := range reasonLits {
			v := q.Var()
			if s.seen[v] || s.varLevel(v) <= 1 {
				continue
			}
			s.seen[v] = true
			s.toClear = append(s.toClear, v)
			s.varBumpActivity(v)
			if s.varLevel(v) >= lvl {
				counter++
			} else {
				learnt = append(learnt, q)
			}
		}
		for !s.seen[s.trail[idx].Var()] {
			idx--
		}
		p = s.trail[idx]
		idx--
		counter--
		if counter == 0 {
			break
		}
		r := s.reasons[p.Var()]
		if r.kind == reasonLong {
			c := s.ca.get(r.off)
			s.clauseBumpActivity(c)
			if s.conf.UpdateGluesOnAnalyze && c.Redundant() {
				if g := s.computeGlue(c.lits); g < c.glue() {
					c.setGlue(g)
				}
			}
		}
		reasonLits = s.reasonLitsBuf(p.Var())
	}
	learnt[0] = p.Negation()
	s.varDecayActivity()
	s.clauseDecayActivity()
	learnt = s.minimizeLearnt(learnt)
	if len(learnt) > 2 {
		// Put a lit from the backjump level at position 1, where it will be watched.
		maxIdx := 1
		for i := 2; i < len(learnt); i++ {
			if s.varLevel(learnt[i].Var()) > s.varLevel(learnt[maxIdx].Var()) {
				maxIdx = i
			}
		}
		learnt[1], learnt[maxIdx] = learnt[maxIdx], learnt[1]
	}
	glue = s.computeGlue(learnt)
	for _, v := range s.toClear {
		s.seen[v] = false
	}
	s.toClear = s.toClear[:0]
	s.learntBuf = learnt
	return learnt, glue
}

// reasonLitsBuf returns the lits of v's antecedent besides v's own, in a
// reused buffer.
func (s *Solver) reasonLitsBuf(v Var) []Lit {
	s.reasonBuf = s.reasonBuf[:0]
	s.forEachReasonLit(v, func(l Lit) {
		s.reasonBuf = append(s.reasonBuf, l)
	})
	return s.reasonBuf
}

// computeGlue returns the number of distinct decision levels among lits.
func (s *Solver) computeGlue(lits []Lit) int {
	glue := 0
	for _, l := range lits {
		lv := s.varLevel(l.Var())
		if !s.levelSeen[lv] {
			s.levelSeen[lv] = true
			glue++
		}
	}
	for _, l := range lits {
		s.levelSeen[s.varLevel(l.Var())] = false
	}
	return glue
}

// minimizeLearnt removes from the learnt clause every literal whose antecedent
// chain is subsumed by the other literals (recursive minimization).
func (s *Solver) minimizeLearnt(learnt []Lit) []Lit {
	sz := 1
	for i := 1; i < len(learnt); i++ {
		v := learnt[i].Var()
		if !s.hasReason(v) || !s.litRedundant(learnt[i]) {
			learnt[sz] = learnt[i]
			sz++
		}
	}
	return learnt[:sz]
}

// litRedundant is true iff l is implied by the other seen literals and the
// top-level assignment. Seen marks added while proving this are kept, so
// later checks can reuse them.
func (s *Solver) litRedundant(l Lit) bool {
	s.analyzeStack = append(s.analyzeStack[:0], l)
	top := len(s.toClear)
	for len(s.analyzeStack) > 0 {
		p := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]
		failed := false
		s.forEachReasonLit(p.Var(), func(q Lit) {
			if failed {
				return
			}
			v := q.Var()
			if s.seen[v] || s.varLevel(v) <= 1 {
				return
			}
			if !s.hasReason(v) {
				failed = true
				return
			}
			s.seen[v] = true
			s.toClear = append(s.toClear, v)
			s.analyzeStack = append(s.analyzeStack, q)
		})
		if failed {
			for _, v := range s.toClear[top:] {
				s.seen[v] = false
			}
			s.toClear = s.toClear[:top]
			return false
		}
	}
	return true
}
