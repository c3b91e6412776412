package solver

// Boolean constraint propagation over the watch index.

// A conflict is a clause falsified by the current assignment.
// off is the arena offset when the clause is long, ClOffsetUndef otherwise.
type conflict struct {
	lits []Lit
	off  ClOffset
}

// unifyLiteral assigns the given lit at the given level and propagates it and
// all its consequences. It returns the conflict met, or nil.
func (s *Solver) unifyLiteral(lit Lit, lvl decLevel) *conflict {
	s.enqueue(lit, lvl, noReason)
	return s.propagate(lvl)
}

// propagate applies unit propagation until a fixpoint or a conflict, starting
// from the first literal of the trail that was not propagated yet.
func (s *Solver) propagate(lvl decLevel) *conflict {
	for s.qhead < len(s.trail) {
		lit := s.trail[s.qhead]
		s.qhead++
		s.Stats.NbPropagations++
		if confl := s.propagateLit(lit, lvl); confl != nil {
			s.qhead = len(s.trail)
			return confl
		}
	}
	return nil
}

// propagateLit visits the watches registered for lit, i.e the clauses in
// which lit.Negation() just became false.
func (s *Solver) propagateLit(lit Lit, lvl decLevel) *conflict {
	falsified := lit.Negation()
	ws := s.wl.wlist[lit]
	j := 0
	for i := 0; i < len(ws); i++ {
		w := ws[i]
		switch w.kind {
		case watchBinary:
			ws[j] = w
			j++
			switch s.litStatus(w.l1) {
			case Sat:
			case Indet:
				s.enqueue(w.l1, lvl, reason{kind: reasonBinary, l1: falsified, off: ClOffsetUndef})
			case Unsat:
				j += copy(ws[j:], ws[i+1:])
				s.wl.wlist[lit] = ws[:j]
				return &conflict{lits: []Lit{falsified, w.l1}, off: ClOffsetUndef}
			}
		case watchTernary:
			ws[j] = w
			j++
			st1 := s.litStatus(w.l1)
			st2 := s.litStatus(w.l2)
			if st1 == Sat || st2 == Sat || (st1 == Indet && st2 == Indet) {
				continue
			}
			if st1 == Indet {
				s.enqueue(w.l1, lvl, reason{kind: reasonTernary, l1: falsified, l2: w.l2, off: ClOffsetUndef})
			} else if st2 == Indet {
				s.enqueue(w.l2, lvl, reason{kind: reasonTernary, l1: falsified, l2: w.l1, off: ClOffsetUndef})
			} else {
				j += copy(ws[j:], ws[i+1:])
				s.wl.wlist[lit] = ws[:j]
				return &conflict{lits: []Lit{falsified, w.l1, w.l2}, off: ClOffsetUndef}
			}
		case watchLong:
			if s.litStatus(w.l1) == Sat { // Blocker fast path
				ws[j] = w
				j++
				continue
			}
			c := s.ca.get(w.off)
			if c.First() == falsified {
				c.swap(0, 1)
			}
			first := c.First()
			if first != w.l1 && s.litStatus(first) == Sat {
				w.l1 = first
				ws[j] = w
				j++
				continue
			}
			moved := false
			for k := 2; k < c.Len(); k++ {
				if s.litStatus(c.Get(k)) != Unsat {
					c.swap(1, k)
					newWatched := c.Second()
					neg := newWatched.Negation()
					s.wl.wlist[neg] = append(s.wl.wlist[neg], watch{kind: watchLong, redundant: w.redundant, l1: first, off: w.off})
					moved = true
					break
				}
			}
			if moved { // The watch left this list.
				continue
			}
			ws[j] = w
			j++
			switch s.litStatus(first) {
			case Indet:
				s.enqueue(first, lvl, reason{kind: reasonLong, off: w.off})
			case Unsat:
				j += copy(ws[j:], ws[i+1:])
				s.wl.wlist[lit] = ws[:j]
				lits := make([]Lit, c.Len())
				for k := 0; k < c.Len(); k++ {
					lits[k] = c.Get(k)
				}
				return &conflict{lits: lits, off: w.off}
			}
		}
	}
	s.wl.wlist[lit] = ws[:j]
	return nil
}
