package solver

// A watch is a tagged entry in a literal's watch list. Binary and ternary
// clauses are stored inline in their watch entries and never reach the arena;
// long clauses are referenced by offset, together with a blocker literal used
// as a fast satisfied test.
type watch struct {
	kind      watchKind
	redundant bool
	l1        Lit // Binary: the other lit. Ternary: first other lit. Long: the blocker.
	l2        Lit // Ternary: second other lit.
	off       ClOffset
}

type watchKind byte

const (
	watchBinary = watchKind(iota)
	watchTernary
	watchLong
)

// A watcherList indexes watches per literal and tracks the clause database
// counters used by learnt clause reduction.
type watcherList struct {
	wlist     [][]watch // For each literal, the watches to visit when it becomes true. An entry in wlist[l] belongs to a clause containing l.Negation().
	nbBin     int       // Nb of binary clauses (irredundant + redundant)
	nbTern    int       // Nb of ternary clauses
	nbMax     int       // Max nb of redundant long clauses at current moment
	idxReduce int       // Nb of calls to reduce + 1
}

// attachBinary registers the binary clause (l1, l2) in both watch lists.
func (s *Solver) attachBinary(l1, l2 Lit, redundant bool) {
	neg1 := l1.Negation()
	neg2 := l2.Negation()
	s.wl.wlist[neg1] = append(s.wl.wlist[neg1], watch{kind: watchBinary, redundant: redundant, l1: l2, off: ClOffsetUndef})
	s.wl.wlist[neg2] = append(s.wl.wlist[neg2], watch{kind: watchBinary, redundant: redundant, l1: l1, off: ClOffsetUndef})
	s.wl.nbBin++
}

// attachTernary registers the ternary clause (l1, l2, l3) in all three watch lists.
func (s *Solver) attachTernary(l1, l2, l3 Lit, redundant bool) {
	s.wl.wlist[l1.Negation()] = append(s.wl.wlist[l1.Negation()], watch{kind: watchTernary, redundant: redundant, l1: l2, l2: l3, off: ClOffsetUndef})
	s.wl.wlist[l2.Negation()] = append(s.wl.wlist[l2.Negation()], watch{kind: watchTernary, redundant: redundant, l1: l1, l2: l3, off: ClOffsetUndef})
	s.wl.wlist[l3.Negation()] = append(s.wl.wlist[l3.Negation()], watch{kind: watchTernary, redundant: redundant, l1: l1, l2: l2, off: ClOffsetUndef})
	s.wl.nbTern++
}

// attachClause registers the long clause at off on its first two literals.
func (s *Solver) attachClause(off ClOffset) {
	c := s.ca.get(off)
	first := c.First()
	second := c.Second()
	blocker := c.Get(c.Len() - 1)
	s.wl.wlist[first.Negation()] = append(s.wl.wlist[first.Negation()], watch{kind: watchLong, redundant: c.Redundant(), l1: blocker, off: off})
	s.wl.wlist[second.Negation()] = append(s.wl.wlist[second.Negation()], watch{kind: watchLong, redundant: c.Redundant(), l1: blocker, off: off})
}

// detachClause removes the two long watches of the clause at off.
func (s *Solver) detachClause(off ClOffset) {
	c := s.ca.get(off)
	s.removeLongWatch(c.First().Negation(), off)
	s.removeLongWatch(c.Second().Negation(), off)
}

func (s *Solver) removeLongWatch(l Lit, off ClOffset) {
	ws := s.wl.wlist[l]
	for i := range ws {
		if ws[i].kind == watchLong && ws[i].off == off {
			ws[i] = ws[len(ws)-1]
			s.wl.wlist[l] = ws[:len(ws)-1]
			return
		}
	}
	panic("long watch not found")
}

// detachBinary removes the binary clause (l1, l2) with the given redundancy
// flag from both watch lists.
func (s *Solver) detachBinary(l1, l2 Lit, redundant bool) {
	s.removeInlineWatch(l1.Negation(), watchBinary, l2, LitUndef, redundant)
	s.removeInlineWatch(l2.Negation(), watchBinary, l1, LitUndef, redundant)
	s.wl.nbBin--
}

// detachTernary removes the ternary clause (l1, l2, l3) from all three watch lists.
func (s *Solver) detachTernary(l1, l2, l3 Lit, redundant bool) {
	s.removeInlineWatch(l1.Negation(), watchTernary, l2, l3, redundant)
	s.removeInlineWatch(l2.Negation(), watchTernary, l1, l3, redundant)
	s.removeInlineWatch(l3.Negation(), watchTernary, l1, l2, redundant)
	s.wl.nbTern--
}

// removeInlineWatch removes a binary or ternary entry. The other lits of a
// ternary entry may be stored in either order.
func (s *Solver) removeInlineWatch(l Lit, kind watchKind, o1, o2 Lit, redundant bool) {
	ws := s.wl.wlist[l]
	for i := range ws {
		w := ws[i]
		if w.kind != kind || w.redundant != redundant {
			continue
		}
		if kind == watchBinary && w.l1 == o1 ||
			kind == watchTernary && (w.l1 == o1 && w.l2 == o2 || w.l1 == o2 && w.l2 == o1) {
			ws[i] = ws[len(ws)-1]
			s.wl.wlist[l] = ws[:len(ws)-1]
			return
		}
	}
	panic("inline watch not found")
}

// hasBinary is true iff the binary clause (l1, l2) is currently attached.
func (s *Solver) hasBinary(l1, l2 Lit) bool {
	ws := s.wl.wlist[l1.Negation()]
	for i := range ws {
		if ws[i].kind == watchBinary && ws[i].l1 == l2 {
			return true
		}
	}
	return false
}

// forEachBinary calls fn once per binary clause.
func (s *Solver) forEachBinary(fn func(l1, l2 Lit, redundant bool)) {
	for i := range s.wl.wlist {
		first := Lit(i).Negation() // The lit the clause contains.
		for _, w := range s.wl.wlist[i] {
			if w.kind == watchBinary && first < w.l1 {
				fn(first, w.l1, w.redundant)
			}
		}
	}
}

// forEachTernary calls fn once per ternary clause.
func (s *Solver) forEachTernary(fn func(l1, l2, l3 Lit, redundant bool)) {
	for i := range s.wl.wlist {
		first := Lit(i).Negation()
		for _, w := range s.wl.wlist[i] {
			if w.kind == watchTernary && first < w.l1 && first < w.l2 {
				fn(first, w.l1, w.l2, w.redundant)
			}
		}
	}
}

// rewriteOffsets remaps every long watch and long reason after an arena
// compaction.
func (s *Solver) rewriteOffsets(remap map[ClOffset]ClOffset) {
	for i := range s.wl.wlist {
		ws := s.wl.wlist[i]
		for j := range ws {
			if ws[j].kind == watchLong {
				ws[j].off = remap[ws[j].off]
			}
		}
	}
	for v := range s.reasons {
		if s.reasons[v].kind == reasonLong {
			if newOff, ok := remap[s.reasons[v].off]; ok {
				s.reasons[v].off = newOff
			} else {
				// The clause was freed; only a top-level reason may be in
				// that state, and those are never inspected again.
				s.reasons[v] = noReason
			}
		}
	}
	s.longIrred = remapOffsets(s.longIrred, remap)
	s.longRed = remapOffsets(s.longRed, remap)
}

// remapOffsets rewrites a clause list through the compaction mapping,
// dropping offsets whose clause was freed.
func remapOffsets(offs []ClOffset, remap map[ClOffset]ClOffset) []ClOffset {
	res := offs[:0]
	for _, off := range offs {
		if newOff, ok := remap[off]; ok {
			res = append(res, newOff)
		}
	}
	return res
}

// compactArena runs an arena compaction and rewrites all stored offsets.
func (s *Solver) compactArena() {
	remap := s.ca.compact()
	s.rewriteOffsets(remap)
}
