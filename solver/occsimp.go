package solver

import "sort"

// Occurrence-based simplification: backward subsumption, self-subsuming
// resolution (strengthening) and bounded variable elimination. The occurrence
// index is rebuilt for each pass from the watch lists and the arena, and
// dropped when the pass returns.

// An elimedClause is a clause deleted by variable elimination, kept on the
// reconstruction stack. lit is the literal of the eliminated variable as it
// appeared in the clause.
type elimedClause struct {
	lit  Lit
	lits []Lit
}

// An occClause is a pass-local view of one clause of the database.
type occClause struct {
	lits    []Lit // Sorted
	abst    uint64
	red     bool
	off     ClOffset // ClOffsetUndef for binary/ternary clauses
	deleted bool
}

type occIndex struct {
	tbl  []occClause
	occs [][]int32 // For each lit, indices into tbl
}

type occMode int

const (
	occSubsume = occMode(iota)
	occStrengthen
	occBVE
)

// clearTopLevelReasons detaches top-level trail literals from their antecedent
// clauses, so simplification may delete any clause without leaving a stale
// reason behind. Top-level reasons are never inspected again by analysis.
func (s *Solver) clearTopLevelReasons() {
	for _, lit := range s.trail {
		v := lit.Var()
		if s.reasons[v].kind == reasonLong {
			s.ca.get(s.reasons[v].off).unlock()
		}
		s.reasons[v] = noReason
	}
}

// buildOcc gathers every clause of the database into a fresh occurrence index.
func (s *Solver) buildOcc() *occIndex {
	idx := &occIndex{occs: make([][]int32, 2*s.nbVars)}
	add := func(lits []Lit, red bool, off ClOffset) {
		lits2 := make([]Lit, len(lits))
		copy(lits2, lits)
		sort.Slice(lits2, func(i, j int) bool { return lits2[i] < lits2[j] })
		var abst uint64
		for _, l := range lits2 {
			abst |= abstractLit(l)
		}
		i := int32(len(idx.tbl))
		idx.tbl = append(idx.tbl, occClause{lits: lits2, abst: abst, red: red, off: off})
		for _, l := range lits2 {
			idx.occs[l] = append(idx.occs[l], i)
		}
	}
	s.forEachBinary(func(l1, l2 Lit, red bool) {
		add([]Lit{l1, l2}, red, ClOffsetUndef)
	})
	s.forEachTernary(func(l1, l2, l3 Lit, red bool) {
		add([]Lit{l1, l2, l3}, red, ClOffsetUndef)
	})
	for _, offs := range [][]ClOffset{s.longIrred, s.longRed} {
		for _, off := range offs {
			c := s.ca.clauses[off]
			if !c.freed() {
				add(c.lits, c.Redundant(), off)
			}
		}
	}
	return idx
}

// addOccClause inserts a clause created during the pass into both the real
// database and the occurrence index.
func (s *Solver) addOccClause(idx *occIndex, lits []Lit, red bool) {
	off := s.addClauseInternal(lits, red)
	lits2 := make([]Lit, len(lits))
	copy(lits2, lits)
	sort.Slice(lits2, func(i, j int) bool { return lits2[i] < lits2[j] })
	var abst uint64
	for _, l := range lits2 {
		abst |= abstractLit(l)
	}
	i := int32(len(idx.tbl))
	idx.tbl = append(idx.tbl, occClause{lits: lits2, abst: abst, red: red, off: off})
	for _, l := range lits2 {
		idx.occs[l] = append(idx.occs[l], i)
	}
}

// deleteOccClause removes a clause from the real database and marks it dead
// in the index.
func (s *Solver) deleteOccClause(idx *occIndex, i int32) {
	oc := &idx.tbl[i]
	if oc.deleted {
		return
	}
	oc.deleted = true
	switch len(oc.lits) {
	case 2:
		s.detachBinary(oc.lits[0], oc.lits[1], oc.red)
	case 3:
		s.detachTernary(oc.lits[0], oc.lits[1], oc.lits[2], oc.red)
	default:
		s.detachClause(oc.off)
		s.removeLongFromList(oc.off)
		s.ca.free(oc.off)
	}
	s.proof.DeleteClause(oc.lits)
}

// occSimplify runs one occurrence-based pass.
func (s *Solver) occSimplify(mode occMode) Status {
	if !s.ok {
		return Unsat
	}
	if mode == occBVE && !s.conf.DoVarElim {
		return Indet
	}
	s.clearTopLevelReasons()
	idx := s.buildOcc()
	var st Status
	switch mode {
	case occSubsume:
		st = s.subsumePass(idx, s.newBudget(s.conf.SubsumptionTimeLimitM))
	case occStrengthen:
		st = s.strengthenPass(idx, s.newBudget(s.conf.StrengtheningTimeLimitM))
	case occBVE:
		st = s.bvePass(idx, s.newBudget(s.conf.VarElimTimeLimitM))
	}
	if st == Unsat {
		return Unsat
	}
	if confl := s.propagate(1); confl != nil {
		return s.setUnsat()
	}
	return Indet
}

// leastOccurringLit returns the lit of the clause with the fewest occurrences.
func leastOccurringLit(idx *occIndex, lits []Lit) Lit {
	best := lits[0]
	for _, l := range lits[1:] {
		if len(idx.occs[l]) < len(idx.occs[best]) {
			best = l
		}
	}
	return best
}

// subsumePass removes every clause that is a superset of another clause.
// A redundant clause may never remove an irredundant one.
func (s *Solver) subsumePass(idx *occIndex, bud *budget) Status {
	order := make([]int32, 0, len(idx.tbl))
	for i := range idx.tbl {
		order = append(order, int32(i))
	}
	sort.Slice(order, func(i, j int) bool {
		return len(idx.tbl[order[i]].lits) < len(idx.tbl[order[j]].lits)
	})
	for _, i := range order {
		if bud.out() || s.interrupted.Load() {
			return Indet
		}
		c := &idx.tbl[i]
		if c.deleted {
			continue
		}
		pivot := leastOccurringLit(idx, c.lits)
		for _, j := range idx.occs[pivot] {
			bud.step(1)
			if j == i {
				continue
			}
			d := &idx.tbl[j]
			if d.deleted || len(d.lits) < len(c.lits) {
				continue
			}
			if c.red && !d.red {
				continue // A redundant clause must not delete an irredundant one.
			}
			if c.abst & ^d.abst != 0 { // Fast reject before the real subset test
				continue
			}
			if len(c.lits) == len(d.lits) && i > j {
				continue // Exact duplicate: keep the first copy.
			}
			if subsetOf(c.lits, d.lits) {
				s.deleteOccClause(idx, j)
				s.Stats.NbSubsumed++
			}
		}
	}
	return Indet
}

// strengthenPass applies self-subsuming resolution: when C and D differ only
// in that some lit appears positively in C and negatively in D, and C minus
// that lit subsumes D, the negated lit is removed from D.
func (s *Solver) strengthenPass(idx *occIndex, bud *budget) Status {
	for i := int32(0); i < int32(len(idx.tbl)); i++ {
		if bud.out() || s.interrupted.Load() {
			return Indet
		}
		c := &idx.tbl[i]
		if c.deleted || c.red {
			continue
		}
		for _, l := range c.lits {
			neg := l.Negation()
			occs := idx.occs[neg]
			for _, j := range occs {
				bud.step(1)
				d := &idx.tbl[j]
				if d.deleted || len(d.lits) < len(c.lits) {
					continue
				}
				// C \ {l} must be a subset of D, with ¬l in D.
				if c.abst & ^(d.abst|abstractLit(l)) != 0 {
					continue
				}
				if !strengthens(c.lits, l, d.lits) {
					continue
				}
				newLits := make([]Lit, 0, len(d.lits)-1)
				for _, dl := range d.lits {
					if dl != neg {
						newLits = append(newLits, dl)
					}
				}
				red := d.red
				s.Stats.NbStrengthened++
				// Add before deleting: the shortened clause is derived by
				// resolution with the clause it replaces, so the proof needs
				// the old clause until the new one is on record.
				if st := s.addCleaned(idx, newLits, red); st == Unsat {
					return Unsat
				}
				s.deleteOccClause(idx, j)
				c = &idx.tbl[i] // tbl may have been reallocated by the insertion
			}
		}
	}
	return Indet
}

// strengthens is true iff cLits with pivot removed is a subset of dLits and
// pivot's negation belongs to dLits. Both slices are sorted.
func strengthens(cLits []Lit, pivot Lit, dLits []Lit) bool {
	foundNeg := false
	j := 0
	for _, l := range cLits {
		want := l
		if l == pivot {
			want = pivot.Negation()
		}
		for j < len(dLits) && dLits[j] < want {
			j++
		}
		if j == len(dLits) || dLits[j] != want {
			return false
		}
		if l == pivot {
			foundNeg = true
		}
		j++
	}
	return foundNeg
}

// addCleaned inserts a derived clause after simplifying it against the
// top-level assignment, handling the unit and empty cases, and mirrors the
// addition to the proof sink. A clause already satisfied at the top level is
// dropped silently.
func (s *Solver) addCleaned(idx *occIndex, lits []Lit, red bool) Status {
	clean := make([]Lit, 0, len(lits))
	for _, l := range lits {
		switch s.litStatus(l) {
		case Sat:
			return Indet
		case Indet:
			clean = append(clean, l)
		}
	}
	switch len(clean) {
	case 0:
		return s.setUnsat()
	case 1:
		s.proof.AddClause(clean)
		if confl := s.unifyLiteral(clean[0], 1); confl != nil {
			return s.setUnsat()
		}
		return Indet
	default:
		s.proof.AddClause(clean)
		s.addOccClause(idx, clean, red)
		return Indet
	}
}

// bvePass eliminates variables whose resolvent set is no larger than the
// clauses it replaces. Variables are tried in increasing order of their cost
// at pass entry; costs are not recomputed as elimination proceeds, though each
// attempt reads the current occurrence lists.
func (s *Solver) bvePass(idx *occIndex, bud *budget) Status {
	cost := func(v Var) int {
		nPos, nNeg := 0, 0
		for _, i := range idx.occs[v.Lit()] {
			if !idx.tbl[i].deleted && !idx.tbl[i].red {
				nPos++
			}
		}
		for _, i := range idx.occs[v.Lit().Negation()] {
			if !idx.tbl[i].deleted && !idx.tbl[i].red {
				nNeg++
			}
		}
		return nPos*nNeg - nPos - nNeg
	}
	vars := make([]Var, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if !s.assigned(Var(v)) && s.removed[v] == NotRemoved {
			vars = append(vars, Var(v))
		}
	}
	sort.SliceStable(vars, func(i, j int) bool { return cost(vars[i]) < cost(vars[j]) })
	maxElim := int(float64(len(vars)) * s.conf.VarElimRatioPerIter)
	elimed := 0
	for _, v := range vars {
		if elimed >= maxElim || bud.out() || s.interrupted.Load() {
			return Indet
		}
		if s.assigned(v) || s.removed[v] != NotRemoved {
			continue
		}
		if st := s.tryEliminate(idx, v, bud); st == Unsat {
			return Unsat
		} else if st == Sat {
			elimed++
		}
	}
	return Indet
}

// tryEliminate attempts to resolve v out of the formula. It returns Sat if v
// was eliminated, Indet otherwise.
func (s *Solver) tryEliminate(idx *occIndex, v Var, bud *budget) Status {
	var pos, neg []int32
	for _, i := range idx.occs[v.Lit()] {
		if !idx.tbl[i].deleted && !idx.tbl[i].red {
			pos = append(pos, i)
		}
	}
	for _, i := range idx.occs[v.Lit().Negation()] {
		if !idx.tbl[i].deleted && !idx.tbl[i].red {
			neg = append(neg, i)
		}
	}
	if len(pos)+len(neg) == 0 {
		return Indet
	}
	limit := len(pos) + len(neg)
	var resolvents [][]Lit
	for _, i := range pos {
		for _, j := range neg {
			bud.step(int64(len(idx.tbl[i].lits) + len(idx.tbl[j].lits)))
			r, taut := resolve(idx.tbl[i].lits, idx.tbl[j].lits, v)
			if taut {
				continue
			}
			if len(r) > s.conf.VelimResolventTooLarge {
				return Indet
			}
			resolvents = append(resolvents, r)
			if len(resolvents) > limit {
				return Indet
			}
		}
	}
	// Eliminate: record the deleted clauses for model reconstruction, add the
	// resolvents, then delete the originals. The resolvents go in first so
	// the proof can justify them from their parents.
	for _, i := range pos {
		s.elimStack = append(s.elimStack, elimedClause{lit: v.Lit(), lits: idx.tbl[i].lits})
	}
	for _, j := range neg {
		s.elimStack = append(s.elimStack, elimedClause{lit: v.Lit().Negation(), lits: idx.tbl[j].lits})
	}
	for _, r := range resolvents {
		if st := s.addCleaned(idx, r, false); st == Unsat {
			return Unsat
		}
	}
	for _, i := range pos {
		s.deleteOccClause(idx, i)
	}
	for _, j := range neg {
		s.deleteOccClause(idx, j)
	}
	// Redundant clauses mentioning v just disappear.
	for _, l := range []Lit{v.Lit(), v.Lit().Negation()} {
		for _, i := range idx.occs[l] {
			if !idx.tbl[i].deleted {
				s.deleteOccClause(idx, i)
			}
		}
	}
	s.removed[v] = RemovedElim
	s.order.Remove(int(v))
	s.clearCacheFor(v)
	s.Stats.NbElimed++
	return Sat
}

// resolve returns the resolvent of two sorted clauses on v, and whether it is
// a tautology.
func resolve(c1, c2 []Lit, v Var) (res []Lit, tautology bool) {
	res = make([]Lit, 0, len(c1)+len(c2)-2)
	for _, l := range c1 {
		if l.Var() != v {
			res = append(res, l)
		}
	}
	for _, l := range c2 {
		if l.Var() != v {
			res = append(res, l)
		}
	}
	if res = normalizeLits(res); res == nil {
		return nil, true
	}
	return res, false
}
