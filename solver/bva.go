package solver

import "sort"

// Bounded variable addition: when k literals and m clause bodies pair up into
// k*m clauses of the formula, a fresh variable x turns them into k binary
// clauses (¬x ∨ lit) plus m clauses (x ∨ body), saving k*m - k - m clauses.

// runBVA greedily looks for such matchings, seeded on the most-occurring
// literals first.
func (s *Solver) runBVA() Status {
	if !s.ok {
		return Unsat
	}
	if !s.conf.DoBVA {
		return Indet
	}
	s.clearTopLevelReasons()
	bud := s.newBudget(s.conf.BVATimeLimitM)
	idx := s.buildOcc()
	seeds := make([]Lit, 0, 2*s.nbVars)
	for l := 0; l < 2*s.nbVars; l++ {
		if nbIrredOccs(idx, Lit(l)) >= 2 {
			seeds = append(seeds, Lit(l))
		}
	}
	sort.SliceStable(seeds, func(i, j int) bool {
		return nbIrredOccs(idx, seeds[i]) > nbIrredOccs(idx, seeds[j])
	})
	checks := 0
	for _, pivot := range seeds {
		if !s.ok {
			return Unsat
		}
		if bud.out() || s.interrupted.Load() || checks > s.conf.BVALimitPerCall {
			break
		}
		checks += s.tryBVA(idx, pivot, bud)
	}
	if !s.ok {
		return Unsat
	}
	if confl := s.propagate(1); confl != nil {
		return s.setUnsat()
	}
	return Indet
}

func nbIrredOccs(idx *occIndex, l Lit) int {
	nb := 0
	for _, i := range idx.occs[l] {
		if oc := &idx.tbl[i]; !oc.deleted && !oc.red && len(oc.lits) >= 2 {
			nb++
		}
	}
	return nb
}

// tryBVA grows a matching around the given pivot literal and applies the
// replacement when it saves clauses. It returns the number of candidate
// checks performed, for the per-call limit.
func (s *Solver) tryBVA(idx *occIndex, pivot Lit, bud *budget) int {
	mLits := []Lit{pivot}
	var mCls []int32
	for _, i := range idx.occs[pivot] {
		if oc := &idx.tbl[i]; !oc.deleted && !oc.red && len(oc.lits) >= 2 {
			mCls = append(mCls, i)
		}
	}
	if len(mCls) < 2 {
		return 0
	}
	checks := 0
	gain := func(k, m int) int { return k*m - k - m }
	for {
		// For every clause of the matching, find the literals that could
		// replace the pivot in an existing clause.
		counts := make(map[Lit]int)
		matched := make(map[Lit][]int32)
		for _, ci := range mCls {
			rest := withoutLit(idx.tbl[ci].lits, pivot)
			if len(rest) == 0 {
				continue
			}
			lmin := leastOccurringLit(idx, rest)
			for _, dj := range idx.occs[lmin] {
				bud.step(1)
				checks++
				d := &idx.tbl[dj]
				if d.deleted || d.red || dj == ci || len(d.lits) != len(rest)+1 {
					continue
				}
				diff, ok := differingLit(d.lits, rest)
				if !ok || diff == pivot {
					continue
				}
				if containsLit(mLits, diff) {
					continue
				}
				counts[diff]++
				matched[diff] = append(matched[diff], ci)
			}
		}
		var best Lit = LitUndef
		for l, nb := range counts {
			if best == LitUndef || nb > counts[best] || nb == counts[best] && l < best {
				best = l
			}
		}
		if best == LitUndef {
			break
		}
		newCls := matched[best]
		if gain(len(mLits)+1, len(newCls)) <= gain(len(mLits), len(mCls)) {
			break
		}
		mLits = append(mLits, best)
		mCls = newCls
	}
	if gain(len(mLits), len(mCls)) <= 0 {
		return checks
	}
	s.applyBVA(idx, pivot, mLits, mCls)
	return checks
}

// applyBVA introduces the auxiliary variable and replaces the matched clauses.
func (s *Solver) applyBVA(idx *occIndex, pivot Lit, mLits []Lit, mCls []int32) {
	// Collect the matched clause of every (lit, body) pair before mutating
	// anything: for mLits[0] it is the body's own clause.
	var toDelete []int32
	bodies := make([][]Lit, 0, len(mCls))
	for _, ci := range mCls {
		bodies = append(bodies, withoutLit(idx.tbl[ci].lits, pivot))
		toDelete = append(toDelete, ci)
	}
	for _, l := range mLits[1:] {
		for _, body := range bodies {
			found := int32(-1)
			for _, dj := range idx.occs[l] {
				d := &idx.tbl[dj]
				if d.deleted || d.red || len(d.lits) != len(body)+1 {
					continue
				}
				if diff, ok := differingLit(d.lits, body); ok && diff == l {
					found = dj
					break
				}
			}
			if found < 0 {
				// The matched clause vanished while the matching grew; the
				// replacement stays sound, there is just nothing to delete.
				continue
			}
			toDelete = append(toDelete, found)
		}
	}
	x := s.NewVar()
	idx.occs = append(idx.occs, nil, nil)
	s.Stats.NbBVAVars++
	for _, l := range mLits {
		if s.addCleaned(idx, []Lit{x.Lit().Negation(), l}, false) == Unsat {
			return
		}
	}
	for _, body := range bodies {
		lits := make([]Lit, 0, len(body)+1)
		lits = append(lits, x.Lit())
		lits = append(lits, body...)
		if s.addCleaned(idx, lits, false) == Unsat {
			return
		}
	}
	for _, dj := range toDelete {
		s.deleteOccClause(idx, dj)
	}
}

// withoutLit returns lits minus the given lit, preserving order.
func withoutLit(lits []Lit, l Lit) []Lit {
	res := make([]Lit, 0, len(lits)-1)
	for _, l2 := range lits {
		if l2 != l {
			res = append(res, l2)
		}
	}
	return res
}

func containsLit(lits []Lit, l Lit) bool {
	for _, l2 := range lits {
		if l2 == l {
			return true
		}
	}
	return false
}

// differingLit returns the single lit of clause that is not in body, when
// clause is exactly body plus one lit. Both slices are sorted.
func differingLit(clause, body []Lit) (Lit, bool) {
	diff := LitUndef
	j := 0
	for _, l := range clause {
		if j < len(body) && body[j] == l {
			j++
			continue
		}
		if diff != LitUndef {
			return LitUndef, false
		}
		diff = l
	}
	if j != len(body) || diff == LitUndef {
		return LitUndef, false
	}
	return diff, true
}
