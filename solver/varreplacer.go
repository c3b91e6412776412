package solver

// Equivalent literal replacement. Binary clauses induce an implication graph
// over literals; every strongly connected component of that graph is an
// equivalence class. One representative per class survives, every other
// literal of the class is rewritten to it throughout the clause database.

// litRepl resolves l through the replacement table, following chains built
// by successive replacement rounds.
func (s *Solver) litRepl(l Lit) Lit {
	res := l
	for {
		rep := s.replTable[res.Var()]
		if !res.IsPositive() {
			rep = rep.Negation()
		}
		if rep == res {
			return res
		}
		res = rep
	}
}

// replaceEqLits finds the SCCs of the binary implication graph and merges
// each class onto a single representative.
func (s *Solver) replaceEqLits() Status {
	if !s.ok {
		return Unsat
	}
	if !s.conf.DoFindAndReplaceEqLits {
		return Indet
	}
	sccs := s.binaryImplicationSCCs()
	changed := false
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		rep := scc[0]
		for _, l := range scc {
			if l < rep {
				rep = l
			}
		}
		for _, l := range scc {
			if l.Var() == rep.Var() {
				if l != rep { // Both l and its negation in one class
					// Each unit is derivable by propagation along the cycle;
					// putting both on record justifies the empty clause.
					s.proof.AddClause([]Lit{l.Negation()})
					s.proof.AddClause([]Lit{l})
					return s.setUnsat()
				}
				continue
			}
			if s.removed[l.Var()] != NotRemoved {
				continue
			}
			target := rep
			if !l.IsPositive() {
				target = rep.Negation()
			}
			s.replTable[l.Var()] = target
			s.removed[l.Var()] = RemovedReplaced
			s.order.Remove(int(l.Var()))
			s.Stats.NbReplaced++
			changed = true
		}
	}
	if !changed {
		return Indet
	}
	return s.rewriteClausesAfterReplacement()
}

// binaryImplicationSCCs runs an iterative Tarjan over the 2*nbVars literal
// nodes. Assigned and removed variables are left out.
func (s *Solver) binaryImplicationSCCs() [][]Lit {
	n := 2 * s.nbVars
	index := make([]int32, n)
	lowlink := make([]int32, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var (
		sccs    [][]Lit
		stack   []Lit
		counter int32
	)
	skip := func(l Lit) bool {
		return s.assigned(l.Var()) || s.removed[l.Var()] != NotRemoved
	}
	// neighbors: l implies w.l1 for every binary watch triggered by l true.
	type frame struct {
		l  Lit
		wi int
	}
	for root := 0; root < n; root++ {
		if index[root] != -1 || skip(Lit(root)) {
			continue
		}
		callStack := []frame{{l: Lit(root)}}
		index[root] = counter
		lowlink[root] = counter
		counter++
		stack = append(stack, Lit(root))
		onStack[root] = true
		for len(callStack) > 0 {
			fr := &callStack[len(callStack)-1]
			ws := s.wl.wlist[fr.l]
			advanced := false
			for fr.wi < len(ws) {
				w := ws[fr.wi]
				fr.wi++
				if w.kind != watchBinary || skip(w.l1) {
					continue
				}
				next := w.l1
				if index[next] == -1 {
					index[next] = counter
					lowlink[next] = counter
					counter++
					stack = append(stack, next)
					onStack[next] = true
					callStack = append(callStack, frame{l: next})
					advanced = true
					break
				} else if onStack[next] {
					if index[next] < lowlink[fr.l] {
						lowlink[fr.l] = index[next]
					}
				}
			}
			if advanced {
				continue
			}
			// fr is done: pop and propagate lowlink.
			done := fr.l
			callStack = callStack[:len(callStack)-1]
			if len(callStack) > 0 {
				parent := callStack[len(callStack)-1].l
				if lowlink[done] < lowlink[parent] {
					lowlink[parent] = lowlink[done]
				}
			}
			if lowlink[done] == index[done] {
				var scc []Lit
				for {
					top := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[top] = false
					scc = append(scc, top)
					if top == done {
						break
					}
				}
				sccs = append(sccs, scc)
			}
		}
	}
	return sccs
}

// rewriteClausesAfterReplacement rewrites every clause through the
// replacement table, preserving watch invariants: detach, rewrite,
// deduplicate, reattach. Proof deletions are deferred until every rewritten
// clause is on record: a rewrite is justified by the binary clauses of its
// equivalence class, some of which are themselves rewritten away.
func (s *Solver) rewriteClausesAfterReplacement() Status {
	var delayedDels [][]Lit
	defer func() {
		for _, lits := range delayedDels {
			s.proof.DeleteClause(lits)
		}
	}()
	// Long clauses first. Iterate over a snapshot: rewriting can both remove
	// entries from the lists and append new ones.
	longs := make([]ClOffset, 0, len(s.longIrred)+len(s.longRed))
	longs = append(longs, s.longIrred...)
	longs = append(longs, s.longRed...)
	for _, off := range longs {
		c := s.ca.clauses[off]
		if c.freed() {
			continue
		}
		dirty := false
		for i := 0; i < c.Len(); i++ {
			if s.litRepl(c.Get(i)) != c.Get(i) {
				dirty = true
				break
			}
		}
		if !dirty {
			continue
		}
		old := make([]Lit, c.Len())
		copy(old, c.lits)
		newLits := make([]Lit, 0, c.Len())
		for _, l := range old {
			newLits = append(newLits, s.litRepl(l))
		}
		s.detachClause(off)
		s.removeLongFromList(off)
		s.ca.free(off)
		if st := s.readdRewritten(newLits, old, c.Redundant(), &delayedDels); st == Unsat {
			return Unsat
		}
	}
	// Implicit clauses.
	type implCl struct {
		lits []Lit
		red  bool
	}
	var dirtyImpl []implCl
	s.forEachBinary(func(l1, l2 Lit, red bool) {
		if s.litRepl(l1) != l1 || s.litRepl(l2) != l2 {
			dirtyImpl = append(dirtyImpl, implCl{lits: []Lit{l1, l2}, red: red})
		}
	})
	s.forEachTernary(func(l1, l2, l3 Lit, red bool) {
		if s.litRepl(l1) != l1 || s.litRepl(l2) != l2 || s.litRepl(l3) != l3 {
			dirtyImpl = append(dirtyImpl, implCl{lits: []Lit{l1, l2, l3}, red: red})
		}
	})
	for _, cl := range dirtyImpl {
		if len(cl.lits) == 2 {
			s.detachBinary(cl.lits[0], cl.lits[1], cl.red)
		} else {
			s.detachTernary(cl.lits[0], cl.lits[1], cl.lits[2], cl.red)
		}
		newLits := make([]Lit, len(cl.lits))
		for i, l := range cl.lits {
			newLits[i] = s.litRepl(l)
		}
		if st := s.readdRewritten(newLits, cl.lits, cl.red, &delayedDels); st == Unsat {
			return Unsat
		}
	}
	if confl := s.propagate(1); confl != nil {
		return s.setUnsat()
	}
	return Indet
}

// readdRewritten inserts a rewritten clause, dropping tautologies and
// duplicates. The addition goes to the proof sink at once; the deletion of
// the old form is appended to dels, to be emitted once the pass is done.
func (s *Solver) readdRewritten(lits, old []Lit, redundant bool, dels *[][]Lit) Status {
	lits = normalizeLits(lits)
	sat := false
	j := 0
	for _, l := range lits {
		switch s.litStatus(l) {
		case Sat:
			sat = true
		case Indet:
			lits[j] = l
			j++
		}
	}
	lits = lits[:j]
	*dels = append(*dels, old)
	if lits == nil || sat {
		return Indet
	}
	switch len(lits) {
	case 0:
		return s.setUnsat()
	case 1:
		s.proof.AddClause(lits)
		if s.litStatus(lits[0]) == Unsat {
			return s.setUnsat()
		}
		if confl := s.unifyLiteral(lits[0], 1); confl != nil {
			return s.setUnsat()
		}
		return Indet
	default:
		s.proof.AddClause(lits)
		s.addClauseInternal(lits, redundant)
		return Indet
	}
}

// normalizeLits sorts the lits, removes duplicates and returns nil for
// tautologies.
func normalizeLits(lits []Lit) []Lit {
	for i := 1; i < len(lits); i++ {
		for j := i; j > 0 && lits[j] < lits[j-1]; j-- {
			lits[j], lits[j-1] = lits[j-1], lits[j]
		}
	}
	j := 0
	for i, l := range lits {
		if i > 0 && l == lits[j-1] {
			continue
		}
		if j > 0 && l == lits[j-1].Negation() {
			return nil
		}
		lits[j] = l
		j++
	}
	return lits[:j]
}

// removeLongFromList drops off from whichever long clause list holds it.
func (s *Solver) removeLongFromList(off ClOffset) {
	for _, lst := range []*[]ClOffset{&s.longIrred, &s.longRed} {
		for i, o := range *lst {
			if o == off {
				(*lst)[i] = (*lst)[len(*lst)-1]
				*lst = (*lst)[:len(*lst)-1]
				return
			}
		}
	}
}
