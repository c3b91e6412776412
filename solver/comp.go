package solver

import "sort"

// Disconnected component handling: when the formula splits into independent
// variable components, the smaller ones are solved by nested sub-solvers and
// their satisfying assignments cached, leaving the main solver a smaller
// problem.

type dsu struct {
	parent []int32
}

func newDSU(n int) *dsu {
	d := &dsu{parent: make([]int32, n)}
	for i := range d.parent {
		d.parent[i] = int32(i)
	}
	return d
}

func (d *dsu) find(x int32) int32 {
	for d.parent[x] != x {
		d.parent[x] = d.parent[d.parent[x]] // Path halving
		x = d.parent[x]
	}
	return x
}

func (d *dsu) union(x, y int32) {
	rx, ry := d.find(x), d.find(y)
	if rx != ry {
		d.parent[rx] = ry
	}
}

// handleComponents splits the formula and hands small side components to
// sub-solvers. Skipped while a proof is being recorded: the sub-solvers'
// learnt clauses would not be derivable in the outer proof.
func (s *Solver) handleComponents() Status {
	if !s.ok {
		return Unsat
	}
	if !s.conf.DoCompHandler {
		return Indet
	}
	if _, nop := s.proof.(nopProof); !nop {
		return Indet
	}
	live := func(v Var) bool {
		return !s.assigned(v) && s.removed[v] == NotRemoved
	}
	d := newDSU(s.nbVars)
	joinClause := func(lits []Lit) {
		first := VarUndef
		for _, l := range lits {
			if !live(l.Var()) {
				continue
			}
			if first == VarUndef {
				first = l.Var()
			} else {
				d.union(int32(first), int32(l.Var()))
			}
		}
	}
	s.forEachBinary(func(l1, l2 Lit, red bool) {
		if !red {
			joinClause([]Lit{l1, l2})
		}
	})
	s.forEachTernary(func(l1, l2, l3 Lit, red bool) {
		if !red {
			joinClause([]Lit{l1, l2, l3})
		}
	})
	for _, off := range s.longIrred {
		if c := s.ca.clauses[off]; !c.freed() {
			joinClause(c.lits)
		}
	}
	comps := make(map[int32][]Var)
	for v := 0; v < s.nbVars; v++ {
		if live(Var(v)) {
			root := d.find(int32(v))
			comps[root] = append(comps[root], Var(v))
		}
	}
	if len(comps) <= 1 {
		return Indet
	}
	roots := make([]int32, 0, len(comps))
	for root := range comps {
		roots = append(roots, root)
	}
	// Keep the biggest component in the main solver; sub-solve the rest.
	sort.Slice(roots, func(i, j int) bool {
		if len(comps[roots[i]]) != len(comps[roots[j]]) {
			return len(comps[roots[i]]) > len(comps[roots[j]])
		}
		return roots[i] < roots[j]
	})
	for _, root := range roots[1:] {
		vars := comps[root]
		if len(vars) > s.conf.CompVarLimit {
			continue
		}
		if st := s.solveComponent(d, root, vars); st == Unsat {
			return Unsat
		}
	}
	return Indet
}

// solveComponent runs a nested solver on one component and, on success,
// caches its assignment and removes its clauses from the main database.
func (s *Solver) solveComponent(d *dsu, root int32, vars []Var) Status {
	inComp := func(v Var) bool {
		return !s.assigned(v) && s.removed[v] == NotRemoved && d.find(int32(v)) == root
	}
	varMap := make(map[Var]Var, len(vars))
	for i, v := range vars {
		varMap[v] = Var(i)
	}
	conf := s.conf
	conf.Verbose = false
	conf.DoCompHandler = false // No recursive decomposition
	sub := NewSolver(conf)
	for range vars {
		sub.NewVar()
	}
	// Gather the component's clauses. A clause touching one component var is
	// entirely inside the component, modulo top-level assigned lits which the
	// mapping drops.
	type implCl struct {
		lits []Lit
		red  bool
		off  ClOffset
	}
	var clauses []implCl
	s.forEachBinary(func(l1, l2 Lit, red bool) {
		if inComp(l1.Var()) || inComp(l2.Var()) {
			clauses = append(clauses, implCl{lits: []Lit{l1, l2}, red: red, off: ClOffsetUndef})
		}
	})
	s.forEachTernary(func(l1, l2, l3 Lit, red bool) {
		if inComp(l1.Var()) || inComp(l2.Var()) || inComp(l3.Var()) {
			clauses = append(clauses, implCl{lits: []Lit{l1, l2, l3}, red: red, off: ClOffsetUndef})
		}
	})
	for _, offs := range [][]ClOffset{s.longIrred, s.longRed} {
		for _, off := range offs {
			c := s.ca.clauses[off]
			if c.freed() {
				continue
			}
			for _, l := range c.lits {
				if inComp(l.Var()) {
					lits := make([]Lit, c.Len())
					copy(lits, c.lits)
					clauses = append(clauses, implCl{lits: lits, red: c.Redundant(), off: off})
					break
				}
			}
		}
	}
	for _, cl := range clauses {
		if cl.red {
			continue // Redundant clauses are entailed; the sub-solver relearns what it needs.
		}
		mapped := make([]Lit, 0, len(cl.lits))
		sat := false
		for _, l := range cl.lits {
			switch s.litStatus(l) {
			case Sat:
				sat = true
			case Indet:
				mapped = append(mapped, varMap[l.Var()].SignedLit(!l.IsPositive()))
			}
		}
		if sat {
			continue
		}
		if sub.AddClause(mapped) == Unsat {
			return s.setUnsat()
		}
	}
	switch sub.Solve() {
	case Unsat:
		return s.setUnsat()
	case Indet:
		// Sub-solver ran out of budget: leave the component in place.
		return Indet
	}
	model := sub.Model()
	for v, sv := range varMap {
		if model[sv] {
			s.compState[v] = 1
		} else {
			s.compState[v] = -1
		}
	}
	// Remove the handed-off clauses and variables from the main solver.
	for _, cl := range clauses {
		switch {
		case cl.off != ClOffsetUndef:
			if !s.ca.clauses[cl.off].freed() {
				s.detachClause(cl.off)
				s.removeLongFromList(cl.off)
				s.ca.free(cl.off)
			}
		case len(cl.lits) == 2:
			s.detachBinary(cl.lits[0], cl.lits[1], cl.red)
		default:
			s.detachTernary(cl.lits[0], cl.lits[1], cl.lits[2], cl.red)
		}
	}
	for _, v := range vars {
		s.removed[v] = RemovedDecomposed
		s.order.Remove(int(v))
		s.clearCacheFor(v)
	}
	s.Stats.NbComponents++
	if s.Verbose {
		s.logger.WithField("vars", len(vars)).Debug("component handed off")
	}
	return Indet
}
