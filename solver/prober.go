package solver

import "sort"

// Failed-literal probing with bothprop and on-the-fly hyper-binary
// resolution. Everything here runs at the top level: a probe makes one
// tentative decision, propagates it, and always returns to the top level.

// probe tests free variables in both polarities. In intree mode, variables
// with many binary occurrences (the roots of large implication trees) are
// probed first; otherwise the order is a seeded random permutation.
func (s *Solver) probe(intree bool) Status {
	if !s.ok {
		return Unsat
	}
	if !s.conf.DoProbe || intree && !s.conf.DoIntreeProbe {
		return Indet
	}
	bud := s.newBudget(s.conf.ProbeTimeLimitM)
	vars := s.probeOrder(intree)
	var nbProps, nbHyperBins int64
	posImplied := make(map[Lit]bool)
	for _, v := range vars {
		if bud.out() || s.interrupted.Load() {
			break
		}
		if s.assigned(v) || s.removed[v] != NotRemoved {
			continue
		}
		lit := v.Lit()
		failed, st := s.probeLit(lit, bud, posImplied, &nbProps, &nbHyperBins)
		if st == Unsat {
			return Unsat
		}
		if failed || s.assigned(v) {
			continue
		}
		// Probe the other polarity and bothprop the intersection.
		negImplied := make(map[Lit]bool)
		failed, st = s.probeLit(lit.Negation(), bud, negImplied, &nbProps, &nbHyperBins)
		if st == Unsat {
			return Unsat
		}
		if failed {
			continue
		}
		if s.conf.DoBothProp {
			common := make([]Lit, 0, len(posImplied))
			for l := range posImplied {
				if negImplied[l] {
					common = append(common, l)
				}
			}
			sort.Slice(common, func(i, j int) bool { return common[i] < common[j] })
			for _, l := range common {
				if s.litStatus(l) == Sat {
					continue
				}
				s.Stats.NbBothProp++
				// The two implications are each derivable by propagation;
				// putting them on record makes the unit itself derivable.
				s.proof.AddClause([]Lit{lit.Negation(), l})
				s.proof.AddClause([]Lit{lit, l})
				s.proof.AddClause([]Lit{l})
				if s.litStatus(l) == Unsat {
					return s.setUnsat()
				}
				if confl := s.unifyLiteral(l, 1); confl != nil {
					return s.setUnsat()
				}
			}
		}
		// A cached contradiction for a literal makes its negation a unit.
		if s.conf.DoCache && !s.assigned(v) {
			for _, l := range []Lit{lit, lit.Negation()} {
				if s.cacheContradiction(l) && s.litStatus(l.Negation()) == Indet {
					s.proof.AddClause([]Lit{l.Negation()})
					if confl := s.unifyLiteral(l.Negation(), 1); confl != nil {
						return s.setUnsat()
					}
				}
			}
		}
	}
	if s.conf.OTFHyperbin && !s.otfDisabled && bud.out() {
		// A probing timeout is the signal that hyper-binary generation is too
		// expensive on this instance.
		s.otfDisabled = true
	}
	return Indet
}

// probeLit makes the tentative decision l, propagates, and either handles a
// failed literal or records the implied literals in implied (replacing its
// content). It reports whether l failed.
func (s *Solver) probeLit(l Lit, bud *budget, implied map[Lit]bool, nbProps, nbHyperBins *int64) (failed bool, st Status) {
	trailStart := len(s.trail)
	confl := s.unifyLiteral(l, 2)
	bud.step(int64(len(s.trail) - trailStart + 1))
	if confl != nil {
		s.cleanupBindings(1)
		s.Stats.NbFailedLits++
		neg := l.Negation()
		s.proof.AddClause([]Lit{neg})
		if s.litStatus(neg) == Unsat {
			return true, s.setUnsat()
		}
		if s.litStatus(neg) == Indet {
			if confl := s.unifyLiteral(neg, 1); confl != nil {
				return true, s.setUnsat()
			}
		}
		return true, Indet
	}
	for k := range implied {
		delete(implied, k)
	}
	*nbProps += int64(len(s.trail) - trailStart - 1)
	var hyperBins [][2]Lit
	for i := trailStart + 1; i < len(s.trail); i++ {
		t := s.trail[i]
		implied[t] = true
		// On-the-fly hyper-binary resolution: t's antecedent resolves with
		// the implications of the probe into the binary (¬l ∨ t), with the
		// probe literal as dominator.
		if s.conf.OTFHyperbin && !s.otfDisabled {
			if r := s.reasons[t.Var()]; r.kind == reasonTernary || r.kind == reasonLong {
				if !s.hasBinary(l.Negation(), t) {
					hyperBins = append(hyperBins, [2]Lit{l.Negation(), t})
				}
			}
		}
	}
	cached := make([]Lit, 0, len(implied))
	for t := range implied {
		cached = append(cached, t)
	}
	sort.Slice(cached, func(i, j int) bool { return cached[i] < cached[j] })
	s.cleanupBindings(1)
	for _, hb := range hyperBins {
		s.attachBinary(hb[0], hb[1], true)
		s.proof.AddClause([]Lit{hb[0], hb[1]})
		s.Stats.NbHyperBins++
		*nbHyperBins++
		bud.step(1)
	}
	if *nbProps > 1000 && float64(*nbHyperBins) > float64(*nbProps)*s.conf.OTFHyperRatioLimit {
		s.otfDisabled = true
	}
	s.updateCache(l, cached)
	return false, Indet
}

// probeOrder returns the variable probing order.
func (s *Solver) probeOrder(intree bool) []Var {
	vars := make([]Var, 0, s.nbVars)
	for v := 0; v < s.nbVars; v++ {
		if !s.assigned(Var(v)) && s.removed[v] == NotRemoved {
			vars = append(vars, Var(v))
		}
	}
	if intree {
		nbBins := make([]int, s.nbVars)
		for i := range s.wl.wlist {
			for _, w := range s.wl.wlist[i] {
				if w.kind == watchBinary {
					nbBins[Lit(i).Var()]++
				}
			}
		}
		sort.SliceStable(vars, func(i, j int) bool { return nbBins[vars[i]] > nbBins[vars[j]] })
	} else {
		s.rng.Shuffle(len(vars), func(i, j int) { vars[i], vars[j] = vars[j], vars[i] })
	}
	return vars
}
