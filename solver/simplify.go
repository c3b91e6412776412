package solver

import "sort"

// The inprocessing scheduler. A schedule is an ordered, comma-separated list
// of step tokens; each step runs under its own work budget and may end with a
// timeout, which the scheduler swallows, or with Unsat, which aborts the
// schedule.

// A budget is a signed work counter. Passes decrement it as they go and bail
// out cleanly once it turns negative.
type budget struct {
	left int64
}

// newBudget returns a budget of roughly n million work units, scaled by the
// global timeout multiplier.
func (s *Solver) newBudget(limitM int64) *budget {
	return &budget{left: int64(float64(limitM*1000*1000) * s.conf.GlobalTimeoutMultiplier)}
}

func (b *budget) step(n int64) {
	b.left -= n
}

func (b *budget) out() bool {
	return b.left < 0
}

// scheduleSteps maps every recognized step token to its implementation.
// "str-cls" and "distill-cls" both map to clause strengthening: peregrine
// implements distillation as occurrence-based self-subsuming resolution.
var scheduleSteps map[string]func(s *Solver) Status

func init() {
	scheduleSteps = map[string]func(s *Solver) Status{
		"handle-comps": func(s *Solver) Status { return s.handleComponents() },
		"scc-vrepl":    func(s *Solver) Status { return s.replaceEqLits() },
		"sub-impl":     func(s *Solver) Status { return s.subsumeImplicit() },
		"probe":        func(s *Solver) Status { return s.probe(false) },
		"intree-probe": func(s *Solver) Status { return s.probe(true) },
		"backw-subsume": func(s *Solver) Status {
			return s.occSimplify(occSubsume)
		},
		"str-cls": func(s *Solver) Status {
			return s.occSimplify(occStrengthen)
		},
		"distill-cls": func(s *Solver) Status {
			return s.occSimplify(occStrengthen)
		},
		"bve": func(s *Solver) Status {
			return s.occSimplify(occBVE)
		},
		"bva":      func(s *Solver) Status { return s.runBVA() },
		"renumber": func(s *Solver) Status { return s.renumber() },
	}
}

// runSchedule runs the steps of the given schedule in order.
// It returns Unsat if a step proved the problem inconsistent, Indet otherwise.
// The trail must be at the top level when called.
func (s *Solver) runSchedule(schedule string) Status {
	steps, err := parseSchedule(schedule)
	if err != nil {
		// Schedules are validated with the configuration; reaching this point
		// is a programmer error.
		panic(err.Error())
	}
	s.clearTopLevelReasons()
	for _, tok := range steps {
		if !s.ok {
			return Unsat
		}
		if s.interrupted.Load() {
			return Indet
		}
		if s.Verbose {
			s.logger.WithField("step", tok).Debug("running simplification step")
		}
		if st := scheduleSteps[tok](s); st == Unsat {
			return Unsat
		}
	}
	return Indet
}

// subsumeImplicit deduplicates the implicit clause database: duplicate
// binaries are dropped (the irredundant copy wins), and ternary clauses
// subsumed by a binary are removed.
func (s *Solver) subsumeImplicit() Status {
	if !s.ok {
		return Unsat
	}
	type binCount struct{ irred, red int }
	bins := make(map[[2]Lit]binCount, s.wl.nbBin)
	s.forEachBinary(func(l1, l2 Lit, red bool) {
		c := bins[[2]Lit{l1, l2}]
		if red {
			c.red++
		} else {
			c.irred++
		}
		bins[[2]Lit{l1, l2}] = c
	})
	keys := make([][2]Lit, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i][0] < keys[j][0] || keys[i][0] == keys[j][0] && keys[i][1] < keys[j][1]
	})
	for _, k := range keys {
		c := bins[k]
		delRed, delIrred := c.red, c.irred
		if c.irred > 0 {
			delIrred-- // Keep one irredundant copy.
		} else {
			delRed--
		}
		for i := 0; i < delRed; i++ {
			s.detachBinary(k[0], k[1], true)
			s.Stats.NbSubsumed++
			s.proof.DeleteClause([]Lit{k[0], k[1]})
		}
		for i := 0; i < delIrred; i++ {
			s.detachBinary(k[0], k[1], false)
			s.Stats.NbSubsumed++
			s.proof.DeleteClause([]Lit{k[0], k[1]})
		}
	}
	subsumedBy := func(l1, l2, l3 Lit, red bool) bool {
		for _, pair := range [3][2]Lit{{l1, l2}, {l1, l3}, {l2, l3}} {
			if pair[1] < pair[0] {
				pair[0], pair[1] = pair[1], pair[0]
			}
			if c, ok := bins[pair]; ok {
				if c.irred > 0 || red {
					return true
				}
			}
		}
		return false
	}
	var subTerns [][3]Lit
	var subRed []bool
	s.forEachTernary(func(l1, l2, l3 Lit, red bool) {
		if subsumedBy(l1, l2, l3, red) {
			subTerns = append(subTerns, [3]Lit{l1, l2, l3})
			subRed = append(subRed, red)
		}
	})
	for i, t := range subTerns {
		s.detachTernary(t[0], t[1], t[2], subRed[i])
		s.Stats.NbSubsumed++
		s.proof.DeleteClause([]Lit{t[0], t[1], t[2]})
	}
	return Indet
}

// renumber compacts the clause arena and trims every watch list, releasing
// the memory freed by earlier passes.
func (s *Solver) renumber() Status {
	if !s.ok {
		return Unsat
	}
	s.compactArena()
	for i := range s.wl.wlist {
		if ws := s.wl.wlist[i]; cap(ws) > 4*len(ws) {
			ws2 := make([]watch, len(ws))
			copy(ws2, ws)
			s.wl.wlist[i] = ws2
		}
	}
	return Indet
}
