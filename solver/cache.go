package solver

// The implication cache: for each literal, the literals past probing runs
// proved it implies. Used to derive units when a literal is found to imply a
// contradiction.

type cacheLit struct {
	lit Lit
	red bool
}

// updateCache records that l implies each of implied. The per-literal list is
// bounded by the configured cutoff; beyond it, new entries are dropped.
func (s *Solver) updateCache(l Lit, implied []Lit) {
	if !s.conf.DoCache {
		return
	}
	entries := s.implCache[l]
	if len(entries) >= s.conf.CacheUpdateCutoff {
		return
	}
	known := make(map[Lit]bool, len(entries))
	for _, e := range entries {
		known[e.lit] = true
	}
	for _, imp := range implied {
		if len(entries) >= s.conf.CacheUpdateCutoff {
			break
		}
		if !known[imp] {
			known[imp] = true
			entries = append(entries, cacheLit{lit: imp, red: true})
		}
	}
	s.implCache[l] = entries
}

// cacheContradiction returns true iff the cache knows l implies both a
// literal and its negation, in which case l.Negation() is a unit.
func (s *Solver) cacheContradiction(l Lit) bool {
	entries := s.implCache[l]
	if len(entries) < 2 {
		return false
	}
	seen := make(map[Lit]bool, len(entries))
	for _, e := range entries {
		if seen[e.lit.Negation()] {
			return true
		}
		seen[e.lit] = true
	}
	return false
}

// clearCacheFor drops cached implications involving v, after v was removed or
// its equivalence class changed.
func (s *Solver) clearCacheFor(v Var) {
	s.implCache[v.Lit()] = nil
	s.implCache[v.Lit().Negation()] = nil
	for i := range s.implCache {
		entries := s.implCache[i]
		j := 0
		for _, e := range entries {
			if e.lit.Var() != v {
				entries[j] = e
				j++
			}
		}
		s.implCache[i] = entries[:j]
	}
}
