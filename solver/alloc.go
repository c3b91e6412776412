package solver

// An arena for long clauses. Since lots of clauses are created then destroyed
// during search and simplification, clauses are addressed by opaque offsets
// rather than pointers: offsets are stable until compact is called, at which
// point the solver rewrites every offset stored in watches, reasons and the
// long clause lists using the mapping compact returns. Occurrence indexes are
// rebuilt for each simplification pass and never live across a compaction.

// A ClOffset is an opaque handle on a long clause in the arena.
type ClOffset uint32

// ClOffsetUndef is the distinguished invalid offset.
const ClOffsetUndef = ClOffset(^uint32(0))

type clauseAlloc struct {
	clauses []*Clause
	wasted  int // Nb of freed slots, waiting for compaction.
}

// alloc creates a clause holding the given lits and returns its offset.
// lits is copied, so the caller may reuse its slice.
func (ca *clauseAlloc) alloc(lits []Lit, redundant bool) ClOffset {
	if len(lits) < 4 {
		panic("arena clause with fewer than 4 literals")
	}
	lits2 := make([]Lit, len(lits))
	copy(lits2, lits)
	c := &Clause{lits: lits2}
	if redundant {
		c.flagsGlue = redundantMask
	}
	c.calcAbstraction()
	off := ClOffset(len(ca.clauses))
	ca.clauses = append(ca.clauses, c)
	return off
}

// get returns the clause at the given offset.
func (ca *clauseAlloc) get(off ClOffset) *Clause {
	c := ca.clauses[off]
	if c.freed() {
		panic("access to a freed clause")
	}
	return c
}

// free marks the slot dead. The slot is reclaimed by the next compact call.
func (ca *clauseAlloc) free(off ClOffset) {
	c := ca.clauses[off]
	if c.freed() {
		panic("double free of a clause")
	}
	c.setFreed()
	ca.wasted++
}

// needsCompact is true when enough slots are dead for a compaction to pay off.
func (ca *clauseAlloc) needsCompact() bool {
	return ca.wasted > 1000 && ca.wasted*3 > len(ca.clauses)
}

// compact drops freed slots and returns the offset remapping for live ones.
// The caller must rewrite every stored ClOffset through the mapping.
func (ca *clauseAlloc) compact() map[ClOffset]ClOffset {
	remap := make(map[ClOffset]ClOffset, len(ca.clauses)-ca.wasted)
	clauses := make([]*Clause, 0, len(ca.clauses)-ca.wasted)
	for off, c := range ca.clauses {
		if c.freed() {
			continue
		}
		remap[ClOffset(off)] = ClOffset(len(clauses))
		clauses = append(clauses, c)
	}
	ca.clauses = clauses
	ca.wasted = 0
	return remap
}

// forEach calls fn on every live clause with its offset.
func (ca *clauseAlloc) forEach(fn func(off ClOffset, c *Clause)) {
	for off, c := range ca.clauses {
		if !c.freed() {
			fn(ClOffset(off), c)
		}
	}
}
