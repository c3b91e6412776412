package solver

import "fmt"

// A Clause is a list of at least 4 lits living in the clause arena, associated
// with possible data (for redundant clauses). Binary and ternary clauses are
// never materialized as Clause values: they live inline in watch entries.
type Clause struct {
	lits []Lit
	// flagsGlue's bits are as follow:
	// leftmost bit: redundant flag.
	// second bit: locked flag (the clause is the reason of a trail literal).
	// third bit: freed flag (the arena slot is dead, waiting for compaction).
	// last 29 bits: glue (LBD) value.
	flagsGlue uint32
	activity  float32
	abst      uint64 // Abstraction of the lits, for fast subsumption rejects.
}

const (
	redundantMask uint32 = 1 << 31
	lockedMask    uint32 = 1 << 30
	freedMask     uint32 = 1 << 29
	allMasks      uint32 = redundantMask | lockedMask | freedMask
)

// Redundant returns true iff c is a redundant (learnt) clause.
func (c *Clause) Redundant() bool {
	return c.flagsGlue&redundantMask != 0
}

func (c *Clause) lock() {
	c.flagsGlue |= lockedMask
}

func (c *Clause) unlock() {
	c.flagsGlue &= ^lockedMask
}

func (c *Clause) isLocked() bool {
	return c.flagsGlue&lockedMask != 0
}

func (c *Clause) setFreed() {
	c.flagsGlue |= freedMask
}

func (c *Clause) freed() bool {
	return c.flagsGlue&freedMask != 0
}

func (c *Clause) glue() int {
	return int(c.flagsGlue & ^allMasks)
}

// setGlue sets c's glue. Callers only ever decrease a redundant clause's glue
// once it is set.
func (c *Clause) setGlue(glue int) {
	c.flagsGlue = (c.flagsGlue & allMasks) | uint32(glue)
}

// Len returns the nb of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// First returns the first lit from the clause.
func (c *Clause) First() Lit {
	return c.lits[0]
}

// Second returns the second lit from the clause.
func (c *Clause) Second() Lit {
	return c.lits[1]
}

// Get returns the ith literal from the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Set sets the ith literal of the clause.
func (c *Clause) Set(i int, l Lit) {
	c.lits[i] = l
}

// swap swaps the ith and jth lits from the clause.
func (c *Clause) swap(i, j int) {
	c.lits[i], c.lits[j] = c.lits[j], c.lits[i]
}

// Shrink reduces the length of the clause, by removing all lits
// starting from position newLen. The abstraction is recomputed.
func (c *Clause) Shrink(newLen int) {
	c.lits = c.lits[:newLen]
	c.calcAbstraction()
}

// CNF returns a DIMACS CNF representation of the clause.
func (c *Clause) CNF() string {
	res := ""
	for _, lit := range c.lits {
		res += fmt.Sprintf("%d ", lit.Int())
	}
	return fmt.Sprintf("%s0", res)
}

// abstractLit is the contribution of a single literal to a clause abstraction:
// one bit out of 64, keyed by the literal's variable.
func abstractLit(l Lit) uint64 {
	return 1 << (uint64(l.Var()) & 63)
}

func (c *Clause) calcAbstraction() {
	var abst uint64
	for _, lit := range c.lits {
		abst |= abstractLit(lit)
	}
	c.abst = abst
}

// subsetOf returns true iff c's lits are a subset of lits2.
// Both clauses must be sorted.
func subsetOf(lits, lits2 []Lit) bool {
	if len(lits) > len(lits2) {
		return false
	}
	j := 0
	for _, lit := range lits {
		for j < len(lits2) && lits2[j] < lit {
			j++
		}
		if j == len(lits2) || lits2[j] != lit {
			return false
		}
		j++
	}
	return true
}
