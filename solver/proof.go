package solver

import (
	"bufio"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// A Proof records every permanent clause database change, so that an external
// checker can verify an UNSAT answer. Implementations must tolerate being
// called with an empty clause (the final UNSAT step).
type Proof interface {
	// AddClause records the addition of a clause.
	AddClause(lits []Lit)
	// DeleteClause records the deletion of a clause.
	DeleteClause(lits []Lit)
	// Flush writes out any buffered content.
	Flush() error
}

// nopProof is the default sink: it drops everything.
type nopProof struct{}

func (nopProof) AddClause(_ []Lit)    {}
func (nopProof) DeleteClause(_ []Lit) {}
func (nopProof) Flush() error         { return nil }

// A DRUPWriter emits a textual DRUP proof on an io.Writer.
type DRUPWriter struct {
	w   *bufio.Writer
	err error
}

// NewDRUPWriter returns a proof sink writing DRUP lines to w.
func NewDRUPWriter(w io.Writer) *DRUPWriter {
	return &DRUPWriter{w: bufio.NewWriter(w)}
}

func (p *DRUPWriter) writeLits(lits []Lit) {
	if p.err != nil {
		return
	}
	buf := make([]byte, 0, 12*(len(lits)+1))
	for _, l := range lits {
		buf = strconv.AppendInt(buf, int64(l.Int()), 10)
		buf = append(buf, ' ')
	}
	buf = append(buf, '0', '\n')
	_, p.err = p.w.Write(buf)
}

// AddClause emits the clause as an addition line.
func (p *DRUPWriter) AddClause(lits []Lit) {
	p.writeLits(lits)
}

// DeleteClause emits the clause as a "d" deletion line.
func (p *DRUPWriter) DeleteClause(lits []Lit) {
	if p.err != nil {
		return
	}
	if _, err := p.w.WriteString("d "); err != nil {
		p.err = err
		return
	}
	p.writeLits(lits)
}

// Flush flushes the underlying writer and reports any write error met so far.
func (p *DRUPWriter) Flush() error {
	if p.err != nil {
		return errors.Wrap(p.err, "could not write proof")
	}
	return errors.Wrap(p.w.Flush(), "could not flush proof")
}
