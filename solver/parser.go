package solver

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// A Problem is a list of clauses & a nb of vars.
type Problem struct {
	NbVars  int     // Total nb of vars
	Clauses [][]Lit // List of clauses, including units
}

// CNF returns a DIMACS CNF representation of the problem.
func (pb *Problem) CNF() string {
	var sb strings.Builder
	sb.WriteString("p cnf " + strconv.Itoa(pb.NbVars) + " " + strconv.Itoa(len(pb.Clauses)) + "\n")
	for _, clause := range pb.Clauses {
		for _, l := range clause {
			sb.WriteString(strconv.Itoa(int(l.Int())) + " ")
		}
		sb.WriteString("0\n")
	}
	return sb.String()
}

// Verify returns true iff the model satisfies every clause of the problem.
func (pb *Problem) Verify(model []bool) bool {
	for _, clause := range pb.Clauses {
		sat := false
		for _, l := range clause {
			if model[l.Var()] == l.IsPositive() {
				sat = true
				break
			}
		}
		if !sat {
			return false
		}
	}
	return true
}

// ParseSlice parses a slice of slices of ints and returns the equivalent
// problem. The argument is supposed to be a well-formed CNF.
func ParseSlice(cnf [][]int) *Problem {
	var pb Problem
	for _, line := range cnf {
		lits := make([]Lit, len(line))
		for j, val := range line {
			if val == 0 {
				panic("null literal in clause")
			}
			lits[j] = IntToLit(int32(val))
			if v := int(lits[j].Var()); v >= pb.NbVars {
				pb.NbVars = v + 1
			}
		}
		pb.Clauses = append(pb.Clauses, lits)
	}
	return &pb
}

// ParseCNF reads a DIMACS CNF formula. Comment lines start with 'c' (or '%',
// which some benchmark sets use as a logical end-of-file marker); the
// "p cnf <vars> <clauses>" header must precede the clauses; a clause is a run
// of integer tokens terminated by 0 and may span several lines.
func ParseCNF(f io.Reader) (*Problem, error) {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	var (
		pb         Problem
		cur        []Lit
		seenHeader bool
		lineNo     int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "c") {
			continue
		}
		if strings.HasPrefix(line, "%") {
			break
		}
		if strings.HasPrefix(line, "p") {
			if seenHeader {
				return nil, errors.Errorf("line %d: duplicate header %q", lineNo, line)
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, errors.Errorf("line %d: expected \"p cnf <vars> <clauses>\", got %q", lineNo, line)
			}
			nbVars, err := strconv.Atoi(fields[2])
			if err != nil || nbVars < 0 {
				return nil, errors.Errorf("line %d: invalid variable count %q", lineNo, fields[2])
			}
			nbClauses, err := strconv.Atoi(fields[3])
			if err != nil || nbClauses < 0 {
				return nil, errors.Errorf("line %d: invalid clause count %q", lineNo, fields[3])
			}
			pb.NbVars = nbVars
			pb.Clauses = make([][]Lit, 0, nbClauses)
			seenHeader = true
			continue
		}
		if !seenHeader {
			return nil, errors.Errorf("line %d: clause before the \"p cnf\" header", lineNo)
		}
		for _, tok := range strings.Fields(line) {
			val, err := strconv.Atoi(tok)
			if err != nil {
				return nil, errors.Errorf("line %d: non-integer token %q", lineNo, tok)
			}
			if val == 0 { // End of the current clause
				pb.Clauses = append(pb.Clauses, cur)
				cur = nil
				continue
			}
			if val > pb.NbVars || -val > pb.NbVars {
				return nil, errors.Errorf("line %d: literal %d out of range for %d vars", lineNo, val, pb.NbVars)
			}
			cur = append(cur, IntToLit(int32(val)))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read formula")
	}
	if !seenHeader {
		return nil, errors.New("missing \"p cnf\" header")
	}
	if len(cur) != 0 {
		return nil, errors.New("unfinished clause at end of input")
	}
	return &pb, nil
}
