// Package solver provides a CDCL SAT solver with inprocessing.
//
// The solver decides the satisfiability of a formula given in conjunctive
// normal form and produces a model on success. Search (two-watched-literal
// propagation, first-UIP clause learning, activity-driven decisions, glue or
// luby restarts) is interleaved with simplification passes: equivalent
// literal replacement, failed literal probing with hyper-binary resolution,
// subsumption and strengthening, bounded variable elimination, bounded
// variable addition and disconnected component decomposition.
//
// Typical use:
//
//	pb, err := solver.ParseCNF(f)
//	if err != nil {
//	    // deal with the error
//	}
//	s := solver.New(pb)
//	status := s.Solve()
//	if status == solver.Sat {
//	    model := s.Model()
//	    // use the model
//	}
//
// Every clause database change can be recorded through a proof sink (see
// Proof and NewDRUPWriter) for external verification of UNSAT answers.
package solver
