package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/peregrinesat/peregrine/solver"
)

const (
	exitSat   = 10
	exitUnsat = 20
	exitIndet = 0
)

var (
	verbose      bool
	proofPath    string
	seed         int64
	maxConflicts int64
	timeout      time.Duration
)

func main() {
	debug.SetGCPercent(300)
	cmd := &cobra.Command{
		Use:          "peregrine [flags] file.cnf",
		Short:        "peregrine is a CDCL SAT solver with inprocessing",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(args[0])
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log progress during solving")
	cmd.Flags().StringVar(&proofPath, "proof", "", "write a DRUP proof to the given file")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().Int64Var(&maxConflicts, "max-conflicts", 0, "stop after that many conflicts (0: no limit)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop after that much time (0: no limit)")
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(path string) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	pb, err := solver.ParseCNF(f)
	if err != nil {
		return fmt.Errorf("could not parse %q: %w", path, err)
	}
	conf := solver.DefaultConfig()
	conf.Verbose = verbose
	conf.Seed = seed
	if maxConflicts > 0 {
		conf.MaxConfl = maxConflicts
	}
	conf.MaxTime = timeout
	s := solver.NewSolver(conf)
	s.SetLogger(logger)
	var proofFile *os.File
	if proofPath != "" {
		proofFile, err = os.Create(proofPath)
		if err != nil {
			return fmt.Errorf("could not create proof file: %w", err)
		}
		defer func() { _ = proofFile.Close() }()
		s.SetProof(solver.NewDRUPWriter(proofFile))
	}
	for i := 0; i < pb.NbVars; i++ {
		s.NewVar()
	}
	for _, lits := range pb.Clauses {
		if s.AddClause(lits) == solver.Unsat {
			break
		}
	}
	status := s.Solve()
	switch status {
	case solver.Sat:
		fmt.Println("s SATISFIABLE")
		fmt.Print("v ")
		for i, val := range s.Model() {
			if val {
				fmt.Printf("%d ", i+1)
			} else {
				fmt.Printf("%d ", -i-1)
			}
		}
		fmt.Println("0")
		os.Exit(exitSat)
	case solver.Unsat:
		fmt.Println("s UNSATISFIABLE")
		os.Exit(exitUnsat)
	default:
		fmt.Println("s INDETERMINATE")
		os.Exit(exitIndet)
	}
	return nil
}
