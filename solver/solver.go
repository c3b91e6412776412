package solver

import (
	"math/rand"
	"sort"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultVarDecay = 0.8 // On each var decay, how much the varInc should be decayed at startup

// Stats are statistics about the resolution of the problem.
// They are provided for information purpose only.
type Stats struct {
	NbRestarts      int64
	NbConflicts     int64
	NbDecisions     int64
	NbPropagations  int64
	NbUnitLearned   int64 // How many unit clauses were learnt
	NbBinaryLearned int64 // How many binary clauses were learnt
	NbLearned       int64 // How many clauses were learnt
	NbDeleted       int64 // How many clauses were deleted
	NbFailedLits    int64
	NbBothProp      int64
	NbHyperBins     int64
	NbSubsumed      int64
	NbStrengthened  int64
	NbElimed        int64 // How many variables were eliminated by BVE
	NbBVAVars       int64 // How many variables were introduced by BVA
	NbReplaced      int64 // How many variables were merged by equivalence replacement
	NbComponents    int64 // How many components were handed off to sub-solvers
}

// A Solver solves a given problem. It is the main data structure.
type Solver struct {
	Verbose bool // Indicates whether the solver should log information during solving. False by default.
	conf    Config
	logger  *logrus.Logger
	rng     *rand.Rand
	nbVars  int
	status  Status
	ok      bool // Becomes false once the clause DB is known inconsistent; every later mutation is a no-op.

	ca        clauseAlloc
	wl        watcherList
	longIrred []ClOffset // Long irredundant clauses
	longRed   []ClOffset // Long redundant clauses

	trail    []Lit // Current assignment stack
	qhead    int   // Next trail position to propagate
	model    Model // 0 means unbound, other value is a binding at the given level
	lastModel Model // Placeholder for last model found
	activity []float64
	polarity []bool
	removed  []RemovedKind
	reasons  []reason
	order    varOrder
	varInc   float64
	clauseInc float32
	varDecay float64

	restart restartStats
	Stats   Stats
	proof   Proof

	// Scratch buffers, to reduce allocations during analysis.
	seen         []bool
	levelSeen    []bool
	toClear      []Var
	learntBuf    []Lit
	reasonBuf    []Lit
	analyzeStack []Lit

	replTable   []Lit          // For each var, the representative lit its positive lit maps to (identity by default)
	elimStack   []elimedClause // Clauses deleted by BVE, for model reconstruction
	compState   Model          // Bindings found by component sub-solvers
	implCache   [][]cacheLit   // For each lit, lits known to be implied by it
	otfDisabled bool           // Set once OTF hyper-binary blew its ratio limit

	interrupted atomic.Bool
	startTime   time.Time
	polInit     bool
}

// NewSolver returns an empty solver with the given configuration.
// Variables and clauses are added with NewVar and AddClause.
func NewSolver(conf Config) *Solver {
	s := &Solver{
		conf:      conf,
		logger:    logrus.StandardLogger(),
		rng:       rand.New(rand.NewSource(conf.Seed)),
		status:    Indet,
		ok:        true,
		varInc:    1.0,
		clauseInc: 1.0,
		varDecay:  defaultVarDecay,
		proof:     nopProof{},
		levelSeen: make([]bool, 3),
	}
	s.Verbose = conf.Verbose
	s.wl.nbMax = conf.MaxTemporaryLearntClauses
	if s.wl.nbMax <= 0 {
		s.wl.nbMax = initNbMaxClauses
	}
	s.wl.idxReduce = 1
	s.restart.geomLimit = int64(conf.RestartFirst)
	s.order = newVarOrder()
	return s
}

// New makes a solver from a parsed problem.
func New(pb *Problem) *Solver {
	s := NewSolver(DefaultConfig())
	s.loadProblem(pb)
	return s
}

// NewWithConfig makes a solver from a parsed problem and a configuration.
func NewWithConfig(pb *Problem, conf Config) *Solver {
	s := NewSolver(conf)
	s.loadProblem(pb)
	return s
}

func (s *Solver) loadProblem(pb *Problem) {
	for i := 0; i < pb.NbVars; i++ {
		s.NewVar()
	}
	for _, lits := range pb.Clauses {
		if s.AddClause(lits) == Unsat {
			return
		}
	}
}

// SetProof installs the proof sink. Must be called before any clause is added.
func (s *Solver) SetProof(p Proof) {
	s.proof = p
}

// SetLogger installs the logger used in verbose mode.
func (s *Solver) SetLogger(l *logrus.Logger) {
	s.logger = l
}

// Interrupt asks the solver to stop as soon as possible. Safe to call from
// another goroutine; the solver will return Indet.
func (s *Solver) Interrupt() {
	s.interrupted.Store(true)
}

// NbVars returns the current number of variables.
func (s *Solver) NbVars() int {
	return s.nbVars
}

// NewVar introduces a new variable and returns it.
func (s *Solver) NewVar() Var {
	v := s.newVar()
	s.seen = append(s.seen, false)
	s.levelSeen = append(s.levelSeen, false)
	s.compState = append(s.compState, 0)
	return v
}

// AddClause adds a clause to the problem, simplifying it against the
// top-level assignment first. It returns Unsat if the clause is empty once
// simplified and the problem is now known inconsistent, Indet otherwise.
func (s *Solver) AddClause(lits []Lit) Status {
	if !s.ok {
		return Unsat
	}
	lits2 := make([]Lit, len(lits))
	copy(lits2, lits)
	sort.Slice(lits2, func(i, j int) bool { return lits2[i] < lits2[j] })
	j := 0
	for _, l := range lits2 {
		if l.Var() < 0 || int(l.Var()) >= s.nbVars {
			panic("clause literal over an undeclared variable")
		}
		if j > 0 && l == lits2[j-1] { // Duplicate lit
			continue
		}
		if j > 0 && l == lits2[j-1].Negation() { // Tautology
			return Indet
		}
		switch s.litStatus(l) {
		case Sat:
			if s.varLevel(l.Var()) == 1 {
				return Indet // Clause already satisfied at top level
			}
		case Unsat:
			if s.varLevel(l.Var()) == 1 {
				continue // False at top level: drop the lit
			}
		}
		lits2[j] = l
		j++
	}
	lits2 = lits2[:j]
	switch len(lits2) {
	case 0:
		return s.setUnsat()
	case 1:
		if confl := s.unifyLiteral(lits2[0], 1); confl != nil {
			return s.setUnsat()
		}
		return Indet
	default:
		s.addClauseInternal(lits2, false)
		return Indet
	}
}

// AddIntClause adds a clause given as DIMACS integers.
func (s *Solver) AddIntClause(lits []int) Status {
	lits2 := make([]Lit, len(lits))
	for i, l := range lits {
		lits2[i] = IntToLit(int32(l))
	}
	return s.AddClause(lits2)
}

// addClauseInternal attaches an already-simplified clause of length >= 2 and
// returns the offset for long clauses, ClOffsetUndef otherwise.
func (s *Solver) addClauseInternal(lits []Lit, redundant bool) ClOffset {
	switch len(lits) {
	case 2:
		s.attachBinary(lits[0], lits[1], redundant)
		return ClOffsetUndef
	case 3:
		s.attachTernary(lits[0], lits[1], lits[2], redundant)
		return ClOffsetUndef
	default:
		off := s.ca.alloc(lits, redundant)
		s.attachClause(off)
		if redundant {
			s.longRed = append(s.longRed, off)
		} else {
			s.longIrred = append(s.longIrred, off)
		}
		return off
	}
}

// Sets the status to unsat, poisons further mutations and informs the proof sink.
func (s *Solver) setUnsat() Status {
	if s.ok {
		s.ok = false
		s.proof.AddClause(nil)
	}
	s.status = Unsat
	return Unsat
}

func (s *Solver) varDecayActivity() {
	s.varInc *= 1 / s.varDecay
}

func (s *Solver) varBumpActivity(v Var) {
	s.activity[v] += s.varInc
	if s.activity[v] > 1e100 { // Rescaling is needed to avoid overflowing
		for i := range s.activity {
			s.activity[i] *= 1e-100
		}
		s.varInc *= 1e-100
		s.order.Rescale(1e-100)
	}
	if s.order.Contains(int(v)) {
		s.order.Put(int(v), -s.activity[v])
	}
}

// Chooses an unbound variable to be tested, or LitUndef
// if all the variables are already bound.
func (s *Solver) chooseLit() Lit {
	for {
		v, ok := s.order.Pop()
		if !ok {
			return LitUndef
		}
		if s.model[v] == 0 && s.removed[v] == NotRemoved {
			s.Stats.NbDecisions++
			return Var(v).SignedLit(!s.polarity[v])
		}
	}
}

func (s *Solver) rebuildOrderHeap() {
	s.order.Clear()
	for v := 0; v < s.nbVars; v++ {
		if s.model[v] == 0 && s.removed[v] == NotRemoved {
			s.order.Put(v, -s.activity[v])
		}
	}
}

// initPolarities applies the configured polarity mode once, before the first
// search. Afterwards the saved phase takes over.
func (s *Solver) initPolarities() {
	if s.polInit {
		return
	}
	s.polInit = true
	switch s.conf.PolarityMode {
	case PolarityPos:
		for v := range s.polarity {
			s.polarity[v] = true
		}
	case PolarityNeg, PolaritySaved:
		// All false already: negative first.
	case PolarityRnd:
		for v := range s.polarity {
			s.polarity[v] = s.rng.Intn(2) == 0
		}
	case PolarityAuto:
		// Prefer the sign the variable occurs with most often.
		balance := make([]int, s.nbVars)
		s.forEachBinary(func(l1, l2 Lit, _ bool) {
			for _, l := range []Lit{l1, l2} {
				if l.IsPositive() {
					balance[l.Var()]++
				} else {
					balance[l.Var()]--
				}
			}
		})
		s.forEachTernary(func(l1, l2, l3 Lit, _ bool) {
			for _, l := range []Lit{l1, l2, l3} {
				if l.IsPositive() {
					balance[l.Var()]++
				} else {
					balance[l.Var()]--
				}
			}
		})
		for _, off := range s.longIrred {
			c := s.ca.get(off)
			for i := 0; i < c.Len(); i++ {
				if l := c.Get(i); l.IsPositive() {
					balance[l.Var()]++
				} else {
					balance[l.Var()]--
				}
			}
		}
		for v := range s.polarity {
			s.polarity[v] = balance[v] > 0
		}
	}
}

// outOfBudget is true once a global limit tripped.
func (s *Solver) outOfBudget() bool {
	if s.interrupted.Load() {
		return true
	}
	if s.Stats.NbConflicts >= s.conf.MaxConfl {
		return true
	}
	if s.conf.MaxTime > 0 && time.Since(s.startTime) > s.conf.MaxTime {
		return true
	}
	return false
}

// search runs CDCL until a verdict, a restart, the given conflict target or a
// global limit. It returns Sat, Unsat, or Indet (restart or budget).
func (s *Solver) search(conflTarget int64) Status {
	lvl := decLevel(1)
	for {
		confl := s.propagate(lvl)
		if confl == nil {
			if lvl > 1 && s.mustRestart() {
				s.Stats.NbRestarts++
				s.onRestart()
				s.cleanupBindings(1)
				return Indet
			}
			if s.Stats.NbConflicts >= conflTarget || s.outOfBudget() {
				s.cleanupBindings(1)
				return Indet
			}
			if s.Stats.NbConflicts >= int64(s.wl.idxReduce)*int64(s.wl.nbMax) {
				s.wl.idxReduce = int(s.Stats.NbConflicts)/s.wl.nbMax + 1
				s.reduceLearnt()
				s.bumpNbMax()
			}
			lit := s.chooseLit()
			if lit == LitUndef {
				s.status = Sat
				return Sat
			}
			lvl++
			s.enqueue(lit, lvl, noReason)
			continue
		}
		// Deal with the conflict.
		s.Stats.NbConflicts++
		if s.Stats.NbConflicts%5000 == 0 && s.varDecay < s.conf.VarDecayMax {
			s.varDecay += 0.01
		}
		s.restart.addConflict(len(s.trail))
		if lvl == 1 {
			return s.setUnsat()
		}
		learnt, glue := s.learnClause(confl, lvl)
		if len(learnt) == 1 { // Unit clause was learnt: this lit is known for sure
			unit := learnt[0]
			s.Stats.NbUnitLearned++
			s.restart.addLbd(1)
			s.cleanupBindings(1)
			s.proof.AddClause(learnt)
			if s.litStatus(unit) == Unsat {
				return s.setUnsat()
			}
			if s.litStatus(unit) == Indet {
				if confl := s.unifyLiteral(unit, 1); confl != nil {
					return s.setUnsat()
				}
			}
			s.rebuildOrderHeap()
			lvl = 1
			continue
		}
		if len(learnt) == 2 {
			s.Stats.NbBinaryLearned++
		}
		s.Stats.NbLearned++
		s.restart.addLbd(glue)
		s.proof.AddClause(learnt)
		btLevel := s.varLevel(learnt[1].Var())
		s.cleanupBindings(btLevel)
		r := s.attachLearnt(learnt, glue)
		s.enqueue(learnt[0], btLevel, r)
		lvl = btLevel
	}
}

// attachLearnt adds the learnt clause to the database and returns the reason
// value to use for its asserting literal.
func (s *Solver) attachLearnt(learnt []Lit, glue int) reason {
	switch len(learnt) {
	case 2:
		s.attachBinary(learnt[0], learnt[1], true)
		return reason{kind: reasonBinary, l1: learnt[1], off: ClOffsetUndef}
	case 3:
		s.attachTernary(learnt[0], learnt[1], learnt[2], true)
		return reason{kind: reasonTernary, l1: learnt[1], l2: learnt[2], off: ClOffsetUndef}
	default:
		off := s.addClauseInternal(learnt, true)
		c := s.ca.get(off)
		c.setGlue(glue)
		s.clauseBumpActivity(c)
		return reason{kind: reasonLong, off: off}
	}
}

// Solve solves the problem associated with the solver and returns the
// appropriate status: Sat, Unsat, or Indet when a budget or an interrupt
// stopped the search.
func (s *Solver) Solve() Status {
	defer func() { _ = s.proof.Flush() }()
	if !s.ok {
		return Unsat
	}
	s.status = Indet
	s.startTime = time.Now()
	s.initPolarities()
	if confl := s.propagate(1); confl != nil {
		return s.setUnsat()
	}
	if s.conf.SimplifyAtStartup && s.conf.DoSimplifyProblem {
		if s.runSchedule(s.conf.SimplifyScheduleStartup) == Unsat {
			return Unsat
		}
	}
	window := s.conf.NumConflictsOfSearch
	for s.status == Indet {
		target := s.Stats.NbConflicts + window
		for s.status == Indet && s.Stats.NbConflicts < target && !s.outOfBudget() {
			s.search(target)
		}
		if s.status != Indet {
			break
		}
		if s.outOfBudget() {
			s.cleanupBindings(1)
			if s.Verbose {
				s.logger.WithField("conflicts", s.Stats.NbConflicts).Info("budget exhausted")
			}
			return Indet
		}
		s.cleanupBindings(1)
		if s.conf.DoSimplifyProblem {
			if s.runSchedule(s.conf.SimplifyScheduleNonstartup) == Unsat {
				return Unsat
			}
		}
		window = int64(float64(window) * s.conf.NumConflictsOfSearchInc)
		if s.Verbose {
			s.logger.WithFields(logrus.Fields{
				"restarts":  s.Stats.NbRestarts,
				"conflicts": s.Stats.NbConflicts,
				"learnt":    s.Stats.NbLearned,
				"deleted":   s.Stats.NbDeleted,
			}).Info("new search window")
		}
	}
	if s.status == Sat {
		s.lastModel = make(Model, len(s.model))
		copy(s.lastModel, s.model)
		s.extendModel()
	}
	return s.status
}

// Model returns a slice that associates, to each variable, its binding.
// If s's status is not Sat, the method will panic.
func (s *Solver) Model() []bool {
	if s.lastModel == nil {
		panic("cannot call Model() from a non-Sat solver")
	}
	res := make([]bool, s.nbVars)
	for i, lvl := range s.lastModel {
		res[i] = lvl > 0
	}
	return res
}

// litTrueInModel is true iff l is satisfied by m.
func litTrueInModel(m Model, l Lit) bool {
	v := m[l.Var()]
	return v != 0 && (v > 0) == l.IsPositive()
}

// extendModel gives a value to every variable removed by inprocessing:
// component sub-solver states, equivalence class representatives and the
// BVE reconstruction stack.
func (s *Solver) extendModel() {
	m := s.lastModel
	for v := 0; v < s.nbVars; v++ {
		if s.compState[v] != 0 && m[v] == 0 {
			m[v] = s.compState[v]
		}
	}
	s.applyReplacements(m)
	for v := 0; v < s.nbVars; v++ {
		// Any leftover free variable defaults to false so the reconstruction
		// below evaluates clauses over a total assignment.
		if m[v] == 0 {
			m[v] = -1
		}
	}
	for i := len(s.elimStack) - 1; i >= 0; i-- {
		e := s.elimStack[i]
		sat := false
		for _, l := range e.lits {
			if l != e.lit && litTrueInModel(m, l) {
				sat = true
				break
			}
		}
		if !sat {
			m[e.lit.Var()] = lvlToSignedLvl(e.lit, 1)
		}
	}
	s.applyReplacements(m)
}

// applyReplacements binds every replaced variable from its representative.
func (s *Solver) applyReplacements(m Model) {
	for v := 0; v < s.nbVars; v++ {
		if s.removed[v] != RemovedReplaced {
			continue
		}
		rep := s.litRepl(Var(v).Lit())
		val := m[rep.Var()]
		if val == 0 {
			continue
		}
		if (val > 0) == rep.IsPositive() {
			m[v] = 1
		} else {
			m[v] = -1
		}
	}
}
