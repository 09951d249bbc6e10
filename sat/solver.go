// Package sat implements an incremental CDCL SAT solver with two watched
// literals, VSIDS variable ordering, LBD-based clause database reduction and
// Glucose-style dynamic restarts. Clauses are stored in a packed arena
// addressed by 32-bit references; the solver owns all of its state and can be
// used from a single goroutine only.
package sat

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Solver struct {
	opts Options

	// Clause database.
	arena      *arena
	originals  []ClauseRef
	learnts    []ClauseRef
	numClauses int
	claInc     float64

	// Propagation and watchers, indexed by literal.
	watches []watchList

	// Value assigned to each literal.
	assigns []LBool

	// Per-variable data.
	level  []int32
	reason []ClauseRef

	// Trail.
	trail    []Literal
	trailLim []int
	qhead    int

	// Variable ordering.
	order *VarOrder

	// Whether the problem has reached a top level conflict.
	unsat bool

	// Assumptions of the current Solve call, one per decision level.
	assumptions []Literal

	// Outcome of the last Solve call.
	status   Status
	model    []LBool
	conflict []Literal

	// Restart and reduction policy.
	lbdQueue      *BoundedQueue
	trailQueue    *BoundedQueue
	sumLBD        int64
	rc1, rc2      int64
	nextReduce    int64
	simpDBAssigns int

	checkpoints []checkpoint

	// Shared workspaces for Analyze and its helpers.
	seen         []bool
	toClear      []Literal
	analyzeStack []Literal
	tmpLearnt    []Literal
	tmpLits      []Literal
	levelSet     *ResetSet
	varSet       *ResetSet

	randomSeed       int64
	randomizePending bool

	// Search statistics.
	Stats     Stats
	startTime time.Time
}

// Stats counts search events since the solver was created (or since the last
// full Restart).
type Stats struct {
	Conflicts    int64
	Decisions    int64
	Propagations int64
	Restarts     int64
	Reduces      int64
	Iterations   int64
}

type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	PhaseSaving   bool

	// Glucose-style restart policy: restart when the recent LBD average
	// scaled by RestartFactor exceeds the global LBD average; suppress the
	// next restart when the trail grows past BlockRestartFactor times the
	// recent trail average (only after FirstBlockRestart conflicts).
	RestartFactor      float64
	BlockRestartFactor float64
	FirstBlockRestart  int64
	LBDQueueSize       int
	TrailQueueSize     int

	// Clause database reduction schedule.
	FirstReduce int64
	IncReduce   int64

	// Fraction of wasted arena words that triggers compaction.
	GarbageRatio float64

	// Logger for search statistics and fatal diagnostics. Nil keeps the
	// search silent and routes programmer errors to the standard logger.
	Logger *logrus.Logger
}

var DefaultOptions = Options{
	ClauseDecay:        0.999,
	VariableDecay:      0.95,
	PhaseSaving:        true,
	RestartFactor:      0.8,
	BlockRestartFactor: 1.4,
	FirstBlockRestart:  10000,
	LBDQueueSize:       50,
	TrailQueueSize:     5000,
	FirstReduce:        2000,
	IncReduce:          300,
	GarbageRatio:       0.3,
}

// NewDefaultSolver returns a solver configured with default options. This is
// equivalent to calling NewSolver with DefaultOptions.
func NewDefaultSolver() *Solver {
	return NewSolver(DefaultOptions)
}

func NewSolver(opts Options) *Solver {
	s := &Solver{
		opts:          opts,
		arena:         newArena(1024),
		claInc:        1,
		lbdQueue:      NewBoundedQueue(opts.LBDQueueSize),
		trailQueue:    NewBoundedQueue(opts.TrailQueueSize),
		rc2:           opts.IncReduce,
		nextReduce:    opts.FirstReduce,
		simpDBAssigns: -1,
		order:         NewVarOrder(opts.VariableDecay, opts.PhaseSaving),
		levelSet:      &ResetSet{},
		varSet:        &ResetSet{},
	}
	s.levelSet.Expand() // slot for the root level
	return s
}

func (s *Solver) logger() *logrus.Logger {
	if s.opts.Logger != nil {
		return s.opts.Logger
	}
	return logrus.StandardLogger()
}

// fatal reports a violated API precondition and aborts.
func (s *Solver) fatal(format string, args ...any) {
	s.logger().Fatalf(format, args...)
}

func (s *Solver) NumVariables() int {
	return len(s.assigns) / 2
}

// NumClauses returns the number of clauses accepted into the database. Unit
// clauses are enqueued directly and do not count, and neither do clauses
// discarded on addition (tautologies, clauses already true at the root, or
// clauses that collapse to a unit).
func (s *Solver) NumClauses() int {
	return s.numClauses
}

func (s *Solver) NumLearnts() int {
	return len(s.learnts)
}

func (s *Solver) NumAssigns() int {
	return len(s.trail)
}

func (s *Solver) VarValue(x int) LBool {
	return s.assigns[PositiveLiteral(x)]
}

func (s *Solver) LitValue(l Literal) LBool {
	return s.assigns[l]
}

func (s *Solver) decisionLevel() int {
	return len(s.trailLim)
}

// AddVariable declares a new variable and returns its ID. The variable starts
// unassigned with a false default phase.
func (s *Solver) AddVariable() int {
	index := s.NumVariables()
	s.watches = append(s.watches, watchList{}, watchList{})
	s.assigns = append(s.assigns, Unknown, Unknown)
	s.level = append(s.level, -1)
	s.reason = append(s.reason, refUndef)
	s.seen = append(s.seen, false)
	s.levelSet.Expand()
	s.varSet.Expand()
	s.order.AddVar(0, false)
	return index
}

// AddVariables declares n new variables.
func (s *Solver) AddVariables(n int) {
	for i := 0; i < n; i++ {
		s.AddVariable()
	}
}

// AddClause inserts a clause over previously declared variables. Unit clauses
// are enqueued at the root level and propagated immediately; an empty clause
// (or a unit whose propagation derives a conflict) makes the solver
// permanently unsatisfiable. AddClause returns false iff the solver is now
// trivially unsatisfiable.
func (s *Solver) AddClause(lits []Literal) bool {
	if s.decisionLevel() != 0 {
		s.fatal("AddClause: can only add clauses at the root level")
	}
	if s.unsat {
		s.fatal("AddClause: solver is trivially unsatisfiable; call Restart first")
	}

	// Simplify the clause against the root-level assignment: drop duplicate
	// and false literals, discard the clause if it contains a true literal or
	// a literal together with its opposite.
	tmp := append(s.tmpLits[:0], lits...)
	s.tmpLits = tmp
	seen := map[Literal]struct{}{}
	kept := tmp[:0]
	for _, l := range tmp {
		if int(l) >= len(s.assigns) {
			s.fatal("AddClause: literal %v refers to an undeclared variable", l)
		}
		if _, ok := seen[l.Opposite()]; ok {
			return true // clause is always true
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		switch s.LitValue(l) {
		case True:
			return true // clause is always true
		case False:
			// discard the literal
		default:
			kept = append(kept, l)
		}
	}

	switch len(kept) {
	case 0:
		// Empty clauses cannot be valid.
		s.unsat = true
		return false
	case 1:
		// Directly enqueue unit facts.
		if !s.enqueue(kept[0], refUndef) || s.propagate() != refUndef {
			s.unsat = true
			return false
		}
		return true
	default:
		ref := s.arena.alloc(kept, false)
		s.attach(ref)
		s.originals = append(s.originals, ref)
		s.numClauses++
		return true
	}
}

func (s *Solver) enqueue(l Literal, from ClauseRef) bool {
	switch s.LitValue(l) {
	case False:
		return false // conflicting assignment
	case True:
		return true // already assigned
	default:
		s.uncheckedEnqueue(l, from)
		return true
	}
}

func (s *Solver) uncheckedEnqueue(l Literal, from ClauseRef) {
	v := l.VarID()
	s.assigns[l] = True
	s.assigns[l.Opposite()] = False
	s.level[v] = int32(s.decisionLevel())
	s.reason[v] = from
	s.trail = append(s.trail, l)
}

// cancelUntil pops the trail back to the start of the given decision level,
// saving the polarity of each unassigned variable as its phase and putting it
// back into the order heap.
func (s *Solver) cancelUntil(level int) {
	if s.decisionLevel() <= level {
		return
	}
	lim := s.trailLim[level]
	for i := len(s.trail) - 1; i >= lim; i-- {
		l := s.trail[i]
		v := l.VarID()
		s.order.Reinsert(v, s.VarValue(v))
		s.assigns[l] = Unknown
		s.assigns[l.Opposite()] = Unknown
		s.reason[v] = refUndef
		s.level[v] = -1
	}
	s.trail = s.trail[:lim]
	s.trailLim = s.trailLim[:level]
	s.qhead = lim
}

// simplify removes clauses satisfied by the root-level assignment. It is a
// no-op while a checkpoint is outstanding or when nothing was assigned since
// the last call.
func (s *Solver) simplify() bool {
	if s.unsat || s.propagate() != refUndef {
		s.unsat = true
		return false
	}
	if len(s.checkpoints) > 0 || len(s.trail) == s.simpDBAssigns {
		return true
	}

	s.removeSatisfied(&s.learnts)
	s.removeSatisfied(&s.originals)
	s.order.Rebuild(s, s.NumVariables())
	s.garbageCollect()
	s.simpDBAssigns = len(s.trail)
	return true
}

func (s *Solver) removeSatisfied(refs *[]ClauseRef) {
	j := 0
	for _, ref := range *refs {
		if s.satisfied(ref) {
			v := s.arena.clause(ref).lit(0).VarID()
			if s.reason[v] == ref {
				s.reason[v] = refUndef
			}
			s.detach(ref)
			s.arena.free(ref)
		} else {
			(*refs)[j] = ref
			j++
		}
	}
	*refs = (*refs)[:j]
}

func (s *Solver) satisfied(ref ClauseRef) bool {
	c := s.arena.clause(ref)
	for i := 0; i < c.size(); i++ {
		if s.LitValue(c.lit(i)) == True {
			return true
		}
	}
	return false
}

func (s *Solver) locked(ref ClauseRef) bool {
	v := s.arena.clause(ref).lit(0).VarID()
	return s.VarValue(v) != Unknown && s.reason[v] == ref
}

// garbageCollect compacts the arena once the wasted share exceeds the
// configured ratio, rewriting every live reference through the forwarding
// field left in the relocated headers. Disabled while a checkpoint is
// outstanding so that Rollback can truncate the arena.
func (s *Solver) garbageCollect() {
	if len(s.checkpoints) > 0 {
		return
	}
	if float64(s.arena.wasted) < s.opts.GarbageRatio*float64(s.arena.len()) {
		return
	}

	to := newArena(s.arena.len() - int(s.arena.wasted))
	for i, ref := range s.originals {
		s.originals[i] = s.arena.reloc(ref, to)
	}
	for i, ref := range s.learnts {
		s.learnts[i] = s.arena.reloc(ref, to)
	}
	for _, l := range s.trail {
		if v := l.VarID(); s.reason[v] != refUndef {
			s.reason[v] = s.arena.reloc(s.reason[v], to)
		}
	}
	s.arena = to

	for i := range s.watches {
		s.watches[i].clear()
	}
	for _, ref := range s.originals {
		s.attach(ref)
	}
	for _, ref := range s.learnts {
		s.attach(ref)
	}
}

// Model returns the model found by the last Solve call, indexed by variable
// ID. Calling it when the last outcome was not Sat is a programming error.
func (s *Solver) Model() []LBool {
	if s.status != Sat {
		s.fatal("Model: last solve did not return Sat")
	}
	return append([]LBool(nil), s.model...)
}

// Core returns the conflict set of the last Solve call: a subset of the
// negations of its assumptions whose conjunction is unsatisfiable together
// with the clauses. Calling it when the last outcome was not Unsat is a
// programming error.
func (s *Solver) Core() []Literal {
	if s.status != Unsat {
		s.fatal("Core: last solve did not return Unsat")
	}
	return append([]Literal(nil), s.conflict...)
}

// Result returns the outcome of the last Solve call together with its
// witness.
func (s *Solver) Result() Result {
	switch s.status {
	case Sat:
		return Result{status: Sat, model: append([]LBool(nil), s.model...)}
	case Unsat:
		return Result{status: Unsat, core: append([]Literal(nil), s.conflict...)}
	default:
		return Result{}
	}
}

// Clauses returns a copy of the live original clauses.
func (s *Solver) Clauses() [][]Literal {
	out := make([][]Literal, 0, len(s.originals))
	for _, ref := range s.originals {
		out = append(out, s.arena.clause(ref).literals())
	}
	return out
}

// SetRandomPhase makes the next Solve call start from uniformly random
// phases for the variables unassigned at that point. The same seed always
// yields the same phases.
func (s *Solver) SetRandomPhase(seed int64) {
	s.randomSeed = seed
	s.randomizePending = true
}

// Restart drops every clause, variable and learnt fact and returns the
// solver to a fresh state with the same options.
func (s *Solver) Restart() {
	*s = *NewSolver(s.opts)
}
