package sat

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Budget bounds a single Solve call. The zero value means no limit. When a
// budget trips, the solver cancels to the root level and returns Undef with
// all learnt clauses kept.
type Budget struct {
	// MaxConflicts stops the search after that many conflicts (0 = no
	// limit).
	MaxConflicts int64

	// Deadline stops the search once the wall clock passes it. It is polled
	// every 64 conflicts.
	Deadline time.Time

	// Interrupt is polled on every search iteration that ends without a
	// conflict; returning true stops the search.
	Interrupt func() bool
}

// deadlinePollMask controls how often the deadline is polled: every 64
// conflicts.
const deadlinePollMask = 63

// Solve searches for a model of the clauses under the given assumptions,
// which hold for the duration of this call only. It returns Sat with a model
// (see Model), Unsat with a conflict set over the assumptions (see Core), or
// Undef if the budget tripped. Solve can be called repeatedly, interleaved
// with AddVariable and AddClause.
func (s *Solver) Solve(assumptions []Literal, budget Budget) Status {
	s.model = nil
	s.conflict = s.conflict[:0]
	if s.unsat {
		s.status = Unsat
		return Unsat
	}

	s.assumptions = append(s.assumptions[:0], assumptions...)
	// Pseudo decision levels opened for already-satisfied assumptions can
	// push the level count past the variable count.
	s.levelSet.Grow(s.NumVariables() + len(assumptions) + 1)
	if s.randomizePending {
		s.order.RandomizePhases(s, s.randomSeed)
		s.randomizePending = false
	}
	s.startTime = time.Now()
	startConflicts := s.Stats.Conflicts

	s.logSearchHeader()
	s.status = s.search(budget, startConflicts)
	s.logSearchStats()

	s.cancelUntil(0)
	s.assumptions = s.assumptions[:0]
	return s.status
}

// search drives the decide / propagate / analyze / restart / reduce loop
// until a terminal condition or a budget stop.
func (s *Solver) search(budget Budget, startConflicts int64) Status {
	pastDeadline := false

	for {
		s.Stats.Iterations++
		if s.Stats.Iterations%10000 == 0 {
			s.logSearchStats()
		}

		if confl := s.propagate(); confl != refUndef {
			s.Stats.Conflicts++
			if s.decisionLevel() == 0 {
				s.unsat = true
				return Unsat
			}

			s.trailQueue.Push(int64(len(s.trail)))
			if s.Stats.Conflicts > s.opts.FirstBlockRestart &&
				s.lbdQueue.IsFull() &&
				float64(len(s.trail)) > s.opts.BlockRestartFactor*s.trailQueue.Avg() {
				// The trail is unusually deep: the solver is close to a
				// model, suppress the upcoming restart.
				s.lbdQueue.Clear()
			}

			learnt, btLevel, lbd := s.analyze(confl)
			s.lbdQueue.Push(int64(lbd))
			s.sumLBD += int64(lbd)
			s.cancelUntil(btLevel)
			s.record(learnt, lbd)

			s.order.DecayScores()
			s.decayClauseActivity()

			if !budget.Deadline.IsZero() && s.Stats.Conflicts&deadlinePollMask == 0 {
				pastDeadline = time.Now().After(budget.Deadline)
			}
			continue
		}

		// No conflict.
		if s.shouldRestart() {
			s.Stats.Restarts++
			s.lbdQueue.Clear()
			s.cancelUntil(0)
			continue
		}
		if pastDeadline ||
			(budget.MaxConflicts > 0 && s.Stats.Conflicts-startConflicts >= budget.MaxConflicts) ||
			(budget.Interrupt != nil && budget.Interrupt()) {
			s.cancelUntil(0)
			return Undef
		}

		if s.decisionLevel() == 0 && !s.simplify() {
			return Unsat
		}
		if len(s.learnts) > 100 && s.Stats.Conflicts >= s.nextReduce {
			s.reduceDB()
		}

		next := litUndef
		for next == litUndef && s.decisionLevel() < len(s.assumptions) {
			a := s.assumptions[s.decisionLevel()]
			switch s.LitValue(a) {
			case True:
				// Already satisfied: open a pseudo decision level so that
				// each assumption keeps its own level.
				s.trailLim = append(s.trailLim, len(s.trail))
			case False:
				s.analyzeFinal(a.Opposite())
				return Unsat
			default:
				next = a
			}
		}

		if next == litUndef {
			if len(s.trail) == s.NumVariables() {
				// All variables are assigned: a model has been found.
				s.saveModel()
				return Sat
			}
			next = s.order.NextDecision(s)
			if next == litUndef {
				s.saveModel()
				return Sat
			}
			s.Stats.Decisions++
		}

		s.trailLim = append(s.trailLim, len(s.trail))
		s.uncheckedEnqueue(next, refUndef)
	}
}

// shouldRestart applies the Glucose policy: restart when the recent LBD
// window average, scaled by the restart factor, exceeds the global average.
func (s *Solver) shouldRestart() bool {
	return s.lbdQueue.IsFull() &&
		s.lbdQueue.Avg()*s.opts.RestartFactor > float64(s.sumLBD)/float64(s.Stats.Conflicts)
}

// record adds the learnt clause to the database and enqueues its asserting
// literal.
func (s *Solver) record(learnt []Literal, lbd int) {
	if len(learnt) == 1 {
		s.uncheckedEnqueue(learnt[0], refUndef)
		return
	}
	ref := s.arena.alloc(learnt, true)
	c := s.arena.clause(ref)
	c.setLBD(lbd)
	s.attach(ref)
	s.learnts = append(s.learnts, ref)
	s.bumpClauseActivity(c)
	s.uncheckedEnqueue(learnt[0], ref)
}

// reduceDB deletes roughly the worse half of the learnt clauses: high LBD
// first, ties broken by low activity. Glue clauses (LBD <= 2), clauses
// currently used as a reason and clauses protected since the last reduction
// survive; protected clauses lose their protection and become deletable.
func (s *Solver) reduceDB() {
	if len(s.checkpoints) > 0 {
		// Rollback restores the learnt database by truncation; deleting
		// clauses that predate the checkpoint would break that.
		return
	}
	s.Stats.Reduces++

	sort.Slice(s.learnts, func(i, j int) bool {
		ci := s.arena.clause(s.learnts[i])
		cj := s.arena.clause(s.learnts[j])
		if pi, pj := ci.protected(), cj.protected(); pi != pj {
			return pj // deletable clauses first
		}
		if ci.lbd() != cj.lbd() {
			return ci.lbd() > cj.lbd()
		}
		return ci.activity() < cj.activity()
	})

	limit := len(s.learnts) / 2
	j := 0
	for i, ref := range s.learnts {
		c := s.arena.clause(ref)
		if i < limit && c.lbd() > 2 && !s.locked(ref) {
			if c.protected() {
				c.setProtected(false)
				s.learnts[j] = ref
				j++
				continue
			}
			s.detach(ref)
			s.arena.free(ref)
		} else {
			s.learnts[j] = ref
			j++
		}
	}
	s.learnts = s.learnts[:j]

	s.rc1 = s.Stats.Conflicts/s.rc2 + 1
	s.rc2 += s.opts.IncReduce
	s.nextReduce = s.rc1 * s.rc2

	s.garbageCollect()
}

func (s *Solver) saveModel() {
	s.model = make([]LBool, s.NumVariables())
	for i := range s.model {
		s.model[i] = s.VarValue(i)
	}
}

func (s *Solver) logSearchHeader() {
	if s.opts.Logger == nil {
		return
	}
	s.opts.Logger.WithFields(logrus.Fields{
		"variables": s.NumVariables(),
		"clauses":   s.NumClauses(),
	}).Info("search started")
}

func (s *Solver) logSearchStats() {
	if s.opts.Logger == nil {
		return
	}
	s.opts.Logger.WithFields(logrus.Fields{
		"time":       time.Since(s.startTime).Seconds(),
		"iterations": s.Stats.Iterations,
		"conflicts":  s.Stats.Conflicts,
		"restarts":   s.Stats.Restarts,
		"learnts":    len(s.learnts),
	}).Info("search stats")
}
