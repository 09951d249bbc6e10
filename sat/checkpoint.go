package sat

// checkpoint is a snapshot of the sizes of every growable structure in the
// solver. Restoring is pure truncation, which is why root simplification,
// database reduction and arena compaction are suspended while a checkpoint
// is outstanding.
type checkpoint struct {
	numOriginals int
	numLearnts   int
	arenaLen     int
	numVars      int
	trailLen     int
	numClauses   int
	unsat        bool
}

// Checkpoint records the current state of the solver so that a later
// Rollback can withdraw every variable and clause added after this call.
// Checkpoints nest: each Rollback restores the most recent one. The solver
// must be at the root level with propagation complete, which is always the
// case between Solve calls.
func (s *Solver) Checkpoint() {
	if s.decisionLevel() != 0 || s.qhead != len(s.trail) {
		s.fatal("Checkpoint: solver must be at the root level in a propagated state")
	}
	s.checkpoints = append(s.checkpoints, checkpoint{
		numOriginals: len(s.originals),
		numLearnts:   len(s.learnts),
		arenaLen:     s.arena.len(),
		numVars:      s.NumVariables(),
		trailLen:     len(s.trail),
		numClauses:   s.numClauses,
		unsat:        s.unsat,
	})
}

// Rollback withdraws everything added since the matching Checkpoint: clauses
// (original and learnt), variables and root-level facts. Calling it without
// an outstanding checkpoint is a programming error.
func (s *Solver) Rollback() {
	if len(s.checkpoints) == 0 {
		s.fatal("Rollback: no matching Checkpoint")
	}
	cp := s.checkpoints[len(s.checkpoints)-1]
	s.checkpoints = s.checkpoints[:len(s.checkpoints)-1]

	// Detach withdrawn clauses from the watch lists of surviving variables.
	// Clauses added since a checkpoint always live past its arena mark, so
	// the storage itself is reclaimed by truncation below.
	for _, ref := range s.originals[cp.numOriginals:] {
		s.detach(ref)
	}
	for _, ref := range s.learnts[cp.numLearnts:] {
		s.detach(ref)
	}
	s.originals = s.originals[:cp.numOriginals]
	s.learnts = s.learnts[:cp.numLearnts]

	// Undo root-level facts recorded since the checkpoint.
	for i := len(s.trail) - 1; i >= cp.trailLen; i-- {
		l := s.trail[i]
		v := l.VarID()
		s.assigns[l] = Unknown
		s.assigns[l.Opposite()] = Unknown
		if v < cp.numVars {
			s.reason[v] = refUndef
			s.level[v] = -1
		}
	}
	s.trail = s.trail[:cp.trailLen]
	s.qhead = cp.trailLen

	// Withdraw the variables declared since the checkpoint, dropping their
	// watch lists entirely.
	s.assigns = s.assigns[:2*cp.numVars]
	s.level = s.level[:cp.numVars]
	s.reason = s.reason[:cp.numVars]
	s.seen = s.seen[:cp.numVars]
	s.watches = s.watches[:2*cp.numVars]
	s.levelSet.Shrink(cp.numVars + 1)
	s.varSet.Shrink(cp.numVars)

	s.arena.truncate(cp.arenaLen)
	s.numClauses = cp.numClauses
	s.unsat = cp.unsat

	s.order.Rebuild(s, cp.numVars)
	s.simpDBAssigns = -1
	s.status = Undef
	s.model = nil
	s.conflict = nil
}
