package sat

// Learnt clauses at or below both bounds go through the extra
// binary-resolution minimization step.
const (
	binMinimizeMaxSize = 30
	binMinimizeMaxLBD  = 6
)

// analyze derives a learnt clause from the conflicting clause using first-UIP
// resolution. It returns the learnt literals (asserting literal first, a
// literal of the backtrack level at index 1), the backtrack level and the
// clause's LBD. Variable and clause activities are bumped along the way.
func (s *Solver) analyze(confl ClauseRef) ([]Literal, int, int) {
	pathC := 0
	p := litUndef
	idx := len(s.trail) - 1

	learnt := append(s.tmpLearnt[:0], 0) // index 0 is reserved for the UIP
	s.toClear = s.toClear[:0]

	for {
		c := s.arena.clause(confl)
		if p != litUndef && c.size() == 2 && c.lit(0) != p {
			// Binary reasons are not reordered on propagation; normalize so
			// that the implied literal sits at index 0.
			c.swapLits(0, 1)
		}
		if c.learnt() {
			s.bumpClauseActivity(c)
			s.updateLBD(c)
		}

		start := 0
		if p != litUndef {
			start = 1
		}
		for k := start; k < c.size(); k++ {
			q := c.lit(k)
			v := q.VarID()
			if s.seen[v] || s.level[v] == 0 {
				continue
			}
			s.seen[v] = true
			s.toClear = append(s.toClear, q)
			s.order.BumpScore(v)
			if int(s.level[v]) >= s.decisionLevel() {
				pathC++
			} else {
				learnt = append(learnt, q)
			}
		}

		// Select the next seen literal on the trail.
		for !s.seen[s.trail[idx].VarID()] {
			idx--
		}
		p = s.trail[idx]
		idx--
		confl = s.reason[p.VarID()]
		s.seen[p.VarID()] = false
		pathC--
		if pathC == 0 {
			break
		}
	}
	learnt[0] = p.Opposite()

	// Minimization: drop literals whose reasons are fully covered by the
	// remaining clause (conflict-clause self-subsumption).
	var abstractLevels uint32
	for _, q := range learnt[1:] {
		abstractLevels |= abstractLevel(s.level[q.VarID()])
	}
	j := 1
	for i := 1; i < len(learnt); i++ {
		q := learnt[i]
		if s.reason[q.VarID()] == refUndef || !s.litRedundant(q, abstractLevels) {
			learnt[j] = q
			j++
		}
	}
	learnt = learnt[:j]

	lbd := s.computeLBD(learnt)
	if len(learnt) <= binMinimizeMaxSize && lbd <= binMinimizeMaxLBD {
		if s.minimizeWithBinaries(&learnt) {
			lbd = s.computeLBD(learnt)
		}
	}

	// Find the backtrack level and move one of its literals to index 1.
	btLevel := 0
	if len(learnt) > 1 {
		maxIdx := 1
		for i := 2; i < len(learnt); i++ {
			if s.level[learnt[i].VarID()] > s.level[learnt[maxIdx].VarID()] {
				maxIdx = i
			}
		}
		learnt[1], learnt[maxIdx] = learnt[maxIdx], learnt[1]
		btLevel = int(s.level[learnt[1].VarID()])
	}

	for _, q := range s.toClear {
		s.seen[q.VarID()] = false
	}
	s.seen[learnt[0].VarID()] = false

	s.tmpLearnt = learnt
	return learnt, btLevel, lbd
}

func abstractLevel(level int32) uint32 {
	return 1 << (uint32(level) & 31)
}

// litRedundant checks whether p is implied by literals of the learnt clause
// and root facts alone, walking the reason graph. The abstraction of the
// clause's levels prunes branches that could never close.
func (s *Solver) litRedundant(p Literal, abstractLevels uint32) bool {
	s.analyzeStack = append(s.analyzeStack[:0], p)
	top := len(s.toClear)
	for len(s.analyzeStack) > 0 {
		q := s.analyzeStack[len(s.analyzeStack)-1]
		s.analyzeStack = s.analyzeStack[:len(s.analyzeStack)-1]

		c := s.arena.clause(s.reason[q.VarID()])
		if c.size() == 2 && c.lit(0) != q.Opposite() {
			c.swapLits(0, 1)
		}
		for i := 1; i < c.size(); i++ {
			l := c.lit(i)
			v := l.VarID()
			if s.seen[v] || s.level[v] == 0 {
				continue
			}
			if s.reason[v] != refUndef && abstractLevel(s.level[v])&abstractLevels != 0 {
				s.seen[v] = true
				s.analyzeStack = append(s.analyzeStack, l)
				s.toClear = append(s.toClear, l)
				continue
			}
			// Cannot be resolved away: undo the markings of this walk.
			for j := top; j < len(s.toClear); j++ {
				s.seen[s.toClear[j].VarID()] = false
			}
			s.toClear = s.toClear[:top]
			return false
		}
	}
	return true
}

// minimizeWithBinaries resolves the learnt clause against the binary clauses
// watched on its asserting literal: a binary (first v x) removes !x from the
// clause. Reports whether the clause shrunk.
func (s *Solver) minimizeWithBinaries(learnt *[]Literal) bool {
	lits := *learnt
	s.varSet.Clear()
	for _, q := range lits[1:] {
		s.varSet.Add(q.VarID())
	}

	removed := 0
	wl := &s.watches[lits[0].Opposite()]
	for _, w := range wl.entries[:wl.nBin] {
		other := w.blocker
		if s.varSet.Contains(other.VarID()) && s.LitValue(other) == True {
			removed++
			s.varSet.Remove(other.VarID())
		}
	}
	if removed == 0 {
		return false
	}

	j := 1
	for i := 1; i < len(lits); i++ {
		if s.varSet.Contains(lits[i].VarID()) {
			lits[j] = lits[i]
			j++
		}
	}
	*learnt = lits[:j]
	return true
}

// computeLBD returns the number of distinct decision levels among the
// literals.
func (s *Solver) computeLBD(lits []Literal) int {
	s.levelSet.Clear()
	lbd := 0
	for _, l := range lits {
		lvl := int(s.level[l.VarID()])
		if !s.levelSet.Contains(lvl) {
			s.levelSet.Add(lvl)
			lbd++
		}
	}
	return lbd
}

// updateLBD recomputes the LBD of a learnt reason clause touched during
// analysis. A clause whose LBD improves from a value of at most 30 is
// protected from the next database reduction.
func (s *Solver) updateLBD(c clause) {
	s.levelSet.Clear()
	lbd := 0
	for i := 0; i < c.size(); i++ {
		lvl := int(s.level[c.lit(i).VarID()])
		if lvl >= 0 && !s.levelSet.Contains(lvl) {
			s.levelSet.Add(lvl)
			lbd++
		}
	}
	if lbd < c.lbd() {
		if c.lbd() <= 30 {
			c.setProtected(true)
		}
		c.setLBD(lbd)
	}
}

func (s *Solver) bumpClauseActivity(c clause) {
	act := c.activity() + s.claInc
	c.setActivity(act)
	if act > 1e100 {
		s.claInc *= 1e-100 // important to keep proportions
		for _, ref := range s.learnts {
			lc := s.arena.clause(ref)
			lc.setActivity(lc.activity() * 1e-100)
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.claInc /= s.opts.ClauseDecay
}

// analyzeFinal computes the set of assumption literals implying p, the
// negation of a falsified assumption, by walking the trail backwards through
// the reason graph. The result, stored as the solver's conflict set, is a
// subset of the negated assumptions with p first.
func (s *Solver) analyzeFinal(p Literal) {
	s.conflict = append(s.conflict[:0], p)
	if s.decisionLevel() == 0 {
		return
	}

	s.seen[p.VarID()] = true
	for i := len(s.trail) - 1; i >= s.trailLim[0]; i-- {
		v := s.trail[i].VarID()
		if !s.seen[v] {
			continue
		}
		if s.reason[v] == refUndef {
			if s.level[v] > 0 {
				s.conflict = append(s.conflict, s.trail[i].Opposite())
			}
		} else {
			c := s.arena.clause(s.reason[v])
			if c.size() == 2 && c.lit(0) != s.trail[i] {
				c.swapLits(0, 1)
			}
			for k := 1; k < c.size(); k++ {
				if lv := c.lit(k).VarID(); s.level[lv] > 0 {
					s.seen[lv] = true
				}
			}
		}
		s.seen[v] = false
	}
	s.seen[p.VarID()] = false
}
