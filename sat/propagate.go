package sat

// propagate performs boolean constraint propagation over the watched
// literals of every literal enqueued since the last call. It returns the
// reference of a conflicting clause, or refUndef if a fixpoint was reached.
//
// For each dequeued literal p, the binary prefix of p's watch list is
// handled first: the blocker alone either propagates or conflicts, without
// loading the clause. For the remaining entries, a true blocker keeps the
// entry in place; otherwise the falsified watched literal is swapped to
// index 1 and a replacement watch is searched from index 2. If none exists
// the clause is either conflicting or propagates its first literal.
func (s *Solver) propagate() ClauseRef {
	for s.qhead < len(s.trail) {
		p := s.trail[s.qhead]
		s.qhead++
		s.Stats.Propagations++

		ws := &s.watches[p]
		for _, w := range ws.entries[:ws.nBin] {
			if !s.enqueue(w.blocker, w.cref) {
				s.qhead = len(s.trail)
				return w.cref
			}
		}

		entries := ws.entries
		i, j := ws.nBin, ws.nBin
		for i < len(entries) {
			w := entries[i]
			i++
			if s.LitValue(w.blocker) == True {
				entries[j] = w
				j++
				continue
			}

			c := s.arena.clause(w.cref)
			opp := p.Opposite()
			if c.lit(0) == opp {
				c.swapLits(0, 1)
			}
			first := c.lit(0)
			w.blocker = first
			if s.LitValue(first) == True {
				entries[j] = w
				j++
				continue
			}

			// Look for a new literal to watch.
			relocated := false
			for k := 2; k < c.size(); k++ {
				if l := c.lit(k); s.LitValue(l) != False {
					c.setLit(1, l)
					c.setLit(k, opp)
					s.watches[l.Opposite()].push(w)
					relocated = true
					break
				}
			}
			if relocated {
				continue
			}

			// No replacement: the clause is unit or conflicting.
			entries[j] = w
			j++
			if s.LitValue(first) == False {
				for i < len(entries) {
					entries[j] = entries[i]
					j++
					i++
				}
				ws.entries = entries[:j]
				s.qhead = len(s.trail)
				return w.cref
			}
			s.uncheckedEnqueue(first, w.cref)
		}
		ws.entries = entries[:j]
	}
	return refUndef
}
