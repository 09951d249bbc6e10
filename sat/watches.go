package sat

// watcher represents a clause attached to the watch list of a literal.
type watcher struct {
	// The watching clause to be propagated when the watched literal becomes
	// true.
	cref ClauseRef

	// Blocker is one of the clause's literals. If it is true, then there is
	// no need to propagate the clause. Note that the blocker literal must be
	// different from the watched literal. For binary clauses the blocker is
	// the whole story: it is the literal implied when the watched literal
	// becomes true, so propagation never has to load the clause.
	blocker Literal
}

// watchList holds the watchers of one literal. Binary watchers occupy the
// prefix entries[:nBin] so that propagation can handle them without touching
// the arena.
type watchList struct {
	entries []watcher
	nBin    int
}

// pushBin adds a binary watcher, keeping it within the binary prefix.
func (wl *watchList) pushBin(w watcher) {
	wl.entries = append(wl.entries, w)
	last := len(wl.entries) - 1
	wl.entries[wl.nBin], wl.entries[last] = wl.entries[last], wl.entries[wl.nBin]
	wl.nBin++
}

// push adds a non-binary watcher.
func (wl *watchList) push(w watcher) {
	wl.entries = append(wl.entries, w)
}

// remove drops the watcher of the given clause. It must be present.
func (wl *watchList) remove(cref ClauseRef, binary bool) {
	lo, hi := wl.nBin, len(wl.entries)
	if binary {
		lo, hi = 0, wl.nBin
	}
	for i := lo; i < hi; i++ {
		if wl.entries[i].cref != cref {
			continue
		}
		if binary {
			wl.entries[i] = wl.entries[wl.nBin-1]
			wl.entries[wl.nBin-1] = wl.entries[len(wl.entries)-1]
			wl.nBin--
		} else {
			wl.entries[i] = wl.entries[len(wl.entries)-1]
		}
		wl.entries = wl.entries[:len(wl.entries)-1]
		return
	}
}

func (wl *watchList) clear() {
	wl.entries = wl.entries[:0]
	wl.nBin = 0
}

// attach places the clause in the watch lists of the negations of its first
// two literals.
func (s *Solver) attach(cref ClauseRef) {
	c := s.arena.clause(cref)
	l0, l1 := c.lit(0), c.lit(1)
	if c.size() == 2 {
		s.watches[l0.Opposite()].pushBin(watcher{cref, l1})
		s.watches[l1.Opposite()].pushBin(watcher{cref, l0})
	} else {
		s.watches[l0.Opposite()].push(watcher{cref, l1})
		s.watches[l1.Opposite()].push(watcher{cref, l0})
	}
}

// detach removes the clause's two watch entries.
func (s *Solver) detach(cref ClauseRef) {
	c := s.arena.clause(cref)
	binary := c.size() == 2
	s.watches[c.lit(0).Opposite()].remove(cref, binary)
	s.watches[c.lit(1).Opposite()].remove(cref, binary)
}
