package sat

// TrimCore shrinks a set of assumption literals that makes the problem
// unsatisfiable by repeatedly re-solving under the solver's reported
// conflict set. It stops after rounds iterations or as soon as the set no
// longer shrinks, and returns the trimmed assumptions. If the problem turns
// out satisfiable under the initial set, it is returned unchanged.
func TrimCore(s *Solver, assumptions []Literal, rounds int) []Literal {
	core := append([]Literal(nil), assumptions...)
	for i := 0; i < rounds; i++ {
		if s.Solve(core, Budget{}) != Unsat {
			break
		}
		next := s.Core()
		for j, l := range next {
			next[j] = l.Opposite()
		}
		if len(next) >= len(core) {
			break
		}
		core = next
	}
	return core
}

// MinimizeCore reduces a set of assumption literals to a locally minimal
// unsatisfiable one by dropping one literal at a time and keeping the drop
// whenever the problem stays unsatisfiable. Each probe runs under the given
// budget; probes that return Undef keep the literal.
func MinimizeCore(s *Solver, assumptions []Literal, budget Budget) []Literal {
	core := append([]Literal(nil), assumptions...)
	for i := 0; i < len(core); {
		cand := make([]Literal, 0, len(core)-1)
		cand = append(cand, core[:i]...)
		cand = append(cand, core[i+1:]...)
		if s.Solve(cand, budget) == Unsat {
			core = cand
		} else {
			i++
		}
	}
	return core
}
