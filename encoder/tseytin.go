// Package encoder provides clause generators over the solver facade: Tseytin
// gate encodings, XOR clause chains and an incremental totalizer for
// cardinality constraints.
package encoder

import (
	"github.com/sirupsen/logrus"

	"github.com/go-bool/boolkit/sat"
)

// And returns a fresh literal constrained to be the conjunction of a and b.
func And(s *sat.Solver, a, b sat.Literal) sat.Literal {
	t := sat.PositiveLiteral(s.AddVariable())
	s.AddClause([]sat.Literal{t.Opposite(), a})
	s.AddClause([]sat.Literal{t.Opposite(), b})
	s.AddClause([]sat.Literal{t, a.Opposite(), b.Opposite()})
	return t
}

// Or returns a fresh literal constrained to be the disjunction of a and b.
func Or(s *sat.Solver, a, b sat.Literal) sat.Literal {
	t := sat.PositiveLiteral(s.AddVariable())
	s.AddClause([]sat.Literal{t, a.Opposite()})
	s.AddClause([]sat.Literal{t, b.Opposite()})
	s.AddClause([]sat.Literal{t.Opposite(), a, b})
	return t
}

// Xor returns a fresh literal constrained to be the exclusive or of a and b.
func Xor(s *sat.Solver, a, b sat.Literal) sat.Literal {
	t := sat.PositiveLiteral(s.AddVariable())
	s.AddClause([]sat.Literal{t.Opposite(), a, b})
	s.AddClause([]sat.Literal{t.Opposite(), a.Opposite(), b.Opposite()})
	s.AddClause([]sat.Literal{t, a.Opposite(), b})
	s.AddClause([]sat.Literal{t, a, b.Opposite()})
	return t
}

// Equals returns a fresh literal constrained to be true iff a and b agree.
func Equals(s *sat.Solver, a, b sat.Literal) sat.Literal {
	t := sat.PositiveLiteral(s.AddVariable())
	s.AddClause([]sat.Literal{t, a, b})
	s.AddClause([]sat.Literal{t, a.Opposite(), b.Opposite()})
	s.AddClause([]sat.Literal{t.Opposite(), a, b.Opposite()})
	s.AddClause([]sat.Literal{t.Opposite(), a.Opposite(), b})
	return t
}

// XorClause returns a literal equivalent to the parity of the given
// literals, encoded as a chain of xor gates. With complemented set, the
// returned literal is true iff the parity is even.
func XorClause(s *sat.Solver, lits []sat.Literal, complemented bool) sat.Literal {
	if len(lits) == 0 {
		logrus.Fatal("encoder: XorClause needs at least one literal")
	}
	t := lits[0]
	for _, l := range lits[1:] {
		t = Xor(s, t, l)
	}
	if complemented {
		return t.Opposite()
	}
	return t
}
