package sat

import "fmt"

// Literal represents a literal, which either represent a boolean variable or
// its negation. Literals are encoded as 2*v for variable v and 2*v+1 for its
// negation.
type Literal uint32

// litUndef is the sentinel used where no literal applies (e.g. the reason of
// a decision).
const litUndef = ^Literal(0)

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represent the value of
// its boolean variable (i.e. not its negation)
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

// FromDIMACS converts a non-zero DIMACS literal (1-based, negative for
// complemented) to its internal representation.
func FromDIMACS(d int) Literal {
	if d < 0 {
		return NegativeLiteral(-d - 1)
	}
	return PositiveLiteral(d - 1)
}

// ToDIMACS converts the literal to its DIMACS representation.
func (l Literal) ToDIMACS() int {
	if l.IsPositive() {
		return l.VarID() + 1
	}
	return -(l.VarID() + 1)
}

func (l Literal) String() string {
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	} else {
		return fmt.Sprintf("!%d", l.VarID())
	}
}
