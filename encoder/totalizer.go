package encoder

import (
	"github.com/sirupsen/logrus"

	"github.com/go-bool/boolkit/sat"
)

// Totalizer is an incremental totalizer tree over a set of input literals.
// Output i of the root is forced true whenever at least i+1 inputs are true
// (up to the current cardinality bound), so assuming the negation of output
// i caps the count at i. The bound can be raised later with Increase,
// reusing the tree and only emitting the missing clauses.
type Totalizer struct {
	root *totNode
	kMax int
}

type totNode struct {
	left, right *totNode
	outputs     []sat.Literal
	nLeaves     int
}

// NewTotalizer builds a totalizer over lits with outputs up to kMax and adds
// its clauses to the solver.
func NewTotalizer(s *sat.Solver, lits []sat.Literal, kMax int) *Totalizer {
	if len(lits) == 0 || kMax <= 0 {
		logrus.Fatalf("encoder: totalizer needs inputs and a positive bound (n=%d, k=%d)",
			len(lits), kMax)
	}
	t := &Totalizer{kMax: kMax}
	t.root = t.build(s, lits)
	return t
}

// Outputs returns the root's output literals: Outputs()[i] is implied
// whenever at least i+1 inputs are true. Assuming the negations of the
// outputs from index k on caps the count at k. The implication only runs
// from inputs to outputs: a true output forces no input, so assuming the
// first k outputs does not impose a lower bound.
func (t *Totalizer) Outputs() []sat.Literal {
	return t.root.outputs
}

func (t *Totalizer) build(s *sat.Solver, lits []sat.Literal) *totNode {
	if len(lits) == 1 {
		return &totNode{outputs: []sat.Literal{lits[0]}, nLeaves: 1}
	}
	mid := len(lits) / 2
	n := &totNode{
		left:    t.build(s, lits[:mid]),
		right:   t.build(s, lits[mid:]),
		nLeaves: len(lits),
	}
	m := min(n.nLeaves, t.kMax)
	for i := 0; i < m; i++ {
		n.outputs = append(n.outputs, sat.PositiveLiteral(s.AddVariable()))
	}
	t.merge(s, n, 0, 0, 0)
	return n
}

// Increase raises the cardinality bound, extending every node's outputs and
// emitting only the clauses that involve a new output.
func (t *Totalizer) Increase(s *sat.Solver, kMax int) {
	if kMax <= t.kMax {
		return
	}
	t.kMax = kMax
	t.extend(s, t.root)
}

func (t *Totalizer) extend(s *sat.Solver, n *totNode) {
	if n.left == nil {
		return
	}
	oldLeft, oldRight := len(n.left.outputs), len(n.right.outputs)
	t.extend(s, n.left)
	t.extend(s, n.right)

	oldM := len(n.outputs)
	m := min(n.nLeaves, t.kMax)
	for i := oldM; i < m; i++ {
		n.outputs = append(n.outputs, sat.PositiveLiteral(s.AddVariable()))
	}
	t.merge(s, n, oldLeft, oldRight, oldM)
}

// merge emits the clauses relating the node's outputs to its children's,
// skipping those that only involve outputs that existed before the given
// marks (used by Increase to stay incremental).
func (t *Totalizer) merge(s *sat.Solver, n *totNode, oldLeft, oldRight, oldM int) {
	a, b, out := n.left.outputs, n.right.outputs, n.outputs

	// a_i and b_j imply out_{i+j}.
	for i := 0; i <= len(a); i++ {
		for j := 0; j <= len(b); j++ {
			k := i + j
			if k == 0 || k > len(out) {
				continue
			}
			if i <= oldLeft && j <= oldRight && k <= oldM {
				continue
			}
			cl := []sat.Literal{out[k-1]}
			if i > 0 {
				cl = append(cl, a[i-1].Opposite())
			}
			if j > 0 {
				cl = append(cl, b[j-1].Opposite())
			}
			s.AddClause(cl)
		}
	}
}
