package sat_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-bool/boolkit/sat"
)

func lit(v int) sat.Literal { return sat.PositiveLiteral(v) }
func neg(v int) sat.Literal { return sat.NegativeLiteral(v) }

// pigeonhole returns the clauses of the pigeonhole principle with n pigeons
// and m holes over n*m variables (pigeon p in hole h is variable p*m+h). It
// is unsatisfiable iff n > m.
func pigeonhole(n, m int) [][]sat.Literal {
	var clauses [][]sat.Literal
	for p := 0; p < n; p++ {
		atLeast := make([]sat.Literal, m)
		for h := 0; h < m; h++ {
			atLeast[h] = lit(p*m + h)
		}
		clauses = append(clauses, atLeast)
	}
	for h := 0; h < m; h++ {
		for p := 0; p < n; p++ {
			for q := p + 1; q < n; q++ {
				clauses = append(clauses, []sat.Literal{neg(p*m + h), neg(q*m + h)})
			}
		}
	}
	return clauses
}

func loadClauses(s *sat.Solver, nVars int, clauses [][]sat.Literal) {
	s.AddVariables(nVars)
	for _, c := range clauses {
		s.AddClause(c)
	}
}

func TestEmptySolver(t *testing.T) {
	s := sat.NewDefaultSolver()

	require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))
	require.Equal(t, 0, s.NumVariables())
	require.Empty(t, s.Model())
}

func TestTriviallyUnsat(t *testing.T) {
	s := sat.NewDefaultSolver()
	a := lit(s.AddVariable())

	require.True(t, s.AddClause([]sat.Literal{a}))
	require.False(t, s.AddClause([]sat.Literal{a.Opposite()}))
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))

	// The unsatisfiable state is sticky until Restart.
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestSimpleUnsat(t *testing.T) {
	s := sat.NewDefaultSolver()
	a := lit(s.AddVariable())
	b := lit(s.AddVariable())

	s.AddClause([]sat.Literal{a, b})
	s.AddClause([]sat.Literal{a.Opposite()})
	require.False(t, s.AddClause([]sat.Literal{b.Opposite()}))

	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestEmptyClauseIsUnsat(t *testing.T) {
	s := sat.NewDefaultSolver()
	s.AddVariables(2)

	require.False(t, s.AddClause(nil))
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

// TestDiscardedClausesDoNotCount checks that NumClauses only counts clauses
// actually stored in the database: units, tautologies, clauses already true
// at the root and clauses collapsing to units are all discarded on addition.
func TestDiscardedClausesDoNotCount(t *testing.T) {
	s := sat.NewDefaultSolver()
	s.AddVariables(4)

	s.AddClause([]sat.Literal{lit(0)}) // unit, enqueued directly
	require.Equal(t, 0, s.NumClauses())

	s.AddClause([]sat.Literal{lit(1), lit(2)}) // stored
	require.Equal(t, 1, s.NumClauses())

	s.AddClause([]sat.Literal{neg(1), lit(2), lit(0)}) // true at the root
	require.Equal(t, 1, s.NumClauses())

	s.AddClause([]sat.Literal{lit(1), neg(1), lit(2)}) // tautology
	require.Equal(t, 1, s.NumClauses())

	s.AddClause([]sat.Literal{neg(0), lit(1)}) // collapses to the unit 1
	require.Equal(t, 1, s.NumClauses())

	s.AddClause([]sat.Literal{lit(2), lit(3)}) // stored
	require.Equal(t, 2, s.NumClauses())
}

func TestModelSoundness(t *testing.T) {
	// Satisfiable pigeonhole instance: 4 pigeons, 4 holes.
	s := sat.NewDefaultSolver()
	loadClauses(s, 16, pigeonhole(4, 4))

	require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))

	model := s.Model()
	for _, clause := range s.Clauses() {
		ok := false
		for _, l := range clause {
			v := model[l.VarID()]
			if (l.IsPositive() && v == sat.True) || (!l.IsPositive() && v == sat.False) {
				ok = true
				break
			}
		}
		require.True(t, ok, "clause %v not satisfied by the model", clause)
	}
}

func TestPigeonholeUnsat(t *testing.T) {
	s := sat.NewDefaultSolver()
	loadClauses(s, 20, pigeonhole(5, 4))

	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestIncrementality(t *testing.T) {
	type step struct {
		clause []sat.Literal
		want   sat.Status
	}
	steps := []step{
		{[]sat.Literal{lit(0), lit(1)}, sat.Sat},
		{[]sat.Literal{neg(0)}, sat.Sat},
		{[]sat.Literal{neg(1), lit(2)}, sat.Sat},
		{[]sat.Literal{neg(2)}, sat.Unsat},
	}

	// Incremental: one solver, add-solve-add-solve.
	inc := sat.NewDefaultSolver()
	inc.AddVariables(3)
	got := []sat.Status{}
	for _, st := range steps {
		inc.AddClause(st.clause)
		got = append(got, inc.Solve(nil, sat.Budget{}))
	}

	// From scratch: a fresh solver per prefix.
	want := []sat.Status{}
	for i := range steps {
		fresh := sat.NewDefaultSolver()
		fresh.AddVariables(3)
		for _, st := range steps[:i+1] {
			fresh.AddClause(st.clause)
		}
		want = append(want, fresh.Solve(nil, sat.Budget{}))
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("incremental and from-scratch outcomes differ (-want +got):\n%s", diff)
	}
	for i, st := range steps {
		require.Equal(t, st.want, got[i], "step %d", i)
	}
}

// addSAT2004Example loads the example CNF from "On Computing Minimum
// Unsatisfiable Cores" (SAT 2004), with variables x4..x9 used as activation
// assumptions for the six clauses. Returns the literals x1..x9 indexed from 1.
func addSAT2004Example(s *sat.Solver) []sat.Literal {
	x := make([]sat.Literal, 10)
	for i := 1; i <= 9; i++ {
		x[i] = lit(s.AddVariable())
	}
	s.AddClause([]sat.Literal{x[4].Opposite(), x[1], x[3].Opposite()})
	s.AddClause([]sat.Literal{x[5].Opposite(), x[2]})
	s.AddClause([]sat.Literal{x[6].Opposite(), x[2].Opposite(), x[3]})
	s.AddClause([]sat.Literal{x[7].Opposite(), x[2].Opposite(), x[3].Opposite()})
	s.AddClause([]sat.Literal{x[8].Opposite(), x[2], x[3]})
	s.AddClause([]sat.Literal{x[9].Opposite(), x[1].Opposite(), x[2], x[3].Opposite()})
	return x
}

func TestUnsatCore(t *testing.T) {
	s := sat.NewDefaultSolver()
	x := addSAT2004Example(s)

	require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))

	assumptions := []sat.Literal{x[4], x[5], x[6], x[7], x[8], x[9]}
	require.Equal(t, sat.Unsat, s.Solve(assumptions, sat.Budget{}))

	core := s.Core()
	require.NotEmpty(t, core)

	// The core is a subset of the negated assumptions...
	negated := map[sat.Literal]bool{}
	for _, a := range assumptions {
		negated[a.Opposite()] = true
	}
	for _, l := range core {
		require.True(t, negated[l], "core literal %v is not a negated assumption", l)
	}

	// ... corresponding to a subset of {x5, x6, x7} ...
	coreSet := map[int]bool{}
	for _, l := range core {
		require.Contains(t, []int{x[5].VarID(), x[6].VarID(), x[7].VarID()}, l.VarID())
		coreSet[l.VarID()] = true
	}

	// ... that is itself unsatisfiable.
	coreAssumptions := make([]sat.Literal, 0, len(core))
	for _, l := range core {
		coreAssumptions = append(coreAssumptions, l.Opposite())
	}
	require.Equal(t, sat.Unsat, s.Solve(coreAssumptions, sat.Budget{}))

	// The complement activation set is satisfiable.
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{x[4], x[8], x[9]}, sat.Budget{}))
}

func TestUnsatCoreSubsets(t *testing.T) {
	s := sat.NewDefaultSolver()
	x := addSAT2004Example(s)

	for _, assumptions := range [][]sat.Literal{
		{x[4], x[5], x[6], x[7], x[8], x[9]},
		{x[4], x[5], x[6], x[7], x[8]},
		{x[4], x[5], x[6], x[7], x[9]},
		{x[4], x[6], x[7], x[8], x[9]},
		{x[5], x[6], x[7], x[8], x[9]},
		{x[4], x[5], x[6], x[7]},
		{x[5], x[6], x[7], x[8]},
		{x[5], x[6], x[7], x[9]},
		{x[5], x[6], x[7]},
	} {
		require.Equal(t, sat.Unsat, s.Solve(assumptions, sat.Budget{}))
	}
}

func TestDoubleAssumptionsSolveAfterSolve(t *testing.T) {
	s := sat.NewDefaultSolver()
	zero := lit(s.AddVariable())
	a := lit(s.AddVariable())
	b := lit(s.AddVariable())
	f := lit(s.AddVariable())

	s.AddClause([]sat.Literal{zero.Opposite()})
	s.AddClause([]sat.Literal{a.Opposite(), b, f})
	s.AddClause([]sat.Literal{a, b.Opposite(), f})
	s.AddClause([]sat.Literal{a, b, f.Opposite()})
	s.AddClause([]sat.Literal{a.Opposite(), b.Opposite(), f.Opposite()})

	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{f}, sat.Budget{}))
	require.Equal(t, sat.Unsat, s.Solve([]sat.Literal{zero}, sat.Budget{}))
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{f, f}, sat.Budget{}))
}

func TestCheckpointRollback(t *testing.T) {
	s := sat.NewDefaultSolver()
	zero := lit(s.AddVariable())
	a := lit(s.AddVariable())
	b := lit(s.AddVariable())
	f := lit(s.AddVariable())

	s.AddClause([]sat.Literal{zero.Opposite()})
	s.AddClause([]sat.Literal{a.Opposite(), b, f})
	s.AddClause([]sat.Literal{a, b.Opposite(), f})
	s.AddClause([]sat.Literal{a, b, f.Opposite()})
	s.AddClause([]sat.Literal{a.Opposite(), b.Opposite(), f.Opposite()})

	require.Equal(t, 4, s.NumVariables())
	require.Equal(t, 4, s.NumClauses())
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{f}, sat.Budget{}))

	s.Checkpoint()
	g := lit(s.AddVariable())
	s.AddClause([]sat.Literal{a.Opposite(), b, f.Opposite()})
	s.AddClause([]sat.Literal{a, b.Opposite(), f.Opposite()})
	s.AddClause([]sat.Literal{a, b, f, g})
	s.AddClause([]sat.Literal{a.Opposite(), b.Opposite(), f})
	require.Equal(t, sat.Unsat, s.Solve([]sat.Literal{f, g.Opposite()}, sat.Budget{}))

	s.Rollback()
	require.Equal(t, 4, s.NumVariables())
	require.Equal(t, 4, s.NumClauses())
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{f}, sat.Budget{}))
}

func TestNestedCheckpoints(t *testing.T) {
	s := sat.NewDefaultSolver()
	a := lit(s.AddVariable())
	b := lit(s.AddVariable())
	s.AddClause([]sat.Literal{a, b})

	s.Checkpoint()
	s.AddClause([]sat.Literal{a.Opposite(), b})

	s.Checkpoint()
	c := lit(s.AddVariable())
	s.AddClause([]sat.Literal{b.Opposite(), c})
	s.AddClause([]sat.Literal{c.Opposite()})
	require.Equal(t, sat.Unsat, s.Solve([]sat.Literal{b}, sat.Budget{}))

	s.Rollback()
	require.Equal(t, 2, s.NumVariables())
	require.Equal(t, 2, s.NumClauses())
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{b}, sat.Budget{}))

	s.Rollback()
	require.Equal(t, 1, s.NumClauses())
	require.Equal(t, sat.Sat, s.Solve([]sat.Literal{a.Opposite()}, sat.Budget{}))
}

func TestRestart(t *testing.T) {
	s := sat.NewDefaultSolver()
	s.AddVariables(2)
	s.AddClause([]sat.Literal{lit(0), lit(1)})
	s.AddClause([]sat.Literal{neg(0)})
	s.AddClause([]sat.Literal{neg(1)})
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))

	s.Restart()
	require.Equal(t, 0, s.NumVariables())
	require.Equal(t, 0, s.NumClauses())
	require.NotEqual(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestBudgetInterrupt(t *testing.T) {
	s := sat.NewDefaultSolver()
	loadClauses(s, 12, pigeonhole(4, 3))

	budget := sat.Budget{Interrupt: func() bool { return true }}
	require.Equal(t, sat.Undef, s.Solve(nil, budget))

	// The solver stays usable after a cancelled solve.
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestConflictBudget(t *testing.T) {
	s := sat.NewDefaultSolver()
	loadClauses(s, 30, pigeonhole(6, 5))

	require.Equal(t, sat.Undef, s.Solve(nil, sat.Budget{MaxConflicts: 1}))

	// Learnt clauses are kept; finishing the search still proves unsat.
	require.Equal(t, sat.Unsat, s.Solve(nil, sat.Budget{}))
}

func TestRandomPhaseReproducible(t *testing.T) {
	solveOnce := func(seed int64) []sat.LBool {
		s := sat.NewDefaultSolver()
		s.AddVariables(16)
		s.SetRandomPhase(seed)
		require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))
		return s.Model()
	}

	first := solveOnce(42)
	second := solveOnce(42)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("same seed should give the same model (-first +second):\n%s", diff)
	}
}
