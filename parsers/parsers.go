// Package parsers wires DIMACS CNF files to the solver facade: loading
// instances (optionally gzipped), reading model fixtures and dumping a
// solver's clauses back to the wire format.
package parsers

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rhartert/dimacs"

	"github.com/go-bool/boolkit/sat"
)

// SATSolver is the part of the solver facade needed to load an instance.
type SATSolver interface {
	AddVariable() int
	AddClause([]sat.Literal) bool
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses the DIMACS CNF file and loads its CNF formula in the
// given SAT solver.
func LoadDIMACS(filename string, gzipped bool, solver SATSolver) error {
	reader, err := reader(filename, gzipped)
	if err != nil {
		return errors.Wrapf(err, "error reading file %q", filename)
	}
	defer reader.Close()

	b := &builder{solver: solver}
	return dimacs.ReadBuilder(reader, b)
}

// builder wraps the solver to implement dimacs.Builder. Once a clause makes
// the solver trivially unsatisfiable, the remaining clauses are skipped: the
// facade treats further additions as errors, but an unsatisfiable instance
// file is not one.
type builder struct {
	solver SATSolver
	unsat  bool
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return errors.New("not a CNF problem")
	}
	for i := 0; i < nVars; i++ {
		b.solver.AddVariable()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	if b.unsat {
		return nil
	}
	clause := make([]sat.Literal, len(tmpClause))
	for i, l := range tmpClause {
		clause[i] = sat.FromDIMACS(l)
	}
	if !b.solver.AddClause(clause) {
		b.unsat = true
	}
	return nil
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}

// ReadModels returns the list of models (if any) contained in the given file.
func ReadModels(filename string) ([][]bool, error) {
	reader, err := reader(filename, false)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading file %q", filename)
	}
	defer reader.Close()

	b := &modelBuilder{}
	if err := dimacs.ReadBuilder(reader, b); err != nil {
		return nil, err
	}

	return b.models, nil
}

// modelBuilder accumulates models to implement dimacs.Builder.
type modelBuilder struct {
	models [][]bool
}

func (b *modelBuilder) Problem(problem string, nVars int, nClauses int) error {
	return errors.New("model files should not have problem lines")
}

func (b *modelBuilder) Comment(_ string) error {
	return nil // ignore comments
}

func (b *modelBuilder) Clause(tmpClause []int) error {
	model := make([]bool, len(tmpClause))
	for i, l := range tmpClause {
		model[i] = l > 0
	}
	b.models = append(b.models, model)
	return nil
}

// DumpSource is the part of the solver facade needed to dump an instance.
type DumpSource interface {
	NumVariables() int
	Clauses() [][]sat.Literal
}

// DumpDIMACS writes the solver's live clauses as a DIMACS CNF instance:
// a "p cnf V C" header then one clause per line terminated by 0, variables
// numbered from 1.
func DumpDIMACS(w io.Writer, s DumpSource) error {
	bw := bufio.NewWriter(w)
	clauses := s.Clauses()
	if _, err := fmt.Fprintf(bw, "p cnf %d %d\n", s.NumVariables(), len(clauses)); err != nil {
		return err
	}
	for _, clause := range clauses {
		for _, l := range clause {
			if _, err := fmt.Fprintf(bw, "%d ", l.ToDIMACS()); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw, "0"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
