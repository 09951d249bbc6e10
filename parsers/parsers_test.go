package parsers_test

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/go-bool/boolkit/parsers"
	"github.com/go-bool/boolkit/sat"
)

const instance = `c a small satisfiable instance
p cnf 3 3
1 -3 0
2 3 -1 0
-2 3 0
`

func TestLoadDIMACS(t *testing.T) {
	file := filepath.Join(t.TempDir(), "instance.cnf")
	require.NoError(t, os.WriteFile(file, []byte(instance), 0o644))

	s := sat.NewDefaultSolver()
	require.NoError(t, parsers.LoadDIMACS(file, false, s))

	require.Equal(t, 3, s.NumVariables())
	require.Equal(t, 3, s.NumClauses())
	require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))
}

func TestLoadDIMACSGzip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "instance.cnf.gz")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(instance))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(file, buf.Bytes(), 0o644))

	s := sat.NewDefaultSolver()
	require.NoError(t, parsers.LoadDIMACS(file, true, s))
	require.Equal(t, 3, s.NumVariables())
	require.Equal(t, sat.Sat, s.Solve(nil, sat.Budget{}))
}

func TestDumpDIMACSRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "instance.cnf")
	require.NoError(t, os.WriteFile(file, []byte(instance), 0o644))

	s := sat.NewDefaultSolver()
	require.NoError(t, parsers.LoadDIMACS(file, false, s))

	var buf bytes.Buffer
	require.NoError(t, parsers.DumpDIMACS(&buf, s))

	dumped := filepath.Join(dir, "dumped.cnf")
	require.NoError(t, os.WriteFile(dumped, buf.Bytes(), 0o644))

	reloaded := sat.NewDefaultSolver()
	require.NoError(t, parsers.LoadDIMACS(dumped, false, reloaded))

	require.Equal(t, s.NumVariables(), reloaded.NumVariables())
	if diff := cmp.Diff(s.Clauses(), reloaded.Clauses()); diff != "" {
		t.Errorf("clause mismatch after round trip (-orig +reloaded):\n%s", diff)
	}
}

func TestReadModels(t *testing.T) {
	file := filepath.Join(t.TempDir(), "instance.cnf.models")
	require.NoError(t, os.WriteFile(file, []byte("1 -2 3 0\n-1 2 3 0\n"), 0o644))

	models, err := parsers.ReadModels(file)
	require.NoError(t, err)
	want := [][]bool{{true, false, true}, {false, true, true}}
	if diff := cmp.Diff(want, models); diff != "" {
		t.Errorf("model mismatch (-want +got):\n%s", diff)
	}
}
