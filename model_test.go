package nlo

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// writeFakeSolver drops an executable shell script at dir/name that ignores
// its arguments and writes a canned SOL fixture to "model.sol" in whatever
// directory it is run from, mimicking how a real AMPL solver leaves its
// output alongside the NL file Solver.Optimize wrote.
func writeFakeSolver(t *testing.T, dir, name, solFixture string) string {
	path := filepath.Join(dir, name)
	script := "#!/bin/sh\ncat > model.sol <<'NLOEOF'\n" + solFixture + "NLOEOF\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake solver script: %v", err)
	}
	return path
}

func buildSimpleLinearModel(t *testing.T) *Model {
	A := mat.NewDense(1, 2, []float64{1, 1})
	xL := []float64{0, 0}
	xU := []float64{math.Inf(1), math.Inf(1)}
	c := []float64{1, 2}
	gL := []float64{math.Inf(-1)}
	gU := []float64{10}

	m := NewModel(nil)
	if err := m.LoadLinearProblem(A, xL, xU, c, gL, gU, Minimize); err != nil {
		t.Fatalf("LoadLinearProblem returned error: %v", err)
	}
	return m
}

func TestOptimizeEndToEndOptimal(t *testing.T) {
	dir := t.TempDir()
	fixture := "fake solver ok\n" +
		"\n" +
		"Options\n" +
		"3\n0\n0\n" +
		"1\n0\n2\n2\n" +
		"0\n0\n" +
		"objno 0 0\n"
	scriptPath := writeFakeSolver(t, dir, "fakesolve.sh", fixture)

	m := buildSimpleLinearModel(t)
	m.solver = NewSolver(scriptPath, nil)

	if err := m.Optimize(); err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if m.Status() != Optimal {
		t.Errorf("Status() = %v, want Optimal", m.Status())
	}
	if m.GetSolveResult() != "solved" {
		t.Errorf("GetSolveResult() = %q, want \"solved\"", m.GetSolveResult())
	}
	sol := m.GetSolution()
	if sol[0] != 0 || sol[1] != 0 {
		t.Errorf("GetSolution() = %v, want [0 0]", sol)
	}
	if m.GetObjVal() != 0 {
		t.Errorf("GetObjVal() = %v, want 0", m.GetObjVal())
	}
	if m.GetSolveExitCode() != 0 {
		t.Errorf("GetSolveExitCode() = %d, want 0", m.GetSolveExitCode())
	}
}

func TestOptimizeEndToEndInfeasible(t *testing.T) {
	dir := t.TempDir()
	fixture := "infeasible problem\n" +
		"\n" +
		"Options\n" +
		"3\n0\n0\n" +
		"1\n0\n2\n0\n" +
		"objno 0 200\n"
	scriptPath := writeFakeSolver(t, dir, "fakesolve.sh", fixture)

	m := buildSimpleLinearModel(t)
	m.solver = NewSolver(scriptPath, nil)

	if err := m.Optimize(); err != nil {
		t.Fatalf("Optimize returned error: %v", err)
	}
	if m.Status() != Infeasible {
		t.Errorf("Status() = %v, want Infeasible", m.Status())
	}
	if !math.IsNaN(m.GetObjVal()) {
		t.Errorf("GetObjVal() = %v, want NaN (n_vars_to_read was 0)", m.GetObjVal())
	}
}

func TestOptimizeSolverExitNonzero(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "failsolve.sh")
	script := "#!/bin/sh\nexit 7\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake solver script: %v", err)
	}

	m := buildSimpleLinearModel(t)
	m.solver = NewSolver(path, nil)

	if err := m.Optimize(); err != nil {
		t.Fatalf("Optimize returned error for a nonzero solver exit: %v", err)
	}
	if m.Status() != Error {
		t.Errorf("Status() = %v, want Error", m.Status())
	}
	if m.GetSolveResultNum() != 999 {
		t.Errorf("GetSolveResultNum() = %d, want 999", m.GetSolveResultNum())
	}
	if m.GetSolveExitCode() != 7 {
		t.Errorf("GetSolveExitCode() = %d, want 7", m.GetSolveExitCode())
	}
}

func TestOptimizeSolverMissing(t *testing.T) {
	m := buildSimpleLinearModel(t)
	m.solver = NewSolver("/nonexistent/nlo-nonexistent-solver", nil)

	if err := m.Optimize(); err == nil {
		t.Errorf("Optimize with a nonexistent solver binary: got no error")
	}
}

func TestOptimizeNoSolver(t *testing.T) {
	m := buildSimpleLinearModel(t)
	m.solver = nil

	if err := m.Optimize(); err == nil {
		t.Errorf("Optimize with no associated solver: got no error")
	}
}

func TestSetVarTypeRebuildsIndexMaps(t *testing.T) {
	m := buildSimpleLinearModel(t)

	if err := m.SetVarType([]VarType{Integer, Continuous}); err != nil {
		t.Fatalf("SetVarType returned error: %v", err)
	}
	// Variable 2 (now the sole continuous variable) lands in the
	// linear-continuous bucket, ahead of variable 1's linear-integer bucket.
	if got := m.vIndexMap[1]; got != 0 {
		t.Errorf("vIndexMap[1] (var 2, linear-continuous) = %d, want 0", got)
	}
	if got := m.vIndexMap[0]; got != 1 {
		t.Errorf("vIndexMap[0] (var 1, linear-integer) = %d, want 1", got)
	}
}

func TestSetWarmStart(t *testing.T) {
	m := buildSimpleLinearModel(t)
	if err := m.SetWarmStart([]float64{1, 2}); err != nil {
		t.Fatalf("SetWarmStart returned error: %v", err)
	}
	if m.x0[0] != 1 || m.x0[1] != 2 {
		t.Errorf("x0 = %v, want [1 2]", m.x0)
	}
	if err := m.SetWarmStart([]float64{1}); err == nil {
		t.Errorf("SetWarmStart with wrong length: got no error")
	}
}
