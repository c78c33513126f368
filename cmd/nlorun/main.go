//==============================================================================
// nlorun: Executable demonstrating nlo usage against sample problems.
// 01   Aug. 06, 2026   First version.

package main

import (
	"fmt"
	"math"

	"github.com/go-opt/nlsolve"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Default solver command and options. Override these if testing against a
// different AMPL-compatible solver than the one installed on PATH.
var solverCmd string = "ipopt"
var solverOpts = nlo.Options{}

var negInf = math.Inf(-1)
var posInf = math.Inf(1)

// lastModel holds the outcome of the most recently run scenario, so option
// 7 can display it without re-solving.
var lastModel *nlo.Model

//==============================================================================

// printOptions displays the options available for testing.
func printOptions() {
	fmt.Println("\nAvailable Options:")
	fmt.Println(" 0 - EXIT program")
	fmt.Println(" 1 - solve a small linear minimization problem")
	fmt.Println(" 2 - solve a problem with an equality constraint")
	fmt.Println(" 3 - solve a mixed continuous/integer nonlinear problem")
	fmt.Println(" 4 - attempt a deliberately infeasible problem")
	fmt.Println(" 5 - attempt a deliberately unbounded problem")
	fmt.Println(" 6 - attempt to run a nonexistent solver executable")
	fmt.Println(" 7 - display the last solution obtained")
}

//==============================================================================

// wpRunLinear illustrates LoadLinearProblem: minimize c'x subject to Ax in
// [g_l, g_u], x in [x_l, x_u], bypassing the expression-tree pipeline
// entirely since every term is already linear.
// In case of failure, function returns an error.
func wpRunLinear() error {
	fmt.Println("\nMinimize x1 + 2*x2 subject to x1 + x2 <= 10, x1,x2 >= 0.")

	A := mat.NewDense(1, 2, []float64{1, 1})
	xL := []float64{0, 0}
	xU := []float64{10, 10}
	c := []float64{1, 2}
	gL := []float64{negInf}
	gU := []float64{10}

	slv := nlo.NewSolver(solverCmd, solverOpts)
	m := nlo.NewModel(slv)
	if err := m.LoadLinearProblem(A, xL, xU, c, gL, gU, nlo.Minimize); err != nil {
		return errors.Wrap(err, "wpRunLinear failed to load problem")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// equalityProvider is a trivial NlpProvider for demonstrating an equality
// constraint routed through the full expression-tree pipeline.
type equalityProvider struct{}

func (equalityProvider) InitExprGraph() error { return nil }

func (equalityProvider) ConstraintExpr(i int) (*nlo.RelExpr, error) {
	// x1 + x2 == 5
	sum := nlo.MustCall(nlo.OpPlus, nlo.Var(1), nlo.Var(2))
	return nlo.NewTernaryRel(sum, nlo.OpEQ, nlo.Const(5)), nil
}

func (equalityProvider) ObjectiveExpr() (*nlo.Expr, error) {
	// minimize x1 - x2
	return nlo.MustCall(nlo.OpMinus, nlo.Var(1), nlo.Var(2)), nil
}

// wpRunEquality illustrates LoadNonlinearProblem with an equality
// constraint that happens to decompose entirely linearly.
// In case of failure, function returns an error.
func wpRunEquality() error {
	fmt.Println("\nMinimize x1 - x2 subject to x1 + x2 == 5, x1,x2 in [0,10].")

	xL := []float64{0, 0}
	xU := []float64{10, 10}
	gL := []float64{0}
	gU := []float64{0}

	slv := nlo.NewSolver(solverCmd, solverOpts)
	m := nlo.NewModel(slv)
	if err := m.LoadNonlinearProblem(2, 1, xL, xU, gL, gU, nlo.Minimize, equalityProvider{}); err != nil {
		return errors.Wrap(err, "wpRunEquality failed to load problem")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// mixedIntNlProvider is an NlpProvider for a mixed continuous/integer
// nonlinear objective: x1^2 + x2, x2 declared Integer.
type mixedIntNlProvider struct{}

func (mixedIntNlProvider) InitExprGraph() error { return nil }

func (mixedIntNlProvider) ConstraintExpr(i int) (*nlo.RelExpr, error) {
	// x1 + x2 <= 10
	sum := nlo.MustCall(nlo.OpPlus, nlo.Var(1), nlo.Var(2))
	return nlo.NewTernaryRel(sum, nlo.OpLE, nlo.Const(10)), nil
}

func (mixedIntNlProvider) ObjectiveExpr() (*nlo.Expr, error) {
	sq := nlo.MustCall(nlo.OpPow, nlo.Var(1), nlo.Const(2))
	return nlo.MustCall(nlo.OpPlus, sq, nlo.Var(2)), nil
}

// wpRunMixedIntNl illustrates LoadNonlinearProblem with a true nonlinear
// residual left in the objective, and one variable constrained to Integer.
// In case of failure, function returns an error.
func wpRunMixedIntNl() error {
	fmt.Println("\nMinimize x1^2 + x2 subject to x1 + x2 <= 10, x1 in [0,10], x2 integer in [0,10].")

	xL := []float64{0, 0}
	xU := []float64{10, 10}
	gL := []float64{negInf}
	gU := []float64{10}

	slv := nlo.NewSolver(solverCmd, solverOpts)
	m := nlo.NewModel(slv)
	if err := m.LoadNonlinearProblem(2, 1, xL, xU, gL, gU, nlo.Minimize, mixedIntNlProvider{}); err != nil {
		return errors.Wrap(err, "wpRunMixedIntNl failed to load problem")
	}
	if err := m.SetVarType([]nlo.VarType{nlo.Continuous, nlo.Integer}); err != nil {
		return errors.Wrap(err, "wpRunMixedIntNl failed to set variable types")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// wpRunInfeasible builds a linear problem with two contradictory constraints
// on the same variable (x1 >= 5 and x1 <= 1) and hands it to the solver, which
// is expected to report Infeasible rather than the loader itself rejecting
// it (the loader only rejects a constraint with neither bound present).
// In case of failure, function returns an error.
func wpRunInfeasible() error {
	fmt.Println("\nAttempt x1 >= 5 and x1 <= 1 simultaneously (expect Infeasible).")

	A := mat.NewDense(2, 1, []float64{1, 1})
	xL := []float64{negInf}
	xU := []float64{posInf}
	c := []float64{1}
	gL := []float64{5, negInf}
	gU := []float64{posInf, 1}

	slv := nlo.NewSolver(solverCmd, solverOpts)
	m := nlo.NewModel(slv)
	if err := m.LoadLinearProblem(A, xL, xU, c, gL, gU, nlo.Minimize); err != nil {
		return errors.Wrap(err, "wpRunInfeasible failed to load problem")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// wpRunUnbounded builds a linear problem whose only constraint (x1 <= 10)
// does not limit the objective's descent, expecting the solver to report
// Unbounded.
// In case of failure, function returns an error.
func wpRunUnbounded() error {
	fmt.Println("\nMinimize x1 with no lower bound, subject only to x1 <= 10 (expect Unbounded).")

	A := mat.NewDense(1, 1, []float64{1})
	xL := []float64{negInf}
	xU := []float64{posInf}
	c := []float64{1}
	gL := []float64{negInf}
	gU := []float64{10}

	slv := nlo.NewSolver(solverCmd, solverOpts)
	m := nlo.NewModel(slv)
	if err := m.LoadLinearProblem(A, xL, xU, c, gL, gU, nlo.Minimize); err != nil {
		return errors.Wrap(err, "wpRunUnbounded failed to load problem")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// wpRunBadSolver reuses the small linear minimization problem but points the
// Solver at a nonexistent executable. The process cannot be started, so
// Optimize returns an error (this is not the SolverFailure path, which
// records a non-zero exit code of a solver that did run).
// In case of failure, function returns an error.
func wpRunBadSolver() error {
	fmt.Println("\nRe-running the small linear minimization problem against a nonexistent solver executable.")

	A := mat.NewDense(1, 2, []float64{1, 1})
	xL := []float64{0, 0}
	xU := []float64{10, 10}
	c := []float64{1, 2}
	gL := []float64{negInf}
	gU := []float64{10}

	slv := nlo.NewSolver("nlo-nonexistent-solver", nil)
	m := nlo.NewModel(slv)
	if err := m.LoadLinearProblem(A, xL, xU, c, gL, gU, nlo.Minimize); err != nil {
		return errors.Wrap(err, "wpRunBadSolver failed to load problem")
	}
	lastModel = m
	return runAndReport(m)
}

//==============================================================================

// runAndReport calls Optimize and prints the outcome. A nonzero solver exit
// code or a parseable-but-unsuccessful SOL file is not treated as an error
// here; only I/O and format failures on this side of the process boundary
// are.
func runAndReport(m *nlo.Model) error {
	if err := m.Optimize(); err != nil {
		return errors.Wrap(err, "runAndReport failed")
	}
	wpPrintSolution(m)
	return nil
}

//==============================================================================

// wpPrintSolution prints the Model's outcome in a formatted manner.
func wpPrintSolution(m *nlo.Model) {
	fmt.Printf("\nStatus:          %s\n", m.Status())
	fmt.Printf("Solve result:    %s (num %d)\n", m.GetSolveResult(), m.GetSolveResultNum())
	fmt.Printf("Solve exit code: %d\n", m.GetSolveExitCode())
	fmt.Printf("Objective value: %g\n", m.GetObjVal())
	fmt.Printf("Solution vector: %v\n", m.GetSolution())
	if msg := m.GetSolveMessage(); msg != "" {
		fmt.Printf("Solver message:\n%s\n", msg)
	}
}

//==============================================================================

// runMainWrapper displays the menu of options available, prompts the user
// to enter one, and executes the corresponding command. The function
// accepts no arguments and returns no values.
func runMainWrapper() {
	var cmdOption string
	var err error

	fmt.Println("\nDEMONSTRATION OF NLO FUNCTIONALITY.")

	for {
		printOptions()
		cmdOption = ""
		fmt.Printf("\nEnter a new option: ")
		fmt.Scanln(&cmdOption)

		switch cmdOption {

		case "0":
			fmt.Println("\n===> NORMAL PROGRAM TERMINATION <===")
			return

		case "1":
			if err = wpRunLinear(); err != nil {
				fmt.Println(err)
			}

		case "2":
			if err = wpRunEquality(); err != nil {
				fmt.Println(err)
			}

		case "3":
			if err = wpRunMixedIntNl(); err != nil {
				fmt.Println(err)
			}

		case "4":
			if err = wpRunInfeasible(); err != nil {
				fmt.Println(err)
			}

		case "5":
			if err = wpRunUnbounded(); err != nil {
				fmt.Println(err)
			}

		case "6":
			if err = wpRunBadSolver(); err != nil {
				fmt.Println(err)
			}

		case "7":
			if lastModel == nil {
				fmt.Println("No scenario has been run yet.")
			} else {
				wpPrintSolution(lastModel)
			}

		default:
			fmt.Printf("Unsupported option: '%s'\n", cmdOption)
		}
	}
}

//==============================================================================

// main function calls the main wrapper. It accepts no arguments and
// returns no values.
func main() {
	runMainWrapper()
}

//============================ END OF FILE =====================================
