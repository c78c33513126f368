// 01   Aug. 06, 2026   Initial version.

/*
Package nlo ("nonlinear object") provides a suite of Go language tools for
bridging symbolic mixed continuous/integer nonlinear programs to external
AMPL-compatible solvers (Bonmin, Couenne, Ipopt, SCIP, ...). It is intended
for two sets of users: (i) researchers building modeling layers that need an
NL writer/SOL reader without adopting a full modeling language, and (ii)
users wanting easy Go access to any solver that understands the "-AMPL"
calling convention.

Some of the main functions include:

	- building a Model directly from expression trees or from a dense
	  linear system
	- decomposing each expression into a linear coefficient map, a constant,
	  and a residual nonlinear subtree
	- writing the Model out in NL format and invoking an external solver
	- reading back the solver's SOL file and reconstituting the objective

Expression Decomposition

Package nlo implements the expression-tree analysis described by the NL file
format's originating papers (Gay, "Hooking Your Solver to AMPL"). Each user
expression is classified bottom-up into Const, Linear, or Nonlinear at every
node, constants are pulled upward, and linear terms are extracted into a
LinearMap, leaving only a residual nonlinear subtree to be serialized in
prefix notation.

Creating Models

Models can be created in two ways:

  - Built from an NlpProvider that yields expression trees for the objective
    and each constraint, via LoadNonlinearProblem.
  - Built directly from a dense linear system (a *mat.Dense), via
    LoadLinearProblem. No sparse matrix type is accepted.

Interacting with Solvers

Once a Model is populated, Solver.Optimize writes it to an NL file, spawns the
configured solver binary with the "-AMPL" calling convention, waits for it to
exit, and parses the resulting SOL file back into the Model.

	var slv = nlo.NewSolver("ipopt", nil)
	m := nlo.NewModel(slv)
	...
	if err := m.Optimize(); err != nil {
		fmt.Printf("nlo returned the following error: %s\n", err)
		return
	}
	...

The Model exposes Status, GetObjVal, and GetSolution to retrieve the outcome
once Optimize returns, regardless of whether the solver actually converged;
Status distinguishes Optimal from Infeasible, Unbounded, UserLimit, and Error.

Tutorial and Function Exerciser

The executable provided with the package (cmd/nlorun) illustrates how the nlo
package can be used to build, solve, and inspect a handful of sample problems.
*/
package nlo
