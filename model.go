package nlo

// model.go: the Model, the sole owner of every expression tree, bound
// array, and permutation built while loading and solving a problem. It is
// populated by LoadNonlinearProblem/LoadLinearProblem, finalized by
// Optimize, and read-only thereafter - a PsCtrl-in/PsSoln-out split folded
// into a single mutable struct instead of package-global Rows/Cols/Elems,
// since a Model here is never shared across concurrent solves.

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// VarType is the category of a decision variable.
type VarType int

const (
	Continuous VarType = iota
	Integer
	Binary
)

func (t VarType) String() string {
	switch t {
	case Continuous:
		return "Continuous"
	case Integer:
		return "Integer"
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Sense is the optimization direction.
type Sense int

const (
	Minimize Sense = iota
	Maximize
)

func (s Sense) String() string {
	if s == Maximize {
		return "Maximize"
	}
	return "Minimize"
}

// Status is the outcome of a solve.
type Status int

const (
	NotSolved Status = iota
	Optimal
	Infeasible
	Unbounded
	UserLimit
	Error
)

func (s Status) String() string {
	switch s {
	case NotSolved:
		return "NotSolved"
	case Optimal:
		return "Optimal"
	case Infeasible:
		return "Infeasible"
	case Unbounded:
		return "Unbounded"
	case UserLimit:
		return "UserLimit"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Model is the mutable aggregate built by LoadNonlinearProblem or
// LoadLinearProblem, then consumed by Solver.Optimize.
type Model struct {
	solver *Solver

	nvar, ncon int

	xL, xU []float64 // variable bounds, length nvar
	gL, gU []float64 // constraint bounds, length ncon, post-decomposition
	rCodes []int      // relation codes, length ncon

	jCounts []int // Jacobian column counts, length nvar

	linConstrs []LinearMap // per-constraint linear coefficients, length ncon
	linObj     LinearMap   // objective linear coefficients

	constrs     []*Expr // residual nonlinear trees, length ncon (Const(0) if none)
	obj         *Expr   // residual nonlinear tree, or nil if the objective is absent
	objConstant float64 // constant pulled out of the objective by the decomposer

	varLinCon []Linearity // nonlinear-in-any-constraint tag, length nvar
	varLinObj []Linearity // nonlinear-in-objective tag, length nvar
	conLin    []Linearity // length ncon
	objLin    Linearity

	varTypes []VarType // length nvar
	sense    Sense

	x0 []float64 // warm start, length nvar

	vIndexMap    []int // forward: original (1-based) -> NL index (0-based), length nvar
	vIndexMapRev []int // reverse: NL index (0-based) -> original (1-based), length nvar
	cIndexMap    []int // forward: original (1-based) -> NL index (0-based), length ncon
	cIndexMapRev []int // reverse: NL index (0-based) -> original (1-based), length ncon

	solution       []float64
	objVal         float64
	status         Status
	solveResultNum int
	solveResult    string
	solveMessage   string
	solveExitCode  int
}

// NewModel creates an empty Model bound to slv. Loading the problem happens
// via a subsequent call to LoadNonlinearProblem or LoadLinearProblem.
func NewModel(slv *Solver) *Model {
	return &Model{
		solver: slv,
		status: NotSolved,
		objVal: math.NaN(),
	}
}

func checkLen(name string, got, want int) error {
	if got != want {
		return errors.Errorf("%s has length %d, expected %d", name, got, want)
	}
	return nil
}

// LoadNonlinearProblem populates m from bound arrays and an NlpProvider
// yielding the objective and constraint expression trees. In case of
// failure (mismatched slice lengths, an unsupported opcode, a constraint
// with neither a lower nor an upper bound, or a NormalizeConstraint error)
// function returns an error and leaves m in a partially populated state.
func (m *Model) LoadNonlinearProblem(nvar, ncon int, xL, xU, gL, gU []float64, sense Sense, provider NlpProvider) error {
	if err := checkLen("x_l", len(xL), nvar); err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem")
	}
	if err := checkLen("x_u", len(xU), nvar); err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem")
	}
	if err := checkLen("g_l", len(gL), ncon); err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem")
	}
	if err := checkLen("g_u", len(gU), ncon); err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem")
	}

	m.nvar, m.ncon = nvar, ncon
	m.xL = append([]float64(nil), xL...)
	m.xU = append([]float64(nil), xU...)
	m.sense = sense
	m.varTypes = make([]VarType, nvar)
	m.varLinCon = make([]Linearity, nvar)
	m.varLinObj = make([]Linearity, nvar)
	m.x0 = make([]float64, nvar)

	if err := provider.InitExprGraph(); err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem failed to initialize expression graph")
	}

	m.rCodes = make([]int, ncon)
	m.linConstrs = make([]LinearMap, ncon)
	m.constrs = make([]*Expr, ncon)
	m.conLin = make([]Linearity, ncon)

	for i := 1; i <= ncon; i++ {
		rel, err := provider.ConstraintExpr(i)
		if err != nil {
			return errors.Wrapf(err, "LoadNonlinearProblem failed to get constraint %d", i)
		}

		body, lo, up, relCode, err := NormalizeConstraint(rel)
		if err != nil {
			return errors.Wrapf(err, "LoadNonlinearProblem failed to normalize constraint %d", i)
		}
		if math.IsInf(lo, -1) && math.IsInf(up, 1) {
			return errors.Errorf("LoadNonlinearProblem: constraint %d has neither a lower nor an upper bound", i)
		}

		residual, constant, lin, nonlinearVars, overall, err := ProcessExpression(body)
		if err != nil {
			return errors.Wrapf(err, "LoadNonlinearProblem failed to decompose constraint %d", i)
		}
		if err := CheckVars(residual, nvar); err != nil {
			return errors.Wrapf(err, "LoadNonlinearProblem: constraint %d", i)
		}

		// g_l/g_u are caller-owned in/out slices (mirroring the source's
		// mutate-in-place convention for adjusted bounds): the bound
		// extracted from the comparison tree, shifted by the constant
		// pulled out of the expression, is written back into them.
		gL[i-1] = lo - constant
		gU[i-1] = up - constant
		m.rCodes[i-1] = relCode
		m.linConstrs[i-1] = lin
		m.constrs[i-1] = Canonicalize(residual)
		m.conLin[i-1] = overall

		for j := range nonlinearVars {
			m.varLinCon[j-1] = Nonlinear
		}
	}

	m.gL = gL
	m.gU = gU

	objExpr, err := provider.ObjectiveExpr()
	if err != nil {
		return errors.Wrap(err, "LoadNonlinearProblem failed to get objective")
	}
	if objExpr == nil {
		m.obj = nil
		m.linObj = make(LinearMap)
		m.objLin = Linear
	} else {
		residual, constant, lin, nonlinearVars, overall, err := ProcessExpression(objExpr)
		if err != nil {
			return errors.Wrap(err, "LoadNonlinearProblem failed to decompose objective")
		}
		if err := CheckVars(residual, nvar); err != nil {
			return errors.Wrap(err, "LoadNonlinearProblem: objective")
		}
		m.obj = Canonicalize(residual)
		m.linObj = lin
		m.objLin = overall
		m.objConstant = constant

		for j := range nonlinearVars {
			m.varLinObj[j-1] = Nonlinear
		}
	}

	m.buildIndexMaps()
	m.buildJacobianCounts()
	m.solution = make([]float64, nvar)
	m.status = NotSolved
	m.objVal = math.NaN()

	return nil
}

// LoadLinearProblem populates m directly from a dense constraint matrix A
// (ncon x nvar), skipping the expression-tree pipeline entirely: every
// constraint and the objective are linear by construction, so there is no
// residual to decompose. Every cell of A is walked and only its non-zero
// entries are kept; there is no sparse-field fast path to fall back to,
// since a dense matrix does not carry one.
// In case of failure (mismatched slice lengths, or a constraint with neither
// a lower nor an upper bound) function returns an error.
func (m *Model) LoadLinearProblem(A *mat.Dense, xL, xU, c, gL, gU []float64, sense Sense) error {
	ncon, nvar := A.Dims()
	if err := checkLen("x_l", len(xL), nvar); err != nil {
		return errors.Wrap(err, "LoadLinearProblem")
	}
	if err := checkLen("x_u", len(xU), nvar); err != nil {
		return errors.Wrap(err, "LoadLinearProblem")
	}
	if err := checkLen("c", len(c), nvar); err != nil {
		return errors.Wrap(err, "LoadLinearProblem")
	}
	if err := checkLen("g_l", len(gL), ncon); err != nil {
		return errors.Wrap(err, "LoadLinearProblem")
	}
	if err := checkLen("g_u", len(gU), ncon); err != nil {
		return errors.Wrap(err, "LoadLinearProblem")
	}

	m.nvar, m.ncon = nvar, ncon
	m.xL = append([]float64(nil), xL...)
	m.xU = append([]float64(nil), xU...)
	m.gL = append([]float64(nil), gL...)
	m.gU = append([]float64(nil), gU...)
	m.sense = sense
	m.varTypes = make([]VarType, nvar)
	m.varLinCon = make([]Linearity, nvar)
	m.varLinObj = make([]Linearity, nvar)
	m.x0 = make([]float64, nvar)

	m.rCodes = make([]int, ncon)
	for i := 0; i < ncon; i++ {
		switch {
		case gL[i] == gU[i]:
			m.rCodes[i] = 4
		case math.IsInf(gL[i], -1) && math.IsInf(gU[i], 1):
			return errors.Errorf("LoadLinearProblem: constraint %d has neither a lower nor an upper bound", i+1)
		case math.IsInf(gL[i], -1):
			m.rCodes[i] = 1
		case math.IsInf(gU[i], 1):
			m.rCodes[i] = 2
		default:
			m.rCodes[i] = 0
		}
	}

	m.linConstrs = make([]LinearMap, ncon)
	for i := 0; i < ncon; i++ {
		lm := make(LinearMap)
		for j := 0; j < nvar; j++ {
			v := A.At(i, j)
			if v != 0 {
				lm[j+1] = v
			}
		}
		m.linConstrs[i] = lm
	}
	m.constrs = make([]*Expr, ncon)
	for i := range m.constrs {
		m.constrs[i] = Const(0)
	}
	m.conLin = make([]Linearity, ncon)

	m.linObj = make(LinearMap)
	for j := 0; j < nvar; j++ {
		if c[j] != 0 {
			m.linObj[j+1] = c[j]
		}
	}
	m.obj = Const(0)
	m.objLin = Linear

	m.buildIndexMaps()
	m.buildJacobianCounts()
	m.solution = make([]float64, nvar)
	m.status = NotSolved
	m.objVal = math.NaN()

	return nil
}

// SetVarType assigns a category to every variable. In case of failure
// (wrong length, or a category outside {Continuous, Integer, Binary})
// function returns an error.
func (m *Model) SetVarType(categories []VarType) error {
	if err := checkLen("categories", len(categories), m.nvar); err != nil {
		return errors.Wrap(err, "SetVarType")
	}
	for j, c := range categories {
		if c != Continuous && c != Integer && c != Binary {
			return errors.Errorf("SetVarType: variable %d has unsupported category %d", j+1, int(c))
		}
	}
	copy(m.varTypes, categories)
	m.buildIndexMaps()
	return nil
}

// SetWarmStart assigns the initial guess vector. In case of failure (wrong
// length) function returns an error.
func (m *Model) SetWarmStart(x0 []float64) error {
	if err := checkLen("x0", len(x0), m.nvar); err != nil {
		return errors.Wrap(err, "SetWarmStart")
	}
	copy(m.x0, x0)
	return nil
}

// Optimize writes m to an NL file, runs the configured solver, and parses
// its SOL file back into m. In case of failure (an I/O error on either
// file, or a FormatViolation while reading the SOL file) function returns
// an error; a non-zero solver exit code is recorded on m, not returned as
// an error, per §7's SolverFailure policy.
func (m *Model) Optimize() error {
	if m.solver == nil {
		return errors.New("Optimize: model has no associated solver")
	}
	return m.solver.Optimize(m)
}

// Status returns the outcome of the most recent Optimize call.
func (m *Model) Status() Status { return m.status }

// GetSolution returns the solution vector, indexed 1..nvar via slice index
// j-1.
func (m *Model) GetSolution() []float64 { return m.solution }

// GetObjVal returns the reconstituted objective value.
func (m *Model) GetObjVal() float64 { return m.objVal }

// GetSolveResult returns the human-readable solve result ("solved",
// "solved?", "infeasible", "unbounded", "limit", "failure", ...).
func (m *Model) GetSolveResult() string { return m.solveResult }

// GetSolveResultNum returns the raw solve_result_num from the SOL file (or
// 999 if the solver process itself failed).
func (m *Model) GetSolveResultNum() int { return m.solveResultNum }

// GetSolveMessage returns the solver's free-form message block.
func (m *Model) GetSolveMessage() string { return m.solveMessage }

// GetSolveExitCode returns the solver process's exit code.
func (m *Model) GetSolveExitCode() int { return m.solveExitCode }
