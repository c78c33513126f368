package nlo

// decompose.go: the Decomposer. ProcessExpression takes one raw expression
// (an objective or a constraint body) and splits it into a LinearMap, a
// constant, and a residual nonlinear tree, following the LinearityAnalyzer's
// decoration and the rewrite rules in the component design.

import (
	"github.com/pkg/errors"
)

// LinearMap holds the linear coefficient of each variable that participates
// (linearly or merely by presence in a residual) in one expression. Keys are
// 1-based variable indices.
type LinearMap map[int]float64

// Dot returns the dot product of m with the 1-based solution vector x, i.e.
// sum_j m[j] * x[j-1].
// In case of failure (a key outside [1, len(x)]) function returns an error.
func (m LinearMap) Dot(x []float64) (float64, error) {
	vals := make([]float64, 0, len(m))
	coefs := make([]float64, 0, len(m))
	for j, c := range m {
		if j < 1 || j > len(x) {
			return 0, errors.Errorf("LinearMap.Dot: variable index %d out of range for solution of length %d", j, len(x))
		}
		vals = append(vals, x[j-1])
		coefs = append(coefs, c)
	}
	return dotSlices(coefs, vals), nil
}

// collectVars inserts a zero entry into L for every Var node found anywhere
// in e, per step 1 of the decomposer algorithm: every variable that could
// ultimately need a row in the NL linear segment is pre-registered before
// any pruning happens.
func collectVars(e *Expr, L LinearMap) {
	if e == nil {
		return
	}
	switch e.Kind {
	case KVar:
		if _, ok := L[e.VarIndex]; !ok {
			L[e.VarIndex] = 0
		}
	case KCall:
		for _, a := range e.Args {
			collectVars(a, L)
		}
	}
}

// ResidualVars returns the set of variable indices appearing anywhere in e.
func ResidualVars(e *Expr) map[int]bool {
	vars := make(map[int]bool)
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KVar:
			vars[n.VarIndex] = true
		case KCall:
			for _, a := range n.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return vars
}

// pruneLinear implements prune_linear_terms. Unlike a node-tag switch, it
// recurses structurally through the additive skeleton (+, -, neg, sum)
// regardless of that skeleton's own aggregate tag, since a Nonlinear sum can
// still have individually prunable Const/Linear terms buried inside it; only
// at a genuinely atomic node - a Var or Const leaf, or a non-additive Call
// tagged Linear or Nonlinear - does the tag decide whether to fold into L
// and constant (scaled by scale, which tracks the sign/coefficient inherited
// from enclosing +/-/* nodes) or to return the subtree unmodified as residual.
// By this point PullUpConstants has already folded every Const-tagged
// subtree into a literal Const leaf, so a Const tag is only ever seen there.
func pruneLinear(e *Expr, tags map[*Expr]Tag, scale float64, L LinearMap, constant *float64) (*Expr, error) {
	switch e.Kind {
	case KConst:
		*constant += scale * e.Val
		return Const(0), nil

	case KVar:
		L[e.VarIndex] += scale
		return Const(0), nil

	case KCall:
		switch e.Op {
		case OpPlus, OpSum:
			return pruneAdditive(e.Args, tags, scale, L, constant)

		case OpMinus:
			if len(e.Args) == 1 {
				resid, err := pruneLinear(e.Args[0], tags, -scale, L, constant)
				if err != nil {
					return nil, err
				}
				return negateResidual(resid), nil
			}
			r0, err := pruneLinear(e.Args[0], tags, scale, L, constant)
			if err != nil {
				return nil, err
			}
			r1, err := pruneLinear(e.Args[1], tags, -scale, L, constant)
			if err != nil {
				return nil, err
			}
			return combineMinus(r0, r1), nil

		case OpNeg:
			resid, err := pruneLinear(e.Args[0], tags, -scale, L, constant)
			if err != nil {
				return nil, err
			}
			return negateResidual(resid), nil

		case OpMult:
			if tags[e] != TagLinear {
				return e, nil
			}
			constFactor := 1.0
			var linArg *Expr
			for _, a := range e.Args {
				if tags[a] == TagLinear {
					if linArg != nil {
						return nil, errors.Errorf("prune_linear_terms: product with more than one linear factor tagged Linear")
					}
					linArg = a
				} else {
					constFactor *= a.Val
				}
			}
			if linArg == nil {
				return nil, errors.Errorf("prune_linear_terms: product tagged Linear has no linear factor")
			}
			return pruneLinear(linArg, tags, scale*constFactor, L, constant)

		case OpDiv:
			if tags[e] != TagLinear {
				return e, nil
			}
			den := e.Args[1].Val
			return pruneLinear(e.Args[0], tags, scale/den, L, constant)

		default:
			// Atomic nonlinear operator (pow, transcendentals, comparisons,
			// if, ...); anything of this shape tagged Const was already
			// folded away by PullUpConstants, so reaching here means it is
			// genuinely Nonlinear and is returned as residual untouched.
			return e, nil
		}

	default:
		return nil, errors.Errorf("prune_linear_terms: unknown expr kind %d", int(e.Kind))
	}
}

// pruneAdditive prunes every child of a + or sum node independently and
// reassembles whatever is left (possibly nothing) into a residual.
func pruneAdditive(args []*Expr, tags map[*Expr]Tag, scale float64, L LinearMap, constant *float64) (*Expr, error) {
	var leftover []*Expr
	for _, a := range args {
		resid, err := pruneLinear(a, tags, scale, L, constant)
		if err != nil {
			return nil, err
		}
		if !IsZeroConst(resid) {
			leftover = append(leftover, resid)
		}
	}
	return buildSum(leftover), nil
}

func buildSum(terms []*Expr) *Expr {
	switch len(terms) {
	case 0:
		return Const(0)
	case 1:
		return terms[0]
	default:
		result := terms[0]
		for _, t := range terms[1:] {
			result = MustCall(OpPlus, result, t)
		}
		return result
	}
}

func negateResidual(resid *Expr) *Expr {
	if IsZeroConst(resid) {
		return Const(0)
	}
	return MustCall(OpNeg, resid)
}

func combineMinus(a, b *Expr) *Expr {
	aZero, bZero := IsZeroConst(a), IsZeroConst(b)
	switch {
	case aZero && bZero:
		return Const(0)
	case bZero:
		return a
	case aZero:
		return negateResidual(b)
	default:
		return MustCall(OpMinus, a, b)
	}
}

// Linearity is the overall classification of a decomposed expression,
// exposed on Model as varlinearities/conlinearities/objlinearity. Unlike the
// three-way Tag used internally by LinearityAnalyzer, a fully decomposed
// expression is only ever Linear (residual is the scalar 0) or Nonlinear
// (residual retains at least one variable).
type Linearity int

const (
	Linear Linearity = iota
	Nonlinear
)

func (l Linearity) String() string {
	if l == Linear {
		return "Linear"
	}
	return "Nonlinear"
}

// ProcessExpression decomposes raw into a residual nonlinear tree, a
// constant, and a LinearMap of coefficients, per §4.2. It also returns the
// set of variables that appear in the residual (the caller uses this to
// update its own per-context varlinearities bookkeeping) and the overall
// Linearity of the expression.
// In case of failure, function returns an error.
func ProcessExpression(raw *Expr) (residual *Expr, constant float64, lin LinearMap, nonlinearVars map[int]bool, overall Linearity, err error) {
	lin = make(LinearMap)
	collectVars(raw, lin)

	tags := AnalyzeLinearity(raw)
	if err = PullUpConstants(raw, tags); err != nil {
		return nil, 0, nil, nil, 0, errors.Wrap(err, "ProcessExpression failed to pull up constants")
	}
	// Re-analyze: pull-up only folds nodes already tagged Const, so the tags
	// recorded before folding remain valid; no re-walk is required.

	residual, err = pruneLinear(raw, tags, 1.0, lin, &constant)
	if err != nil {
		return nil, 0, nil, nil, 0, errors.Wrap(err, "ProcessExpression failed to prune linear terms")
	}

	nonlinearVars = ResidualVars(residual)

	for j, c := range lin {
		if c == 0 && !nonlinearVars[j] {
			delete(lin, j)
		}
	}

	overall = Linear
	if !IsZeroConst(residual) {
		overall = Nonlinear
	}

	return residual, constant, lin, nonlinearVars, overall, nil
}
