package nlo

// nlp.go: the NlpProvider contract and the normalization of the comparison
// trees it hands back for each constraint into (body, lower, upper,
// relation code) tuples that the rest of the pipeline understands.

import (
	"math"

	"github.com/pkg/errors"
)

// NlpProvider is the abstract upstream modeling layer: it knows how to build
// an expression graph and then yield the objective and each constraint as
// expression trees. Everything about discovering variables/bounds/sense
// happens before LoadNonlinearProblem is called; the provider's only job
// here is to hand back expression trees on demand.
type NlpProvider interface {
	// InitExprGraph gives the provider a chance to build or reset whatever
	// internal graph it uses to answer ConstraintExpr/ObjectiveExpr.
	InitExprGraph() error

	// ConstraintExpr returns the i'th constraint (1-based) as a comparison
	// tree: either a ternary "a rel b" or a quintary "lo <= body <= hi".
	ConstraintExpr(i int) (*RelExpr, error)

	// ObjectiveExpr returns the objective as a plain arithmetic expression,
	// or nil if the problem has no objective.
	ObjectiveExpr() (*Expr, error)
}

// RelExpr is a comparison tree as handed back by an NlpProvider: either
//   - Terms = [a, b], Rels = [op]            meaning "a op b", or
//   - Terms = [lo, body, hi], Rels = [op1, op2]  meaning "lo op1 body op2 hi"
//
// Exactly one side of a ternary RelExpr (or the two outer terms of a
// quintary one) must be a variable-free expression - the bound; the other
// is the constrained body, which may reference variables freely.
type RelExpr struct {
	Terms []*Expr
	Rels  []Opcode
}

// NewTernaryRel builds the common "body rel bound" (or "bound rel body")
// comparison tree.
func NewTernaryRel(a *Expr, rel Opcode, b *Expr) *RelExpr {
	return &RelExpr{Terms: []*Expr{a, b}, Rels: []Opcode{rel}}
}

// NewRangeRel builds the "lo <= body <= hi" comparison tree.
func NewRangeRel(lo *Expr, body *Expr, hi *Expr) *RelExpr {
	return &RelExpr{Terms: []*Expr{lo, body, hi}, Rels: []Opcode{OpLE, OpLE}}
}

// isConstExpr reports whether e contains no variable references, in which
// case it can be evaluated once, up front, to serve as a constraint bound.
func isConstExpr(e *Expr) (float64, bool) {
	if e == nil {
		return 0, false
	}
	if len(ResidualVars(e)) > 0 {
		return 0, false
	}
	v, err := Eval(e, nil)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeConstraint extracts the constrained body, the lower/upper bounds,
// and the §4.5 relation code from a RelExpr. In case of failure (neither side
// of a ternary is a bound, an unsupported relation operator, or a range form
// using mismatched operators) function returns an error.
func NormalizeConstraint(re *RelExpr) (body *Expr, lo, up float64, relCode int, err error) {
	switch len(re.Terms) {
	case 2:
		return normalizeTernary(re)
	case 3:
		return normalizeRange(re)
	default:
		return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: expected 2 or 3 terms, got %d", len(re.Terms))
	}
}

func normalizeTernary(re *RelExpr) (*Expr, float64, float64, int, error) {
	a, b := re.Terms[0], re.Terms[1]
	op := re.Rels[0]

	aVal, aConst := isConstExpr(a)
	bVal, bConst := isConstExpr(b)

	switch {
	case aConst && bConst:
		return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: constraint has no variable expression")

	case bConst && !aConst:
		body := a
		switch op {
		case OpLE:
			return body, math.Inf(-1), bVal, 1, nil
		case OpGE:
			return body, bVal, math.Inf(1), 2, nil
		case OpEQ:
			return body, bVal, bVal, 4, nil
		default:
			return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: unsupported relation %s", opNames[op])
		}

	case aConst && !bConst:
		body := b
		switch op {
		case OpLE:
			return body, aVal, math.Inf(1), 2, nil
		case OpGE:
			return body, math.Inf(-1), aVal, 1, nil
		case OpEQ:
			return body, aVal, aVal, 4, nil
		default:
			return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: unsupported relation %s", opNames[op])
		}

	default:
		return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: constraint bound must be a constant")
	}
}

func normalizeRange(re *RelExpr) (*Expr, float64, float64, int, error) {
	loVal, loConst := isConstExpr(re.Terms[0])
	hiVal, hiConst := isConstExpr(re.Terms[2])
	if !loConst || !hiConst {
		return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: range bounds must be constants")
	}
	if re.Rels[0] != OpLE || re.Rels[1] != OpLE {
		return nil, 0, 0, 0, errors.Errorf("NormalizeConstraint: range relation must be <= ... <=, got %s ... %s",
			opNames[re.Rels[0]], opNames[re.Rels[1]])
	}
	return re.Terms[1], loVal, hiVal, 0, nil
}
