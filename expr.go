package nlo

// expr.go: the typed expression AST shared by every other file in this
// package. An Expr is a tagged variant with exactly three shapes -
// Const, Var, and Call - matching the node taxonomy NL readers expect.
//
// The tree is built from *Expr pointers rather than an interface so that
// PullUpConstants and Canonicalize can rewrite nodes in place (folding a
// subtree into a single node without having to thread a parent pointer back
// up).

import (
	"github.com/pkg/errors"
)

// Kind discriminates the three shapes an Expr node can take.
type Kind int

const (
	KConst Kind = iota // a floating point literal
	KVar               // a reference to a model variable, 1-based
	KCall              // an operator applied to one or more children
)

// Opcode identifies an operator usable inside a Call node. The numeric
// values match the AMPL NL file format's operator table so that FormulaConverter and NlWriter can emit them directly.
type Opcode int

const (
	OpPlus  Opcode = 0
	OpMinus Opcode = 1
	OpMult  Opcode = 2
	OpDiv   Opcode = 3
	OpRem   Opcode = 4
	OpPow   Opcode = 5
	OpLess  Opcode = 6
	OpMin   Opcode = 11
	OpMax   Opcode = 12
	OpFloor Opcode = 13
	OpCeil  Opcode = 14
	OpAbs   Opcode = 15
	OpNeg   Opcode = 16
	OpOr    Opcode = 20
	OpAnd   Opcode = 21
	OpLT    Opcode = 22
	OpLE    Opcode = 23
	OpEQ    Opcode = 24
	OpGE    Opcode = 28
	OpGT    Opcode = 29
	OpNE    Opcode = 30
	OpNot   Opcode = 34
	OpIf    Opcode = 35
	OpTanh  Opcode = 37
	OpTan   Opcode = 38
	OpSqrt  Opcode = 39
	OpSinh  Opcode = 40
	OpSin   Opcode = 41
	OpLog10 Opcode = 42
	OpLog   Opcode = 43
	OpExp   Opcode = 44
	OpCosh  Opcode = 45
	OpCos   Opcode = 46
	OpAtan  Opcode = 49
	OpSum   Opcode = 54
)

// opArity gives the number of children each opcode requires, or -1 for
// opcodes accepting a variable number of children (only OpPlus, OpSum, OpMin,
// OpMax at this time).
var opArity = map[Opcode]int{
	OpPlus:  -1, // n-ary; FormulaConverter canonicalizes to binary + or OpSum
	OpMinus: 2, // also accepted with arity 1 (unary minus), checked specially
	OpMult:  2,
	OpDiv:   2,
	OpRem:   2,
	OpPow:   2,
	OpLess:  2,
	OpMin:   -1,
	OpMax:   -1,
	OpFloor: 1,
	OpCeil:  1,
	OpAbs:   1,
	OpNeg:   1,
	OpOr:    2,
	OpAnd:   2,
	OpLT:    2,
	OpLE:    2,
	OpEQ:    2,
	OpGE:    2,
	OpGT:    2,
	OpNE:    2,
	OpNot:   1,
	OpIf:    3,
	OpTanh:  1,
	OpTan:   1,
	OpSqrt:  1,
	OpSinh:  1,
	OpSin:   1,
	OpLog10: 1,
	OpLog:   1,
	OpExp:   1,
	OpCosh:  1,
	OpCos:   1,
	OpAtan:  1,
	OpSum:   -1,
}

// opNames is used only for error messages; it need not be exhaustive in the same order as the const block.
var opNames = map[Opcode]string{
	OpPlus: "+", OpMinus: "-", OpMult: "*", OpDiv: "/", OpRem: "rem",
	OpPow: "^", OpLess: "less", OpMin: "min", OpMax: "max", OpFloor: "floor",
	OpCeil: "ceil", OpAbs: "abs", OpNeg: "neg", OpOr: "or", OpAnd: "and",
	OpLT: "<", OpLE: "<=", OpEQ: "==", OpGE: ">=", OpGT: ">", OpNE: "!=",
	OpNot: "not", OpIf: "if", OpTanh: "tanh", OpTan: "tan", OpSqrt: "sqrt",
	OpSinh: "sinh", OpSin: "sin", OpLog10: "log10", OpLog: "log", OpExp: "exp",
	OpCosh: "cosh", OpCos: "cos", OpAtan: "atan", OpSum: "sum",
}

// comparisonOps are opcodes whose evaluation yields a 0/1 truth value rather
// than an arithmetic result; LinearityAnalyzer treats them as structurally
// nonlinear unless all arguments are constant.
var comparisonOps = map[Opcode]bool{
	OpLT: true, OpLE: true, OpEQ: true, OpGE: true, OpGT: true, OpNE: true,
	OpOr: true, OpAnd: true, OpNot: true,
}

// Expr is a node in the expression tree: a constant, a variable reference,
// or an operator call over child expressions. Exactly one of the Val,
// VarIndex, or (Op, Args) fields is meaningful, selected by Kind.
type Expr struct {
	Kind Kind

	Val float64 // meaningful when Kind == KConst

	VarIndex int // meaningful when Kind == KVar; 1-based

	Op   Opcode  // meaningful when Kind == KCall
	Args []*Expr // meaningful when Kind == KCall
}

// Const builds a constant leaf node.
func Const(v float64) *Expr { return &Expr{Kind: KConst, Val: v} }

// Var builds a variable reference node for the 1-based user variable index j.
func Var(j int) *Expr { return &Expr{Kind: KVar, VarIndex: j} }

// Call builds an operator node, validating arity against the opcode table.
// In case of failure, it returns an error rather than a malformed node, which
// callers may choose to ignore at construction sites they control, or
// propagate when building a tree from untrusted input.
func Call(op Opcode, args ...*Expr) (*Expr, error) {
	arity, ok := opArity[op]
	if !ok {
		return nil, errors.Errorf("unsupported opcode %d", int(op))
	}
	if arity >= 0 && len(args) != arity {
		if !(op == OpMinus && len(args) == 1) {
			return nil, errors.Errorf("opcode %s expects %d args, got %d", opNames[op], arity, len(args))
		}
	}
	return &Expr{Kind: KCall, Op: op, Args: args}, nil
}

// MustCall is Call without the error return, for call sites (mostly tests and
// the decomposer) that construct opcodes known by construction to be valid.
func MustCall(op Opcode, args ...*Expr) *Expr {
	e, err := Call(op, args...)
	if err != nil {
		panic(err)
	}
	return e
}

// IsZeroConst reports whether e is the scalar constant 0, the sentinel used
// throughout decompose.go and nlwrite.go for "no residual".
func IsZeroConst(e *Expr) bool {
	return e != nil && e.Kind == KConst && e.Val == 0
}

// CheckVars walks e and returns an error if any Var node references an index
// outside [1, nvar].
func CheckVars(e *Expr, nvar int) error {
	if e == nil {
		return nil
	}
	switch e.Kind {
	case KVar:
		if e.VarIndex < 1 || e.VarIndex > nvar {
			return errors.Errorf("variable index %d out of range [1,%d]", e.VarIndex, nvar)
		}
	case KCall:
		for _, a := range e.Args {
			if err := CheckVars(a, nvar); err != nil {
				return err
			}
		}
	}
	return nil
}

// Eval walks e and computes its value given a 1-based solution vector x
// (x[0] is variable 1). It implements the pure arithmetic subset described
// by SolReader's objective reconstitution: sum/neg are n-ary/unary aliases of
// +/-, and every other opcode maps to its IEEE-754 floating point operation.
// In case of failure (unsupported opcode, out-of-range variable), function
// returns an error.
func Eval(e *Expr, x []float64) (float64, error) {
	if e == nil {
		return 0, nil
	}
	switch e.Kind {
	case KConst:
		return e.Val, nil
	case KVar:
		if e.VarIndex < 1 || e.VarIndex > len(x) {
			return 0, errors.Errorf("variable index %d out of range for solution of length %d", e.VarIndex, len(x))
		}
		return x[e.VarIndex-1], nil
	case KCall:
		return evalCall(e, x)
	default:
		return 0, errors.Errorf("unknown expr kind %d", int(e.Kind))
	}
}

func evalArgs(args []*Expr, x []float64) ([]float64, error) {
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := Eval(a, x)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
