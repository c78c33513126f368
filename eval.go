package nlo

// eval.go: IEEE-754 evaluation of a Call node, split out of expr.go to keep
// the node-construction and arity-checking code separate from the numeric
// walk used by SolReader's objective reconstitution and by the decomposer's
// pull_up_constants pass.

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

func evalCall(e *Expr, x []float64) (float64, error) {
	vals, err := evalArgs(e.Args, x)
	if err != nil {
		return 0, err
	}

	switch e.Op {
	case OpPlus:
		return floats.Sum(vals), nil
	case OpMinus:
		if len(vals) == 1 {
			return -vals[0], nil
		}
		return vals[0] - vals[1], nil
	case OpMult:
		return vals[0] * vals[1], nil
	case OpDiv:
		return vals[0] / vals[1], nil
	case OpRem:
		return math.Mod(vals[0], vals[1]), nil
	case OpPow:
		return math.Pow(vals[0], vals[1]), nil
	case OpLess:
		return math.Max(0, vals[0]-vals[1]), nil
	case OpMin:
		return floats.Min(vals), nil
	case OpMax:
		return floats.Max(vals), nil
	case OpFloor:
		return math.Floor(vals[0]), nil
	case OpCeil:
		return math.Ceil(vals[0]), nil
	case OpAbs:
		return math.Abs(vals[0]), nil
	case OpNeg:
		return -vals[0], nil
	case OpSqrt:
		return math.Sqrt(vals[0]), nil
	case OpExp:
		return math.Exp(vals[0]), nil
	case OpLog:
		return math.Log(vals[0]), nil
	case OpLog10:
		return math.Log10(vals[0]), nil
	case OpSin:
		return math.Sin(vals[0]), nil
	case OpCos:
		return math.Cos(vals[0]), nil
	case OpTan:
		return math.Tan(vals[0]), nil
	case OpSinh:
		return math.Sinh(vals[0]), nil
	case OpCosh:
		return math.Cosh(vals[0]), nil
	case OpTanh:
		return math.Tanh(vals[0]), nil
	case OpAtan:
		return math.Atan(vals[0]), nil
	case OpSum:
		return floats.Sum(vals), nil
	case OpLT:
		return boolFloat(vals[0] < vals[1]), nil
	case OpLE:
		return boolFloat(vals[0] <= vals[1]), nil
	case OpEQ:
		return boolFloat(vals[0] == vals[1]), nil
	case OpGE:
		return boolFloat(vals[0] >= vals[1]), nil
	case OpGT:
		return boolFloat(vals[0] > vals[1]), nil
	case OpNE:
		return boolFloat(vals[0] != vals[1]), nil
	case OpAnd:
		return boolFloat(vals[0] != 0 && vals[1] != 0), nil
	case OpOr:
		return boolFloat(vals[0] != 0 || vals[1] != 0), nil
	case OpNot:
		return boolFloat(vals[0] == 0), nil
	case OpIf:
		if vals[0] != 0 {
			return vals[1], nil
		}
		return vals[2], nil
	default:
		return 0, errors.Errorf("Eval: unsupported opcode %s", opNames[e.Op])
	}
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
