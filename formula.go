package nlo

// formula.go: the FormulaConverter. Canonicalizes a residual nonlinear tree
// into the shapes NlWriter is prepared to emit: unary minus becomes neg,
// n-ary addition (more than two terms, as an NlpProvider might hand us if it
// mirrors a symbolic-algebra package's variadic Add) becomes sum, and every
// other operator (binary -, *, /, ^, the unary transcendentals) is emitted
// as-is since it is already at or below the arity the NL format expects.

// Canonicalize rewrites e in place (and returns it, as a convenience for
// chaining) so that:
//   - Call(OpMinus, [a]) becomes Call(OpNeg, [a])
//   - Call(OpPlus, args) with len(args) > 2 becomes Call(OpSum, args)
//   - Call(OpPlus, args) with len(args) == 2 is left as a binary +
//   - Call(OpPlus, [a]) is replaced by a, and Call(OpPlus) with no args by
//     the constant 0
//
// Children are canonicalized first (post-order), so a nested n-ary + buried
// inside a nonlinear call is converted too.
func Canonicalize(e *Expr) *Expr {
	if e == nil || e.Kind != KCall {
		return e
	}

	for i, a := range e.Args {
		e.Args[i] = Canonicalize(a)
	}

	switch e.Op {
	case OpMinus:
		if len(e.Args) == 1 {
			e.Op = OpNeg
		}
	case OpPlus:
		if len(e.Args) > 2 {
			e.Op = OpSum
		} else if len(e.Args) == 0 {
			e.Kind = KConst
			e.Val = 0
			e.Args = nil
		} else if len(e.Args) == 1 {
			return e.Args[0]
		}
	case OpSum:
		if len(e.Args) <= 2 {
			e.Op = OpPlus
		}
	}

	return e
}
