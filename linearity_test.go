package nlo

import "testing"

func TestAnalyzeLinearityBasic(t *testing.T) {
	cases := []struct {
		name string
		e    *Expr
		want Tag
	}{
		{"const leaf", Const(3), TagConst},
		{"var leaf", Var(1), TagLinear},
		{"sum of vars", MustCall(OpPlus, Var(1), Var(2)), TagLinear},
		{"const times var", MustCall(OpMult, Const(2), Var(1)), TagLinear},
		{"var times var", MustCall(OpMult, Var(1), Var(2)), TagNonlinear},
		{"var div const", MustCall(OpDiv, Var(1), Const(2)), TagLinear},
		{"const div var", MustCall(OpDiv, Const(2), Var(1)), TagNonlinear},
		{"sin of var", MustCall(OpSin, Var(1)), TagNonlinear},
		{"sin of const", MustCall(OpSin, Const(1)), TagConst},
		{"neg of var", MustCall(OpNeg, Var(1)), TagLinear},
		{"pow of const", MustCall(OpPow, Const(2), Const(3)), TagConst},
		{"pow of var", MustCall(OpPow, Var(1), Const(2)), TagNonlinear},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tags := AnalyzeLinearity(c.e)
			if got := tags[c.e]; got != c.want {
				t.Errorf("AnalyzeLinearity(%s) root tag = %v, want %v", c.name, got, c.want)
			}
		})
	}
}

func TestPullUpConstants(t *testing.T) {
	// (2 + 3) * x1 should fold the left child to Const(5), leaving a Linear
	// product of Const(5) and Var(1).
	sum := MustCall(OpPlus, Const(2), Const(3))
	e := MustCall(OpMult, sum, Var(1))

	tags := AnalyzeLinearity(e)
	if err := PullUpConstants(e, tags); err != nil {
		t.Fatalf("PullUpConstants returned error: %v", err)
	}
	if e.Args[0].Kind != KConst || e.Args[0].Val != 5 {
		t.Errorf("left child not folded to Const(5): %+v", e.Args[0])
	}
}

func TestPullUpConstantsWholeTree(t *testing.T) {
	// sin(2 + 3) is entirely constant and should fold to a single Const leaf.
	e := MustCall(OpSin, MustCall(OpPlus, Const(2), Const(3)))
	tags := AnalyzeLinearity(e)
	if err := PullUpConstants(e, tags); err != nil {
		t.Fatalf("PullUpConstants returned error: %v", err)
	}
	if e.Kind != KConst {
		t.Fatalf("root not folded to Const: %+v", e)
	}
	want, _ := Eval(MustCall(OpSin, Const(5)), nil)
	if e.Val != want {
		t.Errorf("folded value = %v, want %v", e.Val, want)
	}
}
