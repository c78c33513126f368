package nlo

import "testing"

func TestProcessExpressionPureLinear(t *testing.T) {
	// 2*x1 + 3*x2 - 5 + x1 = 3*x1 + 3*x2 - 5
	e := MustCall(OpMinus,
		MustCall(OpPlus,
			MustCall(OpMult, Const(2), Var(1)),
			MustCall(OpPlus, MustCall(OpMult, Const(3), Var(2)), Var(1))),
		Const(5))

	residual, constant, lin, nonlinearVars, overall, err := ProcessExpression(e)
	if err != nil {
		t.Fatalf("ProcessExpression returned error: %v", err)
	}
	if overall != Linear {
		t.Errorf("overall linearity = %v, want Linear", overall)
	}
	if !IsZeroConst(residual) {
		t.Errorf("residual = %+v, want scalar 0", residual)
	}
	if constant != -5 {
		t.Errorf("constant = %v, want -5", constant)
	}
	if lin[1] != 3 {
		t.Errorf("lin[1] = %v, want 3", lin[1])
	}
	if lin[2] != 3 {
		t.Errorf("lin[2] = %v, want 3", lin[2])
	}
	if len(nonlinearVars) != 0 {
		t.Errorf("nonlinearVars = %v, want empty", nonlinearVars)
	}
}

func TestProcessExpressionMixed(t *testing.T) {
	// x1^2 + 2*x2 + 7: x1 stays in the residual, x2 is pruned out linearly.
	e := MustCall(OpPlus,
		MustCall(OpPlus, MustCall(OpPow, Var(1), Const(2)), MustCall(OpMult, Const(2), Var(2))),
		Const(7))

	residual, constant, lin, nonlinearVars, overall, err := ProcessExpression(e)
	if err != nil {
		t.Fatalf("ProcessExpression returned error: %v", err)
	}
	if overall != Nonlinear {
		t.Errorf("overall linearity = %v, want Nonlinear", overall)
	}
	if constant != 7 {
		t.Errorf("constant = %v, want 7", constant)
	}
	if lin[2] != 2 {
		t.Errorf("lin[2] = %v, want 2", lin[2])
	}
	if _, present := lin[1]; present && lin[1] != 0 {
		t.Errorf("lin[1] = %v, want absent or 0 (x1 only appears nonlinearly)", lin[1])
	}
	if !nonlinearVars[1] {
		t.Errorf("nonlinearVars missing 1: %v", nonlinearVars)
	}
	if nonlinearVars[2] {
		t.Errorf("nonlinearVars unexpectedly contains 2: %v", nonlinearVars)
	}

	got, err := Eval(residual, []float64{3, 0})
	if err != nil {
		t.Fatalf("Eval(residual) returned error: %v", err)
	}
	if got != 9 {
		t.Errorf("Eval(residual) at x1=3 = %v, want 9", got)
	}
}

func TestProcessExpressionLinearMapPurity(t *testing.T) {
	// x1 appears only inside a nonlinear subtree and never linearly: if its
	// pruned coefficient were 0, invariant #3 requires it stay in L because
	// it is present in the residual (it needs a Jacobian-sparsity row),
	// while an unrelated variable x3 that never appears anywhere must not
	// show up in L at all.
	e := MustCall(OpSin, Var(1))

	_, _, lin, nonlinearVars, _, err := ProcessExpression(e)
	if err != nil {
		t.Fatalf("ProcessExpression returned error: %v", err)
	}
	if _, present := lin[1]; !present {
		t.Errorf("lin missing entry for variable present in residual: %v", lin)
	}
	if lin[1] != 0 {
		t.Errorf("lin[1] = %v, want 0 (sin(x1) is purely nonlinear)", lin[1])
	}
	if !nonlinearVars[1] {
		t.Errorf("nonlinearVars missing 1: %v", nonlinearVars)
	}
	if _, present := lin[3]; present {
		t.Errorf("lin unexpectedly has entry for unreferenced variable 3: %v", lin)
	}
}

func TestLinearMapDot(t *testing.T) {
	lm := LinearMap{1: 2, 3: -1}
	got, err := lm.Dot([]float64{10, 20, 30})
	if err != nil {
		t.Fatalf("Dot returned error: %v", err)
	}
	want := 2*10.0 + (-1)*30.0
	if got != want {
		t.Errorf("Dot = %v, want %v", got, want)
	}
}

func TestLinearMapDotOutOfRange(t *testing.T) {
	lm := LinearMap{5: 1}
	if _, err := lm.Dot([]float64{1, 2}); err == nil {
		t.Errorf("Dot with out-of-range key: got no error")
	}
}
