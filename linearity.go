package nlo

// linearity.go: LinearityAnalyzer. Produces, for an expression tree, a
// derived tag at every node ("decorated copy" in the language of the
// design) classifying it as Const, Linear, or Nonlinear, bottom-up from the
// rules in the component design. The decoration is kept as a map from node
// pointer to Tag rather than a parallel tree: it is purely derived and
// discarded once decompose.go has consumed it, so there is no value in a
// second tree shape to keep in sync with the first.

// Tag is the linearity classification of an expression node.
type Tag int

const (
	TagConst Tag = iota
	TagLinear
	TagNonlinear
)

func (t Tag) String() string {
	switch t {
	case TagConst:
		return "Const"
	case TagLinear:
		return "Linear"
	case TagNonlinear:
		return "Nonlinear"
	default:
		return "Unknown"
	}
}

// maxTag returns the most severe of the given tags, using the total order
// Const < Linear < Nonlinear.
func maxTag(tags ...Tag) Tag {
	m := TagConst
	for _, t := range tags {
		if t > m {
			m = t
		}
	}
	return m
}

func allConstTags(tags []Tag) bool {
	for _, t := range tags {
		if t != TagConst {
			return false
		}
	}
	return true
}

// AnalyzeLinearity walks e bottom-up and returns a map from every node in the
// tree to its computed Tag, per the rules in §4.1: additive operators take
// the max tag of their children, neg preserves its operand's tag, mult/div
// have their own special-cased rules, and everything else (transcendentals,
// comparisons, conditionals) is Nonlinear unless every argument is Const.
func AnalyzeLinearity(e *Expr) map[*Expr]Tag {
	tags := make(map[*Expr]Tag)
	analyzeNode(e, tags)
	return tags
}

func analyzeNode(e *Expr, tags map[*Expr]Tag) Tag {
	if e == nil {
		tags[e] = TagConst
		return TagConst
	}

	var t Tag
	switch e.Kind {
	case KConst:
		t = TagConst
	case KVar:
		t = TagLinear
	case KCall:
		childTags := make([]Tag, len(e.Args))
		for i, a := range e.Args {
			childTags[i] = analyzeNode(a, tags)
		}
		t = tagForCall(e.Op, childTags)
	}
	tags[e] = t
	return t
}

func tagForCall(op Opcode, childTags []Tag) Tag {
	switch op {
	case OpPlus, OpMinus, OpSum:
		return maxTag(childTags...)
	case OpNeg:
		return childTags[0]
	case OpMult:
		return tagMult(childTags)
	case OpDiv:
		return tagDiv(childTags)
	default:
		// Transcendentals, pow, rem, less, min/max, floor/ceil/abs,
		// comparisons, and conditionals: Nonlinear unless structurally
		// constant.
		if allConstTags(childTags) {
			return TagConst
		}
		return TagNonlinear
	}
}

func tagMult(childTags []Tag) Tag {
	if allConstTags(childTags) {
		return TagConst
	}
	linear := 0
	for _, t := range childTags {
		switch t {
		case TagNonlinear:
			return TagNonlinear
		case TagLinear:
			linear++
		}
	}
	if linear <= 1 {
		return TagLinear
	}
	return TagNonlinear
}

func tagDiv(childTags []Tag) Tag {
	num, den := childTags[0], childTags[1]
	if num == TagConst && den == TagConst {
		return TagConst
	}
	if (num == TagConst || num == TagLinear) && den == TagConst {
		return TagLinear
	}
	return TagNonlinear
}

// PullUpConstants rewrites e in place so that every maximal subtree tagged
// Const is replaced by a single Const node holding its evaluated value. It
// updates tags so that replaced nodes are correctly marked Const afterwards.
// In case of failure (an unsupported opcode encountered while folding),
// function returns an error and leaves e partially folded.
func PullUpConstants(e *Expr, tags map[*Expr]Tag) error {
	if e == nil {
		return nil
	}

	if tags[e] == TagConst {
		if e.Kind == KConst {
			return nil
		}
		v, err := Eval(e, nil)
		if err != nil {
			return err
		}
		e.Kind = KConst
		e.Val = v
		e.Args = nil
		e.VarIndex = 0
		tags[e] = TagConst
		return nil
	}

	if e.Kind == KCall {
		for _, a := range e.Args {
			if err := PullUpConstants(a, tags); err != nil {
				return err
			}
		}
	}
	return nil
}
