package nlo

// nlindex.go: the IndexMapper. Produces the forward/reverse permutations
// that NlWriter needs to renumber variables and constraints into the order
// NL readers require, and the raw per-variable Jacobian counts used to
// derive the 'k' segment.

// varBucket classifies a variable into one of the five buckets described in
// §4.4, given whether it is nonlinear anywhere (objective or constraints)
// and its declared category.
func varBucket(nonlinear bool, vt VarType) int {
	if nonlinear {
		if vt == Continuous {
			return 0 // nonlinear continuous
		}
		return 1 // nonlinear integer (includes binary)
	}
	switch vt {
	case Continuous:
		return 2 // linear continuous
	case Binary:
		return 3 // linear binary
	default:
		return 4 // linear integer
	}
}

// buildIndexMaps recomputes m.vIndexMap/vIndexMapRev and
// m.cIndexMap/cIndexMapRev from the current varLinObj/varLinCon/varTypes and
// conLin fields. It is idempotent and safe to call again after SetVarType
// changes a variable's category.
func (m *Model) buildIndexMaps() {
	buckets := make([][]int, 5) // bucket -> original (1-based) indices, in order
	for j := 1; j <= m.nvar; j++ {
		nonlinear := m.varLinObj[j-1] == Nonlinear || m.varLinCon[j-1] == Nonlinear
		b := varBucket(nonlinear, m.varTypes[j-1])
		buckets[b] = append(buckets[b], j)
	}

	m.vIndexMap = make([]int, m.nvar)
	m.vIndexMapRev = make([]int, m.nvar)
	nl := 0
	for _, bucket := range buckets {
		for _, orig := range bucket {
			m.vIndexMap[orig-1] = nl
			m.vIndexMapRev[nl] = orig
			nl++
		}
	}

	var nonlinCons, linCons []int
	for i := 1; i <= m.ncon; i++ {
		if m.conLin[i-1] == Nonlinear {
			nonlinCons = append(nonlinCons, i)
		} else {
			linCons = append(linCons, i)
		}
	}

	m.cIndexMap = make([]int, m.ncon)
	m.cIndexMapRev = make([]int, m.ncon)
	nl = 0
	for _, orig := range append(nonlinCons, linCons...) {
		m.cIndexMap[orig-1] = nl
		m.cIndexMapRev[nl] = orig
		nl++
	}
}

// buildJacobianCounts recomputes m.jCounts: for each original variable
// index, the number of constraints whose LinearMap contains that key.
func (m *Model) buildJacobianCounts() {
	m.jCounts = make([]int, m.nvar)
	for _, lm := range m.linConstrs {
		for j := range lm {
			m.jCounts[j-1]++
		}
	}
}

// NumNonlinearVars returns how many variables fall in the two nonlinear
// buckets (continuous-nonlinear + integer-nonlinear), i.e. how many leading
// entries of vIndexMapRev are nonlinear.
func (m *Model) NumNonlinearVars() int {
	n := 0
	for j := 1; j <= m.nvar; j++ {
		if m.varLinObj[j-1] == Nonlinear || m.varLinCon[j-1] == Nonlinear {
			n++
		}
	}
	return n
}

// NumNonlinearCons returns how many constraints are tagged Nonlinear.
func (m *Model) NumNonlinearCons() int {
	n := 0
	for i := range m.conLin {
		if m.conLin[i] == Nonlinear {
			n++
		}
	}
	return n
}
