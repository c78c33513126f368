package nlo

// nlwrite.go: the NlWriter. Emits m as a text NL file: a short header
// followed by the body segments in the strict order real NL readers expect
// (nonlinear constraint bodies, the objective, initial guesses, bounds,
// Jacobian counts, and finally the linear parts of every constraint and the
// objective).
//
// This writer only emits the "g" (text) header variant; the binary "b"
// variant is out of scope. The header carries fewer auxiliary counts than
// the full ASL grammar (no network/complementarity/logical-constraint
// fields) since nothing in this package's scope produces those constructs:
// it is the "g" line, then "nvar ncon nobj nrange neqn", then the counts of
// nonlinear constraints and nonlinear objectives, then the count of
// nonlinear variables.

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

var variadicOps = map[Opcode]bool{OpSum: true, OpMin: true, OpMax: true}

// formatFloat renders v with enough precision to round-trip an IEEE-754
// float64 (17 significant digits), using '.' as the decimal separator
// regardless of host locale, matching §4.5's numeric formatting rule.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 17, 64)
}

// WriteNLFile serializes m to path in NL format. In case of failure (an
// unsupported opcode reached while walking a residual tree, or any I/O
// error) function returns an error; the file handle is always closed
// before returning, on every exit path.
func (m *Model) WriteNLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "WriteNLFile failed to create file")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := m.writeNL(w); err != nil {
		return errors.Wrap(err, "WriteNLFile failed to write")
	}
	return errors.Wrap(w.Flush(), "WriteNLFile failed to flush")
}

func (m *Model) writeNL(w *bufio.Writer) error {
	if err := m.writeHeader(w); err != nil {
		return err
	}
	if err := m.writeNonlinearConstraints(w); err != nil {
		return err
	}
	if err := m.writeObjective(w); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "d 0\n"); err != nil {
		return err
	}
	if err := m.writeWarmStart(w); err != nil {
		return err
	}
	if err := m.writeRelationCodes(w); err != nil {
		return err
	}
	if err := m.writeVarBounds(w); err != nil {
		return err
	}
	if err := m.writeJacobianCounts(w); err != nil {
		return err
	}
	if err := m.writeLinearConstraints(w); err != nil {
		return err
	}
	return m.writeLinearObjective(w)
}

func (m *Model) writeHeader(w *bufio.Writer) error {
	nobj := 0
	if m.obj != nil {
		nobj = 1
	}
	nrange, neqn := 0, 0
	for _, rc := range m.rCodes {
		switch rc {
		case 0:
			nrange++
		case 4:
			neqn++
		}
	}

	lines := []string{
		"g",
		writeInts(m.nvar, m.ncon, nobj, nrange, neqn),
		writeInts(m.NumNonlinearCons(), nobj2Int(m.obj != nil && !IsZeroConst(m.obj))),
		writeInts(m.NumNonlinearVars()),
	}
	for _, l := range lines {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func nobj2Int(b bool) int {
	if b {
		return 1
	}
	return 0
}

func writeInts(vals ...int) string {
	s := ""
	for i, v := range vals {
		if i > 0 {
			s += " "
		}
		s += strconv.Itoa(v)
	}
	return s
}

func (m *Model) writeNonlinearConstraints(w *bufio.Writer) error {
	for orig := 1; orig <= m.ncon; orig++ {
		if m.conLin[orig-1] != Nonlinear {
			continue
		}
		nlIdx := m.cIndexMap[orig-1]
		if _, err := io.WriteString(w, "C "+strconv.Itoa(nlIdx)+"\n"); err != nil {
			return err
		}
		if err := m.writeExprPrefix(w, m.constrs[orig-1]); err != nil {
			return errors.Wrapf(err, "constraint %d", orig)
		}
	}
	return nil
}

func (m *Model) writeObjective(w *bufio.Writer) error {
	sense := 0
	if m.sense == Maximize {
		sense = 1
	}
	if _, err := io.WriteString(w, "O 0 "+strconv.Itoa(sense)+"\n"); err != nil {
		return err
	}
	body := m.obj
	if body == nil {
		body = Const(0)
	}
	return errors.Wrap(m.writeExprPrefix(w, body), "objective")
}

func (m *Model) writeExprPrefix(w *bufio.Writer, e *Expr) error {
	switch e.Kind {
	case KConst:
		_, err := io.WriteString(w, "n "+formatFloat(e.Val)+"\n")
		return err
	case KVar:
		nlIdx := m.vIndexMap[e.VarIndex-1]
		_, err := io.WriteString(w, "v "+strconv.Itoa(nlIdx)+"\n")
		return err
	case KCall:
		if _, ok := opArity[e.Op]; !ok {
			return errors.Errorf("writeExprPrefix: unsupported opcode %d", int(e.Op))
		}
		if _, err := io.WriteString(w, "o "+strconv.Itoa(int(e.Op))+"\n"); err != nil {
			return err
		}
		if variadicOps[e.Op] {
			if _, err := io.WriteString(w, strconv.Itoa(len(e.Args))+"\n"); err != nil {
				return err
			}
		}
		for _, a := range e.Args {
			if err := m.writeExprPrefix(w, a); err != nil {
				return err
			}
		}
		return nil
	default:
		return errors.Errorf("writeExprPrefix: unknown expr kind %d", int(e.Kind))
	}
}

func (m *Model) writeWarmStart(w *bufio.Writer) error {
	type pair struct {
		j int
		v float64
	}
	var pairs []pair
	for orig := 1; orig <= m.nvar; orig++ {
		if m.x0[orig-1] != 0 {
			pairs = append(pairs, pair{m.vIndexMap[orig-1], m.x0[orig-1]})
		}
	}
	if _, err := io.WriteString(w, "x "+strconv.Itoa(len(pairs))+"\n"); err != nil {
		return err
	}
	for _, p := range pairs {
		if _, err := io.WriteString(w, strconv.Itoa(p.j)+" "+formatFloat(p.v)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// boundLine encodes (lo, up) as one of the five codes from §4.5's table,
// returning the code and its trailing fields rendered as a string.
func boundLine(lo, up float64) string {
	code, fields := boundCode(lo, up)
	s := strconv.Itoa(code)
	for _, f := range fields {
		s += " " + formatFloat(f)
	}
	return s
}

func boundCode(lo, up float64) (int, []float64) {
	loInf, upInf := isNegInf(lo), isPosInf(up)
	switch {
	case lo == up:
		return 4, []float64{lo}
	case loInf && upInf:
		return 3, nil
	case loInf:
		return 1, []float64{up}
	case upInf:
		return 2, []float64{lo}
	default:
		return 0, []float64{lo, up}
	}
}

func (m *Model) writeRelationCodes(w *bufio.Writer) error {
	if _, err := io.WriteString(w, "r\n"); err != nil {
		return err
	}
	for nl := 0; nl < m.ncon; nl++ {
		orig := m.cIndexMapRev[nl]
		line := boundLine(m.gL[orig-1], m.gU[orig-1])
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) writeVarBounds(w *bufio.Writer) error {
	if _, err := io.WriteString(w, "b\n"); err != nil {
		return err
	}
	for nl := 0; nl < m.nvar; nl++ {
		orig := m.vIndexMapRev[nl]
		line := boundLine(m.xL[orig-1], m.xU[orig-1])
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) writeJacobianCounts(w *bufio.Writer) error {
	if _, err := io.WriteString(w, "k "+strconv.Itoa(m.nvar-1)+"\n"); err != nil {
		return err
	}
	cum := 0
	for nl := 0; nl < m.nvar-1; nl++ {
		orig := m.vIndexMapRev[nl]
		cum += m.jCounts[orig-1]
		if _, err := io.WriteString(w, strconv.Itoa(cum)+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) writeLinearConstraints(w *bufio.Writer) error {
	for nl := 0; nl < m.ncon; nl++ {
		orig := m.cIndexMapRev[nl]
		lm := m.linConstrs[orig-1]
		if _, err := io.WriteString(w, "J "+strconv.Itoa(nl)+" "+strconv.Itoa(len(lm))+"\n"); err != nil {
			return err
		}
		if err := m.writeLinearMap(w, lm); err != nil {
			return err
		}
	}
	return nil
}

func (m *Model) writeLinearObjective(w *bufio.Writer) error {
	if _, err := io.WriteString(w, "G 0 "+strconv.Itoa(len(m.linObj))+"\n"); err != nil {
		return err
	}
	return m.writeLinearMap(w, m.linObj)
}

// writeLinearMap writes one "j coeff" pair per line, in ascending NL index
// order, so the resulting file is deterministic across runs.
func (m *Model) writeLinearMap(w *bufio.Writer, lm LinearMap) error {
	nlIdxs := make([]int, 0, len(lm))
	coefByNl := make(map[int]float64, len(lm))
	for orig, c := range lm {
		nl := m.vIndexMap[orig-1]
		nlIdxs = append(nlIdxs, nl)
		coefByNl[nl] = c
	}
	sortInts(nlIdxs)
	for _, nl := range nlIdxs {
		if _, err := io.WriteString(w, strconv.Itoa(nl)+" "+formatFloat(coefByNl[nl])+"\n"); err != nil {
			return err
		}
	}
	return nil
}
