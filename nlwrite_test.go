package nlo

import (
	"bufio"
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"
)

// buildWriteTestModel assembles a small 3-variable, 2-constraint model by
// hand, then derives its index maps and Jacobian counts the same way a real
// Load*Problem call would, so the expected NL output can be computed against
// whatever bucket order buildIndexMaps actually produces rather than an
// assumed one.
func buildWriteTestModel() *Model {
	m := &Model{nvar: 3, ncon: 2}
	m.varTypes = []VarType{Continuous, Continuous, Integer}
	m.varLinObj = []Linearity{Nonlinear, Linear, Linear}
	m.varLinCon = []Linearity{Nonlinear, Linear, Linear}
	m.conLin = []Linearity{Nonlinear, Linear}
	m.linConstrs = []LinearMap{{}, {2: 1, 3: -2}}
	m.buildIndexMaps()
	m.buildJacobianCounts()

	m.sense = Minimize
	m.obj = MustCall(OpPow, Var(1), Const(2))
	m.linObj = LinearMap{2: 3}
	m.objConstant = 1

	m.constrs = []*Expr{MustCall(OpSum, Var(1), Var(2)), nil}
	m.rCodes = []int{1, 4}
	m.gL = []float64{math.Inf(-1), 0}
	m.gU = []float64{5, 0}

	m.xL = []float64{0, math.Inf(-1), 0}
	m.xU = []float64{math.Inf(1), math.Inf(1), 10}
	m.x0 = []float64{0, 5, 0}
	return m
}

func renderNL(t *testing.T, m *Model) []string {
	var buf bytes.Buffer
	w := bufio.NewWriter(&buf)
	if err := m.writeNL(w); err != nil {
		t.Fatalf("writeNL returned error: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("flush returned error: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	return lines
}

func TestWriteNLHeader(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	want := []string{
		"g",
		"3 2 1 0 1",
		"1 1",
		"1",
	}
	if len(lines) < 4 {
		t.Fatalf("output too short: %v", lines)
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("header line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestWriteNLSegmentOrder(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	var segmentStarts []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		tag := l[:1]
		switch tag {
		case "C", "O", "d", "x", "r", "b", "k", "J", "G":
			segmentStarts = append(segmentStarts, tag)
		}
	}
	want := []string{"C", "O", "d", "x", "r", "b", "k", "J", "J", "G"}
	if len(segmentStarts) != len(want) {
		t.Fatalf("segment sequence = %v, want %v", segmentStarts, want)
	}
	for i := range want {
		if segmentStarts[i] != want[i] {
			t.Errorf("segment[%d] = %q, want %q (full: %v)", i, segmentStarts[i], want[i], segmentStarts)
		}
	}
}

func TestWriteNLConstraintBody(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	nlIdx := m.cIndexMap[0]
	wantHeader := "C " + strconv.Itoa(nlIdx)
	idx := indexOf(lines, wantHeader)
	if idx < 0 {
		t.Fatalf("did not find %q in output: %v", wantHeader, lines)
	}
	// Sum is variadic: "o <opcode>" then an explicit arg-count line, then
	// each operand.
	if lines[idx+1] != "o "+strconv.Itoa(int(OpSum)) {
		t.Errorf("opcode line = %q, want o %d", lines[idx+1], OpSum)
	}
	if lines[idx+2] != "2" {
		t.Errorf("arg count line = %q, want 2", lines[idx+2])
	}
}

func TestWriteNLObjective(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	idx := indexOf(lines, "O 0 0")
	if idx < 0 {
		t.Fatalf("did not find objective header in output: %v", lines)
	}
	if lines[idx+1] != "o "+strconv.Itoa(int(OpPow)) {
		t.Errorf("objective opcode line = %q, want o %d", lines[idx+1], OpPow)
	}
}

func TestWriteNLWarmStart(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	idx := indexOf(lines, "x 1")
	if idx < 0 {
		t.Fatalf("did not find warm start header in output: %v", lines)
	}
	nlIdx := m.vIndexMap[1] // variable 2 has the only nonzero x0
	want := strconv.Itoa(nlIdx) + " " + formatFloat(5)
	if lines[idx+1] != want {
		t.Errorf("warm start line = %q, want %q", lines[idx+1], want)
	}
}

func TestWriteNLRelationAndBounds(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	rIdx := indexOf(lines, "r")
	if rIdx < 0 {
		t.Fatalf("did not find r segment: %v", lines)
	}
	// First constraint in NL order: whichever original constraint cIndexMapRev[0] is.
	orig0 := m.cIndexMapRev[0]
	want0 := boundLine(m.gL[orig0-1], m.gU[orig0-1])
	if lines[rIdx+1] != want0 {
		t.Errorf("r line 0 = %q, want %q", lines[rIdx+1], want0)
	}

	bIdx := indexOf(lines, "b")
	if bIdx < 0 {
		t.Fatalf("did not find b segment: %v", lines)
	}
	for nl := 0; nl < m.nvar; nl++ {
		orig := m.vIndexMapRev[nl]
		want := boundLine(m.xL[orig-1], m.xU[orig-1])
		if lines[bIdx+1+nl] != want {
			t.Errorf("b line %d = %q, want %q", nl, lines[bIdx+1+nl], want)
		}
	}
}

func TestBoundCodeTable(t *testing.T) {
	cases := []struct {
		name       string
		lo, up     float64
		wantCode   int
		wantFields []float64
	}{
		{"range", 0, 10, 0, []float64{0, 10}},
		{"upper only", math.Inf(-1), 5, 1, []float64{5}},
		{"lower only", 0, math.Inf(1), 2, []float64{0}},
		{"free", math.Inf(-1), math.Inf(1), 3, nil},
		{"equality", 7, 7, 4, []float64{7}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, fields := boundCode(c.lo, c.up)
			if code != c.wantCode {
				t.Errorf("boundCode(%v, %v) code = %d, want %d", c.lo, c.up, code, c.wantCode)
			}
			if len(fields) != len(c.wantFields) {
				t.Fatalf("boundCode(%v, %v) fields = %v, want %v", c.lo, c.up, fields, c.wantFields)
			}
			for i := range fields {
				if fields[i] != c.wantFields[i] {
					t.Errorf("boundCode(%v, %v) fields[%d] = %v, want %v", c.lo, c.up, i, fields[i], c.wantFields[i])
				}
			}
		})
	}
}

func TestWriteNLJacobianCounts(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	kIdx := indexOf(lines, "k "+strconv.Itoa(m.nvar-1))
	if kIdx < 0 {
		t.Fatalf("did not find k segment: %v", lines)
	}
	cum := 0
	for nl := 0; nl < m.nvar-1; nl++ {
		orig := m.vIndexMapRev[nl]
		cum += m.jCounts[orig-1]
		want := strconv.Itoa(cum)
		if lines[kIdx+1+nl] != want {
			t.Errorf("k line %d = %q, want %q", nl, lines[kIdx+1+nl], want)
		}
	}
}

func TestWriteNLLinearSegments(t *testing.T) {
	m := buildWriteTestModel()
	lines := renderNL(t, m)

	// The linear constraint (original index 2) has 2 nonzero entries.
	found := false
	for _, l := range lines {
		if strings.HasPrefix(l, "J ") && strings.HasSuffix(l, " 2") {
			found = true
		}
	}
	if !found {
		t.Errorf("did not find a J segment header with count 2 in: %v", lines)
	}

	gIdx := indexOf(lines, "G 0 "+strconv.Itoa(len(m.linObj)))
	if gIdx < 0 {
		t.Fatalf("did not find objective linear segment header: %v", lines)
	}
}

func TestFormatFloatPrecision(t *testing.T) {
	s := formatFloat(0.1)
	back, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("formatFloat output does not parse back: %v", err)
	}
	if back != 0.1 {
		t.Errorf("formatFloat(0.1) round-trips to %v", back)
	}
}

func indexOf(lines []string, target string) int {
	for i, l := range lines {
		if l == target {
			return i
		}
	}
	return -1
}
