package nlo

// solread.go: the SolReader. Parses the fixed text layout AMPL-compatible
// solvers write back (the "message, Options block, counts, dual values,
// primal values, objno line" structure), maps solve_result_num onto the
// five-way Status, and reconstitutes the objective value from the
// decomposed objective plus the returned primal vector.

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ReadSolFile parses path and stores the solution, status, and solver
// messages onto m. In case of failure (a missing "Options" line, an option
// count mismatch, or a constraint/variable count that disagrees with m)
// function returns an error; the parse otherwise updates m even if the
// solver reported a non-optimal outcome.
func (m *Model) ReadSolFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "ReadSolFile failed to open file")
	}
	defer f.Close()

	return errors.Wrap(m.readSol(f), "ReadSolFile")
}

func (m *Model) readSol(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var message []string
	sawFirstLine := false
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			if sawFirstLine {
				break
			}
			continue // leading blank lines are skipped
		}
		sawFirstLine = true
		message = append(message, line)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "error scanning message block")
	}
	m.solveMessage = strings.Join(message, "\n")

	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "Options" {
			break
		}
	}

	o1, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected o1 after Options")
	}
	o2, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected o2 after Options")
	}
	o3, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected o3 after Options")
	}

	numOptions := o1
	if numOptions < 3 || numOptions > 9 {
		return errors.Errorf("option count %d outside [3,9]", numOptions)
	}

	needVbtol := false
	if o3 == 3 {
		needVbtol = true
		numOptions -= 2
	}

	options := []int{o1, o2, o3}
	for i := 0; i < numOptions-3; i++ {
		v, err := readInt(sc)
		if err != nil {
			return errors.Wrapf(err, "expected option %d", i+3)
		}
		options = append(options, v)
	}

	nCons, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected n_constraints")
	}
	if nCons != m.ncon {
		return errors.Errorf("n_constraints %d does not match model constraint count %d", nCons, m.ncon)
	}
	nDualsToRead, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected n_duals_to_read")
	}
	if nDualsToRead != 0 && nDualsToRead != m.ncon {
		return errors.Errorf("n_duals_to_read %d is neither 0 nor %d", nDualsToRead, m.ncon)
	}
	nVars, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected n_variables")
	}
	if nVars != m.nvar {
		return errors.Errorf("n_variables %d does not match model variable count %d", nVars, m.nvar)
	}
	nVarsToRead, err := readInt(sc)
	if err != nil {
		return errors.Wrap(err, "expected n_vars_to_read")
	}
	if nVarsToRead != 0 && nVarsToRead != m.nvar {
		return errors.Errorf("n_vars_to_read %d is neither 0 nor %d", nVarsToRead, m.nvar)
	}

	if needVbtol {
		if _, err := readFloat(sc); err != nil {
			return errors.Wrap(err, "expected vbtol after n_vars_to_read")
		}
	}

	for i := 0; i < nDualsToRead; i++ {
		if _, err := readFloat(sc); err != nil {
			return errors.Wrapf(err, "expected dual value %d", i)
		}
	}

	m.solution = make([]float64, m.nvar)
	for i := 0; i < nVarsToRead; i++ {
		v, err := readFloat(sc)
		if err != nil {
			return errors.Wrapf(err, "expected primal value %d", i)
		}
		orig := m.vIndexMapRev[i]
		m.solution[orig-1] = v
	}

	solveResultNum, err := readObjnoLine(sc)
	if err != nil {
		return err
	}
	m.solveResultNum = solveResultNum
	m.status, m.solveResult = classifySolveResult(solveResultNum, m.solveMessage)

	if nVarsToRead == 0 {
		m.objVal = math.NaN()
		return nil
	}

	objVal, err := m.reconstituteObjective()
	if err != nil {
		return errors.Wrap(err, "failed to reconstitute objective")
	}
	m.objVal = objVal
	return nil
}

// readObjnoLine scans forward to the trailing "objno 0 <solve_result_num>"
// line, tolerating solver chatter (extra suffix lines some solvers emit)
// between the last primal value and it.
func readObjnoLine(sc *bufio.Scanner) (int, error) {
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 3 && fields[0] == "objno" {
			if fields[1] != "0" {
				return 0, errors.Errorf("objno line reports objective %s, only objective 0 is supported", fields[1])
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return 0, errors.Wrap(err, "malformed objno line")
			}
			return n, nil
		}
	}
	if err := sc.Err(); err != nil {
		return 0, errors.Wrap(err, "error scanning for objno line")
	}
	return 0, errors.New("missing objno line")
}

func readInt(sc *bufio.Scanner) (int, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.Atoi(strings.TrimSpace(sc.Text()))
}

func readFloat(sc *bufio.Scanner) (float64, error) {
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(strings.TrimSpace(sc.Text()), 64)
}

// classifySolveResult maps a solve_result_num to a Status and a
// human-readable string, per §4.7's ranges: [0,100) optimal, [100,200)
// optimal-with-warning, [200,300) infeasible, [300,400) unbounded,
// [400,500) user limit, [500,600) solver error. When num falls outside
// every documented range, the message text is scanned for a recognizable
// substring as a fallback.
func classifySolveResult(num int, message string) (Status, string) {
	switch {
	case num >= 0 && num < 100:
		return Optimal, "solved"
	case num >= 100 && num < 200:
		log(pWARN, "solver reported solve_result_num %d: optimal with warnings\n", num)
		return Optimal, "solved?"
	case num >= 200 && num < 300:
		return Infeasible, "infeasible"
	case num >= 300 && num < 400:
		return Unbounded, "unbounded"
	case num >= 400 && num < 500:
		return UserLimit, "limit"
	case num >= 500 && num < 600:
		return Error, "failure"
	}
	return classifyByMessage(message)
}

// classifyByMessage is the fallback used when solve_result_num falls
// outside every documented range: the message is scanned for the first of
// "optimal", "infeasible", "unbounded", "limit", "error" to appear, in
// that priority order, per §4.7.
func classifyByMessage(message string) (Status, string) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "optimal"):
		return Optimal, "solved"
	case strings.Contains(lower, "infeasible"):
		return Infeasible, "infeasible"
	case strings.Contains(lower, "unbounded"):
		return Unbounded, "unbounded"
	case strings.Contains(lower, "limit"):
		return UserLimit, "limit"
	case strings.Contains(lower, "error"):
		return Error, "failure"
	default:
		return Error, "failure"
	}
}

// reconstituteObjective evaluates the residual nonlinear tree at the
// returned solution and adds the linear part's dot product and the
// constant pulled out at decomposition time.
func (m *Model) reconstituteObjective() (float64, error) {
	nlVal := 0.0
	if m.obj != nil {
		v, err := Eval(m.obj, m.solution)
		if err != nil {
			return 0, err
		}
		nlVal = v
	}
	linVal, err := m.linObj.Dot(m.solution)
	if err != nil {
		return 0, err
	}
	return nlVal + linVal + m.objConstant, nil
}
