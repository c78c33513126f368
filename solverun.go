package nlo

// solverun.go: the SolverDriver. Writes the NL file, spawns the configured
// AMPL-compatible solver executable against it, and reads back the SOL file
// it produces - the same read/exec/parse shape as the source's
// CplexSolveMps, generalized from one hardwired cplex invocation to any
// solver executable accepting the "-AMPL key=val ..." calling convention.

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Options is the AMPL-style key/value option set passed to the solver on
// its command line. It is a named map rather than a bare []string so that
// Args can guarantee a deterministic (sorted-by-key) rendering regardless
// of how the caller assembled the set - the same command line every time
// for the same options, which matters for reproducible test fixtures.
type Options map[string]string

// Args renders o as "key=value" tokens, sorted by key.
func (o Options) Args() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	args := make([]string, 0, len(keys))
	for _, k := range keys {
		args = append(args, k+"="+o[k])
	}
	return args
}

// Solver names the external solver executable to invoke and the AMPL-style
// options passed to it on the command line.
type Solver struct {
	Command string
	Options Options

	// WorkDir is where the .nl and .sol files are written. Empty means a
	// fresh temporary directory is created for every solve and removed
	// afterwards, unless KeepFiles is set.
	WorkDir   string
	KeepFiles bool
}

// NewSolver builds a Solver that will invoke command with the given AMPL
// option key/value pairs on every Optimize call.
func NewSolver(command string, options Options) *Solver {
	return &Solver{Command: command, Options: options}
}

// Optimize writes m to a fresh NL file, runs the configured solver against
// it, and reads the resulting SOL file back into m. A non-zero solver exit
// code is recorded on m (Status() becomes Error, GetSolveResultNum()
// becomes 999) rather than returned as an error, per §7's SolverFailure
// policy; Optimize itself only returns an error for problems on this side
// of the process boundary - I/O failures writing the NL file, failure to
// even start the solver process, or a malformed SOL file.
func (s *Solver) Optimize(m *Model) error {
	dir := s.WorkDir
	cleanup := func() {}
	if dir == "" {
		tmp, err := os.MkdirTemp("", "nlsolve-")
		if err != nil {
			return errors.Wrap(err, "Optimize failed to create work directory")
		}
		dir = tmp
		if !s.KeepFiles {
			cleanup = func() { os.RemoveAll(dir) }
		}
	}
	defer cleanup()

	nlPath := filepath.Join(dir, "model.nl")
	solPath := filepath.Join(dir, "model.sol")

	if err := m.WriteNLFile(nlPath); err != nil {
		return errors.Wrap(err, "Optimize failed to write NL file")
	}

	args := append([]string{nlPath, "-AMPL"}, s.Options.Args()...)
	cmd := exec.Command(s.Command, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Dir = dir

	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		exitErr, ok := runErr.(*exec.ExitError)
		if !ok {
			return errors.Wrap(runErr, "Optimize failed to start solver process")
		}
		exitCode = exitErr.ExitCode()
	}
	m.solveExitCode = exitCode

	if exitCode != 0 {
		log(pERR, "solver %q exited with code %d\n", s.Command, exitCode)
		m.status = Error
		m.solveResult = "failure"
		m.solveResultNum = 999
		return nil
	}

	if err := m.ReadSolFile(solPath); err != nil {
		return errors.Wrap(err, "Optimize failed to read solution file")
	}
	return nil
}
