package backend

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/dotpipe/pkg/errors"
	"github.com/matzehuels/dotpipe/pkg/observability"
)

// RunOptions controls a single subprocess invocation.
type RunOptions struct {
	// Dir is the working directory of the subprocess. Empty means the
	// current directory.
	Dir string

	// Quiet suppresses forwarding of captured stderr to the logger.
	Quiet bool

	// CaptureOutput collects stdout and stderr into the Outcome. When false
	// both streams go to the Runner's Stdout and Stderr writers.
	CaptureOutput bool

	// CombinedOutput collects stderr into the same buffer as stdout.
	CombinedOutput bool
}

// Outcome is the result of a subprocess that exited with status zero.
type Outcome struct {
	Args     []string
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
}

// Runner executes commands as subprocesses, one per call. It holds no
// per-call state, so a single Runner can serve concurrent callers.
type Runner struct {
	Logger *log.Logger

	// LookPath resolves the executable before it is spawned.
	// Defaults to exec.LookPath.
	LookPath func(file string) (string, error)

	// Stdout and Stderr receive uncaptured output. Default to os.Stdout
	// and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewRunner creates a runner logging to logger, or log.Default() if nil.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger, LookPath: exec.LookPath}
}

// Run executes c with in on standard input and waits for it to exit.
//
// The executable is resolved first; a missing binary is an
// EXECUTABLE_NOT_FOUND error and nothing is spawned. A non-zero exit status
// is always a *errors.ProcessError carrying the captured stderr. When in is
// a line stream that fails, that failure is reported instead.
func (r *Runner) Run(ctx context.Context, c Command, in Input, opts RunOptions) (*Outcome, error) {
	logger := r.logger()

	path, err := r.lookPath(c.Name)
	if err != nil {
		return nil, &errors.ExecutableNotFoundError{Name: c.Name, Cause: err}
	}

	if opts.Dir != "" {
		if fi, err := os.Stat(opts.Dir); err != nil || !fi.IsDir() {
			return nil, errors.New(errors.ErrCodeInvalidPath, "working directory does not exist: %q", opts.Dir)
		}
	}

	if in == nil {
		in = NoInput{}
	}
	src, err := in.open()
	if err != nil {
		return nil, err
	}
	defer src.close()

	cmd := exec.CommandContext(ctx, path, c.Args...)
	cmd.Dir = opts.Dir
	cmd.Stdin = src.r

	var stdout, stderr bytes.Buffer
	switch {
	case opts.CombinedOutput:
		cmd.Stdout = &stdout
		cmd.Stderr = &stdout
	case opts.CaptureOutput:
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	default:
		cmd.Stdout = writerOr(r.Stdout, os.Stdout)
		cmd.Stderr = writerOr(r.Stderr, os.Stderr)
	}

	argv := c.Argv()
	logger.Debug("run", "cmd", c.String(), "dir", opts.Dir)
	observability.Run().OnRunStart(ctx, argv)

	start := time.Now()
	runErr := cmd.Run()
	outcome := &Outcome{
		Args:     argv,
		ExitCode: exitCode(cmd),
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if !opts.Quiet && len(outcome.Stderr) > 0 {
		logger.Warn("subprocess stderr", "cmd", c.Name, "stderr", strings.TrimRight(string(outcome.Stderr), "\n"))
	}

	err = classify(ctx, c, runErr, src, outcome)
	observability.Run().OnRunComplete(ctx, argv, outcome.ExitCode, outcome.Duration, err)
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

// classify maps the result of cmd.Run to the error taxonomy.
func classify(ctx context.Context, c Command, runErr error, src stdin, o *Outcome) error {
	if runErr == nil {
		return src.err()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return errors.Wrap(errors.ErrCodeTimeout, ctxErr, "%s", c)
		}
		return errors.Wrap(errors.ErrCodeCanceled, ctxErr, "%s", c)
	}
	if err := src.err(); err != nil {
		return err
	}

	var exitErr *exec.ExitError
	if stderrors.As(runErr, &exitErr) {
		return &errors.ProcessError{
			Args:     o.Args,
			ExitCode: exitErr.ExitCode(),
			Stdout:   o.Stdout,
			Stderr:   o.Stderr,
		}
	}
	if stderrors.Is(runErr, exec.ErrNotFound) || stderrors.Is(runErr, fs.ErrNotExist) || stderrors.Is(runErr, fs.ErrPermission) {
		return &errors.ExecutableNotFoundError{Name: c.Name, Cause: runErr}
	}
	return errors.Wrap(errors.ErrCodeInternal, runErr, "run %s", c)
}

func exitCode(cmd *exec.Cmd) int {
	if cmd.ProcessState == nil {
		return -1
	}
	return cmd.ProcessState.ExitCode()
}

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}

func (r *Runner) lookPath(name string) (string, error) {
	if r.LookPath == nil {
		return exec.LookPath(name)
	}
	return r.LookPath(name)
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}
