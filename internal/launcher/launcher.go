// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"appstart-cli/internal/issue"
	"appstart-cli/internal/spawn"

	"github.com/charmbracelet/log"
)

type (
	// Options configures a launch pipeline run.
	Options struct {
		// Entrypoint is the application entry-point file.
		Entrypoint string
		// WorkDir is the directory the app is launched from.
		WorkDir string
		// Interpreters are the interpreter candidates probed on the PATH.
		Interpreters []string
		// VenvDir is the virtual environment directory.
		VenvDir string
		// Framework is the pip package / runnable module name.
		Framework string
		// RunCommand is the framework subcommand that serves the app.
		RunCommand string
		// BackgroundRelaunch issues one detached relaunch after the
		// foreground run exits.
		BackgroundRelaunch bool

		// Runner executes processes. Nil means real OS processes.
		Runner spawn.Runner
		// Stdout receives per-phase status lines. Nil discards them.
		Stdout io.Writer
		// Logger receives structured step logging. Nil discards it.
		Logger *log.Logger
	}

	// Launcher drives the launch pipeline.
	Launcher struct {
		opts   Options
		runner spawn.Runner
		out    io.Writer
		logger *log.Logger
		phase  Phase
	}

	// Outcome summarizes a completed pipeline run.
	Outcome struct {
		// AppExitCode is the foreground run's exit code.
		AppExitCode spawn.ExitCode
		// Installed is true when the framework had to be installed.
		Installed bool
		// Relaunched is true when the background relaunch was issued.
		Relaunched bool
		// URL is the address the app serves on, when known.
		URL string
	}

	// FatalError is a checkpoint failure that halts the pipeline before
	// any process launch. It carries the catalog id for rendering
	// remediation guidance and requires user acknowledgment upstream.
	FatalError struct {
		Phase   Phase
		IssueID issue.Id
		Err     error
	}
)

// Error implements the error interface.
func (e *FatalError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FatalError) Unwrap() error { return e.Err }

// New creates a Launcher. Zero-value Options fields get safe defaults.
func New(opts Options) *Launcher {
	runner := opts.Runner
	if runner == nil {
		runner = spawn.NewOSRunner()
	}
	out := opts.Stdout
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Launcher{opts: opts, runner: runner, out: out, logger: logger, phase: PhaseIdle}
}

// Phase returns the pipeline's current phase.
func (l *Launcher) Phase() Phase { return l.phase }

// Run executes the pipeline. Checkpoint failures return *FatalError;
// the foreground app's own exit code is reported in the Outcome, not as
// an error.
func (l *Launcher) Run(ctx context.Context) (*Outcome, error) {
	outcome := &Outcome{}

	// Interpreter discovery.
	if err := l.enter(PhaseCheckingInterpreter); err != nil {
		return nil, err
	}
	python, err := FindInterpreter(l.opts.Interpreters)
	if err != nil {
		return nil, l.fail(issue.InterpreterNotFoundId, err)
	}
	l.logger.Debug("interpreter found", "path", python)
	l.status("✓ Python interpreter found: %s", python)

	// Virtual environment check.
	if err := l.enter(PhaseCheckingEnv); err != nil {
		return nil, err
	}
	venv, err := DetectVenv(l.opts.WorkDir, l.opts.VenvDir)
	if err != nil {
		return nil, l.fail(issue.VenvNotFoundId, err)
	}
	l.logger.Debug("virtual environment found", "dir", venv.Dir)
	l.status("✓ Virtual environment found: %s", venv.Dir)

	// Activation, verified to have taken effect.
	if err := l.enter(PhaseActivating); err != nil {
		return nil, err
	}
	env, err := venv.Activate(ctx)
	if err != nil {
		return nil, l.fail(issue.ActivationFailedId, err)
	}
	venvPython, err := venv.ResolveInterpreter(env, l.opts.Interpreters)
	if err != nil {
		return nil, l.fail(issue.ActivationFailedId, err)
	}
	l.logger.Debug("environment activated", "python", venvPython)
	l.status("✓ Virtual environment activated")

	// Framework check, with one install attempt as remediation.
	if err := l.enter(PhaseCheckingFramework); err != nil {
		return nil, err
	}
	probe := probeFramework(ctx, l.runner, venvPython, l.opts.Framework, l.opts.WorkDir, env)
	if probe.Failed() {
		l.status("%s is not installed, installing...", l.opts.Framework)
		start := time.Now()
		install := installFramework(ctx, l.runner, venvPython, l.opts.Framework, l.opts.WorkDir, env)
		if install.Failed() {
			err := issue.NewErrorContext().
				WithOperation("install framework").
				WithResource(l.opts.Framework).
				WithSuggestion(fmt.Sprintf("Run by hand: %s -m pip install %s", venvPython, l.opts.Framework)).
				Wrap(installCause(install)).
				BuildError()
			return nil, l.fail(issue.FrameworkInstallFailedId, err)
		}
		outcome.Installed = true
		l.logger.Debug("framework installed", "name", l.opts.Framework, "took", time.Since(start))
		l.status("✓ %s installed", l.opts.Framework)
	} else {
		l.logger.Debug("framework present", "name", l.opts.Framework)
		l.status("✓ %s is installed", l.opts.Framework)
	}

	// Foreground run.
	if err := l.enter(PhaseRunning); err != nil {
		return nil, err
	}
	if l.opts.Framework == "streamlit" {
		if url, ok := ServerURL(l.opts.WorkDir); ok {
			outcome.URL = url
			l.status("Starting %s at %s ...", l.opts.Entrypoint, url)
		}
	}
	if outcome.URL == "" {
		l.status("Starting %s ...", l.opts.Entrypoint)
	}
	cmd := runCommand(venvPython, l.opts.Framework, l.opts.RunCommand, l.opts.Entrypoint, l.opts.WorkDir, env)
	result := l.runner.Run(ctx, cmd)
	outcome.AppExitCode = result.ExitCode
	if result.Failed() {
		// Soft failure only: the relaunch below still happens.
		l.status("✗ The application exited with an error (code %s)", result.ExitCode)
		l.logger.Debug("foreground run failed", "code", result.ExitCode, "error", result.Error)
	}

	// One detached relaunch, never awaited.
	if err := l.enter(PhaseRelaunching); err != nil {
		return nil, err
	}
	if l.opts.BackgroundRelaunch {
		relaunch := runCommand(venvPython, l.opts.Framework, l.opts.RunCommand, l.opts.Entrypoint, l.opts.WorkDir, env)
		if err := l.runner.StartDetached(relaunch); err != nil {
			// Fire-and-forget: a relaunch failure is reported, not fatal.
			l.status("✗ Background relaunch failed: %v", err)
			l.logger.Debug("background relaunch failed", "error", err)
		} else {
			outcome.Relaunched = true
			l.status("✓ Relaunched in background")
		}
	}

	if err := l.enter(PhaseDone); err != nil {
		return nil, err
	}
	return outcome, nil
}

// enter performs a validated phase transition.
func (l *Launcher) enter(to Phase) error {
	next, err := transition(l.phase, to)
	if err != nil {
		return err
	}
	l.phase = next
	l.logger.Debug("phase", "now", next)
	return nil
}

// fail marks the pipeline failed and wraps err as a FatalError.
func (l *Launcher) fail(id issue.Id, err error) error {
	failedFrom := l.phase
	if next, terr := transition(l.phase, PhaseFailed); terr == nil {
		l.phase = next
	}
	return &FatalError{Phase: failedFrom, IssueID: id, Err: err}
}

// status prints a per-phase status line.
func (l *Launcher) status(format string, args ...any) {
	fmt.Fprintf(l.out, format+"\n", args...)
}

// installCause picks the most informative error out of an install result.
func installCause(result *spawn.Result) error {
	if result.Error != nil {
		return result.Error
	}
	return fmt.Errorf("pip exited with code %s", result.ExitCode)
}
