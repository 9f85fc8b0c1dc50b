// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"slices"
	"strings"
	"testing"

	"appstart-cli/internal/issue"
	"appstart-cli/internal/spawn"
)

type runnerCall struct {
	kind string // "capture", "run", "detach"
	path string
	args []string
}

// fakeRunner records process invocations and replays canned results, so
// pipeline ordering can be asserted without real subprocesses.
type fakeRunner struct {
	calls         []runnerCall
	probeResult   *spawn.Result
	installResult *spawn.Result
	runResult     *spawn.Result
	detachErr     error
}

func (f *fakeRunner) RunCapture(_ context.Context, c *spawn.Command) *spawn.Result {
	f.calls = append(f.calls, runnerCall{kind: "capture", path: c.Path, args: c.Args})
	if f.probeResult != nil {
		return f.probeResult
	}
	return spawn.NewSuccessResult()
}

func (f *fakeRunner) Run(_ context.Context, c *spawn.Command) *spawn.Result {
	f.calls = append(f.calls, runnerCall{kind: "run", path: c.Path, args: c.Args})
	if slices.Contains(c.Args, "pip") {
		if f.installResult != nil {
			return f.installResult
		}
		return spawn.NewSuccessResult()
	}
	if f.runResult != nil {
		return f.runResult
	}
	return spawn.NewSuccessResult()
}

func (f *fakeRunner) StartDetached(c *spawn.Command) error {
	f.calls = append(f.calls, runnerCall{kind: "detach", path: c.Path, args: c.Args})
	return f.detachErr
}

func (f *fakeRunner) kinds() []string {
	kinds := make([]string, len(f.calls))
	for i, c := range f.calls {
		kinds[i] = c.kind
	}
	return kinds
}

// setupProject builds a host PATH with a python3 stub plus a project
// dir containing a venv, and returns ready-to-run Options.
func setupProject(t *testing.T, runner spawn.Runner) Options {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fixture venv trees assume POSIX layout")
	}

	hostBin := t.TempDir()
	writeStubExecutable(t, hostBin, "python3")
	t.Setenv("PATH", hostBin)

	workDir := t.TempDir()
	makeVenv(t, workDir, ".venv")

	return Options{
		Entrypoint:         "app.py",
		WorkDir:            workDir,
		Interpreters:       []string{"python3", "python"},
		VenvDir:            ".venv",
		Framework:          "streamlit",
		RunCommand:         "run",
		BackgroundRelaunch: true,
		Runner:             runner,
	}
}

func TestLauncher_FrameworkPresent_SkipsInstall(t *testing.T) {
	runner := &fakeRunner{}
	l := New(setupProject(t, runner))

	outcome, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"capture", "run", "detach"}
	if got := runner.kinds(); !slices.Equal(got, want) {
		t.Errorf("call order = %v, want %v", got, want)
	}
	if outcome.Installed {
		t.Error("no install should happen when the framework probe succeeds")
	}
	if !outcome.Relaunched {
		t.Error("the background relaunch must always be issued")
	}
	if l.Phase() != PhaseDone {
		t.Errorf("final phase = %s, want %s", l.Phase(), PhaseDone)
	}
}

func TestLauncher_FrameworkMissing_InstallsOnceBeforeRun(t *testing.T) {
	runner := &fakeRunner{probeResult: spawn.NewExitCodeResult(1)}
	l := New(setupProject(t, runner))

	outcome, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	want := []string{"capture", "run", "run", "detach"}
	if got := runner.kinds(); !slices.Equal(got, want) {
		t.Fatalf("call order = %v, want %v", got, want)
	}
	// The first "run" must be the pip install, the second the app.
	if !slices.Contains(runner.calls[1].args, "pip") {
		t.Errorf("first run call should be the pip install, got args %v", runner.calls[1].args)
	}
	if slices.Contains(runner.calls[2].args, "pip") {
		t.Errorf("second run call should be the app run, got args %v", runner.calls[2].args)
	}
	if !outcome.Installed {
		t.Error("outcome should record the install")
	}
}

func TestLauncher_InstallFailure_IsFatal(t *testing.T) {
	runner := &fakeRunner{
		probeResult:   spawn.NewExitCodeResult(1),
		installResult: spawn.NewExitCodeResult(1),
	}
	l := New(setupProject(t, runner))

	_, err := l.Run(context.Background())
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.IssueID != issue.FrameworkInstallFailedId {
		t.Errorf("issue id = %d, want FrameworkInstallFailedId", fatal.IssueID)
	}

	// No app run, no relaunch after a failed install.
	for _, c := range runner.calls {
		if c.kind == "detach" {
			t.Error("no relaunch may happen after a failed install")
		}
		if c.kind == "run" && !slices.Contains(c.args, "pip") {
			t.Error("the app must not run after a failed install")
		}
	}
}

func TestLauncher_AppFailure_StillRelaunches(t *testing.T) {
	runner := &fakeRunner{runResult: spawn.NewExitCodeResult(3)}
	var out bytes.Buffer
	opts := setupProject(t, runner)
	opts.Stdout = &out
	l := New(opts)

	outcome, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("a failing app is not a pipeline error: %v", err)
	}
	if outcome.AppExitCode != 3 {
		t.Errorf("app exit code = %d, want 3", outcome.AppExitCode)
	}
	if !outcome.Relaunched {
		t.Error("the relaunch must be issued even when the app failed")
	}
	if !strings.Contains(out.String(), "exited with an error") {
		t.Errorf("a generic failure line should be printed, got:\n%s", out.String())
	}
}

func TestLauncher_RelaunchDisabled(t *testing.T) {
	runner := &fakeRunner{}
	opts := setupProject(t, runner)
	opts.BackgroundRelaunch = false
	l := New(opts)

	outcome, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Relaunched {
		t.Error("relaunch should be suppressed when disabled")
	}
	if slices.Contains(runner.kinds(), "detach") {
		t.Error("no detach call should happen when relaunch is disabled")
	}
}

func TestLauncher_RelaunchFailure_IsSoft(t *testing.T) {
	runner := &fakeRunner{detachErr: errors.New("spawn refused")}
	l := New(setupProject(t, runner))

	outcome, err := l.Run(context.Background())
	if err != nil {
		t.Fatalf("a relaunch failure must not fail the pipeline: %v", err)
	}
	if outcome.Relaunched {
		t.Error("outcome must not report a relaunch that failed to start")
	}
	if l.Phase() != PhaseDone {
		t.Errorf("final phase = %s, want %s", l.Phase(), PhaseDone)
	}
}

func TestLauncher_NoInterpreter_StopsImmediately(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture venv trees assume POSIX layout")
	}

	t.Setenv("PATH", t.TempDir())
	runner := &fakeRunner{}
	l := New(Options{
		Entrypoint:         "app.py",
		WorkDir:            t.TempDir(),
		Interpreters:       []string{"python3", "python"},
		VenvDir:            ".venv",
		Framework:          "streamlit",
		RunCommand:         "run",
		BackgroundRelaunch: true,
		Runner:             runner,
	})

	_, err := l.Run(context.Background())
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.IssueID != issue.InterpreterNotFoundId {
		t.Errorf("issue id = %d, want InterpreterNotFoundId", fatal.IssueID)
	}
	if fatal.Phase != PhaseCheckingInterpreter {
		t.Errorf("failing phase = %s, want %s", fatal.Phase, PhaseCheckingInterpreter)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no process may be invoked after a fatal interpreter check, got %v", runner.kinds())
	}
}

func TestLauncher_NoVenv_StopsBeforeAnyLaunch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fixture venv trees assume POSIX layout")
	}

	hostBin := t.TempDir()
	writeStubExecutable(t, hostBin, "python3")
	t.Setenv("PATH", hostBin)

	runner := &fakeRunner{}
	l := New(Options{
		Entrypoint:         "app.py",
		WorkDir:            t.TempDir(), // no venv inside
		Interpreters:       []string{"python3", "python"},
		VenvDir:            ".venv",
		Framework:          "streamlit",
		RunCommand:         "run",
		BackgroundRelaunch: true,
		Runner:             runner,
	})

	_, err := l.Run(context.Background())
	var fatal *FatalError
	if !errors.As(err, &fatal) {
		t.Fatalf("expected *FatalError, got %v", err)
	}
	if fatal.IssueID != issue.VenvNotFoundId {
		t.Errorf("issue id = %d, want VenvNotFoundId", fatal.IssueID)
	}
	if len(runner.calls) != 0 {
		t.Errorf("no process may be invoked after a fatal venv check, got %v", runner.kinds())
	}
}

func TestLauncher_RunCommandShape(t *testing.T) {
	runner := &fakeRunner{}
	l := New(setupProject(t, runner))

	if _, err := l.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	appRun := runner.calls[1]
	want := []string{"-m", "streamlit", "run", "app.py"}
	if !slices.Equal(appRun.args, want) {
		t.Errorf("app run args = %v, want %v", appRun.args, want)
	}
	relaunch := runner.calls[2]
	if !slices.Equal(relaunch.args, want) {
		t.Errorf("relaunch args = %v, want the same run command %v", relaunch.args, want)
	}
	if !strings.HasPrefix(appRun.path, "/") {
		t.Errorf("the venv interpreter path should be absolute, got %q", appRun.path)
	}
}
