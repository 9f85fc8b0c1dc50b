// SPDX-License-Identifier: MPL-2.0

package spawn

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner abstracts process execution so the launch pipeline can be
// exercised in tests without spawning real processes.
type Runner interface {
	// Run executes the command in the foreground with inherited stdio,
	// blocking until it exits.
	Run(ctx context.Context, cmd *Command) *Result
	// RunCapture executes the command with stdout/stderr buffered and
	// nothing written to the terminal.
	RunCapture(ctx context.Context, cmd *Command) *Result
	// StartDetached starts the command in the background, detached from
	// the launcher's lifetime, and returns without waiting on it.
	StartDetached(cmd *Command) error
}

// OSRunner is the Runner backed by real OS processes.
type OSRunner struct{}

// NewOSRunner creates a Runner backed by os/exec.
func NewOSRunner() *OSRunner {
	return &OSRunner{}
}

// Run executes the command with inherited stdio and blocks until it exits.
func (r *OSRunner) Run(ctx context.Context, c *Command) *Result {
	cmd := c.build(ctx)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = c.stdio()

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return NewExitCodeResult(ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(1, fmt.Errorf("failed to run %s: %w", c.Path, err))
	}

	return NewSuccessResult()
}

// RunCapture executes the command and captures its output.
func (r *OSRunner) RunCapture(ctx context.Context, c *Command) *Result {
	cmd := c.build(ctx)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = ExitCode(exitErr.ExitCode())
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result
}

// StartDetached starts the command in the background without waiting on it.
// The child is detached from the launcher's session (new session on POSIX,
// new minimized console window on Windows) so it survives launcher exit.
func (r *OSRunner) StartDetached(c *Command) error {
	cmd, err := detachedCommand(c)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s in background: %w", c.Path, err)
	}

	// Release the handle; the launcher never waits on the background child.
	return cmd.Process.Release()
}
