// SPDX-License-Identifier: MPL-2.0

package spawn

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// Command describes a process to run. The zero value is not usable;
// Path must be an absolute path or a name resolvable via the PATH.
type Command struct {
	// Path is the program to run.
	Path string
	// Args are the program arguments (not including the program name).
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is the full environment in KEY=VALUE form. Nil means the
	// launcher's own environment.
	Env []string

	// Stdin, Stdout and Stderr override the launcher's own stdio for
	// foreground runs. Nil fields fall back to os.Stdin/Stdout/Stderr.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// build materializes the command spec into an exec.Cmd bound to ctx.
func (c *Command) build(ctx context.Context) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	return cmd
}

// stdio returns the effective stdio streams for a foreground run.
func (c *Command) stdio() (io.Reader, io.Writer, io.Writer) {
	stdin, stdout, stderr := c.Stdin, c.Stdout, c.Stderr
	if stdin == nil {
		stdin = os.Stdin
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return stdin, stdout, stderr
}
