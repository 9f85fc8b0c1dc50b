// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package spawn

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// detachedCommand builds an exec.Cmd that runs in its own session with
// stdio bound to the null device, so the child neither dies with the
// launcher nor scribbles on its terminal.
func detachedCommand(c *Command) (*exec.Cmd, error) {
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", os.DevNull, err)
	}

	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd, nil
}
