// SPDX-License-Identifier: MPL-2.0

//go:build windows

package spawn

import (
	"os/exec"
	"strings"
	"syscall"
)

// detachedCommand builds an exec.Cmd that opens the child in a new
// minimized console window via `cmd /c start /MIN`. SysProcAttr cannot
// express the minimized startup state, so the start builtin does it.
func detachedCommand(c *Command) (*exec.Cmd, error) {
	args := []string{"/c", "start", "/MIN", ""}
	args = append(args, c.Path)
	args = append(args, c.Args...)

	cmd := exec.Command("cmd", args...)
	cmd.Dir = c.Dir
	cmd.Env = c.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
		CmdLine:       buildStartCmdLine(c),
	}
	return cmd, nil
}

// buildStartCmdLine quotes the start invocation by hand; the start
// builtin treats the first quoted argument as the window title, hence
// the leading empty pair.
func buildStartCmdLine(c *Command) string {
	var sb strings.Builder
	sb.WriteString(`cmd /c start /MIN "" `)
	sb.WriteString(quoteWinArg(c.Path))
	for _, a := range c.Args {
		sb.WriteByte(' ')
		sb.WriteString(quoteWinArg(a))
	}
	return sb.String()
}

func quoteWinArg(s string) string {
	if s == "" || strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
