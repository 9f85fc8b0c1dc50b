// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"appstart-cli/internal/issue"
)

// FindInterpreter probes the host PATH for the first available interpreter
// candidate, in order. It returns the resolved absolute path.
func FindInterpreter(candidates []string) (string, error) {
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", issue.NewErrorContext().
		WithOperation("locate python interpreter").
		WithResource("PATH").
		WithSuggestion("Install Python 3 and ensure it is on your PATH").
		WithSuggestion(fmt.Sprintf("Tried candidates: %s", strings.Join(candidates, ", "))).
		Wrap(exec.ErrNotFound).
		BuildError()
}

// lookPathIn resolves name against an explicit PATH value instead of the
// process environment. Used to re-resolve the interpreter after
// activation, where the venv's bin directory leads the PATH.
func lookPathIn(pathEnv, name string) (string, error) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if isExecutable(name) {
			return filepath.Abs(name)
		}
		return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
	}

	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			dir = "."
		}
		for _, candidate := range executableNames(name) {
			path := filepath.Join(dir, candidate)
			if isExecutable(path) {
				return filepath.Abs(path)
			}
		}
	}
	return "", fmt.Errorf("%s: %w", name, exec.ErrNotFound)
}

// executableNames expands a bare name with platform executable suffixes.
func executableNames(name string) []string {
	if runtime.GOOS != "windows" {
		return []string{name}
	}
	if strings.Contains(name, ".") {
		return []string{name}
	}
	return []string{name + ".exe", name + ".bat", name + ".cmd", name}
}

// isExecutable reports whether path is a regular file the current user
// can execute. On Windows existence is enough; execute bits carry no
// meaning there.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
