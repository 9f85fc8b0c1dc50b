// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"appstart-cli/internal/issue"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Venv is a detected project virtual environment.
type Venv struct {
	// Dir is the absolute venv root directory.
	Dir string
	// BinDir is the absolute executable directory (bin, or Scripts on Windows).
	BinDir string
	// ActivatePath is the absolute path of the activation script.
	ActivatePath string
}

// venvBinDirName returns the executable directory name used by the venv
// module on the current platform.
func venvBinDirName() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

// activateScriptNames lists activation script candidates in preference order.
func activateScriptNames() []string {
	if runtime.GOOS == "windows" {
		return []string{"activate.bat", "activate"}
	}
	return []string{"activate"}
}

// DetectVenv locates the virtual environment under workDir and confirms
// the activation script exists at its conventional location.
func DetectVenv(workDir, venvDir string) (*Venv, error) {
	root := venvDir
	if !filepath.IsAbs(root) {
		root = filepath.Join(workDir, venvDir)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve venv path %s: %w", root, err)
	}

	binDir := filepath.Join(abs, venvBinDirName())
	for _, name := range activateScriptNames() {
		candidate := filepath.Join(binDir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return &Venv{Dir: abs, BinDir: binDir, ActivatePath: candidate}, nil
		}
	}

	return nil, issue.NewErrorContext().
		WithOperation("locate virtual environment").
		WithResource(filepath.Join(venvDir, venvBinDirName(), activateScriptNames()[0])).
		WithSuggestion(fmt.Sprintf("Create it with: python -m venv %s", venvDir)).
		WithSuggestion("Or point python.venv_dir at your environment directory").
		Wrap(os.ErrNotExist).
		BuildError()
}

// Activate produces the environment of an activated venv as KEY=VALUE
// pairs. On POSIX the activate script is sourced with the embedded shell
// interpreter so any custom exports it performs are honored; if the
// script cannot be interpreted the conventional activation effect is
// synthesized instead. Windows activate scripts are batch files, so the
// synthetic form is always used there.
func (v *Venv) Activate(ctx context.Context) ([]string, error) {
	if runtime.GOOS != "windows" {
		if env, err := v.sourceActivate(ctx); err == nil {
			return env, nil
		}
	}
	return envToSlice(v.syntheticEnv()), nil
}

// sourceActivate interprets the activate script in-process and harvests
// the exported variables it leaves behind.
func (v *Venv) sourceActivate(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(v.ActivatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read activate script: %w", err)
	}

	prog, err := syntax.NewParser().Parse(bytes.NewReader(data), v.ActivatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse activate script: %w", err)
	}

	runner, err := interp.New(
		interp.Dir(filepath.Dir(v.ActivatePath)),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, io.Discard, io.Discard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		return nil, fmt.Errorf("failed to source %s: %w", v.ActivatePath, err)
	}

	env := envToMap(os.Environ())
	for name, vr := range runner.Vars {
		if vr.Exported && vr.Kind == expand.String {
			env[name] = vr.Str
		}
	}

	// The script must at minimum have put the venv on the PATH; a script
	// that ran but changed nothing gets the synthetic treatment on top.
	if !strings.Contains(env["PATH"], v.BinDir) {
		env["VIRTUAL_ENV"] = v.Dir
		env["PATH"] = v.BinDir + string(os.PathListSeparator) + env["PATH"]
		delete(env, "PYTHONHOME")
	}

	return envToSlice(env), nil
}

// syntheticEnv reproduces what activation does: lead the PATH with the
// venv's bin directory, set VIRTUAL_ENV, and drop PYTHONHOME.
func (v *Venv) syntheticEnv() map[string]string {
	env := envToMap(os.Environ())
	env["VIRTUAL_ENV"] = v.Dir
	env["PATH"] = v.BinDir + string(os.PathListSeparator) + env["PATH"]
	delete(env, "PYTHONHOME")
	return env
}

// ResolveInterpreter re-resolves the interpreter against the activated
// environment and confirms it lives inside the venv. This catches
// activation that silently failed to take effect.
func (v *Venv) ResolveInterpreter(env []string, candidates []string) (string, error) {
	pathEnv := envValue(env, "PATH")
	for _, name := range candidates {
		resolved, err := lookPathIn(pathEnv, name)
		if err != nil {
			continue
		}
		if strings.HasPrefix(resolved, v.Dir+string(os.PathSeparator)) {
			return resolved, nil
		}
	}

	return "", issue.NewErrorContext().
		WithOperation("activate virtual environment").
		WithResource(v.ActivatePath).
		WithSuggestion("Recreate the environment: python -m venv " + filepath.Base(v.Dir)).
		WithSuggestion("Check that the environment contains a python executable").
		Wrap(fmt.Errorf("interpreter does not resolve inside %s after activation", v.Dir)).
		BuildError()
}
