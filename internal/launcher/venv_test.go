// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"appstart-cli/internal/issue"
)

// makeVenv builds a minimal venv tree: bin/activate plus a python3 stub.
func makeVenv(t *testing.T, workDir, venvDir string) *Venv {
	t.Helper()
	root := filepath.Join(workDir, venvDir)
	binDir := filepath.Join(root, venvBinDirName())
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("failed to create venv tree: %v", err)
	}

	activate := filepath.Join(binDir, activateScriptNames()[0])
	script := fmt.Sprintf(`VIRTUAL_ENV=%q
export VIRTUAL_ENV
PATH="$VIRTUAL_ENV/%s:$PATH"
export PATH
`, root, venvBinDirName())
	if err := os.WriteFile(activate, []byte(script), 0o644); err != nil {
		t.Fatalf("failed to write activate script: %v", err)
	}

	writeStubExecutable(t, binDir, "python3")

	venv, err := DetectVenv(workDir, venvDir)
	if err != nil {
		t.Fatalf("DetectVenv failed on a freshly built tree: %v", err)
	}
	return venv
}

func TestDetectVenv_Missing(t *testing.T) {
	_, err := DetectVenv(t.TempDir(), ".venv")
	if err == nil {
		t.Fatal("expected an error with no venv present")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("missing venv should surface as ActionableError, got %T", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("missing venv error should wrap os.ErrNotExist")
	}
}

func TestDetectVenv_Found(t *testing.T) {
	workDir := t.TempDir()
	venv := makeVenv(t, workDir, ".venv")

	wantDir, _ := filepath.Abs(filepath.Join(workDir, ".venv"))
	if venv.Dir != wantDir {
		t.Errorf("venv dir = %q, want %q", venv.Dir, wantDir)
	}
	if !strings.HasPrefix(venv.ActivatePath, venv.BinDir) {
		t.Errorf("activate path %q should live under %q", venv.ActivatePath, venv.BinDir)
	}
}

func TestDetectVenv_AbsoluteDir(t *testing.T) {
	workDir := t.TempDir()
	elsewhere := t.TempDir()
	makeVenv(t, elsewhere, "env")

	venv, err := DetectVenv(workDir, filepath.Join(elsewhere, "env"))
	if err != nil {
		t.Fatalf("DetectVenv with absolute venv dir failed: %v", err)
	}
	if !strings.HasPrefix(venv.Dir, elsewhere) {
		t.Errorf("venv dir = %q, want a path under %q", venv.Dir, elsewhere)
	}
}

func TestVenv_Activate_SourcesScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows activation is synthetic, not sourced")
	}

	workDir := t.TempDir()
	venv := makeVenv(t, workDir, ".venv")

	env, err := venv.Activate(context.Background())
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if got := envValue(env, "VIRTUAL_ENV"); got != venv.Dir {
		t.Errorf("VIRTUAL_ENV = %q, want %q", got, venv.Dir)
	}
	pathEnv := envValue(env, "PATH")
	if !strings.Contains(pathEnv, venv.BinDir) {
		t.Errorf("PATH %q should contain the venv bin dir %q", pathEnv, venv.BinDir)
	}
}

func TestVenv_Activate_FallsBackOnBrokenScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("windows activation is synthetic, not sourced")
	}

	workDir := t.TempDir()
	venv := makeVenv(t, workDir, ".venv")
	if err := os.WriteFile(venv.ActivatePath, []byte("if then fi ((("), 0o644); err != nil {
		t.Fatalf("failed to corrupt activate script: %v", err)
	}

	env, err := venv.Activate(context.Background())
	if err != nil {
		t.Fatalf("Activate should fall back to synthetic activation: %v", err)
	}
	if got := envValue(env, "VIRTUAL_ENV"); got != venv.Dir {
		t.Errorf("VIRTUAL_ENV = %q, want %q", got, venv.Dir)
	}
	if !strings.HasPrefix(envValue(env, "PATH"), venv.BinDir) {
		t.Errorf("synthetic activation should lead the PATH with %q", venv.BinDir)
	}
}

func TestVenv_ResolveInterpreter(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute-bit semantics differ on windows")
	}

	workDir := t.TempDir()
	venv := makeVenv(t, workDir, ".venv")

	env, err := venv.Activate(context.Background())
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	python, err := venv.ResolveInterpreter(env, []string{"python3", "python"})
	if err != nil {
		t.Fatalf("ResolveInterpreter failed: %v", err)
	}
	if !strings.HasPrefix(python, venv.Dir+string(os.PathSeparator)) {
		t.Errorf("resolved interpreter %q should live inside %q", python, venv.Dir)
	}
}

func TestVenv_ResolveInterpreter_ActivationIneffective(t *testing.T) {
	workDir := t.TempDir()
	venv := makeVenv(t, workDir, ".venv")

	// An environment whose PATH does not include the venv means
	// activation never took effect.
	hostOnly := []string{"PATH=" + t.TempDir()}
	_, err := venv.ResolveInterpreter(hostOnly, []string{"python3", "python"})
	if err == nil {
		t.Fatal("expected an error when the interpreter resolves outside the venv")
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Errorf("ineffective activation should surface as ActionableError, got %T", err)
	}
}

func TestEnvHelpers(t *testing.T) {
	env := envToMap([]string{"A=1", "B=2", "A=3", "MALFORMED", "=x"})
	if env["A"] != "3" {
		t.Errorf("later duplicate should win: A = %q", env["A"])
	}
	if _, ok := env["MALFORMED"]; ok {
		t.Error("entries without '=' must be dropped")
	}

	slice := envToSlice(map[string]string{"B": "2", "A": "1"})
	if len(slice) != 2 || slice[0] != "A=1" || slice[1] != "B=2" {
		t.Errorf("envToSlice should sort deterministically, got %v", slice)
	}

	if got := envValue([]string{"PATH=/a", "PATH=/b"}, "PATH"); got != "/b" {
		t.Errorf("envValue should return the last entry, got %q", got)
	}
	if got := envValue([]string{"PATH=/a"}, "HOME"); got != "" {
		t.Errorf("envValue for a missing key should be empty, got %q", got)
	}
}
