// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"appstart-cli/internal/config"
	"appstart-cli/internal/issue"
)

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version takes priority", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-06-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-06-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("fallback to dev when no build info", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "dev"
		Commit = "unknown"
		BuildDate = "unknown"

		got := getVersionString()
		want := "dev (built from source)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestFormatErrorForDisplay(t *testing.T) {
	t.Run("plain error uses its message", func(t *testing.T) {
		err := errors.New("boom")
		if got := formatErrorForDisplay(err, false); got != "boom" {
			t.Errorf("formatErrorForDisplay() = %q, want %q", got, "boom")
		}
	})

	t.Run("actionable error uses Format", func(t *testing.T) {
		err := issue.NewErrorContext().
			WithOperation("find interpreter").
			WithSuggestion("Install Python 3").
			Wrap(errors.New("not found")).
			BuildError()

		got := formatErrorForDisplay(err, false)
		if !strings.Contains(got, "find interpreter") {
			t.Errorf("formatted error should mention the operation, got %q", got)
		}
		if !strings.Contains(got, "Install Python 3") {
			t.Errorf("formatted error should carry the suggestion, got %q", got)
		}
	})

	t.Run("verbose shows the error chain", func(t *testing.T) {
		cause := errors.New("root cause")
		err := issue.NewErrorContext().
			WithOperation("activate environment").
			Wrap(cause).
			BuildError()

		got := formatErrorForDisplay(err, true)
		if !strings.Contains(got, "root cause") {
			t.Errorf("verbose format should include the cause, got %q", got)
		}
	})
}

func TestExitError(t *testing.T) {
	t.Run("message from wrapped error", func(t *testing.T) {
		inner := errors.New("app failed")
		err := &ExitError{Code: 3, Err: inner}
		if err.Error() != "app failed" {
			t.Errorf("Error() = %q, want %q", err.Error(), "app failed")
		}
		if !errors.Is(err, inner) {
			t.Error("ExitError should unwrap to its cause")
		}
	})

	t.Run("message from bare code", func(t *testing.T) {
		err := &ExitError{Code: 7}
		if err.Error() != "exit status 7" {
			t.Errorf("Error() = %q, want %q", err.Error(), "exit status 7")
		}
	})
}

func TestGlamourStyle(t *testing.T) {
	if got := glamourStyle(nil); got != "auto" {
		t.Errorf("nil config should map to auto, got %q", got)
	}

	tests := []struct {
		scheme config.ColorScheme
		want   string
	}{
		{config.ColorSchemeAuto, "auto"},
		{config.ColorSchemeDark, "dark"},
		{config.ColorSchemeLight, "light"},
	}
	for _, tt := range tests {
		cfg := config.DefaultConfig()
		cfg.UI.ColorScheme = tt.scheme
		if got := glamourStyle(cfg); got != tt.want {
			t.Errorf("glamourStyle(%s) = %q, want %q", tt.scheme, got, tt.want)
		}
	}
}
