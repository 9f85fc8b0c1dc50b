// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidEntrypoint is returned when the app entrypoint is empty or whitespace-only.
	ErrInvalidEntrypoint = errors.New("invalid entrypoint")
	// ErrInvalidVenvDir is returned when the venv directory is empty or whitespace-only.
	ErrInvalidVenvDir = errors.New("invalid venv dir")
	// ErrNoInterpreters is returned when the interpreter candidate list is empty.
	ErrNoInterpreters = errors.New("no interpreter candidates configured")
	// ErrInvalidFrameworkName is returned when the framework name is empty or whitespace-only.
	ErrInvalidFrameworkName = errors.New("invalid framework name")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// AppConfig describes the application being launched.
	AppConfig struct {
		// Entrypoint is the application entry-point file passed to the
		// framework's run command.
		Entrypoint string `mapstructure:"entrypoint"`
		// WorkDir is the directory the app is launched from.
		WorkDir string `mapstructure:"workdir"`
	}

	// PythonConfig controls interpreter discovery and the virtual environment.
	PythonConfig struct {
		// Interpreters are the candidate executable names probed on the
		// PATH, in order.
		Interpreters []string `mapstructure:"interpreters"`
		// VenvDir is the virtual environment directory, relative to the
		// app workdir unless absolute.
		VenvDir string `mapstructure:"venv_dir"`
	}

	// FrameworkConfig describes the web framework used to run the app.
	FrameworkConfig struct {
		// Name is both the pip package and the runnable module name.
		Name string `mapstructure:"name"`
		// RunCommand is the framework subcommand that serves the app
		// (e.g. "run" for `python -m streamlit run app.py`).
		RunCommand string `mapstructure:"run_command"`
	}

	// LaunchConfig controls post-run behavior.
	LaunchConfig struct {
		// BackgroundRelaunch starts one detached copy of the run command
		// after the foreground run exits.
		BackgroundRelaunch bool `mapstructure:"background_relaunch"`
	}

	// UIConfig controls console output.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the root appstart configuration.
	Config struct {
		App       AppConfig       `mapstructure:"app"`
		Python    PythonConfig    `mapstructure:"python"`
		Framework FrameworkConfig `mapstructure:"framework"`
		Launch    LaunchConfig    `mapstructure:"launch"`
		UI        UIConfig        `mapstructure:"ui"`
	}
)

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Validate checks constraints the CUE schema cannot express with
// Concrete(false) validation: non-emptiness of required scalars.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Entrypoint) == "" {
		return ErrInvalidEntrypoint
	}
	if strings.TrimSpace(c.Python.VenvDir) == "" {
		return ErrInvalidVenvDir
	}
	if len(c.Python.Interpreters) == 0 {
		return ErrNoInterpreters
	}
	for _, name := range c.Python.Interpreters {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty interpreter candidate", ErrNoInterpreters)
		}
	}
	if strings.TrimSpace(c.Framework.Name) == "" {
		return ErrInvalidFrameworkName
	}
	if ok, errs := c.UI.ColorScheme.IsValid(); !ok {
		return errs[0]
	}
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Entrypoint: "app.py",
			WorkDir:    ".",
		},
		Python: PythonConfig{
			Interpreters: []string{"python3", "python"},
			VenvDir:      ".venv",
		},
		Framework: FrameworkConfig{
			Name:       "streamlit",
			RunCommand: "run",
		},
		Launch: LaunchConfig{
			BackgroundRelaunch: true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
