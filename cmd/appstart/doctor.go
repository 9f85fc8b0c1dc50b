// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"appstart-cli/internal/config"
	"appstart-cli/internal/launcher"
	"appstart-cli/internal/spawn"

	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the launch environment without launching",
	Long: `Check the launch environment without launching.

Runs the same checks the launch pipeline would — interpreter on the
PATH, virtual environment present, activation effective, framework
installed — and reports each one, without starting the application
or installing anything.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd.Context())
	},
}

func runDoctor(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(ErrorStyle.Render("✗") + " configuration: " + err.Error())
		return &ExitError{Code: 1, Err: err}
	}
	fmt.Println(SuccessStyle.Render("✓") + " configuration loaded")

	healthy := true

	python, err := launcher.FindInterpreter(cfg.Python.Interpreters)
	if err != nil {
		fmt.Println(ErrorStyle.Render("✗") + " no Python interpreter on the PATH")
		healthy = false
	} else {
		fmt.Println(SuccessStyle.Render("✓") + " interpreter: " + CmdStyle.Render(python))
	}

	venv, err := launcher.DetectVenv(cfg.App.WorkDir, cfg.Python.VenvDir)
	if err != nil {
		fmt.Printf("%s virtual environment not found (looked for %s)\n",
			ErrorStyle.Render("✗"), cfg.Python.VenvDir)
		healthy = false
	} else {
		fmt.Println(SuccessStyle.Render("✓") + " virtual environment: " + venv.Dir)
	}

	// Activation and framework checks only make sense with a venv present.
	if venv != nil {
		env, err := venv.Activate(ctx)
		if err != nil {
			fmt.Println(ErrorStyle.Render("✗") + " activation failed: " + err.Error())
			healthy = false
		} else if venvPython, err := venv.ResolveInterpreter(env, cfg.Python.Interpreters); err != nil {
			fmt.Println(ErrorStyle.Render("✗") + " activation did not take effect")
			healthy = false
		} else {
			fmt.Println(SuccessStyle.Render("✓") + " activation resolves: " + CmdStyle.Render(venvPython))

			probe := spawn.NewOSRunner().RunCapture(ctx, &spawn.Command{
				Path: venvPython,
				Args: []string{"-m", cfg.Framework.Name, "--version"},
				Dir:  cfg.App.WorkDir,
				Env:  env,
			})
			if probe.Failed() {
				fmt.Printf("%s %s is not installed (launch would install it)\n",
					WarningStyle.Render("!"), cfg.Framework.Name)
			} else {
				fmt.Println(SuccessStyle.Render("✓") + " framework installed: " + cfg.Framework.Name)
			}
		}
	}

	if cfg.Framework.Name == "streamlit" {
		if url, ok := launcher.ServerURL(cfg.App.WorkDir); ok {
			fmt.Println(SuccessStyle.Render("✓") + " app would serve at " + CmdStyle.Render(url))
		} else {
			fmt.Println(WarningStyle.Render("!") + " .streamlit/config.toml exists but could not be parsed")
		}
	}

	if !healthy {
		return &ExitError{Code: 1}
	}
	return nil
}
