// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"appstart-cli/internal/config"
	"appstart-cli/internal/issue"
	"appstart-cli/internal/launcher"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// noInput disables the acknowledgment prompt on fatal errors
	noInput bool
	// skipRelaunch disables the background relaunch for this invocation
	skipRelaunch bool
	// entrypointOverride replaces the configured entry-point file
	entrypointOverride string

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Launch the configured application",
		Long: `Launch the configured application.

The launch pipeline runs these steps in order:

  1. Find a Python interpreter on the PATH
  2. Find the project's virtual environment
  3. Activate the environment (and verify it took effect)
  4. Check the web framework is installed, installing it if missing
  5. Run the application in the foreground
  6. Relaunch it once in the background after the foreground run exits

A failed checkpoint stops the pipeline before any process is launched
and waits for a keypress so the message stays readable when appstart
was started from a launcher shortcut. Use --no-input to skip the wait.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApp(cmd)
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&noInput, "no-input", false, "do not wait for a keypress on fatal errors")
	runCmd.Flags().BoolVar(&skipRelaunch, "skip-relaunch", false, "do not relaunch the app in the background")
	runCmd.Flags().StringVar(&entrypointOverride, "entrypoint", "", "entry-point file (overrides the configured one)")
}

func runApp(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		printIssueCard(issue.ConfigLoadFailedId, cfg)
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, verbose))
		return &ExitError{Code: 1, Err: err}
	}

	entrypoint := cfg.App.Entrypoint
	if entrypointOverride != "" {
		entrypoint = entrypointOverride
	}

	fmt.Println(TitleStyle.Render("appstart") + SubtitleStyle.Render(" · "+entrypoint))

	l := launcher.New(launcher.Options{
		Entrypoint:         entrypoint,
		WorkDir:            cfg.App.WorkDir,
		Interpreters:       cfg.Python.Interpreters,
		VenvDir:            cfg.Python.VenvDir,
		Framework:          cfg.Framework.Name,
		RunCommand:         cfg.Framework.RunCommand,
		BackgroundRelaunch: cfg.Launch.BackgroundRelaunch && !skipRelaunch,
		Stdout:             os.Stdout,
		Logger:             newRunLogger(),
	})

	outcome, err := l.Run(cmd.Context())
	if err != nil {
		var fatal *launcher.FatalError
		if errors.As(err, &fatal) {
			printIssueCard(fatal.IssueID, cfg)
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(fatal.Err, verbose))
			waitForAck(os.Stdin, os.Stderr)
			return &ExitError{Code: 1, Err: err}
		}
		return err
	}

	if !outcome.AppExitCode.IsSuccess() {
		// The app's own exit code becomes the process exit code; the
		// background relaunch has already been issued at this point.
		return &ExitError{Code: outcome.AppExitCode, Err: nil}
	}
	return nil
}

// newRunLogger builds the structured logger for pipeline step tracing.
// It stays quiet unless verbose output was requested.
func newRunLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "appstart",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}

// printIssueCard renders the remediation guidance for a catalog id to stderr.
func printIssueCard(id issue.Id, cfg *config.Config) {
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(glamourStyle(cfg))
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// glamourStyle maps the configured color scheme to a glamour style name.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "auto"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// waitForAck blocks until the user presses Enter, so that error output
// stays on screen when the terminal window closes with the process.
// Non-interactive stdin (pipes, CI) skips the wait.
func waitForAck(in *os.File, out io.Writer) {
	if noInput {
		return
	}
	if !isatty.IsTerminal(in.Fd()) && !isatty.IsCygwinTerminal(in.Fd()) {
		return
	}
	fmt.Fprint(out, SubtitleStyle.Render("Press Enter to close..."))
	_, _ = bufio.NewReader(in).ReadString('\n')
}
