// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"

	"appstart-cli/internal/spawn"
)

// probeFramework checks whether the framework module is importable and
// runnable by invoking `<python> -m <framework> --version` with all
// output suppressed. A non-zero exit means the framework is missing.
func probeFramework(ctx context.Context, runner spawn.Runner, python, framework, dir string, env []string) *spawn.Result {
	return runner.RunCapture(ctx, &spawn.Command{
		Path: python,
		Args: []string{"-m", framework, "--version"},
		Dir:  dir,
		Env:  env,
	})
}

// installFramework installs the framework package with pip, output
// visible so install progress reaches the user.
func installFramework(ctx context.Context, runner spawn.Runner, python, framework, dir string, env []string) *spawn.Result {
	return runner.Run(ctx, &spawn.Command{
		Path: python,
		Args: []string{"-m", "pip", "install", framework},
		Dir:  dir,
		Env:  env,
	})
}

// runCommand builds the framework run invocation shared by the
// foreground run and the background relaunch:
// `<python> -m <framework> <run_command> <entrypoint>`.
func runCommand(python, framework, runSubcommand, entrypoint, dir string, env []string) *spawn.Command {
	args := []string{"-m", framework}
	if runSubcommand != "" {
		args = append(args, runSubcommand)
	}
	args = append(args, entrypoint)
	return &spawn.Command{
		Path: python,
		Args: args,
		Dir:  dir,
		Env:  env,
	}
}
