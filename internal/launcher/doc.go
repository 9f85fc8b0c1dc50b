// SPDX-License-Identifier: MPL-2.0

// Package launcher implements the application launch pipeline: locate a
// Python interpreter, activate the project virtual environment, make sure
// the web framework is installed, run the app in the foreground, and
// issue one detached background relaunch.
//
// The pipeline is strictly sequential. Only the two environment checks
// (interpreter, venv) are fatal checkpoints that require user
// acknowledgment; everything later either remediates or reports.
package launcher
