// SPDX-License-Identifier: MPL-2.0

// Package spawn runs the external processes the launcher needs: blocking
// foreground runs with inherited stdio, captured probe runs, and detached
// background starts that outlive the launcher process.
package spawn
