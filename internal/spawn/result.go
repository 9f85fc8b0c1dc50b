// SPDX-License-Identifier: MPL-2.0

package spawn

// Result is the outcome of running a process.
type Result struct {
	// ExitCode is the process exit status. Zero on success.
	ExitCode ExitCode
	// Output is captured stdout (capture runs only).
	Output string
	// ErrOutput is captured stderr (capture runs only).
	ErrOutput string
	// Error is set when the process could not be run at all, as opposed
	// to running and exiting non-zero.
	Error error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than infrastructure failures.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Failed reports whether the run either could not start or exited non-zero.
func (r *Result) Failed() bool {
	return r.Error != nil || !r.ExitCode.IsSuccess()
}
