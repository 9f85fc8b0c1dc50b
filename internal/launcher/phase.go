// SPDX-License-Identifier: MPL-2.0

package launcher

import "fmt"

// Phase identifies a stage of the launch pipeline.
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseCheckingInterpreter Phase = "checking-interpreter"
	PhaseCheckingEnv         Phase = "checking-env"
	PhaseActivating          Phase = "activating"
	PhaseCheckingFramework   Phase = "checking-framework"
	PhaseRunning             Phase = "running"
	PhaseRelaunching         Phase = "relaunching"
	PhaseDone                Phase = "done"
	PhaseFailed              Phase = "failed"
)

// String returns the phase name.
func (p Phase) String() string { return string(p) }

// IsTerminal reports whether the phase is terminal (finished).
func (p Phase) IsTerminal() bool {
	switch p {
	case PhaseDone, PhaseFailed:
		return true
	default:
		return false
	}
}

// allowedTransitions is the forward edge set of the pipeline. Every
// non-terminal phase may additionally fail.
var allowedTransitions = map[Phase]Phase{
	PhaseIdle:                PhaseCheckingInterpreter,
	PhaseCheckingInterpreter: PhaseCheckingEnv,
	PhaseCheckingEnv:         PhaseActivating,
	PhaseActivating:          PhaseCheckingFramework,
	PhaseCheckingFramework:   PhaseRunning,
	PhaseRunning:             PhaseRelaunching,
	PhaseRelaunching:         PhaseDone,
}

// transition validates a phase change. An invalid transition indicates a
// pipeline sequencing bug, not a user error.
func transition(from, to Phase) (Phase, error) {
	if to == PhaseFailed {
		if from.IsTerminal() {
			return from, fmt.Errorf("disallowed transition: %s -> %s", from, to)
		}
		return to, nil
	}
	if allowedTransitions[from] != to {
		return from, fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	return to, nil
}
