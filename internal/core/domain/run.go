package domain

import (
	"fmt"
	"time"
)

// RunState is the overall state of a lifecycle run.
type RunState string

const (
	// RunStatePending indicates the run has not started.
	RunStatePending RunState = "pending"
	// RunStateInProgress indicates a phase is executing.
	RunStateInProgress RunState = "in-progress"
	// RunStatePhaseFailed indicates a phase failed and the run halted.
	RunStatePhaseFailed RunState = "phase-failed"
	// RunStateSucceeded indicates every planned phase finished.
	RunStateSucceeded RunState = "succeeded"
)

// IsTerminal reports whether no further transitions can happen.
func (s RunState) IsTerminal() bool {
	return s == RunStatePhaseFailed || s == RunStateSucceeded
}

// PhaseRecord is the outcome of a single phase.
type PhaseRecord struct {
	Phase    Phase
	Status   PhaseStatus
	Duration time.Duration
	Err      error
}

// RunResult describes a finished lifecycle run.
type RunResult struct {
	ID          string
	Fingerprint string
	State       RunState
	Phases      []PhaseRecord
	// FailedPhase is set when State is RunStatePhaseFailed.
	FailedPhase Phase
	Err         error
}

// Succeeded reports whether the run completed every planned phase.
func (r *RunResult) Succeeded() bool {
	return r != nil && r.State == RunStateSucceeded
}

// Status returns the status of phase p, or pending if p was not planned.
func (r *RunResult) Status(p Phase) PhaseStatus {
	if r == nil {
		return PhaseStatusPending
	}
	for _, rec := range r.Phases {
		if rec.Phase == p {
			return rec.Status
		}
	}
	return PhaseStatusPending
}

// PhaseError is returned when a lifecycle phase fails. It matches ErrPhaseFailed
// and the handler's error with errors.Is.
type PhaseError struct {
	Phase Phase
	RunID string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s failed: %v", e.Phase, e.Err)
}

// Unwrap exposes both ErrPhaseFailed and the handler error.
func (e *PhaseError) Unwrap() []error {
	return []error{ErrPhaseFailed, e.Err}
}
