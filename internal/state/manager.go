// Package state implements the State Manager (spec §4.3): applying a
// validated StepResult to a prior ReasoningState to produce the next one,
// and validating the invariants that must hold across that transition.
//
// Grounded on the teacher's internal/task/state_manager.go (transition +
// metadata-merge idiom), generalized from Atlas's task-specific status
// machine to the kernel's pending/running/failed/completed lifecycle.
package state

import (
	"fmt"
	"time"

	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// Manager owns the apply/validate operations over ReasoningState. It holds
// no state itself; every call is a pure function of its arguments plus the
// injected clock.
type Manager struct {
	clock clock.Clock
}

// New constructs a Manager using the given deterministic clock.
func New(c clock.Clock) *Manager {
	return &Manager{clock: c}
}

// NewInitial constructs the first ReasoningState for a validated
// ProblemSpec: status=pending, step_index=0, empty artifacts.
func (m *Manager) NewInitial(problem domain.ProblemSpec, traceID string) domain.ReasoningState {
	now := m.clock.Now()
	return domain.ReasoningState{
		Version:   problem.Version,
		Problem:   problem,
		StepIndex: 0,
		Status:    constants.ReasoningStatusPending,
		Artifacts: map[string]any{},
		Metadata: domain.StateMetadata{
			TraceID:   traceID,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// Start transitions a pending state to running. It is the only legal
// pending->running transition.
func (m *Manager) Start(prev domain.ReasoningState) (domain.ReasoningState, error) {
	if prev.Status != constants.ReasoningStatusPending {
		return domain.ReasoningState{}, fmt.Errorf("%w: cannot start from status %q", reasonerrors.ErrStateInvariantViolation, prev.Status)
	}
	next := prev.Clone()
	next.Status = constants.ReasoningStatusRunning
	next.Metadata.UpdatedAt = m.advance(prev.Metadata.UpdatedAt)
	return next, nil
}

// Apply produces the next ReasoningState from (prev, a validated
// StepResult). Application semantics by status (spec §4.3):
//
//   - success: appends result.Output under artifactKey, increments step_index
//   - failed: appends an errors entry, sets status=failed, freezes further mutation
//   - skipped: increments step_index without adding artifacts
//
// In all cases metadata.updated_at = now. Apply refuses to run against a
// terminal state, to overwrite an existing artifact key, or to decrement
// step_index (which cannot happen structurally, but is asserted anyway as
// a defense against a future refactor breaking the invariant silently).
func (m *Manager) Apply(prev domain.ReasoningState, result domain.StepResult, artifactKey string) (domain.ReasoningState, error) {
	if prev.Status.Terminal() {
		return domain.ReasoningState{}, fmt.Errorf("%w: cannot mutate terminal status %q", reasonerrors.ErrStateInvariantViolation, prev.Status)
	}

	next := prev.Clone()
	next.Metadata.UpdatedAt = m.advance(prev.Metadata.UpdatedAt)

	switch result.Status {
	case constants.StepStatusSuccess:
		if _, exists := next.Artifacts[artifactKey]; exists {
			return domain.ReasoningState{}, fmt.Errorf("%w: artifact key %q already present", reasonerrors.ErrArtifactOverwrite, artifactKey)
		}
		next.Artifacts[artifactKey] = result.MarshalOutput()
		next.StepIndex = prev.StepIndex + 1

	case constants.StepStatusSkipped:
		next.StepIndex = prev.StepIndex + 1

	case constants.StepStatusFailed:
		for _, e := range result.Errors {
			next.Errors = append(next.Errors, domain.StateError{
				Code:    e.Code,
				Message: e.Message,
				Step:    string(result.Step),
			})
		}
		next.Status = constants.ReasoningStatusFailed

	default:
		return domain.ReasoningState{}, fmt.Errorf("%w: unrecognized step status %q", reasonerrors.ErrSchemaInvalid, result.Status)
	}

	if next.StepIndex < prev.StepIndex {
		return domain.ReasoningState{}, fmt.Errorf("%w: step_index decreased from %d to %d", reasonerrors.ErrStateInvariantViolation, prev.StepIndex, next.StepIndex)
	}

	return next, nil
}

// Complete transitions a running state to completed. Refuses to run
// against anything but running.
func (m *Manager) Complete(prev domain.ReasoningState) (domain.ReasoningState, error) {
	if prev.Status != constants.ReasoningStatusRunning {
		return domain.ReasoningState{}, fmt.Errorf("%w: cannot complete from status %q", reasonerrors.ErrStateInvariantViolation, prev.Status)
	}
	next := prev.Clone()
	next.Status = constants.ReasoningStatusCompleted
	next.Metadata.UpdatedAt = m.advance(prev.Metadata.UpdatedAt)
	return next, nil
}

// Fail transitions a running state to failed, recording a single error
// entry. Used for cancellation and fatal validation failures that never
// produced a StepResult to route through Apply.
func (m *Manager) Fail(prev domain.ReasoningState, code, message, step string) (domain.ReasoningState, error) {
	if prev.Status.Terminal() {
		return domain.ReasoningState{}, fmt.Errorf("%w: cannot mutate terminal status %q", reasonerrors.ErrStateInvariantViolation, prev.Status)
	}
	next := prev.Clone()
	next.Errors = append(next.Errors, domain.StateError{Code: code, Message: message, Step: step})
	next.Status = constants.ReasoningStatusFailed
	next.Metadata.UpdatedAt = m.advance(prev.Metadata.UpdatedAt)
	return next, nil
}

// ValidateInvariants checks the transition-sensitive invariants that
// schema.ValidateReasoningState cannot check on a single state in
// isolation: step_index never decreases, no artifact key is ever removed
// or overwritten, and updated_at strictly advances.
func ValidateInvariants(prev, next domain.ReasoningState) error {
	if next.StepIndex < prev.StepIndex {
		return fmt.Errorf("%w: step_index decreased from %d to %d", reasonerrors.ErrStateInvariantViolation, prev.StepIndex, next.StepIndex)
	}
	for k := range prev.Artifacts {
		if _, ok := next.Artifacts[k]; !ok {
			return fmt.Errorf("%w: artifact key %q removed", reasonerrors.ErrStateInvariantViolation, k)
		}
	}
	if len(next.Errors) < len(prev.Errors) {
		return fmt.Errorf("%w: errors entries removed", reasonerrors.ErrStateInvariantViolation)
	}
	if !next.Metadata.UpdatedAt.After(prev.Metadata.UpdatedAt) {
		return fmt.Errorf("%w: updated_at did not strictly advance", reasonerrors.ErrStateInvariantViolation)
	}
	if prev.Status.Terminal() && next.Status != prev.Status {
		return fmt.Errorf("%w: mutated out of terminal status %q", reasonerrors.ErrStateInvariantViolation, prev.Status)
	}
	return nil
}

// advance returns a timestamp strictly after last, derived from the
// injected clock. If the clock's Now() has not advanced past last (a
// deterministic clock may tick in coarse steps), advance nudges forward by
// one nanosecond so metadata.updated_at always strictly increases, per
// spec §3.
func (m *Manager) advance(last time.Time) time.Time {
	now := m.clock.Now()
	if now.After(last) {
		return now
	}
	return last.Add(time.Nanosecond)
}
