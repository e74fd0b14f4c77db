package schema

import (
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// ValidateReasoningState enforces the structural rules spec.md §3 attaches
// to ReasoningState: non-negative step_index, a recognized status, and a
// trace_id once running. Ordering invariants across mutations (monotonic
// step_index, no artifact overwrite, no mutation past a terminal status)
// are enforced by internal/state's StateManager, not here, because they
// require comparing two states rather than inspecting one.
func ValidateReasoningState(s domain.ReasoningState) Result {
	c := &collector{}

	if s.StepIndex < 0 {
		c.add("state_invariant_violation", "step_index must be non-negative, got %d", s.StepIndex)
	}

	switch s.Status {
	case constants.ReasoningStatusPending, constants.ReasoningStatusRunning,
		constants.ReasoningStatusFailed, constants.ReasoningStatusCompleted:
	default:
		c.add("schema_invalid", "status %q is not recognized", s.Status)
	}

	if s.Status != constants.ReasoningStatusPending && strings.TrimSpace(s.Metadata.TraceID) == "" {
		c.add("schema_invalid", "metadata.trace_id is required once status leaves pending")
	}
	if s.Metadata.UpdatedAt.Before(s.Metadata.CreatedAt) {
		c.add("state_invariant_violation", "metadata.updated_at must not be before metadata.created_at")
	}
	for i, e := range s.Errors {
		if strings.TrimSpace(e.Code) == "" {
			c.add("schema_invalid", "errors[%d].code must be non-empty", i)
		}
	}

	return c.result()
}
