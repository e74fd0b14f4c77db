package steps

import (
	"context"
	"sort"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// auditOutput is the structured report Audit composes (spec §4.4):
// inputs, steps, verification, timestamps.
type auditOutput struct {
	Inputs       domain.ProblemInputs `json:"inputs"`
	Steps        []string             `json:"steps"`
	Verification verificationOutput   `json:"verification"`
	Timestamps   auditTimestamps      `json:"timestamps"`
}

type auditTimestamps struct {
	ProblemCreatedAt string `json:"problem_created_at"`
	StateCreatedAt   string `json:"state_created_at"`
	StateUpdatedAt   string `json:"state_updated_at"`
}

// Audit composes a summary report over the entire final state. It reads
// every prior artifact key present, rather than a fixed list, so it stays
// correct if a loop segment produced iteration-suffixed keys
// (<name>.iter.<n>) in addition to the base keys.
func Audit(_ context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var verification verificationOutput
	readArtifact(state.Artifacts, "verification", &verification)

	stepsRecorded := make([]string, 0, len(state.Artifacts))
	for key := range state.Artifacts {
		stepsRecorded = append(stepsRecorded, key)
	}
	sort.Strings(stepsRecorded)

	out := auditOutput{
		Inputs:       state.Problem.Inputs,
		Steps:        stepsRecorded,
		Verification: verification,
		Timestamps: auditTimestamps{
			ProblemCreatedAt: state.Problem.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
			StateCreatedAt:   state.Metadata.CreatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
			StateUpdatedAt:   state.Metadata.UpdatedAt.Format("2006-01-02T15:04:05.000000000Z07:00"),
		},
	}

	finished := deps.Clock.Now()
	return success(constants.StepAudit, started, finished, state.Artifacts, domain.RawArtifact{Key: "audit", Payload: out}, nil)
}
