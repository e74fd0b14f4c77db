package steps

import (
	"context"
	"fmt"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

type normalizedArtifact struct {
	Prompt string   `json:"prompt"`
	Goals  []string `json:"goals"`
}

type decomposeOutput struct {
	Subgoals []string `json:"subgoals"`
}

// Decompose reads artifacts.normalize and produces one subgoal per goal
// (falling back to the prompt itself when no goals were supplied), the
// minimal deterministic decomposition a reasoning kernel with no model
// dependency can still perform on its own.
func Decompose(_ context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var normalized normalizedArtifact
	readArtifact(state.Artifacts, "normalize", &normalized)

	var subgoals []string
	for i, g := range normalized.Goals {
		subgoals = append(subgoals, fmt.Sprintf("%d: %s", i+1, g))
	}
	if len(subgoals) == 0 && normalized.Prompt != "" {
		subgoals = []string{"1: " + normalized.Prompt}
	}

	finished := deps.Clock.Now()
	return success(constants.StepDecompose, started, finished, normalized, domain.RawArtifact{Key: "decompose", Payload: decomposeOutput{Subgoals: subgoals}}, nil)
}
