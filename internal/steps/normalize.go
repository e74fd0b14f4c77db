package steps

import (
	"context"
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// normalizedInputs is Normalize's canonical input projection: the problem
// fields it actually reads, nothing else, so input_hash reflects only what
// influences the output (spec §4.4).
type normalizedInputs struct {
	Prompt      string   `json:"prompt"`
	Constraints []string `json:"constraints"`
	Goals       []string `json:"goals"`
}

// normalizedOutput is the artifact Normalize writes to artifacts.normalize.
type normalizedOutput struct {
	Prompt      string   `json:"prompt"`
	Constraints []string `json:"constraints"`
	Goals       []string `json:"goals"`
}

// Normalize trims whitespace from the prompt and deduplicates constraints
// and goals while preserving first-seen order, the idempotent "clean the
// input" pass every downstream step builds on.
func Normalize(_ context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()
	inputs := normalizedInputs{
		Prompt:      state.Problem.Inputs.Prompt,
		Constraints: state.Problem.Inputs.Constraints,
		Goals:       state.Problem.Inputs.Goals,
	}

	out := normalizedOutput{
		Prompt:      strings.TrimSpace(inputs.Prompt),
		Constraints: dedupeTrimmed(inputs.Constraints),
		Goals:       dedupeTrimmed(inputs.Goals),
	}

	finished := deps.Clock.Now()
	return success(constants.StepNormalize, started, finished, inputs, domain.RawArtifact{Key: "normalize", Payload: out}, nil)
}

// dedupeTrimmed trims each string and drops duplicates and emptied
// entries, preserving the first occurrence's order.
func dedupeTrimmed(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
