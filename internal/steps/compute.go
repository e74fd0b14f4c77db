package steps

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
	"github.com/mrz1836/reasonkernel/internal/provider"
)

type computeInputs struct {
	Subgoals []string       `json:"subgoals"`
	Evidence []evidenceItem `json:"evidence"`
	Prompt   string         `json:"prompt"`
}

type computeOutput struct {
	Response json.RawMessage `json:"response"`
}

// Compute renders a deterministic prompt from the subgoals and acquired
// evidence and calls the model-provider collaborator to produce structured
// output. The prompt text itself — not just its inputs — is included in
// input_hash indirectly via the canonical encoding of computeInputs, since
// the same subgoals/evidence always render the same prompt.
func Compute(ctx context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var decomposed decomposeOutput
	readArtifact(state.Artifacts, "decompose", &decomposed)
	var evidence evidenceOutput
	readArtifact(state.Artifacts, "acquire_evidence", &evidence)

	inputs := computeInputs{
		Subgoals: decomposed.Subgoals,
		Evidence: evidence.Items,
		Prompt:   state.Problem.Inputs.Prompt,
	}

	if deps.Provider == nil {
		return failure(constants.StepCompute, started, deps.Clock.Now(), inputs, "collaborator_timeout", "no model provider configured")
	}

	resp, err := provider.GenerateStructured(ctx, deps.Provider, provider.Request{Prompt: renderComputePrompt(inputs)})
	finished := deps.Clock.Now()
	if err != nil {
		return failure(constants.StepCompute, started, finished, inputs, classifyProviderError(err), err.Error())
	}

	return success(constants.StepCompute, started, finished, inputs, domain.RawArtifact{Key: "compute", Payload: computeOutput{Response: resp}}, nil)
}

func renderComputePrompt(inputs computeInputs) string {
	var b strings.Builder
	b.WriteString(inputs.Prompt)
	for _, sg := range inputs.Subgoals {
		b.WriteString("\n- ")
		b.WriteString(sg)
	}
	return b.String()
}

// classifyProviderError maps a provider-call error to a stable taxonomy
// code by checking it against the sentinels GenerateStructured and the
// underlying Provider are documented to return.
func classifyProviderError(err error) string {
	switch {
	case errors.Is(err, reasonerrors.ErrStructuredGenerationFailed):
		return "structured_generation_failed"
	case errors.Is(err, reasonerrors.ErrCollaboratorTimeout):
		return "collaborator_timeout"
	default:
		return "collaborator_timeout"
	}
}
