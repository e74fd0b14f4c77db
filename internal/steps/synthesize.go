package steps

import (
	"context"
	"encoding/json"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/provider"
)

type synthesizeInputs struct {
	Compute      computeOutput      `json:"compute"`
	Verification verificationOutput `json:"verification"`
}

type synthesizeOutput struct {
	Answer json.RawMessage `json:"answer"`
}

// Synthesize folds Compute's structured output and Verify's aggregate
// status into a final answer via a second, smaller model-provider call.
// When a prior step already failed verification this still runs — per
// spec §4.7 step 5, the engine does not short-circuit on verification
// failure alone; the caller decides what "failed" verification means for
// their use case by reading artifacts.verification.
func Synthesize(ctx context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var compute computeOutput
	readArtifact(state.Artifacts, "compute", &compute)
	var verification verificationOutput
	readArtifact(state.Artifacts, "verification", &verification)

	inputs := synthesizeInputs{Compute: compute, Verification: verification}

	if deps.Provider == nil {
		return failure(constants.StepSynthesize, started, deps.Clock.Now(), inputs, "collaborator_timeout", "no model provider configured")
	}

	resp, err := provider.GenerateStructured(ctx, deps.Provider, provider.Request{Prompt: string(compute.Response)})
	finished := deps.Clock.Now()
	if err != nil {
		return failure(constants.StepSynthesize, started, finished, inputs, classifyProviderError(err), err.Error())
	}

	return success(constants.StepSynthesize, started, finished, inputs, domain.RawArtifact{Key: "synthesize", Payload: synthesizeOutput{Answer: resp}}, nil)
}
