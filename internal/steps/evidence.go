package steps

import (
	"context"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

type evidenceInputs struct {
	Subgoals []string       `json:"subgoals"`
	Context  map[string]any `json:"context"`
}

// evidenceOutput records, per subgoal, whatever supporting material was
// found in the problem's opaque context map. A subgoal with no matching
// context key is recorded with Found=false rather than omitted, so later
// steps (Verify's evidence_required check) can distinguish "checked, found
// nothing" from "never checked".
type evidenceOutput struct {
	Items []evidenceItem `json:"items"`
}

type evidenceItem struct {
	Subgoal string `json:"subgoal"`
	Found   bool   `json:"found"`
	Value   any    `json:"value,omitempty"`
}

// AcquireEvidence looks up each subgoal against the problem's context map
// (spec's caller-supplied, opaque evidence source). It never calls an
// external collaborator directly — the problem's context is the only
// evidence source the core engine understands; a richer evidence fetcher
// is an adapter concern outside core scope.
func AcquireEvidence(_ context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult {
	started := deps.Clock.Now()

	var decomposed decomposeOutput
	readArtifact(state.Artifacts, "decompose", &decomposed)

	inputs := evidenceInputs{Subgoals: decomposed.Subgoals, Context: state.Problem.Inputs.Context}

	items := make([]evidenceItem, 0, len(decomposed.Subgoals))
	for _, sg := range decomposed.Subgoals {
		value, found := inputs.Context[sg]
		items = append(items, evidenceItem{Subgoal: sg, Found: found, Value: value})
	}

	finished := deps.Clock.Now()
	return success(constants.StepAcquireEvidence, started, finished, inputs, domain.RawArtifact{Key: "acquire_evidence", Payload: evidenceOutput{Items: items}}, nil)
}
