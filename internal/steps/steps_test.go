package steps_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/provider"
	"github.com/mrz1836/reasonkernel/internal/steps"
)

type fixedClock struct{ t time.Time }

func (f *fixedClock) Now() time.Time {
	f.t = f.t.Add(time.Millisecond)
	return f.t
}

func newDeps(p provider.Provider) steps.Dependencies {
	return steps.Dependencies{Clock: &fixedClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, Provider: p}
}

func TestNormalize_TrimsAndDedupes(t *testing.T) {
	state := domain.ReasoningState{
		Problem: domain.ProblemSpec{Inputs: domain.ProblemInputs{
			Prompt:      "  hello world  ",
			Constraints: []string{" a ", "a", "b"},
			Goals:       []string{" g1 ", "g1"},
		}},
	}
	result := steps.Normalize(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
	payload := result.Output.CanonicalPayload()
	assert.NotNil(t, payload)
}

func TestDecompose_BuildsSubgoalsFromGoals(t *testing.T) {
	state := domain.ReasoningState{
		Artifacts: map[string]any{
			"normalize": map[string]any{"prompt": "hello", "goals": []any{"g1", "g2"}},
		},
	}
	result := steps.Decompose(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestAcquireEvidence_MarksFoundFromContext(t *testing.T) {
	state := domain.ReasoningState{
		Problem: domain.ProblemSpec{Inputs: domain.ProblemInputs{
			Context: map[string]any{"1: g1": "evidence-1"},
		}},
		Artifacts: map[string]any{
			"decompose": map[string]any{"subgoals": []any{"1: g1"}},
		},
	}
	result := steps.AcquireEvidence(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestCompute_FailsWithoutProvider(t *testing.T) {
	state := domain.ReasoningState{Artifacts: map[string]any{}}
	result := steps.Compute(context.Background(), state, newDeps(nil))
	assert.Equal(t, constants.StepStatusFailed, result.Status)
}

func TestCompute_SucceedsWithFixtureProvider(t *testing.T) {
	state := domain.ReasoningState{
		Problem:   domain.ProblemSpec{Inputs: domain.ProblemInputs{Prompt: "hello"}},
		Artifacts: map[string]any{},
	}
	p := provider.NewFixtureProvider([]provider.Fixture{{Prompt: "hello", Response: []byte(`{"ok":true}`)}})
	result := steps.Compute(context.Background(), state, newDeps(p))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestVerify_AggregatesPassedWhenNoPathsRequireEvidence(t *testing.T) {
	state := domain.ReasoningState{
		Problem: domain.ProblemSpec{Settings: domain.ProblemSettings{
			VerificationPaths: []domain.VerificationPath{{Name: "schema"}},
		}},
		Artifacts: map[string]any{},
	}
	result := steps.Verify(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestVerify_FailsWhenRequiredEvidenceMissing(t *testing.T) {
	state := domain.ReasoningState{
		Problem: domain.ProblemSpec{Settings: domain.ProblemSettings{
			VerificationPaths: []domain.VerificationPath{{Name: "needs-evidence", EvidenceRequired: true}},
		}},
		Artifacts: map[string]any{
			"acquire_evidence": map[string]any{"items": []any{}},
		},
	}
	result := steps.Verify(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestSynthesize_FailsWithoutProvider(t *testing.T) {
	state := domain.ReasoningState{Artifacts: map[string]any{}}
	result := steps.Synthesize(context.Background(), state, newDeps(nil))
	assert.Equal(t, constants.StepStatusFailed, result.Status)
}

func TestAudit_ComposesReportFromState(t *testing.T) {
	state := domain.ReasoningState{
		Problem: domain.ProblemSpec{Inputs: domain.ProblemInputs{Prompt: "hello"}},
		Artifacts: map[string]any{
			"normalize": map[string]any{"prompt": "hello"},
		},
	}
	result := steps.Audit(context.Background(), state, newDeps(nil))
	require.Equal(t, constants.StepStatusSuccess, result.Status)
}

func TestRegistry_GetReturnsErrorForUnknownStep(t *testing.T) {
	r := steps.NewDefaultRegistry()
	_, err := r.Get(constants.StepName("Bogus"))
	require.Error(t, err)
}

func TestRegistry_GetReturnsAllSevenRegisteredSteps(t *testing.T) {
	r := steps.NewDefaultRegistry()
	for _, name := range constants.GraphOrder {
		fn, err := r.Get(name)
		require.NoError(t, err)
		assert.NotNil(t, fn)
	}
}
