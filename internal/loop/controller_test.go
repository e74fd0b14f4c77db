package loop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/loop"
)

func stateWithArtifact(key string, value any) domain.ReasoningState {
	return domain.ReasoningState{
		Artifacts: map[string]any{key: value},
	}
}

func TestResolvePath_NestedLookup(t *testing.T) {
	s := stateWithArtifact("verification", map[string]any{"status": "passed"})
	v, ok, err := loop.ResolvePath(s, "artifacts.verification.status")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "passed", v)
}

func TestResolvePath_MissingNodeIsAbsentNotError(t *testing.T) {
	s := stateWithArtifact("verification", map[string]any{"status": "passed"})
	_, ok, err := loop.ResolvePath(s, "artifacts.verification.nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolvePath_RejectsPathWithoutArtifactsPrefix(t *testing.T) {
	s := stateWithArtifact("verification", map[string]any{"status": "passed"})
	_, _, err := loop.ResolvePath(s, "problem.id")
	require.Error(t, err)
}

func TestEvaluate_OrderingOperatorsRequireNumericBothSides(t *testing.T) {
	assert.True(t, loop.Evaluate(float64(3), true, constants.StopOperatorGT, float64(2)))
	assert.False(t, loop.Evaluate("abc", true, constants.StopOperatorGT, float64(2)))
	assert.False(t, loop.Evaluate(float64(3), false, constants.StopOperatorGTE, float64(2)))
}

func TestEvaluate_EqualsAcrossNumericRepresentations(t *testing.T) {
	assert.True(t, loop.Evaluate(float64(2), true, constants.StopOperatorEquals, int(2)))
	assert.True(t, loop.Evaluate("passed", true, constants.StopOperatorEquals, "passed"))
	assert.False(t, loop.Evaluate("passed", true, constants.StopOperatorEquals, "failed"))
}

func TestController_DecideStopsWhenConditionSatisfied(t *testing.T) {
	cfg := domain.LoopConfig{
		Enabled:       true,
		StartStep:     string(constants.StepCompute),
		EndStep:       string(constants.StepVerify),
		MaxIterations: 3,
		StopCondition: domain.StopCondition{Path: "artifacts.verification.status", Operator: "equals", Value: "passed"},
	}
	c := loop.New(cfg)
	post := stateWithArtifact("verification", map[string]any{"status": "passed"})

	d := c.Decide(post, 0)
	assert.Equal(t, constants.LoopActionStop, d.Action)
}

func TestController_DecideRepeatsUnderMaxIterations(t *testing.T) {
	cfg := domain.LoopConfig{
		Enabled:       true,
		StartStep:     string(constants.StepCompute),
		EndStep:       string(constants.StepVerify),
		MaxIterations: 3,
		StopCondition: domain.StopCondition{Path: "artifacts.verification.status", Operator: "equals", Value: "passed"},
	}
	c := loop.New(cfg)
	post := stateWithArtifact("verification", map[string]any{"status": "failed"})

	d := c.Decide(post, 0)
	assert.Equal(t, constants.LoopActionRepeat, d.Action)
	assert.Equal(t, 1, d.LoopIteration)
}

func TestController_DecideReturnsMaxIterationsReachedWhenExhausted(t *testing.T) {
	cfg := domain.LoopConfig{
		Enabled:       true,
		StartStep:     string(constants.StepCompute),
		EndStep:       string(constants.StepVerify),
		MaxIterations: 2,
		StopCondition: domain.StopCondition{Path: "artifacts.verification.status", Operator: "equals", Value: "passed"},
	}
	c := loop.New(cfg)
	post := stateWithArtifact("verification", map[string]any{"status": "failed"})

	d := c.Decide(post, 2)
	assert.Equal(t, constants.LoopActionMaxIterations, d.Action)
}

func TestController_LegacyEqualsFieldIsRewrittenToOperator(t *testing.T) {
	cfg := domain.LoopConfig{
		Enabled:       true,
		StartStep:     string(constants.StepCompute),
		EndStep:       string(constants.StepVerify),
		MaxIterations: 3,
		StopCondition: domain.StopCondition{Path: "artifacts.verification.status"},
		Equals:        "passed",
	}
	c := loop.New(cfg)
	post := stateWithArtifact("verification", map[string]any{"status": "passed"})

	d := c.Decide(post, 0)
	assert.Equal(t, constants.LoopActionStop, d.Action)
}
