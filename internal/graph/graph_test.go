package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/graph"
)

func TestGraph_FirstAndLast(t *testing.T) {
	g := graph.New()
	assert.Equal(t, constants.StepNormalize, g.First())
	assert.Equal(t, constants.StepAudit, g.Last())
}

func TestGraph_NextWalksTheFixedOrder(t *testing.T) {
	g := graph.New()
	next, ok := g.Next(constants.StepNormalize)
	require.True(t, ok)
	assert.Equal(t, constants.StepDecompose, next)

	_, ok = g.Next(constants.StepAudit)
	assert.False(t, ok)
}

func TestGraph_IndexOfUnknownStepReturnsStepUnknown(t *testing.T) {
	g := graph.New()
	_, err := g.IndexOf(constants.StepName("Bogus"))
	require.Error(t, err)
}

func TestGraph_RangeReturnsInclusiveSlice(t *testing.T) {
	g := graph.New()
	steps, err := g.Range(constants.StepDecompose, constants.StepVerify)
	require.NoError(t, err)
	assert.Equal(t, []constants.StepName{
		constants.StepDecompose,
		constants.StepAcquireEvidence,
		constants.StepCompute,
		constants.StepVerify,
	}, steps)
}

func TestGraph_RangeRejectsStartAfterEnd(t *testing.T) {
	g := graph.New()
	_, err := g.Range(constants.StepVerify, constants.StepDecompose)
	require.Error(t, err)
}

func TestGraph_DoneOnlyTrueForLastStep(t *testing.T) {
	g := graph.New()
	assert.False(t, g.Done(constants.StepCompute))
	assert.True(t, g.Done(constants.StepAudit))
}
