package engine_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/engine"
	"github.com/mrz1836/reasonkernel/internal/provider"
	"github.com/mrz1836/reasonkernel/internal/steps"
	"github.com/mrz1836/reasonkernel/internal/trace"
)

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

func simpleProblem() domain.ProblemSpec {
	return domain.ProblemSpec{
		Version:   "1.0.0",
		ID:        "req-1",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Inputs: domain.ProblemInputs{
			Prompt: "hello world",
			Goals:  []string{"answer the question"},
		},
		Settings: domain.ProblemSettings{
			VerificationPaths: []domain.VerificationPath{{Name: "schema"}},
		},
	}
}

func fixtureProvider() provider.Provider {
	return provider.NewFixtureProvider([]provider.Fixture{
		{Prompt: "hello world\n- 1: answer the question", Response: []byte(`{"result":"ok"}`)},
		{Prompt: `{"result":"ok"}`, Response: []byte(`{"answer":"final"}`)},
	})
}

func TestRunner_RunCompletesEveryStepAndWritesValidTrace(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	deps := steps.Dependencies{Provider: fixtureProvider()}
	r := engine.New(&stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, deps)

	result, err := r.Run(context.Background(), simpleProblem(), w, "trace-1")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, constants.ReasoningStatusCompleted, result.FinalState.Status)
	assert.Equal(t, len(constants.GraphOrder), result.FinalState.StepIndex)
	require.NoError(t, trace.Verify(bytes.NewReader(buf.Bytes())))
}

func TestRunner_RunFailsClosedWhenProviderMissing(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	r := engine.New(clock.RealClock{}, steps.Dependencies{})

	result, err := r.Run(context.Background(), simpleProblem(), w, "trace-2")
	require.NoError(t, err)
	assert.Equal(t, constants.ReasoningStatusFailed, result.FinalState.Status)
	require.NotEmpty(t, result.FinalState.Errors)
}

func TestRunner_RunRejectsInvalidProblemSpec(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	r := engine.New(clock.RealClock{}, steps.Dependencies{})

	_, err := r.Run(context.Background(), domain.ProblemSpec{}, w, "trace-3")
	require.Error(t, err)
}

func TestRunner_RunIsDeterministicAcrossIdenticalInvocations(t *testing.T) {
	run := func() []byte {
		var buf bytes.Buffer
		w := trace.NewWriter(&buf, zerolog.Nop())
		deps := steps.Dependencies{Provider: fixtureProvider()}
		r := engine.New(&stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, deps)
		_, err := r.Run(context.Background(), simpleProblem(), w, "trace-4")
		require.NoError(t, err)
		require.NoError(t, w.Flush())
		return buf.Bytes()
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
}

func loopProblem(stopValue string, evidenceRequired bool) domain.ProblemSpec {
	p := simpleProblem()
	p.Settings.VerificationPaths = []domain.VerificationPath{
		{Name: "1: answer the question", EvidenceRequired: evidenceRequired},
	}
	p.Settings.Loop = &domain.LoopConfig{
		Enabled:       true,
		StartStep:     string(constants.StepAcquireEvidence),
		EndStep:       string(constants.StepVerify),
		MaxIterations: 3,
		StopCondition: domain.StopCondition{
			Path:     "artifacts.verification.status",
			Operator: "equals",
			Value:    stopValue,
		},
	}
	return p
}

func TestRunner_LoopStopsOnFirstSatisfiedCondition(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	deps := steps.Dependencies{Provider: fixtureProvider()}
	r := engine.New(&stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, deps)

	// evidenceRequired=false always passes, so the stop condition is
	// satisfied on the very first pass through the loop body.
	result, err := r.Run(context.Background(), loopProblem("passed", false), w, "trace-loop-1")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, constants.ReasoningStatusCompleted, result.FinalState.Status)
	require.NoError(t, trace.Verify(bytes.NewReader(buf.Bytes())))

	records := decodeNDJSON(t, buf.Bytes())
	controls := filterControlRecords(records)
	require.Len(t, controls, 1)
	assert.Equal(t, "stop", controls[0]["action"])
	assert.Equal(t, float64(1), controls[0]["loop_iteration"])

	// No repeat happened, so no iteration-tagged artifact keys exist.
	_, hasIterKey := result.FinalState.Artifacts["acquire_evidence.iter.2"]
	assert.False(t, hasIterKey)
}

func TestRunner_LoopExhaustsAfterMaxIterations(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	deps := steps.Dependencies{Provider: fixtureProvider()}
	r := engine.New(&stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, deps)

	// evidenceRequired=true with no matching context entry never passes,
	// so every pass repeats until max_iterations is reached.
	result, err := r.Run(context.Background(), loopProblem("passed", true), w, "trace-loop-2")
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	assert.Equal(t, constants.ReasoningStatusCompleted, result.FinalState.Status)
	require.NoError(t, trace.Verify(bytes.NewReader(buf.Bytes())))

	records := decodeNDJSON(t, buf.Bytes())
	controls := filterControlRecords(records)
	require.Len(t, controls, 3)
	assert.Equal(t, "repeat", controls[0]["action"])
	assert.Equal(t, float64(1), controls[0]["loop_iteration"])
	assert.Equal(t, "repeat", controls[1]["action"])
	assert.Equal(t, float64(2), controls[1]["loop_iteration"])
	assert.Equal(t, "max_iterations_reached", controls[2]["action"])
	assert.Equal(t, float64(3), controls[2]["loop_iteration"])

	assert.Contains(t, result.FinalState.Artifacts, "acquire_evidence")
	assert.Contains(t, result.FinalState.Artifacts, "acquire_evidence.iter.2")
	assert.Contains(t, result.FinalState.Artifacts, "acquire_evidence.iter.3")
	assert.Contains(t, result.FinalState.Artifacts, "verification.iter.3")
}

func decodeNDJSON(t *testing.T, b []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimRight(b, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func filterControlRecords(records []map[string]any) []map[string]any {
	var out []map[string]any
	for _, r := range records {
		if r["control_type"] == "loop" {
			out = append(out, r)
		}
	}
	return out
}

func TestRunner_RecordsStepAndRunMetricsWhenConfigured(t *testing.T) {
	var buf bytes.Buffer
	w := trace.NewWriter(&buf, zerolog.Nop())
	deps := steps.Dependencies{Provider: fixtureProvider()}
	agg := metricsagg.NewAggregator()
	r := engine.New(&stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}, deps, engine.WithMetrics(agg))

	_, err := r.Run(context.Background(), simpleProblem(), w, "trace-5")
	require.NoError(t, err)

	snapshot := agg.Snapshot()
	assert.Equal(t, 1, snapshot.RunsStarted)
	assert.Equal(t, 1, snapshot.RunsByStatus[string(constants.ReasoningStatusCompleted)])
	assert.Len(t, snapshot.Steps, len(constants.GraphOrder))
}
