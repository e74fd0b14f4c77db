package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/adapters/httpapi"
	"github.com/mrz1836/reasonkernel/internal/adapters/idempotency"
	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/provider"
	"github.com/mrz1836/reasonkernel/internal/steps"
)

func newTestServer(t *testing.T, cache idempotency.Cache) *httptest.Server {
	t.Helper()

	fixtures := []provider.Fixture{
		{Prompt: "hello world\n- 1: answer the question", Response: []byte(`{"result":"ok"}`)},
		{Prompt: `{"result":"ok"}`, Response: []byte(`{"answer":"final"}`)},
	}
	deps := steps.Dependencies{
		Clock:    clock.RealClock{},
		Provider: provider.NewFixtureProvider(fixtures),
	}

	log := zerolog.New(io.Discard).Level(zerolog.Disabled)
	srv := httpapi.New(httpapi.Config{
		Addr:         ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, deps, nil, cache, nil, log)

	return httptest.NewServer(srv.Handler())
}

func TestHandleExecute_RunsProblemAndReturnsTrace(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	problem := domain.ProblemSpec{
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
	body, err := json.Marshal(map[string]any{
		"problem_spec": problem,
		"trace_id":     "trace-http-1",
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/execute", "application/json", bytes.NewReader(body)) //nolint:noctx,gosec // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var decoded struct {
		FinalState domain.ReasoningState `json:"final_state"`
		Trace      []json.RawMessage     `json:"trace"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	require.NotEmpty(t, decoded.Trace)
}

func TestHandleExecute_RejectsMissingTraceID(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	body, err := json.Marshal(map[string]any{"problem_spec": domain.ProblemSpec{}})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/execute", "application/json", bytes.NewReader(body)) //nolint:noctx,gosec // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetTrace_WithoutStoreReturnsNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/trace/trace-http-1") //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleMetrics_WithoutAggregatorReturnsNotFound(t *testing.T) {
	ts := newTestServer(t, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/metrics") //nolint:noctx // test helper
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleMetrics_ReflectsExecutedRuns(t *testing.T) {
	fixtures := []provider.Fixture{
		{Prompt: "hello world\n- 1: answer the question", Response: []byte(`{"result":"ok"}`)},
		{Prompt: `{"result":"ok"}`, Response: []byte(`{"answer":"final"}`)},
	}
	deps := steps.Dependencies{
		Clock:    clock.RealClock{},
		Provider: provider.NewFixtureProvider(fixtures),
	}
	agg := metricsagg.NewAggregator()
	log := zerolog.New(io.Discard).Level(zerolog.Disabled)
	srv := httpapi.New(httpapi.Config{
		Addr:         ":0",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}, deps, nil, nil, agg, log)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	problem := domain.ProblemSpec{
		Version:   "1.0.0",
		ID:        "req-3",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Inputs: domain.ProblemInputs{
			Prompt: "hello world",
			Goals:  []string{"answer the question"},
		},
		Settings: domain.ProblemSettings{
			VerificationPaths: []domain.VerificationPath{{Name: "schema"}},
		},
	}
	body, err := json.Marshal(map[string]any{
		"problem_spec": problem,
		"trace_id":     "trace-http-metrics",
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.URL+"/v1/execute", "application/json", bytes.NewReader(body)) //nolint:noctx,gosec // test helper
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	metricsResp, err := http.Get(ts.URL + "/v1/metrics") //nolint:noctx // test helper
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	require.Equal(t, http.StatusOK, metricsResp.StatusCode)

	var snapshot metricsagg.Snapshot
	require.NoError(t, json.NewDecoder(metricsResp.Body).Decode(&snapshot))
	require.Equal(t, 1, snapshot.RunsStarted)
	require.NotEmpty(t, snapshot.Steps)
}

func TestHandleExecute_RepeatedTraceIDReplaysCachedResponse(t *testing.T) {
	mr := miniredis.RunT(t)
	cache, err := idempotency.NewRedisCache(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = cache.Close() })

	ts := newTestServer(t, cache)
	defer ts.Close()

	problem := domain.ProblemSpec{
		Version:   "1.0.0",
		ID:        "req-2",
		CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Inputs: domain.ProblemInputs{
			Prompt: "hello world",
			Goals:  []string{"answer the question"},
		},
		Settings: domain.ProblemSettings{
			VerificationPaths: []domain.VerificationPath{{Name: "schema"}},
		},
	}
	body, err := json.Marshal(map[string]any{
		"problem_spec": problem,
		"trace_id":     "trace-http-cached",
	})
	require.NoError(t, err)

	first, err := http.Post(ts.URL+"/v1/execute", "application/json", bytes.NewReader(body)) //nolint:noctx,gosec // test helper
	require.NoError(t, err)
	firstBody, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	require.NoError(t, first.Body.Close())
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Post(ts.URL+"/v1/execute", "application/json", bytes.NewReader(body)) //nolint:noctx,gosec // test helper
	require.NoError(t, err)
	secondBody, err := io.ReadAll(second.Body)
	require.NoError(t, err)
	require.NoError(t, second.Body.Close())
	require.Equal(t, http.StatusOK, second.StatusCode)

	require.JSONEq(t, string(firstBody), string(secondBody))
}
