// Package httpapi implements the HTTP execution surface (spec §6): a thin
// REST wrapper exposing POST /v1/execute and GET /v1/trace/{trace_id} over
// the engine runner.
//
// Grounded on the go-chi router/middleware-stack pattern observed in
// Noldarim-noldarim's internal/server/server.go (chi.NewRouter, route
// groups, explicit read/write timeouts on http.Server), generalized from
// its project/task REST resources to this kernel's single execute
// operation.
package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/mrz1836/reasonkernel/internal/adapters/idempotency"
	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/adapters/tracestore"
	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/domain"
	"github.com/mrz1836/reasonkernel/internal/engine"
	"github.com/mrz1836/reasonkernel/internal/steps"
	"github.com/mrz1836/reasonkernel/internal/trace"
)

// idempotencyTTL bounds how long a cached /v1/execute response is replayed
// for a retried request carrying the same trace_id.
const idempotencyTTL = 24 * time.Hour

// Server is the HTTP execution surface wrapping the engine runner.
type Server struct {
	httpServer *http.Server
	deps       steps.Dependencies
	store      tracestore.Store    // nil if trace persistence/replay is disabled
	cache      idempotency.Cache   // nil if idempotent-retry caching is disabled
	metrics    metricsagg.Recorder // never read from, only written to
	log        zerolog.Logger
}

// Config configures a Server.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// New creates and wires up the execution surface. store and cache may be
// nil: a nil store makes GET /v1/trace/{trace_id} always respond 404; a
// nil cache makes every POST /v1/execute re-run the engine even for a
// repeated trace_id. metrics may be nil, in which case observations are
// discarded; pass a *metricsagg.Aggregator to also expose them at
// GET /v1/metrics. It does not start listening; call ListenAndServe for
// that.
func New(cfg Config, deps steps.Dependencies, store tracestore.Store, cache idempotency.Cache, metrics metricsagg.Recorder, log zerolog.Logger) *Server {
	if metrics == nil {
		metrics = metricsagg.NoopRecorder{}
	}
	s := &Server{deps: deps, store: store, cache: cache, metrics: metrics, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/execute", s.handleExecute)
		r.Get("/trace/{trace_id}", s.handleGetTrace)
		r.Get("/metrics", s.handleMetrics)
	})

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // conservative header-read bound
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving HTTP requests until the listener fails or
// is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the underlying http.Handler, for embedding in another
// server or exercising directly from an httptest.Server in tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Close shuts down the underlying HTTP server immediately.
func (s *Server) Close() error {
	return s.httpServer.Close()
}

// executeRequest is the POST /v1/execute request body: a ProblemSpec plus
// the trace_id to stamp the trace header with.
type executeRequest struct {
	ProblemSpec domain.ProblemSpec `json:"problem_spec"`
	TraceID     string             `json:"trace_id"`
}

// executeResponse is the POST /v1/execute response body: the final
// ReasoningState plus every trace record written during the run.
type executeResponse struct {
	FinalState domain.ReasoningState `json:"final_state"`
	Trace      []json.RawMessage     `json:"trace"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return
	}
	if req.TraceID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("trace_id is required"))
		return
	}

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(r.Context(), req.TraceID); err == nil && ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}
	}

	var buf bytes.Buffer
	writer := trace.NewWriter(&buf, s.log)

	runner := engine.New(clock.RealClock{}, s.deps, engine.WithMetrics(s.metrics))
	result, err := runner.Run(r.Context(), req.ProblemSpec, writer, req.TraceID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := writer.Flush(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := executeResponse{FinalState: result.FinalState, Trace: splitTraceLines(buf.Bytes())}
	body, err := json.Marshal(resp)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if s.cache != nil {
		if err := s.cache.Put(r.Context(), req.TraceID, body, idempotencyTTL); err != nil {
			s.log.Warn().Err(err).Str("trace_id", req.TraceID).Msg("failed to cache execute response")
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// traceResponse is the GET /v1/trace/{trace_id} response body: every
// record for the trace, already verified for hash-chain integrity.
type traceResponse struct {
	TraceID string            `json:"trace_id"`
	Records []json.RawMessage `json:"records"`
}

func (s *Server) handleGetTrace(w http.ResponseWriter, r *http.Request) {
	traceID := chi.URLParam(r, "trace_id")
	if s.store == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("trace store is not configured"))
		return
	}

	records, err := s.store.Records(r.Context(), traceID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusNotFound, fmt.Errorf("trace %s not found", traceID))
		return
	}

	if err := trace.Verify(bytes.NewReader(bytes.Join(records, []byte("\n")))); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	lines := make([]json.RawMessage, len(records))
	for i, rec := range records {
		lines[i] = json.RawMessage(rec)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(traceResponse{TraceID: traceID, Records: lines})
}

// handleMetrics reports the aggregator's current counters. It 404s unless
// metrics was constructed with a *metricsagg.Aggregator, since NoopRecorder
// and any other Recorder implementation has nothing to snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	agg, ok := s.metrics.(*metricsagg.Aggregator)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("metrics aggregation is not enabled"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(agg.Snapshot())
}

// splitTraceLines splits the NDJSON bytes the Writer produced back into
// one json.RawMessage per record, for embedding in the response body.
func splitTraceLines(b []byte) []json.RawMessage {
	var lines []json.RawMessage
	for _, line := range bytes.Split(bytes.TrimRight(b, "\n"), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		lines = append(lines, json.RawMessage(line))
	}
	return lines
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
