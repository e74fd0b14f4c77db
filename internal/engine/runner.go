// Package engine implements the Engine Runner (spec §4.8): orchestrating
// the Canonical Encoder, Schema Validators, State Manager, Step Registry,
// Execution Graph, Loop Controller, and Trace Writer into one end-to-end
// request protocol.
//
// Grounded on the teacher's internal/task/engine.go (validate -> construct
// state -> transition -> loop-over-graph phase structure) and
// internal/task/step_runner.go (the per-step snapshot/hash/invoke/validate
// wrapper), generalized from Atlas's task lifecycle to the kernel's seven
// fixed reasoning steps plus an optional conditional loop segment.
package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/reasonkernel/internal/adapters/metricsagg"
	"github.com/mrz1836/reasonkernel/internal/canon"
	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
	"github.com/mrz1836/reasonkernel/internal/graph"
	"github.com/mrz1836/reasonkernel/internal/loop"
	"github.com/mrz1836/reasonkernel/internal/schema"
	"github.com/mrz1836/reasonkernel/internal/state"
	"github.com/mrz1836/reasonkernel/internal/steps"
	"github.com/mrz1836/reasonkernel/internal/trace"
)

// artifactKeys maps each graph step to the canonical short artifact key it
// writes, per spec §4.3 ("keyed by a canonical short name per step").
var artifactKeys = map[constants.StepName]string{
	constants.StepNormalize:       "normalize",
	constants.StepDecompose:       "decompose",
	constants.StepAcquireEvidence: "acquire_evidence",
	constants.StepCompute:         "compute",
	constants.StepVerify:          "verification",
	constants.StepSynthesize:      "synthesize",
	constants.StepAudit:           "audit",
}

// Runner executes one ProblemSpec to completion against an injected Clock,
// Step Registry, and Trace Writer destination. A Runner instance is
// single-use: construct one per request, per the single-threaded
// cooperative scheduling model (spec §5).
type Runner struct {
	registry *steps.Registry
	graph    *graph.Graph
	stateMgr *state.Manager
	clock    clock.Clock
	log      zerolog.Logger
	deps     steps.Dependencies
	metrics  metricsagg.Recorder
}

// Option configures a Runner.
type Option func(*Runner)

// WithRegistry overrides the default seven-step registry, primarily for
// tests that substitute one step with a double.
func WithRegistry(r *steps.Registry) Option {
	return func(run *Runner) { run.registry = r }
}

// WithLogger overrides the runner's diagnostic logger.
func WithLogger(log zerolog.Logger) Option {
	return func(run *Runner) { run.log = log }
}

// WithMetrics overrides the runner's observability collaborator. Metrics
// are write-only from the runner's side (spec §6): nothing in the engine
// ever reads a value back from Recorder, so a metrics outage never alters
// a run's outcome or its trace.
func WithMetrics(m metricsagg.Recorder) Option {
	return func(run *Runner) { run.metrics = m }
}

// New constructs a Runner. c is the deterministic clock seed; deps are the
// collaborators (ModelProvider) the registered steps may call.
func New(c clock.Clock, deps steps.Dependencies, opts ...Option) *Runner {
	run := &Runner{
		registry: steps.NewDefaultRegistry(),
		graph:    graph.New(),
		stateMgr: state.New(c),
		clock:    c,
		log:      zerolog.Nop(),
		deps:     deps,
		metrics:  metricsagg.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(run)
	}
	run.deps.Clock = c
	return run
}

// Result is what Run returns: the final ReasoningState and the concrete
// Trace Writer that received every record, so a caller can Flush it or
// pull record bytes for the HTTP surface's response.
type Result struct {
	FinalState domain.ReasoningState
	Writer     *trace.Writer
}

// Run executes spec.md §4.8's protocol: validate, construct state,
// transition to running, write header, walk the graph invoking each step
// and writing a trace record, honor the loop controller at end_step, and
// transition to completed unless a step already set failed. ctx is
// checked for cancellation between steps only, never mid-step (spec §5).
func (r *Runner) Run(ctx context.Context, problem domain.ProblemSpec, traceWriter *trace.Writer, traceID string) (Result, error) {
	if result := schema.ValidateProblemSpec(problem); !result.Valid() {
		return Result{}, result.Err()
	}

	runStarted := r.clock.Now()
	r.metrics.RunStarted(traceID)

	current := r.stateMgr.NewInitial(problem, traceID)
	running, err := r.stateMgr.Start(current)
	if err != nil {
		return Result{}, err
	}
	current = running

	problemHash, err := canon.Hash(problem)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}
	initialHash, err := canon.Hash(current)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}

	if err := traceWriter.WriteHeader(domain.TraceHeader{
		Version:          problem.Version,
		TraceID:          traceID,
		CreatedAt:        r.clock.Now(),
		EngineVersion:    constants.EngineVersion,
		HashAlgorithm:    constants.HashAlgorithm,
		Canonicalization: constants.Canonicalization,
		ProblemSpecHash:  problemHash,
		InitialStateHash: initialHash,
	}); err != nil {
		return Result{}, err
	}

	var loopCtl *loop.Controller
	var loopIteration int
	// loopPass tracks which pass (1-indexed) through the loop body is
	// currently executing. Pass 1 writes under each step's plain artifact
	// key, exactly like a non-looped step; passes 2+ must write under an
	// iteration-tagged key (spec §4.7/§9) since the plain key is already
	// occupied and artifacts are append-only (spec §4.3).
	loopPass := 1
	var loopRange map[constants.StepName]bool
	if problem.Settings.Loop != nil && problem.Settings.Loop.Enabled {
		loopCtl = loop.New(*problem.Settings.Loop)
		if rng, rngErr := r.graph.Range(loopCtl.StartStep(), loopCtl.EndStep()); rngErr == nil {
			loopRange = make(map[constants.StepName]bool, len(rng))
			for _, s := range rng {
				loopRange[s] = true
			}
		}
	}

	recordIndex := 1
	cursor := r.graph.First()
	var failed bool

	for {
		select {
		case <-ctx.Done():
			current, _ = r.stateMgr.Fail(current, "cancelled", "run cancelled between steps", string(cursor))
			failed = true
		default:
		}
		if failed {
			break
		}

		artifactKey := artifactKeys[cursor]
		if loopRange[cursor] && loopPass > 1 {
			artifactKey = domain.IterationKey(artifactKey, loopPass)
		}

		next, stepErr := r.runOneStep(ctx, cursor, current, recordIndex, traceWriter, artifactKey)
		if stepErr != nil {
			return Result{}, stepErr
		}
		current = next
		recordIndex++

		if current.Status == constants.ReasoningStatusFailed {
			failed = true
			break
		}

		if loopCtl != nil && cursor == loopCtl.EndStep() {
			decision := loopCtl.Decide(current, loopIteration)
			if err := traceWriter.WriteControl(domain.TraceControlRecord{
				Index:         recordIndex,
				ControlType:   "loop",
				Action:        decision.Action,
				LoopIteration: decision.LoopIteration,
				StartStep:     string(decision.StartStep),
				EndStep:       string(decision.EndStep),
				StopCondition: problem.Settings.Loop.StopCondition,
				StateHash:     mustHash(current),
			}); err != nil {
				return Result{}, err
			}
			recordIndex++
			loopIteration = decision.LoopIteration
			r.metrics.LoopIterationRecorded(traceID, decision.LoopIteration, decision.Action)

			if decision.Action == constants.LoopActionRepeat {
				cursor = loopCtl.StartStep()
				loopPass++
				continue
			}
		}

		if r.graph.Done(cursor) {
			break
		}
		nextStep, ok := r.graph.Next(cursor)
		if !ok {
			break
		}
		cursor = nextStep
	}

	if !failed {
		completed, err := r.stateMgr.Complete(current)
		if err != nil {
			return Result{}, err
		}
		current = completed
	}

	r.metrics.RunFinished(traceID, r.clock.Now().Sub(runStarted), string(current.Status))

	return Result{FinalState: current, Writer: traceWriter}, nil
}

// runOneStep performs one full step cycle per spec §4.8: snapshot and hash
// the pre-step state, invoke the step, validate its StepResult, verify its
// declared input_hash, apply it to produce the next state, validate
// invariants, hash the new state, and write the trace record.
func (r *Runner) runOneStep(ctx context.Context, name constants.StepName, before domain.ReasoningState, recordIndex int, w *trace.Writer, artifactKey string) (domain.ReasoningState, error) {
	fn, err := r.registry.Get(name)
	if err != nil {
		return domain.ReasoningState{}, err
	}

	beforeHash, err := canon.Hash(before)
	if err != nil {
		return domain.ReasoningState{}, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}

	result := fn(ctx, before, r.deps)

	if v := schema.ValidateStepResult(result); !v.Valid() {
		result = failResult(name, result, "step_contract_violation", v.Err().Error())
	}

	after, applyErr := r.stateMgr.Apply(before, result, artifactKey)
	if applyErr != nil {
		if reasonerrors.Fatal(applyErr) {
			return domain.ReasoningState{}, applyErr
		}
		info := reasonerrors.Describe(applyErr)
		after, _ = r.stateMgr.Fail(before, info.Code, info.Message, string(name))
	}

	if err := state.ValidateInvariants(before, after); err != nil {
		return domain.ReasoningState{}, err
	}

	r.metrics.StepRecorded(before.Metadata.TraceID, name, result.FinishedAt.Sub(result.StartedAt), result.Status == constants.StepStatusSuccess)

	afterHash, err := canon.Hash(after)
	if err != nil {
		return domain.ReasoningState{}, fmt.Errorf("%w: %w", reasonerrors.ErrCanonicalization, err)
	}

	if err := w.WriteStep(domain.TraceStepRecord{
		Index:           recordIndex,
		StepIndex:       after.StepIndex,
		Result:          result,
		StateBeforeHash: beforeHash,
		StateAfterHash:  afterHash,
	}); err != nil {
		return domain.ReasoningState{}, err
	}

	return after, nil
}

func failResult(name constants.StepName, orig domain.StepResult, code, message string) domain.StepResult {
	orig.Status = constants.StepStatusFailed
	orig.Output = nil
	orig.OutputHash = ""
	orig.Errors = append(orig.Errors, domain.StateError{Code: code, Message: message, Step: string(name)})
	return orig
}

func mustHash(v any) string {
	h, err := canon.Hash(v)
	if err != nil {
		return ""
	}
	return h
}
