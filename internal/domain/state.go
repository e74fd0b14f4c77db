package domain

import (
	"time"

	"github.com/mrz1836/reasonkernel/internal/constants"
)

// ReasoningState is mutable, append-only, and owned exclusively by the
// State Manager (spec §3 Ownership). Step functions receive an immutable
// view; only StateManager.Apply produces a new value.
//
// Example JSON representation:
//
//	{
//	    "version": "1.0.0",
//	    "step_index": 3,
//	    "status": "running",
//	    "artifacts": {"normalize": {...}},
//	    "metadata": {"trace_id": "trace-1", "created_at": "...", "updated_at": "..."}
//	}
type ReasoningState struct {
	// Version mirrors the owning ProblemSpec's version.
	Version string `json:"version"`

	// Problem is an immutable copy of the originating ProblemSpec.
	Problem ProblemSpec `json:"problem"`

	// StepIndex is non-negative and strictly monotonic across the state's
	// lifetime; it never decreases.
	StepIndex int `json:"step_index"`

	// Status is the lifecycle state: pending, running, failed, or completed.
	Status constants.ReasoningStatus `json:"status"`

	// Artifacts maps a step's artifact key to its canonical payload.
	// Append-only: a prior key is never overwritten.
	Artifacts map[string]any `json:"artifacts"`

	// Assumptions accumulated over the run. Sequence of non-empty strings.
	Assumptions []string `json:"assumptions,omitempty"`

	// Constraints accumulated over the run, distinct from
	// Problem.Inputs.Constraints. Sequence of non-empty strings.
	Constraints []string `json:"constraints,omitempty"`

	// Errors is append-only; prior entries are never removed.
	Errors []StateError `json:"errors,omitempty"`

	// Metadata holds trace_id, optional profile hints, and timestamps.
	Metadata StateMetadata `json:"metadata"`
}

// StateError is one entry in ReasoningState.errors.
type StateError struct {
	// Code is a stable taxonomy code (see internal/errors).
	Code string `json:"code"`
	// Message is a human-readable description.
	Message string `json:"message"`
	// Step is the step name that produced the error, if any.
	Step string `json:"step,omitempty"`
}

// StateMetadata holds identifying and timestamp metadata for a
// ReasoningState.
type StateMetadata struct {
	// TraceID is required once Status transitions to running.
	TraceID string `json:"trace_id,omitempty"`

	// PolicyProfile optionally names a policy configuration profile.
	PolicyProfile string `json:"policy_profile,omitempty"`

	// ModelProfile optionally names a model-provider configuration profile.
	ModelProfile string `json:"model_profile,omitempty"`

	// CreatedAt is set once, at construction.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt strictly advances on every mutation, derived from the
	// caller-provided deterministic clock.
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep-enough copy of the state for the State Manager to
// mutate into a new value without aliasing the caller's artifacts/errors
// slices and maps. Problem is a value type and copies by assignment.
func (s ReasoningState) Clone() ReasoningState {
	next := s
	next.Artifacts = make(map[string]any, len(s.Artifacts))
	for k, v := range s.Artifacts {
		next.Artifacts[k] = v
	}
	next.Assumptions = append([]string(nil), s.Assumptions...)
	next.Constraints = append([]string(nil), s.Constraints...)
	next.Errors = append([]StateError(nil), s.Errors...)
	return next
}
