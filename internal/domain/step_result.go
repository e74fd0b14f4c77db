package domain

import (
	"time"

	"github.com/mrz1836/reasonkernel/internal/constants"
)

// StepResult is the validated output of one step invocation (spec §3).
//
// Example JSON representation:
//
//	{
//	    "version": "1.0.0",
//	    "step": "Normalize",
//	    "status": "success",
//	    "input_hash": "...",
//	    "output_hash": "...",
//	    "started_at": "...",
//	    "finished_at": "...",
//	    "output": {...}
//	}
type StepResult struct {
	// Version mirrors the engine version in effect when the step ran.
	Version string `json:"version"`

	// Step is the registered step name that produced this result.
	Step constants.StepName `json:"step"`

	// Status is one of success, failed, skipped.
	Status constants.StepStatus `json:"status"`

	// InputHash is the lowercase hex SHA-256 of the canonical form of the
	// step's declared inputs.
	InputHash string `json:"input_hash"`

	// OutputHash is the lowercase hex SHA-256 of the canonical form of Output.
	// Empty when Status != success.
	OutputHash string `json:"output_hash,omitempty"`

	// StartedAt must be <= FinishedAt, both sourced from the deterministic
	// clock.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt must be >= StartedAt.
	FinishedAt time.Time `json:"finished_at"`

	// Output is required iff Status == success.
	Output Artifact `json:"-"`

	// Errors is required iff Status == failed; each entry carries code and
	// message.
	Errors []StateError `json:"errors,omitempty"`

	// Metrics is optional, populated by steps that consult an external
	// collaborator.
	Metrics *StepMetrics `json:"metrics,omitempty"`
}

// StepMetrics captures optional resource-usage figures for a step. Per
// SPEC_FULL.md §13(c), all fields are canonicalized as integers only.
type StepMetrics struct {
	TokensIn  int `json:"tokens_in,omitempty"`
	TokensOut int `json:"tokens_out,omitempty"`
	LatencyMs int `json:"latency_ms,omitempty"`
}

// MarshalOutput returns the canonical JSON-shaped payload for Output, or nil
// if Output is nil. It exists because Output is declared as the Artifact
// interface (not `any`) so the State Manager can enforce the artifact
// capability at compile time; callers that need the bare payload for
// hashing or trace embedding should use this instead of touching Output's
// concrete type.
func (r StepResult) MarshalOutput() any {
	if r.Output == nil {
		return nil
	}
	return r.Output.CanonicalPayload()
}
