package domain

import "time"

// ProblemSpec is the immutable input to a run. It is never mutated after
// validation; the engine runner copies it verbatim into ReasoningState.problem.
//
// Example JSON representation:
//
//	{
//	    "version": "1.0.0",
//	    "id": "req-1",
//	    "created_at": "2026-02-02T00:00:00Z",
//	    "inputs": {"prompt": "Hello world"},
//	    "settings": {"verification_paths": [{"name": "schema"}]}
//	}
type ProblemSpec struct {
	// Version is a semver string. Only the MAJOR component gates acceptance;
	// higher MINOR/PATCH are accepted once every required field is understood.
	Version string `json:"version"`

	// ID is the stable, non-empty identifier for this request.
	ID string `json:"id"`

	// CreatedAt is the ISO-8601 UTC timestamp the caller attached to this spec.
	CreatedAt time.Time `json:"created_at"`

	// Inputs holds the problem's prompt, constraints, goals, and context.
	Inputs ProblemInputs `json:"inputs"`

	// Settings holds loop and verification-path configuration (see
	// LoopConfig, VerificationPath).
	Settings ProblemSettings `json:"settings"`

	// Provenance is an opaque mapping the caller may use to track where the
	// problem originated. The engine never interprets it.
	Provenance map[string]any `json:"provenance,omitempty"`
}

// ProblemInputs holds the problem statement itself.
type ProblemInputs struct {
	// Prompt must be non-empty after whitespace trimming.
	Prompt string `json:"prompt"`

	// Constraints is an ordered sequence of non-empty strings. May be empty.
	Constraints []string `json:"constraints,omitempty"`

	// Goals is an ordered sequence of non-empty strings. May be empty.
	Goals []string `json:"goals,omitempty"`

	// Context is an opaque mapping passed through to steps unmodified.
	Context map[string]any `json:"context,omitempty"`
}

// ProblemSettings holds the loop controller configuration and the
// verification paths evaluated by the Verify step.
type ProblemSettings struct {
	// Loop configures the conditional loop controller (C7). Nil or
	// Loop.Enabled == false means the loop controller never activates.
	Loop *LoopConfig `json:"loop,omitempty"`

	// VerificationPaths is the sequence of checks the Verify step evaluates.
	VerificationPaths []VerificationPath `json:"verification_paths,omitempty"`
}

// LoopConfig configures the loop controller (spec §4.7).
type LoopConfig struct {
	// Enabled activates the loop controller when true.
	Enabled bool `json:"enabled"`

	// StartStep is a registered step name; execution resumes here on repeat.
	StartStep string `json:"start_step"`

	// EndStep is a registered step name, not before StartStep in graph order.
	// The loop controller's decision protocol runs after EndStep executes.
	EndStep string `json:"end_step"`

	// MaxIterations must be greater than zero.
	MaxIterations int `json:"max_iterations"`

	// StopCondition is evaluated against the post-state after EndStep.
	StopCondition StopCondition `json:"stop_condition"`

	// Equals is a legacy field: when set (and Operator is empty), it is
	// rewritten to StopCondition.Operator = "equals" at validation time.
	Equals any `json:"equals,omitempty"`
}

// StopCondition is evaluated by the loop controller's decision protocol
// (spec §4.7). Path must begin with "artifacts." (spec §9).
type StopCondition struct {
	// Path is a dotted-path expression, e.g. "artifacts.verification.status".
	Path string `json:"path"`

	// Operator is one of equals, not_equals, gt, gte, lt, lte.
	Operator string `json:"operator"`

	// Value is compared against the resolved path; its type must be string,
	// integer, or boolean.
	Value any `json:"value"`
}

// VerificationPath is one check the Verify step evaluates and aggregates
// into artifacts.verification.status.
type VerificationPath struct {
	// Name identifies the verification path.
	Name string `json:"name"`

	// EvidenceRequired indicates the path fails if no supporting evidence
	// artifact is present.
	EvidenceRequired bool `json:"evidence_required,omitempty"`
}
