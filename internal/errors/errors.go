// Package errors provides centralized error handling for the reasoning kernel.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the engine. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors corresponding to the stable error taxonomy codes.
// These allow callers to check error types with errors.Is() while the
// human-readable message stays attached to a specific occurrence.
var (
	// ErrSchemaInvalid indicates a ProblemSpec, ReasoningState, StepResult, or
	// trace record failed structural validation.
	ErrSchemaInvalid = errors.New("schema_invalid")

	// ErrVersionUnsupported indicates the ProblemSpec's major version is not
	// understood by this engine.
	ErrVersionUnsupported = errors.New("version_unsupported")

	// ErrCanonicalization indicates a value could not be deterministically
	// encoded: duplicate object keys, a non-finite number, or a non-string map key.
	ErrCanonicalization = errors.New("canonicalization_error")

	// ErrStepUnknown indicates a step name is not present in the registry.
	ErrStepUnknown = errors.New("step_unknown")

	// ErrStepContractViolation indicates a StepResult violates its contract,
	// e.g. success with no output, or failed with no errors.
	ErrStepContractViolation = errors.New("step_contract_violation")

	// ErrStateInvariantViolation indicates a ReasoningState invariant was
	// broken: non-monotonic step_index, artifact overwrite, or mutation past
	// a terminal status.
	ErrStateInvariantViolation = errors.New("state_invariant_violation")

	// ErrArtifactOverwrite indicates an attempt to overwrite an existing
	// artifact key.
	ErrArtifactOverwrite = errors.New("artifact_overwrite")

	// ErrLoopConfigInvalid indicates settings.loop failed validation.
	ErrLoopConfigInvalid = errors.New("loop_config_invalid")

	// ErrStopConditionInvalid indicates a loop stop_condition failed validation.
	ErrStopConditionInvalid = errors.New("stop_condition_invalid")

	// ErrHashMismatch indicates a declared hash does not match the hash
	// recomputed by the canonical encoder.
	ErrHashMismatch = errors.New("hash_mismatch")

	// ErrTraceChainBroken indicates a trace record's prev_hash does not equal
	// the previous record's record_hash, or its index is non-monotonic.
	ErrTraceChainBroken = errors.New("trace_chain_broken")

	// ErrCancelled indicates the run was interrupted by a caller-supplied
	// cancellation signal between steps.
	ErrCancelled = errors.New("cancelled")

	// ErrCollaboratorTimeout indicates an external collaborator (model
	// provider, evidence fetcher) exceeded its caller-specified deadline.
	ErrCollaboratorTimeout = errors.New("collaborator_timeout")

	// ErrStructuredGenerationFailed indicates a model provider's output could
	// not be validated against the requested structured-generation schema.
	ErrStructuredGenerationFailed = errors.New("structured_generation_failed")
)

// Fatal reports whether an error implies the trace is untrustworthy and the
// run must stop immediately rather than record a failed step and continue.
// Per the propagation policy, only canonicalization, trace-chain, and
// state-invariant violations are fatal.
func Fatal(err error) bool {
	return errors.Is(err, ErrCanonicalization) ||
		errors.Is(err, ErrTraceChainBroken) ||
		errors.Is(err, ErrStateInvariantViolation)
}
