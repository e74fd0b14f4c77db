package errors

import goerrors "errors"

// ErrorInfo holds the stable taxonomy code and a human-readable message for
// an error, matching the {code, message} pair stored in StepResult.errors
// and ReasoningState.errors.
type ErrorInfo struct {
	// Code is the stable taxonomy code, e.g. "schema_invalid".
	Code string
	// Message is the human-readable description.
	Message string
}

// errorEntry pairs a sentinel error with its taxonomy info.
type errorEntry struct {
	err  error
	info ErrorInfo
}

// errorInfoEntries is the single source of truth mapping sentinel errors to
// their taxonomy code and default message. Stored as a slice, not a map,
// because errors.Is() must walk the chain in order, not rely on identity.
//
//nolint:gochecknoglobals // Pre-built mapping for efficiency
var errorInfoEntries = []errorEntry{
	{ErrSchemaInvalid, ErrorInfo{"schema_invalid", "input failed structural validation"}},
	{ErrVersionUnsupported, ErrorInfo{"version_unsupported", "problem spec major version is not supported"}},
	{ErrCanonicalization, ErrorInfo{"canonicalization_error", "value could not be canonically encoded"}},
	{ErrStepUnknown, ErrorInfo{"step_unknown", "step name is not registered"}},
	{ErrStepContractViolation, ErrorInfo{"step_contract_violation", "step result violates its contract"}},
	{ErrStateInvariantViolation, ErrorInfo{"state_invariant_violation", "state invariant violated"}},
	{ErrArtifactOverwrite, ErrorInfo{"artifact_overwrite", "artifact key already exists"}},
	{ErrLoopConfigInvalid, ErrorInfo{"loop_config_invalid", "loop configuration is invalid"}},
	{ErrStopConditionInvalid, ErrorInfo{"stop_condition_invalid", "stop condition is invalid"}},
	{ErrHashMismatch, ErrorInfo{"hash_mismatch", "declared hash does not match computed hash"}},
	{ErrTraceChainBroken, ErrorInfo{"trace_chain_broken", "trace record hash chain is broken"}},
	{ErrCancelled, ErrorInfo{"cancelled", "run was cancelled"}},
	{ErrCollaboratorTimeout, ErrorInfo{"collaborator_timeout", "external collaborator call timed out"}},
	{ErrStructuredGenerationFailed, ErrorInfo{"structured_generation_failed", "model output failed structured generation validation"}},
}

// Describe returns the taxonomy {code, message} for err, walking its chain
// against every known sentinel. If err does not match any known sentinel,
// Describe returns a generic "internal" code with err's own message.
func Describe(err error) ErrorInfo {
	for _, entry := range errorInfoEntries {
		if goerrors.Is(err, entry.err) {
			return entry.info
		}
	}
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return ErrorInfo{Code: "internal", Message: msg}
}
