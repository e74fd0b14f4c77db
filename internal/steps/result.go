package steps

import (
	"time"

	"github.com/mrz1836/reasonkernel/internal/canon"
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
)

// success builds a success StepResult, hashing inputs and the artifact's
// canonical payload through the one shared canonical-encoder path (spec
// §4.1, §4.4). A hashing failure on either side collapses the result to a
// failed StepResult carrying code canonicalization_error, since a step
// cannot return success without a trustworthy output_hash.
func success(step constants.StepName, startedAt, finishedAt time.Time, inputs any, output domain.Artifact, metrics *domain.StepMetrics) domain.StepResult {
	inputHash, err := canon.Hash(inputs)
	if err != nil {
		return canonicalizationFailure(step, startedAt, finishedAt, err)
	}
	outputHash, err := canon.Hash(output.CanonicalPayload())
	if err != nil {
		return canonicalizationFailure(step, startedAt, finishedAt, err)
	}
	return domain.StepResult{
		Version:    constants.EngineVersion,
		Step:       step,
		Status:     constants.StepStatusSuccess,
		InputHash:  inputHash,
		OutputHash: outputHash,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Output:     output,
		Metrics:    metrics,
	}
}

// failure builds a failed StepResult for the given taxonomy code/message.
func failure(step constants.StepName, startedAt, finishedAt time.Time, inputs any, code, message string) domain.StepResult {
	inputHash, err := canon.Hash(inputs)
	if err != nil {
		inputHash = ""
	}
	return domain.StepResult{
		Version:    constants.EngineVersion,
		Step:       step,
		Status:     constants.StepStatusFailed,
		InputHash:  inputHash,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Errors:     []domain.StateError{{Code: code, Message: message, Step: string(step)}},
	}
}

// canonicalizationFailure is the narrow case where hashing itself failed;
// per internal/errors.Fatal this code halts the run rather than merely
// failing the step, but it is still represented as a failed StepResult so
// the trace gains a record before the engine halts.
func canonicalizationFailure(step constants.StepName, startedAt, finishedAt time.Time, cause error) domain.StepResult {
	return failure(step, startedAt, finishedAt, nil, "canonicalization_error", cause.Error())
}

// skipped builds a skipped StepResult.
func skipped(step constants.StepName, startedAt, finishedAt time.Time) domain.StepResult {
	return domain.StepResult{
		Version:    constants.EngineVersion,
		Step:       step,
		Status:     constants.StepStatusSkipped,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
}
