package constants

// ReasoningStatus represents the lifecycle state of a ReasoningState.
// Status values use snake_case for JSON serialization compatibility.
type ReasoningStatus string

// Status transitions: pending -> running -> {completed | failed}. Once a
// state reaches completed or failed it is terminal; no further mutation is
// permitted (spec §3 Invariants).
const (
	// ReasoningStatusPending indicates a state has been constructed but the
	// engine has not yet started executing steps.
	ReasoningStatusPending ReasoningStatus = "pending"

	// ReasoningStatusRunning indicates the engine is actively executing
	// steps against this state.
	ReasoningStatusRunning ReasoningStatus = "running"

	// ReasoningStatusFailed is terminal: a step or invariant check failed
	// and no further mutation is permitted.
	ReasoningStatusFailed ReasoningStatus = "failed"

	// ReasoningStatusCompleted is terminal: every step in the execution
	// graph finished without a prior failure.
	ReasoningStatusCompleted ReasoningStatus = "completed"
)

// String returns the string representation of the ReasoningStatus.
func (s ReasoningStatus) String() string {
	return string(s)
}

// Terminal reports whether a status permits no further mutation.
func (s ReasoningStatus) Terminal() bool {
	return s == ReasoningStatusFailed || s == ReasoningStatusCompleted
}

// StepStatus represents the outcome status of a single StepResult.
type StepStatus string

const (
	// StepStatusSuccess indicates the step produced valid output.
	StepStatusSuccess StepStatus = "success"

	// StepStatusFailed indicates the step produced one or more errors.
	StepStatusFailed StepStatus = "failed"

	// StepStatusSkipped indicates the step was bypassed without producing
	// output or errors.
	StepStatusSkipped StepStatus = "skipped"
)

// String returns the string representation of the StepStatus.
func (s StepStatus) String() string {
	return string(s)
}

// VerificationStatus is the aggregate outcome of the Verify step's
// configured verification paths.
type VerificationStatus string

const (
	// VerificationPassed indicates every required verification path passed.
	VerificationPassed VerificationStatus = "passed"

	// VerificationFailed indicates at least one required verification path
	// failed.
	VerificationFailed VerificationStatus = "failed"
)

// String returns the string representation of the VerificationStatus.
func (s VerificationStatus) String() string {
	return string(s)
}

// RecordKind identifies the kind of a trace record.
type RecordKind string

const (
	// RecordKindHeader is always index 0.
	RecordKindHeader RecordKind = "header"

	// RecordKindStep is written once per executed step.
	RecordKindStep RecordKind = "step"

	// RecordKindControl is written once per loop decision point.
	RecordKindControl RecordKind = "control"
)

// String returns the string representation of the RecordKind.
func (k RecordKind) String() string {
	return string(k)
}

// LoopAction identifies the loop controller's decision at a control record.
type LoopAction string

const (
	// LoopActionRepeat resets execution to the loop's start_step.
	LoopActionRepeat LoopAction = "repeat"

	// LoopActionStop means the stop condition was satisfied.
	LoopActionStop LoopAction = "stop"

	// LoopActionMaxIterations means max_iterations was exhausted without the
	// stop condition being satisfied.
	LoopActionMaxIterations LoopAction = "max_iterations_reached"
)

// String returns the string representation of the LoopAction.
func (a LoopAction) String() string {
	return string(a)
}

// StopOperator identifies a loop stop-condition comparison operator.
type StopOperator string

const (
	StopOperatorEquals    StopOperator = "equals"
	StopOperatorNotEquals StopOperator = "not_equals"
	StopOperatorGT        StopOperator = "gt"
	StopOperatorGTE       StopOperator = "gte"
	StopOperatorLT        StopOperator = "lt"
	StopOperatorLTE       StopOperator = "lte"
)

// String returns the string representation of the StopOperator.
func (o StopOperator) String() string {
	return string(o)
}
