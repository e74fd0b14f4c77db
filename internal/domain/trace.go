package domain

import (
	"time"

	"github.com/mrz1836/reasonkernel/internal/constants"
)

// TraceHeader is the first record of every trace (index 0). It carries no
// prev_hash (spec §4.5).
type TraceHeader struct {
	Index            int       `json:"index"`
	Version          string    `json:"version"`
	TraceID          string    `json:"trace_id"`
	CreatedAt        time.Time `json:"created_at"`
	EngineVersion    string    `json:"engine_version"`
	HashAlgorithm    string    `json:"hash_algorithm"`
	Canonicalization string    `json:"canonicalization"`
	ProblemSpecHash  string    `json:"problem_spec_hash"`
	InitialStateHash string    `json:"initial_state_hash"`
	RecordHash       string    `json:"record_hash"`
}

// TraceStepRecord is written once per executed step (spec §4.5).
type TraceStepRecord struct {
	Index           int        `json:"index"`
	StepIndex       int        `json:"step_index"`
	Result          StepResult `json:"result"`
	StateBeforeHash string     `json:"state_before_hash"`
	StateAfterHash  string     `json:"state_after_hash"`
	PrevHash        string     `json:"prev_hash"`
	RecordHash      string     `json:"record_hash"`
}

// TraceControlRecord is written once per loop decision point (spec §4.5,
// §4.7).
type TraceControlRecord struct {
	Index         int                  `json:"index"`
	ControlType   string               `json:"control_type"`
	Action        constants.LoopAction `json:"action"`
	LoopIteration int                  `json:"loop_iteration"`
	StartStep     string               `json:"start_step"`
	EndStep       string               `json:"end_step"`
	StopCondition StopCondition        `json:"stop_condition"`
	StateHash     string               `json:"state_hash"`
	PrevHash      string               `json:"prev_hash"`
	RecordHash    string               `json:"record_hash"`
}
