// Package metricsagg implements the metrics-aggregator external
// collaborator named in spec §6: an in-process recorder of step latency
// and loop-iteration counts that the engine runner writes to and nothing
// in the core ever reads from, so metrics can never influence control
// flow or a canonical hash.
//
// Grounded on the teacher's internal/task/metrics.go Metrics interface and
// NoopMetrics default, generalized from task/step-lifecycle events to the
// kernel's step/loop-iteration events, plus a concrete in-process
// Aggregator the teacher itself never provided (Atlas leaves every real
// Metrics implementation to the caller).
package metricsagg

import (
	"sort"
	"sync"
	"time"

	"github.com/mrz1836/reasonkernel/internal/constants"
)

// Recorder is the collaborator boundary the engine runner writes
// observability events to. Implementations must be safe for concurrent
// use: Verify's fan-out (spec §4.4) may report step completion from
// multiple goroutines within a single request.
type Recorder interface {
	// RunStarted is called once when a request begins executing.
	RunStarted(traceID string)

	// RunFinished is called once when a request reaches a terminal status.
	RunFinished(traceID string, duration time.Duration, status string)

	// StepRecorded is called after each step completes, success or failure.
	StepRecorded(traceID string, step constants.StepName, duration time.Duration, success bool)

	// LoopIterationRecorded is called after each loop-controller decision.
	LoopIterationRecorded(traceID string, iteration int, action string)
}

// NoopRecorder discards every event. Use it when metrics collection is not
// needed; it is the Runner's default.
type NoopRecorder struct{}

var _ Recorder = NoopRecorder{}

// RunStarted implements Recorder.
func (NoopRecorder) RunStarted(string) {}

// RunFinished implements Recorder.
func (NoopRecorder) RunFinished(string, time.Duration, string) {}

// StepRecorded implements Recorder.
func (NoopRecorder) StepRecorded(string, constants.StepName, time.Duration, bool) {}

// LoopIterationRecorded implements Recorder.
func (NoopRecorder) LoopIterationRecorded(string, int, string) {}

// stepStats accumulates latency observations for one step name.
type stepStats struct {
	count        int
	totalLatency time.Duration
	failures     int
}

// Aggregator is an in-process Recorder: counters and running latency
// totals keyed by step name, plus per-run completion counts by terminal
// status. It holds no per-trace history; spec §6 scopes this collaborator
// to operational observability, not a second trace store.
type Aggregator struct {
	mu sync.Mutex

	runsStarted  int
	runsByStatus map[string]int

	steps          map[constants.StepName]*stepStats
	loopIterations int
}

// NewAggregator constructs an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		runsByStatus: make(map[string]int),
		steps:        make(map[constants.StepName]*stepStats),
	}
}

var _ Recorder = (*Aggregator)(nil)

// RunStarted implements Recorder.
func (a *Aggregator) RunStarted(string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runsStarted++
}

// RunFinished implements Recorder.
func (a *Aggregator) RunFinished(_ string, _ time.Duration, status string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runsByStatus[status]++
}

// StepRecorded implements Recorder.
func (a *Aggregator) StepRecorded(_ string, step constants.StepName, duration time.Duration, success bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, ok := a.steps[step]
	if !ok {
		s = &stepStats{}
		a.steps[step] = s
	}
	s.count++
	s.totalLatency += duration
	if !success {
		s.failures++
	}
}

// LoopIterationRecorded implements Recorder.
func (a *Aggregator) LoopIterationRecorded(string, int, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loopIterations++
}

// StepSnapshot is one step's aggregated counters at the moment Snapshot
// was called.
type StepSnapshot struct {
	Step           constants.StepName
	Count          int
	Failures       int
	AverageLatency time.Duration
}

// Snapshot is the aggregator's full state at the moment it was taken,
// for the CLI or an HTTP debug endpoint to print or export.
type Snapshot struct {
	RunsStarted    int
	RunsByStatus   map[string]int
	LoopIterations int
	Steps          []StepSnapshot
}

// Snapshot returns a point-in-time copy of the aggregator's counters.
// Steps is sorted by step name for deterministic output across calls,
// even though the metrics themselves are never part of any canonical hash.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	byStatus := make(map[string]int, len(a.runsByStatus))
	for status, count := range a.runsByStatus {
		byStatus[status] = count
	}

	names := make([]string, 0, len(a.steps))
	for name := range a.steps {
		names = append(names, string(name))
	}
	sort.Strings(names)

	steps := make([]StepSnapshot, 0, len(names))
	for _, name := range names {
		stepName := constants.StepName(name)
		s := a.steps[stepName]
		var avg time.Duration
		if s.count > 0 {
			avg = s.totalLatency / time.Duration(s.count)
		}
		steps = append(steps, StepSnapshot{
			Step:           stepName,
			Count:          s.count,
			Failures:       s.failures,
			AverageLatency: avg,
		})
	}

	return Snapshot{
		RunsStarted:    a.runsStarted,
		RunsByStatus:   byStatus,
		LoopIterations: a.loopIterations,
		Steps:          steps,
	}
}
