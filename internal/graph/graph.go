// Package graph implements the Execution Graph (spec §4.4): the fixed,
// non-branching step order Normalize -> Decompose -> AcquireEvidence ->
// Compute -> Verify -> Synthesize -> Audit. The graph is static; the only
// thing a caller configures is which sub-range of it the Loop Controller
// repeats.
//
// Grounded on the teacher's internal/template/registry.go, which walks a
// named, ordered sequence of stages the same way.
package graph

import (
	"fmt"

	"github.com/mrz1836/reasonkernel/internal/constants"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// Graph exposes read-only navigation over the fixed step order.
type Graph struct {
	order []constants.StepName
	index map[constants.StepName]int
}

// New constructs a Graph over the canonical step order. There is never a
// reason to build a Graph with a different order; this constructor exists
// so callers depend on a Graph value rather than the package-level slice
// directly, keeping internal/loop and internal/engine decoupled from
// internal/constants.
func New() *Graph {
	order := constants.GraphOrder
	idx := make(map[constants.StepName]int, len(order))
	for i, s := range order {
		idx[s] = i
	}
	return &Graph{order: order, index: idx}
}

// First returns the first step in the graph.
func (g *Graph) First() constants.StepName {
	return g.order[0]
}

// Last returns the final step in the graph.
func (g *Graph) Last() constants.StepName {
	return g.order[len(g.order)-1]
}

// IndexOf returns the zero-based position of name in the graph, or an
// error wrapping ErrStepUnknown if name is not registered.
func (g *Graph) IndexOf(name constants.StepName) (int, error) {
	i, ok := g.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a step in the execution graph", reasonerrors.ErrStepUnknown, name)
	}
	return i, nil
}

// Next returns the step immediately following name, and ok=false if name
// is the last step in the graph (there is nothing after Audit).
func (g *Graph) Next(name constants.StepName) (next constants.StepName, ok bool) {
	i, err := g.IndexOf(name)
	if err != nil || i+1 >= len(g.order) {
		return "", false
	}
	return g.order[i+1], true
}

// Done reports whether name is the last step in the graph.
func (g *Graph) Done(name constants.StepName) bool {
	return name == g.Last()
}

// Range returns the inclusive slice of steps from start through end. Both
// must be registered steps with start at or before end in graph order;
// callers validate that invariant up front via schema.ValidateProblemSpec's
// loop-config check, so Range returns an error only as a defensive
// backstop.
func (g *Graph) Range(start, end constants.StepName) ([]constants.StepName, error) {
	startIdx, err := g.IndexOf(start)
	if err != nil {
		return nil, err
	}
	endIdx, err := g.IndexOf(end)
	if err != nil {
		return nil, err
	}
	if startIdx > endIdx {
		return nil, fmt.Errorf("%w: start step %q is after end step %q", reasonerrors.ErrLoopConfigInvalid, start, end)
	}
	return g.order[startIdx : endIdx+1], nil
}

// All returns every step in graph order.
func (g *Graph) All() []constants.StepName {
	out := make([]constants.StepName, len(g.order))
	copy(out, g.order)
	return out
}
