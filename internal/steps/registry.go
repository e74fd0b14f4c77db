// Package steps implements the Step Registry (spec §4.4): the fixed set of
// registered step functions Normalize, Decompose, AcquireEvidence, Compute,
// Verify, Synthesize, and Audit, plus the thread-safe registry that maps a
// step name to its implementation.
//
// Grounded on the teacher's internal/template/registry.go (RWMutex-guarded
// name->entry registry) and internal/ai/base.go/retry.go/fallback.go (the
// provider-calling step shape used here by Compute and Synthesize).
package steps

import (
	"context"
	"fmt"
	"sync"

	"github.com/mrz1836/reasonkernel/internal/clock"
	"github.com/mrz1836/reasonkernel/internal/constants"
	"github.com/mrz1836/reasonkernel/internal/domain"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
	"github.com/mrz1836/reasonkernel/internal/provider"
)

// Dependencies bundles the collaborators a step function may consult.
// Every field is optional except Clock; a step whose Dependencies.Provider
// is nil but that needs one fails with ErrCollaboratorTimeout rather than
// panicking, since a missing collaborator is a configuration error the
// engine should surface as a step failure, not a crash.
type Dependencies struct {
	Clock    clock.Clock
	Provider provider.Provider
}

// Func is a registered step implementation. It derives its output solely
// from state and deps (spec §4.4: "derive all outputs solely from the
// provided state and configuration") and never mutates state; the State
// Manager is the only component allowed to produce a new ReasoningState.
type Func func(ctx context.Context, state domain.ReasoningState, deps Dependencies) domain.StepResult

// Registry is a thread-safe name -> Func map. Safe for concurrent Get
// calls; Register is expected to happen once at startup, guarded by the
// same RWMutex for simplicity rather than assuming a single-writer phase.
type Registry struct {
	mu    sync.RWMutex
	funcs map[constants.StepName]Func
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[constants.StepName]Func)}
}

// Register binds name to fn, overwriting any prior registration. Intended
// for startup wiring and tests; the engine runner never calls it mid-run.
func (r *Registry) Register(name constants.StepName, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[name] = fn
}

// Get returns the Func registered for name, or ErrStepUnknown.
func (r *Registry) Get(name constants.StepName) (Func, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.funcs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no registered step function", reasonerrors.ErrStepUnknown, name)
	}
	return fn, nil
}

// NewDefaultRegistry builds a Registry with the seven built-in steps bound
// to their canonical names, the registry the engine runner uses unless a
// caller supplies its own (e.g. a test double for one step).
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(constants.StepNormalize, Normalize)
	r.Register(constants.StepDecompose, Decompose)
	r.Register(constants.StepAcquireEvidence, AcquireEvidence)
	r.Register(constants.StepCompute, Compute)
	r.Register(constants.StepVerify, Verify)
	r.Register(constants.StepSynthesize, Synthesize)
	r.Register(constants.StepAudit, Audit)
	return r
}
