// Package provider defines the ModelProvider collaborator boundary (spec
// §6): the one suspension point steps are permitted to block on. The core
// engine never imports a concrete model SDK; it depends only on this
// interface, so replay can substitute a fixture-backed implementation that
// returns byte-identical output for byte-identical input.
//
// Grounded on the teacher's internal/ai/base.go (provider interface shape)
// and retry.go/fallback.go (decorator idiom), generalized from Atlas's
// chat-completion surface to the kernel's generate(prompt, schema) -> bytes
// contract.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// Request is the declared input to a model-provider call. Every field is
// included in the calling step's input_hash, so the same Request replayed
// against a fixture produces a byte-identical StepResult.
type Request struct {
	// Prompt is the rendered instruction text.
	Prompt string

	// Schema, when non-nil, is a JSON Schema document the provider's output
	// must validate against (spec §6, structured-generation validator).
	Schema json.RawMessage
}

// Provider is the collaborator boundary a Compute or Synthesize step calls
// through. Implementations must be safe for concurrent use: the engine
// runs single-threaded per request, but Verify fans out to multiple
// verification paths concurrently within one step, and some of those paths
// may call a Provider.
type Provider interface {
	// Generate returns the provider's raw response bytes for req, or an
	// error. A context deadline exceeded surfaces as
	// internal/errors.ErrCollaboratorTimeout; a schema violation surfaces as
	// internal/errors.ErrStructuredGenerationFailed.
	Generate(ctx context.Context, req Request) ([]byte, error)
}

// Fixture is a single deterministic (Request, response) pairing used by
// FixtureProvider. Matching is by exact Prompt equality, the simplest rule
// that still lets a replay fixture set reproduce a prior run byte-for-byte.
type Fixture struct {
	Prompt   string
	Response []byte
}

// FixtureProvider implements Provider by replaying a fixed table of
// responses. It never performs I/O, making it the provider the engine uses
// under replay and in tests: deterministic by construction, per spec §6's
// "deterministic under replay when a fixture is supplied".
type FixtureProvider struct {
	fixtures map[string][]byte
}

// NewFixtureProvider builds a FixtureProvider from fixtures. Duplicate
// prompts are an authoring error in the fixture set; the last one wins,
// matching how a caller would expect a corrected fixture file to behave.
func NewFixtureProvider(fixtures []Fixture) *FixtureProvider {
	m := make(map[string][]byte, len(fixtures))
	for _, f := range fixtures {
		m[f.Prompt] = f.Response
	}
	return &FixtureProvider{fixtures: m}
}

// Generate implements Provider.
func (p *FixtureProvider) Generate(_ context.Context, req Request) ([]byte, error) {
	resp, ok := p.fixtures[req.Prompt]
	if !ok {
		return nil, fmt.Errorf("no fixture registered for prompt %q", req.Prompt)
	}
	return resp, nil
}

var _ Provider = (*FixtureProvider)(nil)
