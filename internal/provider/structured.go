package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mrz1836/reasonkernel/internal/canon"
	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// GenerateStructured calls p.Generate and then checks that the response
// canonicalizes cleanly (the structured-generation validator collaborator
// named in spec §6). It does not attempt full JSON Schema validation —
// that collaborator is explicitly out of core scope — but it does enforce
// the one guarantee the engine itself depends on: the response must be
// valid, duplicate-key-free JSON the canonical encoder can hash.
func GenerateStructured(ctx context.Context, p Provider, req Request) (json.RawMessage, error) {
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := canon.Encode(json.RawMessage(resp)); err != nil {
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrStructuredGenerationFailed, err)
	}
	return json.RawMessage(resp), nil
}
