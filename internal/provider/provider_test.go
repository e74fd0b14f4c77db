package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/provider"
)

func TestFixtureProvider_ReturnsRegisteredResponse(t *testing.T) {
	p := provider.NewFixtureProvider([]provider.Fixture{
		{Prompt: "hello", Response: []byte(`{"ok":true}`)},
	})
	resp, err := p.Generate(context.Background(), provider.Request{Prompt: "hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp))
}

func TestFixtureProvider_UnknownPromptErrors(t *testing.T) {
	p := provider.NewFixtureProvider(nil)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "unknown"})
	require.Error(t, err)
}

type failingProvider struct {
	calls int
	err   error
}

func (f *failingProvider) Generate(_ context.Context, _ provider.Request) ([]byte, error) {
	f.calls++
	return nil, f.err
}

func TestRetryingProvider_RetriesUpToMaxAttempts(t *testing.T) {
	inner := &failingProvider{err: errors.New("transient")}
	rp := provider.NewRetryingProvider(inner, provider.WithMaxAttempts(2))

	_, err := rp.Generate(context.Background(), provider.Request{Prompt: "x"})
	require.Error(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestGenerateStructured_RejectsInvalidJSON(t *testing.T) {
	p := provider.NewFixtureProvider([]provider.Fixture{
		{Prompt: "bad", Response: []byte(`not json`)},
	})
	_, err := provider.GenerateStructured(context.Background(), p, provider.Request{Prompt: "bad"})
	require.Error(t, err)
}

func TestGenerateStructured_AcceptsValidJSON(t *testing.T) {
	p := provider.NewFixtureProvider([]provider.Fixture{
		{Prompt: "good", Response: []byte(`{"a":1}`)},
	})
	out, err := provider.GenerateStructured(context.Background(), p, provider.Request{Prompt: "good"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))
}
