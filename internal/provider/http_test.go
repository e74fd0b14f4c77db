package provider_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/reasonkernel/internal/provider"
)

func TestHTTPProvider_ReturnsResponseBodyVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"answer":"42"}`))
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL, nil)
	resp, err := p.Generate(context.Background(), provider.Request{Prompt: "what is the answer"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"answer":"42"}`, string(resp))
}

func TestHTTPProvider_NonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`boom`))
	}))
	defer srv.Close()

	p := provider.NewHTTPProvider(srv.URL, nil)
	_, err := p.Generate(context.Background(), provider.Request{Prompt: "x"})
	require.Error(t, err)
}
