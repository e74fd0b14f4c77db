package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeProblemFile(t *testing.T, dir string, problem map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(problem)
	require.NoError(t, err)
	path := filepath.Join(dir, "problem.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestRunValidate_AcceptsWellFormedProblemSpec(t *testing.T) {
	dir := t.TempDir()
	path := writeProblemFile(t, dir, map[string]any{
		"version":    "1.0.0",
		"id":         "req-1",
		"created_at": "2026-01-01T00:00:00Z",
		"inputs":     map[string]any{"prompt": "hello"},
	})

	err := runValidate(context.Background(), &GlobalFlags{Output: OutputJSON}, path)
	require.NoError(t, err)
}

func TestRunValidate_RejectsMissingPrompt(t *testing.T) {
	dir := t.TempDir()
	path := writeProblemFile(t, dir, map[string]any{
		"version":    "1.0.0",
		"id":         "req-1",
		"created_at": "2026-01-01T00:00:00Z",
		"inputs":     map[string]any{},
	})

	err := runValidate(context.Background(), &GlobalFlags{Output: OutputJSON}, path)
	require.Error(t, err)
}
