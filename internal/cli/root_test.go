package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Help(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "test"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "enginectl")
	assert.Contains(t, output, "--output")
	assert.Contains(t, output, "run")
	assert.Contains(t, output, "replay")
	assert.Contains(t, output, "validate")
}

func TestRootCmd_Version(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "1.2.3")
	assert.Contains(t, buf.String(), "abc1234")
}

func TestRootCmd_RejectsInvalidOutputFormat(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := newRootCmd(flags, BuildInfo{})
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"--output", "xml", "validate", "--problem", "nonexistent.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}
