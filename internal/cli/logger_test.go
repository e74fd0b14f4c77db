package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitLogger_LogLevelPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	tests := []struct {
		name          string
		verbose       bool
		quiet         bool
		expectedLevel zerolog.Level
	}{
		{"default is info level", false, false, zerolog.InfoLevel},
		{"verbose wins over default", true, false, zerolog.DebugLevel},
		{"quiet applies when not verbose", false, true, zerolog.WarnLevel},
		{"verbose takes precedence over quiet", true, true, zerolog.DebugLevel},
	}

	for _, tc := range tests {
		logger := InitLogger(tc.verbose, tc.quiet)
		assert.Equal(t, tc.expectedLevel, logger.GetLevel())
	}
	CloseLogFile()
}

func TestInitLogger_RedactsSensitiveDataInLogFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	logger := InitLogger(false, false)
	logger.Info().Msg(`connecting with api_key="TESTONLYlongenoughsecretvalue1234"`)
	CloseLogFile()

	data, err := os.ReadFile(filepath.Join(dir, ".reasonkernel", "logs", "reasonkernel.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "[REDACTED]")
	assert.NotContains(t, string(data), "TESTONLYlongenoughsecretvalue1234")
}

func TestCreateLogFileWriter_CreatesRotatingFileUnderHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	w, err := createLogFileWriter()
	require.NoError(t, err)
	require.NotNil(t, w)

	_, err = w.Write([]byte("line\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, statErr := os.Stat(filepath.Join(dir, ".reasonkernel", "logs", "reasonkernel.log"))
	assert.NoError(t, statErr)
}

func TestCloseLogFile_SafeWhenNoFileOpened(t *testing.T) {
	logFileWriter = nil
	assert.NotPanics(t, CloseLogFile)
}
