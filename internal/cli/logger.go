package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mrz1836/reasonkernel/internal/config"
	"github.com/mrz1836/reasonkernel/internal/logging"
)

var zerologConfigOnce sync.Once //nolint:gochecknoglobals // one-time configuration

// logFileWriter holds the rotating log file writer so CloseLogFile can
// release it on shutdown; nil when no log file could be opened.
var logFileWriter io.WriteCloser //nolint:gochecknoglobals // needed for CloseLogFile

// Rotation settings for the CLI's global log file, mirroring the teacher's
// lumberjack-backed logger.go.
const (
	logsDirName   = "logs"
	logFileName   = "reasonkernel.log"
	logMaxSizeMB  = 50
	logMaxBackups = 5
	logMaxAgeDays = 30
)

func configureZerologGlobals() {
	zerologConfigOnce.Do(func() {
		zerolog.TimestampFieldName = "ts"
		zerolog.MessageFieldName = "event"
	})
}

// InitLogger creates a zerolog.Logger based on verbosity flags. Every byte
// written — to stderr and, when available, to the rotating log file at
// ~/.reasonkernel/logs/reasonkernel.log — is routed through
// logging.FilteringWriter, and logging.NewSensitiveDataHook flags any
// message that still matches a sensitive pattern, so a stray credential in
// a prompt, model response, or config value never reaches a persisted
// sink. If the log file cannot be opened (no home directory, permission
// denied), InitLogger falls back to console-only output rather than
// failing the command.
func InitLogger(verbose, quiet bool) zerolog.Logger {
	configureZerologGlobals()

	level := zerolog.InfoLevel
	switch {
	case verbose:
		level = zerolog.DebugLevel
	case quiet:
		level = zerolog.WarnLevel
	}

	writer := io.Writer(logging.NewFilteringWriter(os.Stderr))
	if fileWriter, err := createLogFileWriter(); err == nil {
		logFileWriter = fileWriter
		writer = zerolog.MultiLevelWriter(logging.NewFilteringWriter(os.Stderr), logging.NewFilteringWriter(fileWriter))
	}

	return zerolog.New(writer).
		Level(level).
		Hook(logging.NewSensitiveDataHook()).
		With().
		Timestamp().
		Logger()
}

// createLogFileWriter builds a rotating log file writer under
// ~/.reasonkernel/logs, grounded on the teacher's lumberjack.Logger wiring
// in internal/cli/logger.go's createLogFileWriter.
func createLogFileWriter() (io.WriteCloser, error) {
	dir, err := config.GlobalConfigDir()
	if err != nil {
		return nil, err
	}

	logDir := filepath.Join(dir, logsDirName)
	if err := os.MkdirAll(logDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   filepath.Join(logDir, logFileName),
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
		MaxAge:     logMaxAgeDays,
		Compress:   true,
	}, nil
}

// CloseLogFile closes the rotating log file writer if one was opened. Call
// during shutdown for clean cleanup; safe to call even when no log file
// was ever opened.
func CloseLogFile() {
	if logFileWriter != nil {
		_ = logFileWriter.Close()
		logFileWriter = nil
	}
}
