package main

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// logger is the shared sink. Before setupLogs runs (and in tests) it only
// emits errors to stderr.
var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
	Level(zerolog.ErrorLevel).
	With().Timestamp().Logger()

// minLevelWriter filters a writer to a minimum level, so the same event
// stream can feed the console (errors), the run log (info) and the debug
// file at once.
type minLevelWriter struct {
	w   io.Writer
	min zerolog.Level
}

func (lw minLevelWriter) Write(p []byte) (int, error) {
	return lw.w.Write(p)
}

func (lw minLevelWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < lw.min {
		return len(p), nil
	}
	return lw.w.Write(p)
}

// setupLogs wires the error console, the timestamped run log and, with
// debug enabled, an extra .debug file under logDir.
func setupLogs(logDir string, debug bool) error {
	if logDir == "" || !pathExists(logDir) {
		logDir = "."
	}
	stamp := time.Now().Format(LogStampLayout)

	runLog, err := os.OpenFile(
		filepath.Join(logDir, AppName+"_"+stamp+".log"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, FilePerms)
	if err != nil {
		return err
	}

	writers := []io.Writer{
		minLevelWriter{zerolog.ConsoleWriter{Out: os.Stderr}, zerolog.ErrorLevel},
		minLevelWriter{runLog, zerolog.InfoLevel},
	}

	if debug {
		debugLog, err := os.OpenFile(
			filepath.Join(logDir, AppName+"_"+stamp+".debug"),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY, FilePerms)
		if err != nil {
			return err
		}
		writers = append(writers, minLevelWriter{debugLog, zerolog.DebugLevel})
	}

	logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(zerolog.DebugLevel).
		With().Timestamp().Logger()

	return nil
}
