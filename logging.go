package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	persistentLogFile *os.File
	loggingMu         sync.Mutex
)

// setupLogger installs the default structured logger. Output goes to stdout
// and, when logPath is set, is mirrored to that file.
func setupLogger(logPath, level string) {
	loggingMu.Lock()
	defer loggingMu.Unlock()

	closeLoggerLocked()

	var out io.Writer = os.Stdout
	var openErr error
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			persistentLogFile = f
			out = io.MultiWriter(os.Stdout, f)
		}
		openErr = err
	}

	handler := slog.NewTextHandler(out, &slog.HandlerOptions{Level: parseLogLevel(level)})
	slog.SetDefault(slog.New(handler).With("app", "devopsbot"))

	switch {
	case openErr != nil:
		slog.Error("Persistent logging disabled: failed to open log file", "file", logPath, "err", openErr)
	case persistentLogFile != nil:
		slog.Info("Persistent logging enabled", "file", logPath)
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// moduleLogger tags the default logger with the component name.
func moduleLogger(name string) *slog.Logger {
	return slog.Default().With("module", name)
}

func closeLogger() {
	loggingMu.Lock()
	defer loggingMu.Unlock()
	closeLoggerLocked()
}

func closeLoggerLocked() {
	if persistentLogFile == nil {
		return
	}
	_ = persistentLogFile.Sync()
	_ = persistentLogFile.Close()
	persistentLogFile = nil
}
