// Package logger provides a file-backed log/slog logger for coppice.
//
// Commands are short-lived and their stdout/stderr belong to the user, so
// diagnostic logging goes to ~/.worktree/logs/coppice.log instead of the
// terminal. The --verbose flag raises the level to Debug.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmr-tortoise/coppice/internal/config"
)

var (
	mu       sync.Mutex
	root     *slog.Logger
	levelVar = new(slog.LevelVar)
	logFile  *os.File
	initDone bool
)

// DefaultLogPath returns the default log file path.
func DefaultLogPath() (string, error) {
	dir, err := config.LogsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coppice.log"), nil
}

// SetDebug enables or disables debug-level logging.
func SetDebug(enabled bool) {
	if enabled {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// Init initializes the logger with a custom path. If not called, the
// default path is used on first log call. Calling Init twice is a no-op.
func Init(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	return initLocked(path)
}

// initLocked opens the log file and installs the handler. Caller must
// hold mu.
func initLocked(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	logFile = f
	root = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: levelVar}))
	initDone = true
	return nil
}

// ensureInit initializes with the default path if Init was never called.
// Falls back to a discarding logger when the log file cannot be opened —
// a broken log destination should never break the command itself.
// Caller must hold mu.
func ensureInit() {
	if initDone {
		return
	}
	path, err := DefaultLogPath()
	if err == nil {
		err = initLocked(path)
	}
	if err != nil {
		root = slog.New(slog.NewTextHandler(io.Discard, nil))
		initDone = true
	}
}

// Get returns the root logger, initializing it on first use.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	ensureInit()
	return root
}

// WithComponent returns a logger tagged with a component name.
func WithComponent(name string) *slog.Logger {
	return Get().With("component", name)
}

// Close flushes and closes the underlying log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// Reset clears logger state. Intended for testing only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	root = nil
	initDone = false
	levelVar.Set(slog.LevelInfo)
}
