// Package logging provides line-oriented logging for taskbot.
// Lines go to <dir>/taskbot.log when a directory is configured, otherwise to
// the fallback writer (stderr in production).
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

// FileName is the log file created inside the log directory.
const FileName = "taskbot.log"

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Logger writes categorized lines attributed to a user or to "global".
// Fields are ordered to minimize memory padding.
type Logger struct {
	fallback io.Writer
	file     *os.File
	now      func() time.Time
	dir      string
	mu       sync.Mutex
	level    slog.Level
}

// New creates a new Logger writing to dir, or to fallback when dir is empty.
// A nil fallback discards lines when no directory is set.
func New(dir string, level slog.Level, fallback io.Writer) *Logger {
	if fallback == nil {
		fallback = io.Discard
	}
	return &Logger{
		fallback: fallback,
		now:      time.Now,
		dir:      dir,
		level:    level,
	}
}

// ParseLevel parses a log level string into slog.Level.
func ParseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Path returns the log file path, or "" when logging to the fallback writer.
func (l *Logger) Path() string {
	if l.dir == "" {
		return ""
	}
	return filepath.Join(l.dir, FileName)
}

// writer returns the destination for log lines. Caller must hold l.mu.
func (l *Logger) writer() io.Writer {
	if l.dir == "" {
		return l.fallback
	}
	if l.file != nil {
		return l.file
	}

	if err := os.MkdirAll(l.dir, 0o750); err != nil {
		return l.fallback
	}
	f, err := os.OpenFile(l.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return l.fallback
	}
	l.file = f
	return f
}

// Close closes the log file if one is open.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// formatLog formats a log entry.
// Format: [2025-09-11 10:00:00] [INFO] [U1234] [category] message
func formatLog(t time.Time, level slog.Level, userID, category, msg string) string {
	who := userID
	if who == "" {
		who = "global"
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		who,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch level {
	case slog.LevelDebug:
		return "DEBUG"
	case slog.LevelInfo:
		return "INFO"
	case slog.LevelWarn:
		return "WARN"
	case slog.LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func (l *Logger) log(level slog.Level, userID, category, msg string) {
	if level < l.level {
		return // Skip if below minimum level
	}

	entry := formatLog(l.now(), level, userID, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.writer(), entry)
}

// Info logs an info message.
func (l *Logger) Info(userID, category, msg string) {
	l.log(slog.LevelInfo, userID, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(userID, category, msg string) {
	l.log(slog.LevelDebug, userID, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(userID, category, msg string) {
	l.log(slog.LevelWarn, userID, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(userID, category, msg string) {
	l.log(slog.LevelError, userID, category, msg)
}
