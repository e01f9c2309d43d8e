// Package logger provides the leveled diagnostic log used by tuxmole.
//
// It is separate from the cleaning event stream: events describe what a run
// did for the user, while this log records why something was skipped. Output
// is prefixed with [HH:MM:SS] timestamps and is safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Log level constants for filtering
const (
	levelDebug int = iota
	levelInfo
	levelWarn
	levelError
)

// Logger writes leveled messages to a writer.
// A nil *Logger discards everything, so callers never need to guard.
type Logger struct {
	writer      io.Writer
	level       int
	mutex       sync.Mutex
	colorOutput bool
	now         func() time.Time
}

// New creates a Logger that writes to w.
// Valid levels: debug, info, warn, error (case-insensitive); anything else
// falls back to info. Color is enabled for terminal stdout/stderr.
func New(w io.Writer, level string) *Logger {
	return &Logger{
		writer:      w,
		level:       levelToInt(NormalizeLevel(level)),
		colorOutput: isTerminal(w),
		now:         time.Now,
	}
}

// Discard returns a Logger that drops every message.
func Discard() *Logger {
	return New(io.Discard, "error")
}

func isTerminal(w io.Writer) bool {
	if w == os.Stdout || w == os.Stderr {
		// fatih/color already honours NO_COLOR and non-TTY output
		return !color.NoColor
	}
	return false
}

// NormalizeLevel lowercases level and validates it, defaulting to "info".
func NormalizeLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func levelToInt(level string) int {
	switch level {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(levelDebug, "DEBUG", format, args...)
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(levelInfo, "INFO", format, args...)
}

// Warnf logs a warn-level message.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(levelWarn, "WARN", format, args...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(levelError, "ERROR", format, args...)
}

func (l *Logger) logf(level int, label, format string, args ...any) {
	if l == nil || l.writer == nil || level < l.level {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	tag := "[" + label + "]"
	if l.colorOutput {
		tag = levelColor(level).Sprint(tag)
	}
	ts := l.now().Format("15:04:05")
	fmt.Fprintf(l.writer, "[%s] %s %s\n", ts, tag, fmt.Sprintf(format, args...))
}

func levelColor(level int) *color.Color {
	switch level {
	case levelDebug:
		return color.New(color.FgHiBlack)
	case levelWarn:
		return color.New(color.FgYellow)
	case levelError:
		return color.New(color.FgRed)
	default:
		return color.New(color.FgCyan)
	}
}
