package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel orders message severities from quietest to noisiest.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger writes leveled, component-tagged lines through the standard
// logger. Components identify the emitting subsystem (service, ladder,
// http) so a single analysis run can be followed across layers.
type Logger struct {
	level     LogLevel
	component string
}

// NewLogger creates a logger at the given verbosity.
func NewLogger(level LogLevel) *Logger {
	return &Logger{level: level}
}

// NewDefaultLogger reads LOG_LEVEL (error, warn, info or debug, any
// case) and falls back to info.
func NewDefaultLogger() *Logger {
	return NewLogger(parseLevel(os.Getenv("LOG_LEVEL")))
}

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// WithComponent returns a logger that tags every line with
// component=<name>. The receiver is unchanged.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{level: l.level, component: name}
}

func (l *Logger) emit(level LogLevel, tag, format string, args ...interface{}) {
	if l.level < level {
		return
	}
	prefix := "[" + tag + "] "
	if l.component != "" {
		prefix += "component=" + l.component + " "
	}
	log.Printf(prefix+format, args...)
}

// Error logs failures that abort an operation.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit(LogLevelError, "ERROR", format, args...)
}

// Warn logs degradations the caller recovered from, such as a pipeline
// attempt falling through to the next tier.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit(LogLevelWarn, "WARN", format, args...)
}

// Info logs lifecycle events: uploads, generated pipelines, shutdown.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit(LogLevelInfo, "INFO", format, args...)
}

// Debug logs per-step detail useful when diagnosing a single dataset.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.emit(LogLevelDebug, "DEBUG", format, args...)
}

// Level returns the configured verbosity.
func (l *Logger) Level() LogLevel {
	return l.level
}

// DefaultLogger is the process-wide logger, configured from the
// environment at startup.
var DefaultLogger = NewDefaultLogger()
