package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents the available log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Logger provides a structured logger instance configured for the application
type Logger struct {
	*slog.Logger
}

// ParseLevel converts a settings string into a LogLevel, falling back to info
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l LogLevel) slogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new structured logger writing to stderr.
// Stdout is reserved for tool results and the MCP stdio transport.
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, os.Stderr)
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	return newLogger(level.slogLevel(), w)
}

func newLogger(level slog.Leveler, w io.Writer) *Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{
					Key:   "time",
					Value: slog.StringValue(a.Value.Time().Format("15:04:05")),
				}
			}
			return a
		},
	}

	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NewDefaultLogger creates a logger with INFO level for general use
func NewDefaultLogger() *Logger {
	return NewLogger(LogLevelInfo)
}

// WithComponent creates a logger with a component context for better tracing
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

// WithProject tags every record with the project directory being driven
func (l *Logger) WithProject(project string) *Logger {
	return &Logger{
		Logger: l.Logger.With("project", project),
	}
}

// InfoWithIcon logs info message with emoji for user-friendly output
func (l *Logger) InfoWithIcon(icon string, msg string, args ...any) {
	l.Info(icon+" "+msg, args...)
}

// WarnWithIcon logs warning message with emoji for user-friendly output
func (l *Logger) WarnWithIcon(icon string, msg string, args ...any) {
	l.Warn(icon+" "+msg, args...)
}

// ErrorWithIcon logs error message with emoji for user-friendly output
func (l *Logger) ErrorWithIcon(icon string, msg string, args ...any) {
	l.Error(icon+" "+msg, args...)
}

// DebugWithIcon logs debug message with emoji for development
func (l *Logger) DebugWithIcon(icon string, msg string, args ...any) {
	l.Debug(icon+" "+msg, args...)
}

// globalLevel is shared by Default and every component logger derived from it
var globalLevel = new(slog.LevelVar)

// Default logger instance - single instance for the entire application
var Default = newLogger(globalLevel, os.Stderr)

// SetGlobalLogLevel changes the level of Default and all component loggers,
// including those created before the call
func SetGlobalLogLevel(level LogLevel) {
	globalLevel.Set(level.slogLevel())
}

// NewComponentLogger creates a new logger for a specific component
func NewComponentLogger(component string) *Logger {
	return Default.WithComponent(component)
}
