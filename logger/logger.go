// Package logger defines the logging interface used throughout go-usmu,
// so the driver can be wired into whatever logging framework the host
// application uses.
//
// The default implementation is built on log/slog with a human-readable
// console handler in development and JSON output otherwise.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are voluminous (every wire line is logged) and are
	// usually disabled in production.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs flag potential issues.
	WarnLevel
	// ErrorLevel logs are high-priority failures.
	ErrorLevel
)

// Logger is a leveled, structured logger with key-value pairs.
type Logger interface {
	// Debug logs a message at DebugLevel with the given key-value pairs.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel with the given key-value pairs.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel with the given key-value pairs.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel with the given key-value pairs.
	Error(msg string, keysAndValues ...any)
	// With creates a child logger with additional structured context.
	With(keysAndValues ...any) Logger
	// Level returns the minimum enabled level.
	Level() Level
	// SetLevel sets the minimum enabled level.
	SetLevel(level Level)
}

var defLogger = NewSlog(InfoLevel, false)

// GetLogger returns the package default logger.
func GetLogger() Logger { return defLogger }

// Debug logs to the package default logger at DebugLevel.
func Debug(msg string, keysAndValues ...any) { defLogger.Debug(msg, keysAndValues...) }

// Info logs to the package default logger at InfoLevel.
func Info(msg string, keysAndValues ...any) { defLogger.Info(msg, keysAndValues...) }

// Warn logs to the package default logger at WarnLevel.
func Warn(msg string, keysAndValues ...any) { defLogger.Warn(msg, keysAndValues...) }

// Error logs to the package default logger at ErrorLevel.
func Error(msg string, keysAndValues ...any) { defLogger.Error(msg, keysAndValues...) }

// SetLevel sets the minimum enabled level of the package default logger.
func SetLevel(level Level) { defLogger.SetLevel(level) }
