package log

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	charm "github.com/charmbracelet/log"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

// Constants for log levels.
const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string (case-insensitive) to a LogLevel.
// Returns LevelInfo and false if the string is not recognized.
func ParseLevel(levelStr string) (LogLevel, bool) {
	switch strings.ToUpper(levelStr) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	default:
		return LevelInfo, false // Default to Info on parse error
	}
}

func (l LogLevel) charm() charm.Level {
	switch l {
	case LevelDebug:
		return charm.DebugLevel
	case LevelWarn:
		return charm.WarnLevel
	case LevelError:
		return charm.ErrorLevel
	case LevelFatal:
		return charm.FatalLevel
	default:
		return charm.InfoLevel
	}
}

// --- Global Logger State ---

// currentLevel mirrors the level of logger so GetLevel needs no lock.
var currentLevel atomic.Uint32

var logger = charm.NewWithOptions(os.Stderr, charm.Options{
	ReportTimestamp: true,
	TimeFormat:      "2006/01/02 15:04:05.000000",
})

func init() {
	// Default level at startup. Can be overridden by config.
	SetLevel(LevelInfo)
}

// SetLevel sets the global logging level.
func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
	logger.SetLevel(level.charm())
}

// GetLevel gets the current global logging level atomically.
func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects all log output, mainly for tests.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// SetPrefix tags every line, e.g. with the running subcommand.
func SetPrefix(prefix string) {
	logger.SetPrefix(prefix)
}

// --- Formatted ---

func Debugf(format string, v ...any) {
	logger.Debugf(format, v...)
}

func Infof(format string, v ...any) {
	logger.Infof(format, v...)
}

func Warnf(format string, v ...any) {
	logger.Warnf(format, v...)
}

func Errorf(format string, v ...any) {
	logger.Errorf(format, v...)
}

// Fatalf logs a formatted fatal message and exits the application.
func Fatalf(format string, v ...any) {
	logger.Fatalf(format, v...)
}

// --- Structured ---

// Debug logs msg with alternating key/value pairs.
func Debug(msg string, keyvals ...any) {
	logger.Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...any) {
	logger.Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...any) {
	logger.Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...any) {
	logger.Error(msg, keyvals...)
}

// Fatal logs msg and exits the application.
func Fatal(msg string, keyvals ...any) {
	logger.Fatal(msg, keyvals...)
}
