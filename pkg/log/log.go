// Package log is the process-wide structured logger. Records go to stderr so the
// markdown report on stdout stays clean.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the verbosity of logging
type LogLevel string

const (
	// LevelDebug enables all logs, including every container command
	LevelDebug LogLevel = "debug"
	// LevelInfo enables info, warning, and error logs
	LevelInfo LogLevel = "info"
	// LevelProgress reports per-target progress (default)
	LevelProgress LogLevel = "progress"
	// LevelMinimal enables only warning and error logs
	LevelMinimal LogLevel = "minimal"
	// LevelWarn is an alias for minimal
	LevelWarn LogLevel = "warn"
	// LevelError enables only error logs
	LevelError LogLevel = "error"
)

var (
	globalLogger *zap.SugaredLogger
	globalMutex  sync.RWMutex
)

// Config holds logger configuration
type Config struct {
	Level LogLevel
	// Output defaults to os.Stderr.
	Output io.Writer
}

// DefaultConfig returns the default logger configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelProgress,
		Output: os.Stderr,
	}
}

// ParseLevel validates a user-supplied level name.
func ParseLevel(s string) (LogLevel, error) {
	switch level := LogLevel(strings.ToLower(strings.TrimSpace(s))); level {
	case "":
		return LevelProgress, nil
	case LevelDebug, LevelInfo, LevelProgress, LevelMinimal, LevelWarn, LevelError:
		return level, nil
	default:
		return "", fmt.Errorf("invalid log level %q; must be one of: debug, info, progress, minimal, warn, error", s)
	}
}

// Init installs a global logger built from cfg.
func Init(cfg Config) error {
	if _, err := ParseLevel(string(cfg.Level)); err != nil {
		return err
	}
	logger := newLogger(cfg)

	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = logger
	return nil
}

func mapLevelToZapLevel(level LogLevel) zapcore.Level {
	switch level {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo, LevelProgress:
		return zapcore.InfoLevel
	case LevelMinimal, LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func buildEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		StacktraceKey:  zapcore.OmitKey,
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

func newLogger(cfg Config) *zap.SugaredLogger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(buildEncoderConfig()),
		zapcore.AddSync(out),
		mapLevelToZapLevel(cfg.Level),
	)
	return zap.New(core).Named("toolscan").Sugar()
}

// Get returns the global logger, creating a default one on first use.
func Get() *zap.SugaredLogger {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()
	if logger != nil {
		return logger
	}

	created := newLogger(DefaultConfig())

	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger == nil {
		globalLogger = created
	}
	return globalLogger
}

// Debug logs a debug message with key/value pairs
func Debug(msg string, args ...interface{}) {
	Get().Debugw(msg, args...)
}

// Info logs an info message with key/value pairs
func Info(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Progress logs a progress message (maps to Info level)
func Progress(msg string, args ...interface{}) {
	Get().Infow(msg, args...)
}

// Warn logs a warning message with key/value pairs
func Warn(msg string, args ...interface{}) {
	Get().Warnw(msg, args...)
}

// Error logs an error message with key/value pairs
func Error(msg string, args ...interface{}) {
	Get().Errorw(msg, args...)
}

// With returns a logger with additional fields
func With(args ...interface{}) *zap.SugaredLogger {
	return Get().With(args...)
}

// Sync flushes any buffered log entries
func Sync() error {
	globalMutex.RLock()
	logger := globalLogger
	globalMutex.RUnlock()
	if logger != nil {
		return logger.Sync()
	}
	return nil
}

// Reset drops the global logger (mainly for testing)
func Reset() {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalLogger != nil {
		_ = globalLogger.Sync()
	}
	globalLogger = nil
}
