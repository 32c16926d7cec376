// Package logger is the process-wide structured logger. Call Initialize once
// at startup; until then every helper is a no-op.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelAlways is logged regardless of the configured level
const LevelAlways = slog.Level(12)

var (
	mu      sync.RWMutex
	logger  *slog.Logger
	logFile *lumberjack.Logger
)

// Initialize sets up the logger with the provided configuration
func Initialize(config Config) error {
	level := parseLogLevel(config.Level)
	var handlers []slog.Handler

	if config.ConsoleEnabled {
		handlers = append(handlers, newHandler(os.Stdout, config.ConsoleFormat, level))
	}

	var file *lumberjack.Logger
	if config.FileEnabled {
		if config.FilePath == "" {
			return fmt.Errorf("file logging enabled without a file path")
		}
		file = &lumberjack.Logger{
			Filename:   config.FilePath,
			MaxSize:    config.FileMaxSizeMB,
			MaxBackups: config.FileMaxBackups,
			MaxAge:     config.FileMaxAgeDays,
			Compress:   config.FileCompress,
		}
		handlers = append(handlers, newHandler(file, config.FileFormat, level))
	}

	if len(handlers) == 0 {
		handlers = append(handlers, newHandler(os.Stdout, "text", level))
	}

	var l *slog.Logger
	if len(handlers) == 1 {
		l = slog.New(handlers[0])
	} else {
		l = slog.New(newMultiHandler(handlers...))
	}

	mu.Lock()
	old := logFile
	logger, logFile = l, file
	mu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

// SetOutput routes all logging to w. Used by tests and tools.
func SetOutput(w io.Writer, format string, level string) {
	mu.Lock()
	defer mu.Unlock()
	logger = slog.New(newHandler(w, format, parseLogLevel(level)))
}

// Close flushes and closes the rotating log file, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// With returns a child logger carrying args on every record. It never
// returns nil: before Initialize it discards everything.
func With(args ...any) *slog.Logger {
	if l := current(); l != nil {
		return l.With(args...)
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func current() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func newHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceLevel}
	if strings.EqualFold(format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// replaceLevel prints LevelAlways as ALWAYS instead of ERROR+4
func replaceLevel(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelAlways {
			a.Value = slog.StringValue("ALWAYS")
		}
	}
	return a
}

// parseLogLevel converts a string log level to slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARNING", "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func log(level slog.Level, msg string, args ...any) {
	if l := current(); l != nil {
		l.Log(context.Background(), level, msg, args...)
	}
}

// Debug logs a debug message
func Debug(msg string, args ...any) { log(slog.LevelDebug, msg, args...) }

// Debugf logs a formatted debug message
func Debugf(format string, args ...any) { Debug(fmt.Sprintf(format, args...)) }

// Info logs an info message
func Info(msg string, args ...any) { log(slog.LevelInfo, msg, args...) }

// Infof logs a formatted info message
func Infof(format string, args ...any) { Info(fmt.Sprintf(format, args...)) }

// Warning logs a warning message
func Warning(msg string, args ...any) { log(slog.LevelWarn, msg, args...) }

// Warningf logs a formatted warning message
func Warningf(format string, args ...any) { Warning(fmt.Sprintf(format, args...)) }

// Error logs an error message
func Error(msg string, args ...any) { log(slog.LevelError, msg, args...) }

// Errorf logs a formatted error message
func Errorf(format string, args ...any) { Error(fmt.Sprintf(format, args...)) }

// Always logs a message that bypasses level filtering. Used for the
// permanent-loss audit trail (deaths, destroyed gear).
func Always(msg string, args ...any) { log(LevelAlways, msg, args...) }

// Alwaysf logs a formatted message that bypasses log level filtering
func Alwaysf(format string, args ...any) { Always(fmt.Sprintf(format, args...)) }
