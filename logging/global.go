// Package logging wraps slog with a console handler, weekly rotating log
// files and an HTTP request logging middleware.
package logging

import (
	"log/slog"
	"os"
	"sync"
)

type LoggingService struct {
	Logger   *slog.Logger
	rotating *RotatingLogger
}

var (
	DefaultLoggingService *LoggingService
	mu                    sync.Mutex
)

// InitLogger initializes the global logger. An empty logDir logs to the
// console only.
func InitLogger(logDir string) {
	InitLoggerWithOptions(Options{LogDir: logDir})
}

// InitLoggerWithOptions initializes the global logger and makes it the slog default
func InitLoggerWithOptions(opts Options) {
	logger, rotating := SetupLogger(opts)

	mu.Lock()
	previous := DefaultLoggingService
	DefaultLoggingService = &LoggingService{Logger: logger, rotating: rotating}
	mu.Unlock()

	if previous != nil && previous.rotating != nil {
		_ = previous.rotating.Close()
	}
	slog.SetDefault(logger)
}

// Close flushes and closes the rotating log file, if any
func Close() error {
	mu.Lock()
	svc := DefaultLoggingService
	mu.Unlock()

	if svc == nil || svc.rotating == nil {
		return nil
	}
	return svc.rotating.Close()
}

func current() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return nil
	}
	return DefaultLoggingService.Logger
}

func fallback(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package-level functions for direct access

func Info(msg string, args ...any) {
	if l := current(); l != nil {
		l.Info(msg, args...)
		return
	}
	fallback(slog.LevelInfo).Info(msg, args...)
}

func Error(msg string, args ...any) {
	if l := current(); l != nil {
		l.Error(msg, args...)
		return
	}
	fallback(slog.LevelError).Error(msg, args...)
}

func Warn(msg string, args ...any) {
	if l := current(); l != nil {
		l.Warn(msg, args...)
		return
	}
	fallback(slog.LevelWarn).Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	if l := current(); l != nil {
		l.Debug(msg, args...)
		return
	}
	fallback(slog.LevelDebug).Debug(msg, args...)
}
