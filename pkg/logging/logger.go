// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging provides structured logging for Aleutian components.
//
// The package wraps Go's standard library slog with conventions shared
// across Aleutian tools:
//
//   - Default: stderr output for CLI compatibility (follows Unix conventions)
//   - Optional: JSON output for machine processing
//   - A "service" attribute identifying the emitting component
//
// Basic usage:
//
//	logger := logging.Default()
//	logger.Info("search started", "run_id", runID)
//	logger.Error("search failed", "error", err)
//
// Child loggers carry additional attributes:
//
//	searchLog := logger.With("run_id", runID)
//	searchLog.Debug("expanding node", "depth", depth)
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level represents log severity. Levels follow the slog convention
// and are ordered Debug < Info < Warn < Error; setting a minimum
// level filters out everything below it.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota - 1

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for error conditions the system survives.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures Logger behavior. The zero value writes Info+
// messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level. Default: LevelInfo.
	Level Level

	// Service identifies the component generating logs; when set it
	// is attached to every entry as the "service" attribute.
	Service string

	// JSON switches output to machine-parseable JSON objects.
	JSON bool

	// Quiet discards all output. Useful for tests and embedding.
	Quiet bool

	// Output overrides the destination writer. Default: stderr.
	Output io.Writer
}

// Logger provides structured logging. It is a thin wrapper over
// slog.Logger and is safe for concurrent use.
type Logger struct {
	slog *slog.Logger
}

// New creates a logger from config.
func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	if cfg.Quiet {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{Level: cfg.Level.toSlogLevel()}
	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	if cfg.Service != "" {
		logger = logger.With("service", cfg.Service)
	}
	return &Logger{slog: logger}
}

// Default returns a logger with default configuration: Info level,
// stderr, text format.
func Default() *Logger {
	return New(Config{})
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(Config{Quiet: true})
}

// With returns a child logger that includes the given key-value
// attributes in every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Debug logs at debug level with optional key-value attributes.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs at info level with optional key-value attributes.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at warn level with optional key-value attributes.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs at error level with optional key-value attributes.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}
