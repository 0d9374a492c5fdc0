// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package logging contains the logging functionality for the Slack notifier.
package logging

import (
	"context"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	slogotel "github.com/remychantenay/slog-otel"
)

type ctxKey string

// Public constants
const (
	ErrKey = "error"
)

// Private constants
const (
	slogFields      ctxKey = "slog_fields"
	logLevelDefault        = slog.LevelDebug

	// Log levels
	debug = "debug"
	warn  = "warn"
	err   = "error"
	info  = "info"

	// Log field for errors that need a human, e.g. every channel failing.
	priorityCritical = "critical"
)

// Config controls the structured log output.
type Config struct {
	Level     string
	AddSource bool
}

type contextHandler struct {
	slog.Handler
}

// Handle adds contextual attributes to the Record before calling the underlying handler
func (h contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(slogFields).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}

	return h.Handler.Handle(ctx, r)
}

// WithAttrs keeps the context handler in front of derived handlers
func (h contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return contextHandler{h.Handler.WithAttrs(attrs)}
}

// WithGroup keeps the context handler in front of derived handlers
func (h contextHandler) WithGroup(name string) slog.Handler {
	return contextHandler{h.Handler.WithGroup(name)}
}

// AppendCtx adds an slog attribute to the provided context so that it will be
// included in any Record created with such context
func AppendCtx(parent context.Context, attr slog.Attr) context.Context {
	if parent == nil {
		parent = context.Background()
	}

	if v, ok := parent.Value(slogFields).([]slog.Attr); ok {
		// copy so sibling contexts never share a backing array
		next := make([]slog.Attr, 0, len(v)+1)
		next = append(next, v...)
		next = append(next, attr)
		return context.WithValue(parent, slogFields, next)
	}

	return context.WithValue(parent, slogFields, []slog.Attr{attr})
}

// ParseLevel maps a LOG_LEVEL value to a slog level, defaulting to debug
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case debug:
		return slog.LevelDebug
	case warn:
		return slog.LevelWarn
	case err:
		return slog.LevelError
	case info:
		return slog.LevelInfo
	default:
		return logLevelDefault
	}
}

// NewHandler builds the JSON handler chain: context attributes, then trace
// and span ids from the active OpenTelemetry span.
func NewHandler(w io.Writer, cfg Config) slog.Handler {
	logOptions := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}
	h := slog.NewJSONHandler(w, logOptions)
	return contextHandler{slogotel.OtelHandler{Next: h}}
}

// InitStructureLogConfig sets the structured log behavior
func InitStructureLogConfig(cfg Config) slog.Handler {
	h := NewHandler(os.Stdout, cfg)
	log.SetFlags(log.Llongfile)
	slog.SetDefault(slog.New(h))

	slog.Info("log config",
		"logLevel", ParseLevel(cfg.Level),
		"addSource", cfg.AddSource,
	)

	return h
}

// Priority creates a slog.Attr for error priority classification
func Priority(level string) slog.Attr {
	return slog.String("priority", level)
}

// PriorityCritical creates a slog.Attr for critical errors
// this is used to identify critical errors in the logs
// the ones that should be escalated to the team
func PriorityCritical() slog.Attr {
	return Priority(priorityCritical)
}
