package contextkeys

import (
	"context"
	"log/slog"
)

// ContextHandler is an slog.Handler that stamps run-scoped context values
// (thread ID, stage) onto every record before delegating to an inner
// handler. Loggers built on it correlate engine and stage log lines
// without threading identifiers through every call site.
type ContextHandler struct {
	inner slog.Handler
}

// NewContextHandler creates a handler that wraps inner.
func NewContextHandler(inner slog.Handler) *ContextHandler {
	return &ContextHandler{inner: inner}
}

// Enabled reports whether the handler handles records at the given level.
// This delegates to the inner handler to maintain its behavior.
func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle adds thread_id and stage attributes from the context, when
// present, and passes the record through to the inner handler.
func (h *ContextHandler) Handle(ctx context.Context, record slog.Record) error {
	var attrs []slog.Attr
	if threadID := GetThreadID(ctx); threadID != "" {
		attrs = append(attrs, slog.String("thread_id", threadID))
	}
	if stage := GetStage(ctx); stage != "" {
		attrs = append(attrs, slog.String("stage", stage))
	}
	if len(attrs) == 0 {
		return h.inner.Handle(ctx, record)
	}

	// Clone so the added attributes never leak into a record shared with
	// other handlers.
	rec := record.Clone()
	rec.AddAttrs(attrs...)
	return h.inner.Handle(ctx, rec)
}

// WithAttrs returns a new handler with additional attributes.
// This is required by slog.Handler interface to support logger.With().
func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{inner: h.inner.WithAttrs(attrs)}
}

// WithGroup returns a new handler with a group name.
func (h *ContextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ContextHandler{inner: h.inner.WithGroup(name)}
}

// Ensure ContextHandler implements slog.Handler at compile time
var _ slog.Handler = (*ContextHandler)(nil)
