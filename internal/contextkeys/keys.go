// Package contextkeys provides shared context key definitions used across
// Meridian packages. This package exists to avoid circular imports between
// packages that need to read/write context values (e.g., graph and stage).
package contextkeys

import "context"

// Key is the type for all Meridian context keys.
type Key string

const (
	// ThreadID stores the checkpoint thread identifier for the active run.
	ThreadID Key = "meridian.thread_id"

	// Stage stores the name of the stage currently executing.
	Stage Key = "meridian.stage"
)

// WithThreadID returns a new context with the thread ID set.
func WithThreadID(ctx context.Context, threadID string) context.Context {
	return context.WithValue(ctx, ThreadID, threadID)
}

// GetThreadID retrieves the thread ID from context.
// Returns empty string if not set.
func GetThreadID(ctx context.Context) string {
	if v := ctx.Value(ThreadID); v != nil {
		return v.(string)
	}
	return ""
}

// WithStage returns a new context with the stage name set.
func WithStage(ctx context.Context, stage string) context.Context {
	return context.WithValue(ctx, Stage, stage)
}

// GetStage retrieves the stage name from context.
// Returns empty string if not set.
func GetStage(ctx context.Context) string {
	if v := ctx.Value(Stage); v != nil {
		return v.(string)
	}
	return ""
}
