package contextkeys

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestThreadIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetThreadID(ctx); got != "" {
		t.Errorf("expected empty thread ID on fresh context, got %q", got)
	}

	ctx = WithThreadID(ctx, "thread-01ABC")
	if got := GetThreadID(ctx); got != "thread-01ABC" {
		t.Errorf("expected thread-01ABC, got %q", got)
	}
}

func TestStageRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := GetStage(ctx); got != "" {
		t.Errorf("expected empty stage on fresh context, got %q", got)
	}

	ctx = WithStage(ctx, "planner")
	if got := GetStage(ctx); got != "planner" {
		t.Errorf("expected planner, got %q", got)
	}
}

func TestContextHandler_Enabled(t *testing.T) {
	inner := slog.NewTextHandler(&bytes.Buffer{}, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	handler := NewContextHandler(inner)

	ctx := context.Background()

	// Should delegate to inner handler
	if !handler.Enabled(ctx, slog.LevelInfo) {
		t.Error("expected handler to be enabled for LevelInfo")
	}
	if handler.Enabled(ctx, slog.LevelDebug) {
		t.Error("expected handler to be disabled for LevelDebug (inner handler is Info level)")
	}
}

func TestContextHandler_Handle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := WithStage(WithThreadID(context.Background(), "thread-9"), "planner")
	logger.InfoContext(ctx, "classified query", "complexity", "simple")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if line["thread_id"] != "thread-9" {
		t.Errorf("expected thread_id thread-9, got %v", line["thread_id"])
	}
	if line["stage"] != "planner" {
		t.Errorf("expected stage planner, got %v", line["stage"])
	}
	if line["complexity"] != "simple" {
		t.Errorf("expected call attrs preserved, got %v", line["complexity"])
	}
}

func TestContextHandler_HandleWithoutValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Info("no run context")

	if strings.Contains(buf.String(), "thread_id") {
		t.Errorf("expected no thread_id attr, got %s", buf.String())
	}
	if strings.Contains(buf.String(), `"stage"`) {
		t.Errorf("expected no stage attr, got %s", buf.String())
	}
}

func TestContextHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewContextHandler(slog.NewJSONHandler(&buf, nil)))
	logger := base.With("component", "engine")

	ctx := WithThreadID(context.Background(), "thread-7")
	logger.InfoContext(ctx, "started")

	out := buf.String()
	for _, want := range []string{`"component":"engine"`, `"thread_id":"thread-7"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output %s", want, out)
		}
	}
}

func TestContextHandler_WithGroupEmptyName(t *testing.T) {
	handler := NewContextHandler(slog.NewTextHandler(&bytes.Buffer{}, nil))
	if handler.WithGroup("") != handler {
		t.Error("expected empty group name to return the same handler")
	}
}
