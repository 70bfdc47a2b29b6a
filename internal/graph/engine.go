package graph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/meridian-ai/meridian/internal/contextkeys"
	"github.com/meridian-ai/meridian/internal/state"
	"github.com/meridian-ai/meridian/internal/types"
)

// DefaultMaxSteps bounds stage executions per run. The deepest path
// through the report graph is around a dozen stages even with every
// revision taken, so the default leaves generous headroom while still
// catching routing loops.
const DefaultMaxSteps = 25

// Engine executes a Graph over checkpointed threads.
type Engine struct {
	graph    *Graph
	store    checkpoint.Store
	emitter  Emitter
	logger   *slog.Logger
	tracer   trace.Tracer
	maxSteps int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger for engine operations.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer enables OpenTelemetry tracing of runs and stages.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithEmitter sets the event emitter runs publish to.
func WithEmitter(emitter Emitter) EngineOption {
	return func(e *Engine) {
		if emitter != nil {
			e.emitter = emitter
		}
	}
}

// WithMaxSteps overrides the per-run stage execution limit.
func WithMaxSteps(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// NewEngine creates an engine for the given graph. A nil store falls
// back to an in-memory checkpoint store. Events go to a DefaultEmitter
// unless overridden, so Stream works out of the box.
func NewEngine(g *Graph, store checkpoint.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		graph:    g,
		store:    store,
		emitter:  NewDefaultEmitter(),
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
	}
	if e.store == nil {
		e.store = checkpoint.NewMemoryStore()
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the checkpoint store backing the engine.
func (e *Engine) Store() checkpoint.Store { return e.store }

// Graph returns the graph the engine executes.
func (e *Engine) Graph() *Graph { return e.graph }

// Run starts a fresh run on the given thread from the graph entry.
// The thread must not already have a checkpoint. When the graph
// suspends at an interrupt stage the returned result has status
// suspended and the thread can be continued with Resume.
func (e *Engine) Run(ctx context.Context, threadID string, initial state.State) (*Result, error) {
	started := time.Now()
	ctx = contextkeys.WithThreadID(ctx, threadID)
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "graph.run",
			trace.WithAttributes(
				attribute.String("graph.name", e.graph.name),
				attribute.String("thread.id", threadID),
			))
		defer span.End()
	}

	if _, err := e.store.Load(ctx, threadID); err == nil {
		exists := types.NewError(types.GRAPH_THREAD_EXISTS,
			fmt.Sprintf("thread %q already has a run, use resume instead", threadID))
		return e.fail(ctx, failFrame{threadID: threadID, state: initial, started: started}, exists)
	} else if !checkpoint.IsNotFound(err) {
		return e.fail(ctx, failFrame{threadID: threadID, state: initial, started: started}, err)
	}

	e.logger.InfoContext(ctx, "Starting run",
		"graph", e.graph.name,
		"entry", e.graph.entry)
	e.emitter.Emit(ctx, NewRunStartedEvent(threadID, initial.Query))

	snap := checkpoint.New(threadID, initial, []string{e.graph.entry})
	if err := e.store.Save(ctx, snap); err != nil {
		return e.fail(ctx, failFrame{threadID: threadID, state: initial, started: started}, err)
	}
	return e.execute(ctx, snap, started, false)
}

// Resume continues a suspended thread by executing its pending stage
// and running forward from there. Resuming a thread that is not
// suspended is an error, as is resuming an unknown thread.
func (e *Engine) Resume(ctx context.Context, threadID string) (*Result, error) {
	started := time.Now()
	ctx = contextkeys.WithThreadID(ctx, threadID)
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "graph.resume",
			trace.WithAttributes(
				attribute.String("graph.name", e.graph.name),
				attribute.String("thread.id", threadID),
			))
		defer span.End()
	}

	snap, err := e.store.Load(ctx, threadID)
	if err != nil {
		return e.fail(ctx, failFrame{threadID: threadID, started: started}, err)
	}
	if !snap.Suspended() {
		notSuspended := types.NewError(types.GRAPH_NOT_SUSPENDED,
			fmt.Sprintf("thread %q has no pending stage to resume", threadID))
		return e.fail(ctx, failFrame{threadID: threadID, state: snap.State, started: started}, notSuspended)
	}

	pending := snap.Pending[0]
	e.logger.InfoContext(ctx, "Resuming run",
		"graph", e.graph.name,
		"pending", pending,
		"version", snap.Version)
	e.emitter.Emit(ctx, NewRunResumedEvent(threadID, pending))

	return e.execute(ctx, snap, started, true)
}

// Stream starts a fresh run in the background and returns a channel of
// its lifecycle events. The channel closes once the run reaches a
// terminal event or the context is cancelled. The run outcome itself is
// carried by the final event; use the checkpoint store to read state.
func (e *Engine) Stream(ctx context.Context, threadID string, initial state.State) <-chan Event {
	return e.stream(ctx, threadID, func(runCtx context.Context) {
		// Errors surface through the run.failed event.
		_, _ = e.Run(runCtx, threadID, initial)
	})
}

// StreamResume is Stream for a suspended thread.
func (e *Engine) StreamResume(ctx context.Context, threadID string) <-chan Event {
	return e.stream(ctx, threadID, func(runCtx context.Context) {
		_, _ = e.Resume(runCtx, threadID)
	})
}

// stream subscribes before launching the run so no event is missed,
// then forwards events for the thread until a terminal one arrives.
func (e *Engine) stream(ctx context.Context, threadID string, run func(context.Context)) <-chan Event {
	sub, cleanup := e.emitter.Subscribe(ctx)
	out := make(chan Event, 16)

	go run(ctx)
	go func() {
		defer close(out)
		defer cleanup()
		for {
			select {
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if ev.ThreadID != threadID {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
				if ev.Terminal() {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// execute drives the run loop from the snapshot's pending stage. Every
// error path goes through fail so subscribers always see a terminal
// event. The snapshot already records the state with the pending stage,
// so suspension never needs an extra save.
func (e *Engine) execute(ctx context.Context, snap *checkpoint.Snapshot, started time.Time, resumed bool) (*Result, error) {
	threadID := snap.ThreadID
	st := snap.State.Clone()
	current := snap.Pending[0]
	visited := make([]string, 0, 8)
	steps := 0

	frame := func() failFrame {
		return failFrame{
			threadID: threadID,
			stage:    current,
			state:    st,
			visited:  visited,
			steps:    steps,
			started:  started,
		}
	}

	for current != End {
		if err := ctx.Err(); err != nil {
			return e.fail(ctx, frame(), err)
		}
		if steps >= e.maxSteps {
			err := types.NewError(types.GRAPH_MAX_STEPS,
				fmt.Sprintf("run exceeded %d steps at stage %q", e.maxSteps, current))
			return e.fail(ctx, frame(), err)
		}

		// A fresh run suspends in front of interrupt stages. A resumed
		// run executes its pending stage even when that stage is the
		// interrupt, then gates normally on any later one.
		if e.graph.InterruptsBefore(current) && !(resumed && steps == 0) {
			e.logger.InfoContext(ctx, "Run suspended",
				"pending", current,
				"version", snap.Version)
			e.emitter.Emit(ctx, NewRunSuspendedEvent(threadID, current))
			return &Result{
				ThreadID:  threadID,
				Status:    StatusSuspended,
				State:     st,
				NextStage: current,
				Visited:   visited,
				Steps:     steps,
				StartedAt: started,
				Duration:  time.Since(started),
			}, nil
		}

		stage, ok := e.graph.stage(current)
		if !ok {
			err := types.NewError(types.GRAPH_STAGE_NOT_FOUND,
				fmt.Sprintf("stage %q is not registered", current))
			return e.fail(ctx, frame(), err)
		}

		steps++
		e.emitter.Emit(ctx, NewStageStartedEvent(threadID, current, steps))
		stageStarted := time.Now()

		delta, err := e.executeStage(ctx, stage, st)
		if err != nil {
			return e.fail(ctx, frame(), err)
		}
		st = state.Merge(st, delta)
		visited = append(visited, current)

		e.logger.InfoContext(ctx, "Stage completed",
			"stage", current,
			"step", steps,
			"duration", time.Since(stageStarted))

		next, label, ok := e.graph.route(current, st)
		if !ok {
			err := types.NewError(types.GRAPH_NO_ROUTE,
				fmt.Sprintf("no route from stage %q for label %q", current, label))
			return e.fail(ctx, frame(), err)
		}

		pending := []string{}
		if next != End {
			pending = []string{next}
		}
		snap = snap.Next(st, pending)
		if err := e.store.Save(ctx, snap); err != nil {
			return e.fail(ctx, frame(), err)
		}
		e.emitter.Emit(ctx, NewStageCompletedEvent(threadID, current, next))

		current = next
	}

	completed := time.Now()
	e.logger.InfoContext(ctx, "Run completed",
		"steps", steps,
		"duration", completed.Sub(started))
	e.emitter.Emit(ctx, NewRunCompletedEvent(threadID, steps, completed.Sub(started)))

	return &Result{
		ThreadID:    threadID,
		Status:      StatusCompleted,
		State:       st,
		Visited:     visited,
		Steps:       steps,
		StartedAt:   started,
		CompletedAt: completed,
		Duration:    completed.Sub(started),
	}, nil
}

// executeStage runs a single stage with panic recovery and an optional
// span. A panicking stage aborts the run rather than poisoning state.
// The stage name rides the context so stage-internal log lines carry it.
func (e *Engine) executeStage(ctx context.Context, s Stage, st state.State) (delta state.Delta, err error) {
	ctx = contextkeys.WithStage(ctx, s.Name())
	if e.tracer != nil {
		var span trace.Span
		ctx, span = e.tracer.Start(ctx, "graph.stage",
			trace.WithAttributes(attribute.String("stage.name", s.Name())))
		defer span.End()
	}
	defer func() {
		if r := recover(); r != nil {
			err = types.NewError(types.GRAPH_STAGE_PANIC,
				fmt.Sprintf("stage %q panicked: %v", s.Name(), r))
		}
	}()
	return s.Execute(ctx, st), nil
}

// failFrame carries the loop position into fail.
type failFrame struct {
	threadID string
	stage    string
	state    state.State
	visited  []string
	steps    int
	started  time.Time
}

// fail logs the error, emits a run.failed event, and returns a failed
// result together with the error.
func (e *Engine) fail(ctx context.Context, f failFrame, err error) (*Result, error) {
	e.logger.ErrorContext(ctx, "Run failed",
		"stage", f.stage,
		"error", err)
	e.emitter.Emit(ctx, NewRunFailedEvent(f.threadID, f.stage, err))

	completed := time.Now()
	return &Result{
		ThreadID:    f.threadID,
		Status:      StatusFailed,
		State:       f.state,
		Visited:     f.visited,
		Steps:       f.steps,
		StartedAt:   f.started,
		CompletedAt: completed,
		Duration:    completed.Sub(f.started),
	}, err
}
