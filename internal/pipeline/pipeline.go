// Package pipeline assembles the research report workflow: the nine
// stages, the routes between them, the engine that drives them, and the
// collaborators each stage needs. The Coordinator is the entry point
// callers drive; the CLI and the eval harness both sit on top of it.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/oklog/ulid/v2"

	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/meridian-ai/meridian/internal/config"
	"github.com/meridian-ai/meridian/internal/contextkeys"
	"github.com/meridian-ai/meridian/internal/graph"
	"github.com/meridian-ai/meridian/internal/llm/providers"
	"github.com/meridian-ai/meridian/internal/stage"
	"github.com/meridian-ai/meridian/internal/state"
)

// GraphName identifies the report workflow in logs and traces.
const GraphName = "research-report"

// Coordinator wires the report graph to an engine and exposes the run
// lifecycle: start, resume, stream, and state inspection. A coordinator
// is safe for concurrent use; each thread ID is an independent run.
type Coordinator struct {
	cfg    *config.Config
	engine *graph.Engine
	stages *stage.Registry
	logger *slog.Logger
}

// New builds a coordinator from the config. Collaborators default to
// whatever the config selects; options override them, which is how
// tests and eval runs substitute scripted providers for live ones.
func New(cfg *config.Config, opts ...Option) (*Coordinator, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	// Every engine and stage log line picks up thread_id and stage from
	// the run context.
	o.logger = slog.New(contextkeys.NewContextHandler(o.logger.Handler()))

	if o.provider == nil {
		p, err := providers.New(cfg.LLM)
		if err != nil {
			return nil, err
		}
		o.provider = p
	}
	if o.market == nil {
		o.market = buildMarket(cfg.Market)
	}
	if o.search == nil {
		o.search = buildSearch(cfg.Search)
	}
	if o.store == nil {
		s, err := buildStore(cfg.Checkpoint)
		if err != nil {
			return nil, err
		}
		o.store = s
	}

	reg, err := buildRegistry(o)
	if err != nil {
		return nil, err
	}
	g, err := buildGraph(reg, cfg.Engine.RequireApproval)
	if err != nil {
		return nil, err
	}

	engineOpts := []graph.EngineOption{
		graph.WithLogger(o.logger),
		graph.WithMaxSteps(cfg.Engine.MaxSteps),
	}
	if o.tracer != nil {
		engineOpts = append(engineOpts, graph.WithTracer(o.tracer))
	}
	if o.emitter != nil {
		engineOpts = append(engineOpts, graph.WithEmitter(o.emitter))
	}

	return &Coordinator{
		cfg:    cfg,
		engine: graph.NewEngine(g, o.store, engineOpts...),
		stages: reg,
		logger: o.logger,
	}, nil
}

// NewThreadID mints a fresh thread identifier.
func NewThreadID() string {
	return "thread-" + ulid.Make().String()
}

// Start runs a new thread for the query and blocks until the run
// completes, fails, or suspends at the approval gate. The minted
// thread ID is on the result.
func (c *Coordinator) Start(ctx context.Context, query string) (*graph.Result, error) {
	return c.engine.Run(ctx, NewThreadID(), state.New(query))
}

// Resume continues a thread suspended at the approval gate. No new
// input is supplied; the pending stage picks up from the checkpoint.
func (c *Coordinator) Resume(ctx context.Context, threadID string) (*graph.Result, error) {
	return c.engine.Resume(ctx, threadID)
}

// Stream starts a new thread in the background and returns its ID plus
// a channel of lifecycle events. The channel closes after a terminal
// event; read the final state through State.
func (c *Coordinator) Stream(ctx context.Context, query string) (string, <-chan graph.Event) {
	threadID := NewThreadID()
	return threadID, c.engine.Stream(ctx, threadID, state.New(query))
}

// StreamResume is Stream for a suspended thread.
func (c *Coordinator) StreamResume(ctx context.Context, threadID string) <-chan graph.Event {
	return c.engine.StreamResume(ctx, threadID)
}

// State returns the latest checkpointed state for a thread.
func (c *Coordinator) State(ctx context.Context, threadID string) (state.State, error) {
	snap, err := c.engine.Store().Load(ctx, threadID)
	if err != nil {
		return state.State{}, err
	}
	return snap.State, nil
}

// Snapshot returns the full checkpoint for a thread, including the
// pending stage and the version counter.
func (c *Coordinator) Snapshot(ctx context.Context, threadID string) (*checkpoint.Snapshot, error) {
	return c.engine.Store().Load(ctx, threadID)
}

// Threads lists known thread IDs, most recently updated first.
func (c *Coordinator) Threads(ctx context.Context) ([]string, error) {
	return c.engine.Store().List(ctx)
}

// Stages returns the stage registry backing the graph.
func (c *Coordinator) Stages() *stage.Registry { return c.stages }

// Engine returns the underlying graph engine.
func (c *Coordinator) Engine() *graph.Engine { return c.engine }
