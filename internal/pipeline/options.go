package pipeline

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/meridian-ai/meridian/internal/checkpoint"
	"github.com/meridian-ai/meridian/internal/graph"
	"github.com/meridian-ai/meridian/internal/llm"
	"github.com/meridian-ai/meridian/internal/market"
	"github.com/meridian-ai/meridian/internal/search"
)

// options carries the coordinator's wiring. Anything left nil is built
// from the config in New.
type options struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	emitter  graph.Emitter
	provider llm.Provider
	market   market.Provider
	search   search.Client
	store    checkpoint.Store
}

// Option overrides part of the coordinator's wiring.
type Option func(*options)

// WithLogger sets the logger shared by the engine and every stage.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer enables tracing on the engine.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) {
		o.tracer = tracer
	}
}

// WithEmitter replaces the engine's event emitter.
func WithEmitter(emitter graph.Emitter) Option {
	return func(o *options) {
		o.emitter = emitter
	}
}

// WithLLMProvider substitutes the text-generation provider, bypassing
// the backend the config selects.
func WithLLMProvider(p llm.Provider) Option {
	return func(o *options) {
		o.provider = p
	}
}

// WithMarketProvider substitutes the market data provider.
func WithMarketProvider(p market.Provider) Option {
	return func(o *options) {
		o.market = p
	}
}

// WithSearchClient substitutes the web search client.
func WithSearchClient(c search.Client) Option {
	return func(o *options) {
		o.search = c
	}
}

// WithStore substitutes the checkpoint store.
func WithStore(s checkpoint.Store) Option {
	return func(o *options) {
		o.store = s
	}
}
