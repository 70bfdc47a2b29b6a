// Package stage implements the pipeline stages that turn a research
// query into a finished report. Every stage follows the same contract:
// it reads a snapshot of the shared state, performs its work, and
// returns a delta. Stages never return errors. When a stage cannot do
// its job it degrades: it appends an entry to the state's error
// accumulator, marks itself failed via current_stage, and supplies
// whatever fallback value keeps the pipeline routable.
package stage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridian-ai/meridian/internal/llm"
)

// Stage names as registered in the report graph.
const (
	StagePlanner        = "planner"
	StageResearcher     = "researcher"
	StageAnalyst        = "analyst"
	StageWriter         = "writer"
	StageQualityChecker = "quality-checker"
	StageHumanApproval  = "human-approval"
	StageRiskAssessor   = "risk-assessor"
	StageFinalizer      = "finalizer"
	StageSimpleResponse = "simple-response"
)

// CompleteMarker returns the current_stage value a stage writes on
// success. Hyphens normalize to underscores, so "quality-checker"
// reports "quality_checker_complete".
func CompleteMarker(name string) string {
	return strings.ReplaceAll(name, "-", "_") + "_complete"
}

// FailedMarker returns the current_stage value a stage writes on its
// degraded path.
func FailedMarker(name string) string {
	return strings.ReplaceAll(name, "-", "_") + "_failed"
}

// errorEntry formats a stage failure for the state's error accumulator.
func errorEntry(name string, err error) string {
	return fmt.Sprintf("%s: %v", name, err)
}

// options carries the knobs shared by all stages.
type options struct {
	logger      *slog.Logger
	model       string
	temperature float64
	maxTokens   int
}

func defaultOptions() options {
	return options{
		logger:    slog.Default(),
		maxTokens: 2048,
	}
}

// Option configures a stage.
type Option func(*options)

// WithLogger sets the stage logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithModel overrides the provider's default model for this stage.
func WithModel(model string) Option {
	return func(o *options) { o.model = model }
}

// WithTemperature sets the sampling temperature for this stage.
func WithTemperature(temperature float64) Option {
	return func(o *options) { o.temperature = temperature }
}

// WithMaxTokens caps the completion length for this stage.
func WithMaxTokens(maxTokens int) Option {
	return func(o *options) {
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// completeText issues a system+user completion and returns the raw
// response text.
func completeText(ctx context.Context, p llm.Provider, o options, system, user string, extra ...llm.CompletionOption) (string, error) {
	opts := append([]llm.CompletionOption{
		llm.WithTemperature(o.temperature),
		llm.WithMaxTokens(o.maxTokens),
	}, extra...)
	req := llm.NewCompletionRequest(o.model, []llm.Message{
		llm.NewSystemMessage(system),
		llm.NewUserMessage(user),
	}, opts...)
	resp, err := p.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// completeJSON is completeText with JSON mode requested, for stages that
// parse the response as a JSON document.
func completeJSON(ctx context.Context, p llm.Provider, o options, system, user string) (string, error) {
	return completeText(ctx, p, o, system, user, llm.WithJSONOutput())
}
