package providers

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/meridian-ai/meridian/internal/llm"
)

// ScriptedStep is one scripted turn: either a canned response or an error.
type ScriptedStep struct {
	Response string
	Err      error
}

// ScriptedProvider implements llm.Provider with a fixed script of responses.
// Steps are consumed in order; once the script is exhausted the final step
// repeats. It records every request for assertions.
type ScriptedProvider struct {
	mu    sync.Mutex
	steps []ScriptedStep
	next  int
	calls []llm.CompletionRequest
}

// NewScriptedProvider creates a scripted provider from successful responses.
func NewScriptedProvider(responses ...string) *ScriptedProvider {
	steps := make([]ScriptedStep, 0, len(responses))
	for _, r := range responses {
		steps = append(steps, ScriptedStep{Response: r})
	}
	return &ScriptedProvider{steps: steps}
}

// Name returns the provider name
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// Append adds a successful response step to the script.
func (p *ScriptedProvider) Append(response string) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, ScriptedStep{Response: response})
	return p
}

// AppendError adds a failing step to the script.
func (p *ScriptedProvider) AppendError(err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps = append(p.steps, ScriptedStep{Err: err})
	return p
}

// Complete returns the next scripted step.
func (p *ScriptedProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.calls = append(p.calls, req)

	if len(p.steps) == 0 {
		p.mu.Unlock()
		return nil, llm.NewProviderUnavailableError("scripted", fmt.Errorf("no responses scripted"))
	}

	step := p.steps[p.next]
	if p.next < len(p.steps)-1 {
		p.next++
	}
	p.mu.Unlock()

	if step.Err != nil {
		return nil, step.Err
	}

	return &llm.CompletionResponse{
		ID:    uuid.New().String(),
		Model: req.Model,
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: step.Response,
		},
		FinishReason: llm.FinishReasonStop,
		Usage: llm.TokenUsage{
			PromptTokens:     10,
			CompletionTokens: len(step.Response) / 4,
			TotalTokens:      10 + len(step.Response)/4,
		},
	}, nil
}

// Calls returns all recorded requests.
func (p *ScriptedProvider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	calls := make([]llm.CompletionRequest, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// CallCount returns the number of completion requests received.
func (p *ScriptedProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Reset rewinds the script and clears recorded calls.
func (p *ScriptedProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.next = 0
	p.calls = nil
}
