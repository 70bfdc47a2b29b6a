package graph

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-ai/meridian/internal/types"
)

// EventType identifies a run lifecycle event.
type EventType string

// Event types emitted over the lifetime of a run.
const (
	EventRunStarted     EventType = "run.started"
	EventStageStarted   EventType = "stage.started"
	EventStageCompleted EventType = "stage.completed"
	EventRunSuspended   EventType = "run.suspended"
	EventRunResumed     EventType = "run.resumed"
	EventRunCompleted   EventType = "run.completed"
	EventRunFailed      EventType = "run.failed"
)

// Event is a run lifecycle notification. Stage is set for stage-scoped
// events and empty for run-scoped ones.
type Event struct {
	Type      EventType              `json:"type"`
	ThreadID  string                 `json:"thread_id"`
	Stage     string                 `json:"stage,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// Terminal reports whether the event ends a run's current execution,
// either finally or pending a resume.
func (e Event) Terminal() bool {
	switch e.Type {
	case EventRunCompleted, EventRunFailed, EventRunSuspended:
		return true
	default:
		return false
	}
}

// Emitter publishes run lifecycle events to subscribers.
type Emitter interface {
	// Emit publishes an event to all current subscribers. Slow
	// subscribers with full buffers miss the event rather than block
	// the run.
	Emit(ctx context.Context, event Event) error

	// Subscribe returns a channel of events and a cleanup function.
	// The caller must invoke cleanup when done to release resources.
	Subscribe(ctx context.Context) (<-chan Event, func())

	// Close shuts down the emitter and closes all subscriber channels.
	Close() error
}

// DefaultEmitter is an in-memory emitter with buffered subscriber
// channels. Events are dropped per subscriber when its buffer is full.
type DefaultEmitter struct {
	mu          sync.RWMutex
	subscribers map[types.ID]chan Event
	closed      bool
	bufferSize  int
}

// EmitterOption configures a DefaultEmitter.
type EmitterOption func(*DefaultEmitter)

// WithBufferSize sets the per-subscriber channel buffer size.
func WithBufferSize(size int) EmitterOption {
	return func(e *DefaultEmitter) {
		if size > 0 {
			e.bufferSize = size
		}
	}
}

// NewDefaultEmitter creates an emitter with a per-subscriber buffer of
// 100 events unless overridden.
func NewDefaultEmitter(opts ...EmitterOption) *DefaultEmitter {
	e := &DefaultEmitter{
		subscribers: make(map[types.ID]chan Event),
		bufferSize:  100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit publishes the event to every subscriber without blocking.
func (e *DefaultEmitter) Emit(ctx context.Context, event Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return nil
	}
	for _, ch := range e.subscribers {
		select {
		case ch <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			// Subscriber buffer full, drop the event for them.
		}
	}
	return nil
}

// Subscribe registers a new subscriber and returns its channel along
// with a cleanup function that unregisters it.
func (e *DefaultEmitter) Subscribe(ctx context.Context) (<-chan Event, func()) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		ch := make(chan Event)
		close(ch)
		return ch, func() {}
	}

	id := types.NewID()
	ch := make(chan Event, e.bufferSize)
	e.subscribers[id] = ch

	cleanup := func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if sub, ok := e.subscribers[id]; ok {
			delete(e.subscribers, id)
			close(sub)
		}
	}
	return ch, cleanup
}

// Close shuts down the emitter and closes all subscriber channels.
func (e *DefaultEmitter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	for id, ch := range e.subscribers {
		delete(e.subscribers, id)
		close(ch)
	}
	return nil
}

// SubscriberCount returns the number of active subscribers.
func (e *DefaultEmitter) SubscriberCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.subscribers)
}

// NopEmitter discards every event, for engines that need no
// subscribers.
type NopEmitter struct{}

func (NopEmitter) Emit(ctx context.Context, event Event) error { return nil }
func (NopEmitter) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ch := make(chan Event)
	close(ch)
	return ch, func() {}
}
func (NopEmitter) Close() error { return nil }

// NewRunStartedEvent creates an event for a freshly started run.
func NewRunStartedEvent(threadID, query string) Event {
	return Event{
		Type:      EventRunStarted,
		ThreadID:  threadID,
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{"query": query},
	}
}

// NewStageStartedEvent creates an event for a stage beginning work.
func NewStageStartedEvent(threadID, stage string, step int) Event {
	return Event{
		Type:      EventStageStarted,
		ThreadID:  threadID,
		Stage:     stage,
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{"step": step},
	}
}

// NewStageCompletedEvent creates an event for a completed stage and the
// destination the run routed to.
func NewStageCompletedEvent(threadID, stage, next string) Event {
	return Event{
		Type:      EventStageCompleted,
		ThreadID:  threadID,
		Stage:     stage,
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{"next": next},
	}
}

// NewRunSuspendedEvent creates an event for a run parked before an
// interrupt stage.
func NewRunSuspendedEvent(threadID, pending string) Event {
	return Event{
		Type:      EventRunSuspended,
		ThreadID:  threadID,
		Stage:     pending,
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{"pending": pending},
	}
}

// NewRunResumedEvent creates an event for a suspended run picking back
// up at its pending stage.
func NewRunResumedEvent(threadID, pending string) Event {
	return Event{
		Type:      EventRunResumed,
		ThreadID:  threadID,
		Stage:     pending,
		Timestamp: time.Now(),
		Payload:   map[string]interface{}{"pending": pending},
	}
}

// NewRunCompletedEvent creates an event for a run that reached the end
// sentinel.
func NewRunCompletedEvent(threadID string, steps int, duration time.Duration) Event {
	return Event{
		Type:      EventRunCompleted,
		ThreadID:  threadID,
		Timestamp: time.Now(),
		Payload: map[string]interface{}{
			"steps":    steps,
			"duration": duration.String(),
		},
	}
}

// NewRunFailedEvent creates an event for a run aborted by an engine
// error.
func NewRunFailedEvent(threadID, stage string, err error) Event {
	payload := map[string]interface{}{}
	if err != nil {
		payload["error"] = err.Error()
	}
	return Event{
		Type:      EventRunFailed,
		ThreadID:  threadID,
		Stage:     stage,
		Timestamp: time.Now(),
		Payload:   payload,
	}
}

var _ Emitter = (*DefaultEmitter)(nil)
var _ Emitter = NopEmitter{}
