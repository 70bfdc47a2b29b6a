package graph

import (
	"time"

	"github.com/meridian-ai/meridian/internal/state"
)

// RunStatus describes how a run ended.
type RunStatus string

const (
	// StatusCompleted means the run reached the end sentinel.
	StatusCompleted RunStatus = "completed"
	// StatusSuspended means the run parked in front of an interrupt
	// stage and can be resumed.
	StatusSuspended RunStatus = "suspended"
	// StatusFailed means an engine error aborted the run.
	StatusFailed RunStatus = "failed"
)

// String returns the status as a string.
func (s RunStatus) String() string { return string(s) }

// Terminal reports whether the run is finished for good. Suspended
// runs are not terminal; they are waiting for a resume.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Result is the outcome of a Run or Resume call.
type Result struct {
	ThreadID string      `json:"thread_id"`
	Status   RunStatus   `json:"status"`
	State    state.State `json:"state"`

	// NextStage is the pending stage when Status is suspended.
	NextStage string `json:"next_stage,omitempty"`

	// Visited lists the stages executed by this call, in order. It
	// covers only the current Run or Resume, not the whole thread.
	Visited []string `json:"visited,omitempty"`

	Steps       int           `json:"steps"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at,omitzero"`
	Duration    time.Duration `json:"duration"`
}

// Suspended reports whether the run is waiting at an interrupt stage.
func (r *Result) Suspended() bool { return r.Status == StatusSuspended }
