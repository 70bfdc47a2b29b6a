package checkpoint

import (
	"context"
	"errors"

	"github.com/meridian-ai/meridian/internal/types"
)

// Store persists snapshots keyed by thread ID. One snapshot is kept per
// thread; saving replaces any previous version.
type Store interface {
	// Save persists the snapshot, replacing any existing one for the thread.
	Save(ctx context.Context, snap *Snapshot) error

	// Load returns the snapshot for a thread. A missing thread fails with
	// CHECKPOINT_NOT_FOUND; a snapshot that fails integrity verification
	// fails with CHECKPOINT_CORRUPTED.
	Load(ctx context.Context, threadID string) (*Snapshot, error)

	// Delete removes the snapshot for a thread. Deleting a thread with no
	// snapshot is a no-op.
	Delete(ctx context.Context, threadID string) error

	// List returns the known thread IDs, most recently updated first.
	List(ctx context.Context) ([]string, error)
}

// IsNotFound reports whether the error indicates a missing checkpoint.
func IsNotFound(err error) bool {
	var merr *types.MeridianError
	return errors.As(err, &merr) && merr.Code == types.CHECKPOINT_NOT_FOUND
}

// NewNotFoundError creates the canonical missing-checkpoint error.
func NewNotFoundError(threadID string) *types.MeridianError {
	return types.NewError(types.CHECKPOINT_NOT_FOUND, "no checkpoint for thread: "+threadID)
}
