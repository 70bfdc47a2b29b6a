// Package checkpoint persists per-thread execution snapshots so that runs can
// survive process restarts and suspend across human approval gates. Stores are
// pluggable behind the Store interface; the in-memory store backs tests and
// single-process runs while the SQLite store provides durability.
package checkpoint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/meridian-ai/meridian/internal/state"
	"github.com/meridian-ai/meridian/internal/types"
)

// Snapshot captures everything needed to resume a thread: the merged state
// after the last completed stage, the stages not yet executed, and a version
// counter that increments with every update. The checksum guards against
// corrupted or hand-edited payloads.
type Snapshot struct {
	ThreadID  string      `json:"thread_id"`
	State     state.State `json:"state"`
	Pending   []string    `json:"pending,omitempty"`
	Version   int         `json:"version"`
	Checksum  string      `json:"checksum,omitempty"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// New creates the first snapshot for a thread, sealed with a checksum.
func New(threadID string, st state.State, pending []string) *Snapshot {
	snap := &Snapshot{
		ThreadID:  threadID,
		State:     st.Clone(),
		Pending:   clonePending(pending),
		Version:   1,
		UpdatedAt: time.Now().UTC(),
	}
	snap.seal()
	return snap
}

// Next returns the successor snapshot with the version counter advanced.
func (s *Snapshot) Next(st state.State, pending []string) *Snapshot {
	next := &Snapshot{
		ThreadID:  s.ThreadID,
		State:     st.Clone(),
		Pending:   clonePending(pending),
		Version:   s.Version + 1,
		UpdatedAt: time.Now().UTC(),
	}
	next.seal()
	return next
}

// Suspended reports whether the thread stopped with work still pending.
func (s *Snapshot) Suspended() bool {
	return len(s.Pending) > 0
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.State = s.State.Clone()
	cp.Pending = clonePending(s.Pending)
	return &cp
}

// Verify recomputes the checksum and fails if it does not match the stored
// value.
func (s *Snapshot) Verify() error {
	if s.Checksum == "" {
		return types.NewError(types.CHECKPOINT_CORRUPTED,
			"checkpoint for thread "+s.ThreadID+" has no checksum")
	}

	computed, err := s.computeChecksum()
	if err != nil {
		return err
	}

	if computed != s.Checksum {
		return types.NewError(types.CHECKPOINT_CORRUPTED,
			"checksum mismatch for thread "+s.ThreadID)
	}

	return nil
}

// seal computes and stores the integrity checksum.
func (s *Snapshot) seal() {
	// Marshal errors are unreachable here: Snapshot contains only
	// JSON-encodable fields.
	checksum, err := s.computeChecksum()
	if err != nil {
		return
	}
	s.Checksum = checksum
}

// computeChecksum hashes the JSON encoding of the snapshot with the checksum
// field cleared.
func (s *Snapshot) computeChecksum() (string, error) {
	shadow := *s
	shadow.Checksum = ""

	data, err := json.Marshal(shadow)
	if err != nil {
		return "", types.WrapError(types.CHECKPOINT_ENCODE_FAILED,
			"failed to encode checkpoint for checksum", err)
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:]), nil
}

func clonePending(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
