package checkpoint

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meridian-ai/meridian/internal/types"
)

// MemoryStoreOption configures a MemoryStore.
type MemoryStoreOption func(*MemoryStore)

// WithMaxEntries bounds the number of retained threads. When the bound is
// exceeded the least recently updated thread is evicted. Zero means unbounded.
func WithMaxEntries(n int) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.maxEntries = n
	}
}

// WithTTL expires snapshots that have not been updated within d. Expired
// snapshots behave as missing. Zero means no expiry.
func WithTTL(d time.Duration) MemoryStoreOption {
	return func(s *MemoryStore) {
		s.ttl = d
	}
}

// MemoryStore is an in-process Store for tests and single-run usage. All
// operations deep-copy snapshots so callers never share state with the store.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    map[string]*memoryEntry
	maxEntries int
	ttl        time.Duration

	now func() time.Time
}

type memoryEntry struct {
	snap     *Snapshot
	storedAt time.Time
}

// NewMemoryStore creates an in-memory checkpoint store.
func NewMemoryStore(opts ...MemoryStoreOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists the snapshot, replacing any existing one for the thread.
func (s *MemoryStore) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil || snap.ThreadID == "" {
		return types.NewError(types.CHECKPOINT_STORE_FAILED, "snapshot requires a thread id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked()

	if _, exists := s.entries[snap.ThreadID]; !exists {
		if s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
			s.evictOldestLocked()
		}
	}

	s.entries[snap.ThreadID] = &memoryEntry{
		snap:     snap.Clone(),
		storedAt: s.now(),
	}
	return nil
}

// Load returns a copy of the snapshot for a thread.
func (s *MemoryStore) Load(ctx context.Context, threadID string) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.expireLocked()
	entry, ok := s.entries[threadID]
	s.mu.Unlock()

	if !ok {
		return nil, NewNotFoundError(threadID)
	}

	snap := entry.snap.Clone()
	if err := snap.Verify(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Delete removes the snapshot for a thread.
func (s *MemoryStore) Delete(ctx context.Context, threadID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, threadID)
	return nil
}

// List returns the known thread IDs, most recently updated first.
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.expireLocked()

	type listed struct {
		id       string
		storedAt time.Time
	}
	all := make([]listed, 0, len(s.entries))
	for id, entry := range s.entries {
		all = append(all, listed{id: id, storedAt: entry.storedAt})
	}
	s.mu.Unlock()

	sort.Slice(all, func(i, j int) bool {
		return all[i].storedAt.After(all[j].storedAt)
	})

	ids := make([]string, 0, len(all))
	for _, e := range all {
		ids = append(ids, e.id)
	}
	return ids, nil
}

// Len returns the number of retained threads.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	return len(s.entries)
}

// expireLocked drops entries older than the TTL. Caller must hold mu.
func (s *MemoryStore) expireLocked() {
	if s.ttl <= 0 {
		return
	}
	cutoff := s.now().Add(-s.ttl)
	for id, entry := range s.entries {
		if entry.storedAt.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// evictOldestLocked removes the least recently stored entry. Caller must hold mu.
func (s *MemoryStore) evictOldestLocked() {
	var oldestID string
	var oldestAt time.Time
	for id, entry := range s.entries {
		if oldestID == "" || entry.storedAt.Before(oldestAt) {
			oldestID = id
			oldestAt = entry.storedAt
		}
	}
	if oldestID != "" {
		delete(s.entries, oldestID)
	}
}

// Ensure MemoryStore implements Store at compile time.
var _ Store = (*MemoryStore)(nil)
