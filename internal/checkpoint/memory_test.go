package checkpoint

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	snap := New("thread-1", sampleState(), []string{"human-approval"})
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, snap.Version, loaded.Version)
	assert.Equal(t, snap.Checksum, loaded.Checksum)
	assert.Equal(t, []string{"human-approval"}, loaded.Pending)
	assert.Equal(t, "Apple", loaded.State.Company)
}

func TestMemoryStore_LoadMissingThread(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Load(context.Background(), "no-such-thread")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	first := New("thread-1", sampleState(), []string{"researcher"})
	require.NoError(t, store.Save(ctx, first))

	second := first.Next(first.State, nil)
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.False(t, loaded.Suspended())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), nil)))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	loaded.State.Findings[0].Title = "mutated"

	again, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, "P/E ratio", again.State.Findings[0].Title)
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), nil)))

	require.NoError(t, store.Delete(ctx, "thread-1"))
	_, err := store.Load(ctx, "thread-1")
	assert.True(t, IsNotFound(err))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, "thread-1"))
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}

	for _, id := range []string{"thread-a", "thread-b", "thread-c"} {
		require.NoError(t, store.Save(ctx, New(id, sampleState(), nil)))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-c", "thread-b", "thread-a"}, ids)
}

func TestMemoryStore_MaxEntriesEvictsOldest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithMaxEntries(2))

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		current = current.Add(time.Second)
		return current
	}

	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("thread-%d", i)
		require.NoError(t, store.Save(ctx, New(id, sampleState(), nil)))
	}

	assert.Equal(t, 2, store.Len())
	_, err := store.Load(ctx, "thread-1")
	assert.True(t, IsNotFound(err), "oldest thread should have been evicted")

	_, err = store.Load(ctx, "thread-3")
	assert.NoError(t, err)
}

func TestMemoryStore_TTLExpiresSnapshots(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(WithTTL(time.Minute))

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), nil)))

	// Still fresh.
	current = current.Add(30 * time.Second)
	_, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)

	// Past the TTL.
	current = current.Add(2 * time.Minute)
	_, err = store.Load(ctx, "thread-1")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_RejectsEmptyThreadID(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(context.Background(), &Snapshot{})
	assert.Error(t, err)
}
