package checkpoint

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-ai/meridian/internal/types"
)

func setupSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "checkpoints.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestSQLiteStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	snap := New("thread-1", sampleState(), []string{"human-approval"})
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, snap.ThreadID, loaded.ThreadID)
	assert.Equal(t, snap.Version, loaded.Version)
	assert.Equal(t, snap.Checksum, loaded.Checksum)
	assert.Equal(t, []string{"human-approval"}, loaded.Pending)
	assert.Equal(t, "Apple", loaded.State.Company)
	require.Len(t, loaded.State.Findings, 1)
	assert.Equal(t, "P/E ratio", loaded.State.Findings[0].Title)
}

func TestSQLiteStore_LoadMissingThread(t *testing.T) {
	store := setupSQLiteStore(t)

	_, err := store.Load(context.Background(), "no-such-thread")

	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestSQLiteStore_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	first := New("thread-1", sampleState(), []string{"researcher"})
	require.NoError(t, store.Save(ctx, first))

	st := first.State.Clone()
	st.DraftReport = "draft"
	second := first.Next(st, nil)
	require.NoError(t, store.Save(ctx, second))

	loaded, err := store.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Version)
	assert.Equal(t, "draft", loaded.State.DraftReport)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-1"}, ids)
}

func TestSQLiteStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), nil)))
	require.NoError(t, store.Delete(ctx, "thread-1"))

	_, err := store.Load(ctx, "thread-1")
	assert.True(t, IsNotFound(err))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, "thread-1"))
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	snaps := []*Snapshot{
		New("thread-a", sampleState(), nil),
		New("thread-b", sampleState(), nil),
		New("thread-c", sampleState(), nil),
	}
	// Distinct timestamps so the ordering is deterministic.
	for i, snap := range snaps {
		snap.UpdatedAt = snap.UpdatedAt.Add(-time.Duration(len(snaps)-i) * time.Minute)
		snap.seal()
		require.NoError(t, store.Save(ctx, snap))
	}

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"thread-c", "thread-b", "thread-a"}, ids)
}

func TestSQLiteStore_DetectsTamperedPayload(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t)

	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), nil)))

	_, err := store.db.ExecContext(ctx,
		`UPDATE checkpoints SET payload = replace(payload, 'Apple', 'Initech') WHERE thread_id = ?`,
		"thread-1")
	require.NoError(t, err)

	_, err = store.Load(ctx, "thread-1")

	var merr *types.MeridianError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, types.CHECKPOINT_CORRUPTED, merr.Code)
}

func TestSQLiteStore_ReopenPersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "checkpoints.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, New("thread-1", sampleState(), []string{"risk-assessor"})))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, err := reopened.Load(ctx, "thread-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"risk-assessor"}, loaded.Pending)
}
