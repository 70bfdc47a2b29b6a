package checkpoint

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// SQLite driver registration.
	_ "github.com/mattn/go-sqlite3"

	"github.com/meridian-ai/meridian/internal/types"
)

const checkpointSchema = `
CREATE TABLE IF NOT EXISTS checkpoints (
	thread_id  TEXT PRIMARY KEY,
	version    INTEGER NOT NULL,
	payload    TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_checkpoints_updated_at ON checkpoints(updated_at);
`

// SQLiteStore is a durable Store backed by a single SQLite database file.
// Snapshots are stored as JSON payloads alongside their version and checksum
// columns for inspection without decoding.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// checkpoint schema exists. WAL mode and a busy timeout keep concurrent
// readers from blocking the writer.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d",
		path, int((5 * time.Second).Milliseconds()))

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to open checkpoint database", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to ping checkpoint database", err)
	}

	if _, err := db.ExecContext(ctx, checkpointSchema); err != nil {
		db.Close()
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to create checkpoint schema", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Save persists the snapshot, replacing any existing row for the thread.
func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.ThreadID == "" {
		return types.NewError(types.CHECKPOINT_STORE_FAILED, "snapshot requires a thread id")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return types.WrapError(types.CHECKPOINT_ENCODE_FAILED,
			"failed to encode checkpoint", err)
	}

	const query = `
INSERT INTO checkpoints (thread_id, version, payload, checksum, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(thread_id) DO UPDATE SET
	version    = excluded.version,
	payload    = excluded.payload,
	checksum   = excluded.checksum,
	updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		snap.ThreadID, snap.Version, string(payload), snap.Checksum, snap.UpdatedAt)
	if err != nil {
		return types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to save checkpoint for thread "+snap.ThreadID, err)
	}

	return nil
}

// Load returns the snapshot for a thread after verifying its integrity.
func (s *SQLiteStore) Load(ctx context.Context, threadID string) (*Snapshot, error) {
	const query = `SELECT payload FROM checkpoints WHERE thread_id = ?`

	var payload string
	err := s.db.QueryRowContext(ctx, query, threadID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NewNotFoundError(threadID)
	}
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to load checkpoint for thread "+threadID, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return nil, types.WrapError(types.CHECKPOINT_CORRUPTED,
			"failed to decode checkpoint for thread "+threadID, err)
	}

	if err := snap.Verify(); err != nil {
		return nil, err
	}

	return &snap, nil
}

// Delete removes the snapshot for a thread.
func (s *SQLiteStore) Delete(ctx context.Context, threadID string) error {
	const query = `DELETE FROM checkpoints WHERE thread_id = ?`

	if _, err := s.db.ExecContext(ctx, query, threadID); err != nil {
		return types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to delete checkpoint for thread "+threadID, err)
	}
	return nil
}

// List returns the known thread IDs, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	const query = `SELECT thread_id FROM checkpoints ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to list checkpoints", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
				"failed to scan checkpoint row", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.WrapError(types.CHECKPOINT_STORE_FAILED,
			"failed to iterate checkpoint rows", err)
	}

	return ids, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ensure SQLiteStore implements Store at compile time.
var _ Store = (*SQLiteStore)(nil)
