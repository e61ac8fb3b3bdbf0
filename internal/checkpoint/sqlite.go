package checkpoint

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStore persists checkpoints in the checkpoints table created by the
// schema migrations. It honors the same key contract as FileStore, so the
// two are interchangeable behind Store.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a SQLiteStore over an open database connection.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Load reads the checkpoint for key, returning (nil, nil) when absent.
func (s *SQLiteStore) Load(key string) (*Checkpoint, error) {
	query := `
		SELECT channel_id, channel_title, messages_processed
		FROM checkpoints
		WHERE key = ?
	`

	var cp Checkpoint
	err := s.db.QueryRow(query, key).Scan(&cp.ChannelID, &cp.ChannelTitle, &cp.Processed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	return &cp, nil
}

// Save upserts the checkpoint for key.
func (s *SQLiteStore) Save(key string, cp *Checkpoint) error {
	query := `
		INSERT INTO checkpoints (key, channel_id, channel_title, messages_processed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			channel_id = excluded.channel_id,
			channel_title = excluded.channel_title,
			messages_processed = excluded.messages_processed,
			updated_at = excluded.updated_at
	`

	if _, err := s.db.Exec(query, key, cp.ChannelID, cp.ChannelTitle, cp.Processed, time.Now()); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// Delete removes the checkpoint for key. A missing row is not an error.
func (s *SQLiteStore) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM checkpoints WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}
