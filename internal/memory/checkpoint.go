// Package memory holds the durable stores: the per-channel ingestion
// checkpoint cursor.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// CheckpointStore persists the last processed message id per channel in
// SQLite. One row per channel, upsert semantics.
type CheckpointStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewCheckpointStore(dbPath string, logger *slog.Logger) (*CheckpointStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// SQLite wants a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &CheckpointStore{db: db, logger: logger}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("checkpoint migration failed: %w", err)
	}
	return store, nil
}

func (s *CheckpointStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS channels (
		channel_id            TEXT PRIMARY KEY,
		last_saved_message_id INTEGER NOT NULL,
		updated_at            DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := s.db.Exec(schema)
	return err
}

// Upsert records messageID as the last processed message for channelID,
// replacing any previous cursor.
func (s *CheckpointStore) Upsert(ctx context.Context, channelID string, messageID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO channels (channel_id, last_saved_message_id)
		VALUES (?, ?)
		ON CONFLICT(channel_id) DO UPDATE SET
			last_saved_message_id = excluded.last_saved_message_id,
			updated_at = CURRENT_TIMESTAMP`,
		channelID, messageID)
	if err != nil {
		return fmt.Errorf("upsert checkpoint for %s: %w", channelID, err)
	}
	return nil
}

// Get returns the stored cursor for channelID. The second return is false
// when the channel has never been checkpointed.
func (s *CheckpointStore) Get(ctx context.Context, channelID string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT last_saved_message_id FROM channels WHERE channel_id = ?`,
		channelID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read checkpoint for %s: %w", channelID, err)
	}
	return id, true, nil
}

func (s *CheckpointStore) Close() error {
	return s.db.Close()
}
