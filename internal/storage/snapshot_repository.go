package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rentease/gateway/internal/view"
)

// SnapshotRepository caches the last merged view per user as a JSON blob so
// a view can still render when the backend is unreachable.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// SaveSnapshot upserts the merged view for a user.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, userID int64, records []view.Record, fetchedAt time.Time) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO view_snapshots (user_id, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at
	`, userID, string(payload), fetchedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the cached view for a user. A missing snapshot
// yields nil records and no error.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context, userID int64) ([]view.Record, time.Time, error) {
	var (
		payload   string
		fetchedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM view_snapshots WHERE user_id = ?
	`, userID).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("querying snapshot: %w", err)
	}

	var records []view.Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		return nil, time.Time{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return records, fetchedAt.UTC(), nil
}
