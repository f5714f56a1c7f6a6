package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rentease/gateway/internal/session"
)

// SessionRepository persists sessions. The user payload is stored as JSON;
// token and expiry are broken out for sweeping without decoding.
type SessionRepository struct {
	db *DB
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(db *DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// SaveSession upserts a user's session.
func (r *SessionRepository) SaveSession(ctx context.Context, s session.Session) error {
	payload, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("encoding session user: %w", err)
	}

	var expiresAt any
	if !s.ExpiresAt.IsZero() {
		expiresAt = s.ExpiresAt.UTC()
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sessions (user_id, payload, token, expires_at, saved_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload = excluded.payload,
			token = excluded.token,
			expires_at = excluded.expires_at,
			saved_at = excluded.saved_at
	`, s.User.ID, string(payload), s.Token, expiresAt, s.SavedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// DeleteSession removes a user's session.
func (r *SessionRepository) DeleteSession(ctx context.Context, userID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// ListSessions returns all persisted sessions.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]session.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payload, token, expires_at, saved_at FROM sessions
	`)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var (
			payload   string
			token     string
			expiresAt sql.NullTime
			savedAt   time.Time
		)
		if err := rows.Scan(&payload, &token, &expiresAt, &savedAt); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		s := session.Session{Token: token, SavedAt: savedAt}
		if expiresAt.Valid {
			s.ExpiresAt = expiresAt.Time.UTC()
		}
		if err := json.Unmarshal([]byte(payload), &s.User); err != nil {
			return nil, fmt.Errorf("decoding session user: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
