// Package session holds the gateway's process-wide session state: which
// users are signed in and the JWT the backend issued them. Sessions are
// persisted so a gateway restart does not sign everyone out, and state
// changes are pushed to subscribers instead of being polled for.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/rentease/gateway/internal/rentease"
)

// Session is one signed-in user.
type Session struct {
	User      rentease.User `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	SavedAt   time.Time     `json:"savedAt"`
}

// Expired reports whether the session's token has passed its expiry. A
// session with no parseable expiry never expires on its own.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// EventType classifies session state changes.
type EventType string

const (
	EventSaved   EventType = "saved"
	EventCleared EventType = "cleared"
	EventExpired EventType = "expired"
)

// Event is a session state change delivered to subscribers.
type Event struct {
	Type    EventType
	Session Session
}

// Repository persists sessions across gateway restarts.
type Repository interface {
	SaveSession(ctx context.Context, s Session) error
	DeleteSession(ctx context.Context, userID int64) error
	ListSessions(ctx context.Context) ([]Session, error)
}

// Manager owns the in-memory session table and its persistence. All state
// changes fan out to subscribers.
type Manager struct {
	repo Repository

	mu          sync.RWMutex
	sessions    map[int64]Session
	byToken     map[string]int64
	subscribers []chan Event
}

// NewManager creates a session manager. repo may be nil for an in-memory
// only manager (used in tests).
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:     repo,
		sessions: make(map[int64]Session),
		byToken:  make(map[string]int64),
	}
}

// Load restores persisted sessions. Sessions whose tokens have already
// expired are discarded rather than restored.
func (m *Manager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}

	sessions, err := m.repo.ListSessions(ctx)
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	now := time.Now().UTC()
	restored := 0
	m.mu.Lock()
	for _, s := range sessions {
		if s.Expired(now) {
			continue
		}
		m.sessions[s.User.ID] = s
		m.byToken[s.Token] = s.User.ID
		restored++
	}
	m.mu.Unlock()

	if expired := len(sessions) - restored; expired > 0 {
		log.Printf("Discarded %d expired sessions on load", expired)
	}
	log.Printf("Restored %d sessions", restored)
	return nil
}

// Save records a signed-in user and notifies subscribers. The token's exp
// claim (read without signature verification, since the gateway holds no
// signing secret) sets the session expiry.
func (m *Manager) Save(ctx context.Context, user rentease.User, token string) (Session, error) {
	s := Session{
		User:      user,
		Token:     token,
		ExpiresAt: tokenExpiry(token),
		SavedAt:   time.Now().UTC(),
	}

	m.mu.Lock()
	if old, ok := m.sessions[user.ID]; ok {
		delete(m.byToken, old.Token)
	}
	m.sessions[user.ID] = s
	m.byToken[token] = user.ID
	m.mu.Unlock()

	if m.repo != nil {
		if err := m.repo.SaveSession(ctx, s); err != nil {
			return Session{}, fmt.Errorf("persisting session: %w", err)
		}
	}

	m.notify(Event{Type: EventSaved, Session: s})
	return s, nil
}

// Clear signs a user out and notifies subscribers.
func (m *Manager) Clear(ctx context.Context, userID int64) error {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if ok {
		delete(m.sessions, userID)
		delete(m.byToken, s.Token)
	}
	m.mu.Unlock()

	if !ok {
		return nil
	}

	if m.repo != nil {
		if err := m.repo.DeleteSession(ctx, userID); err != nil {
			return fmt.Errorf("removing persisted session: %w", err)
		}
	}

	m.notify(Event{Type: EventCleared, Session: s})
	return nil
}

// Get returns the session for a user.
func (m *Manager) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[userID]
	return s, ok
}

// GetByToken resolves a bearer token to its session.
func (m *Manager) GetByToken(token string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	userID, ok := m.byToken[token]
	if !ok {
		return Session{}, false
	}
	s, ok := m.sessions[userID]
	return s, ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Subscribe returns a channel receiving session events. The channel is
// buffered; events are dropped (with a log line) rather than blocking a
// slow subscriber.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, 16)
	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()
	return ch
}

// SweepExpired removes sessions with expired tokens, emitting an expired
// event for each. Returns the number of sessions removed.
func (m *Manager) SweepExpired(ctx context.Context, now time.Time) int {
	m.mu.Lock()
	var expired []Session
	for id, s := range m.sessions {
		if s.Expired(now) {
			expired = append(expired, s)
			delete(m.sessions, id)
			delete(m.byToken, s.Token)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		if m.repo != nil {
			if err := m.repo.DeleteSession(ctx, s.User.ID); err != nil {
				log.Printf("Failed to remove expired session for user %d: %v", s.User.ID, err)
			}
		}
		m.notify(Event{Type: EventExpired, Session: s})
	}

	return len(expired)
}

// notify fans an event out to all subscribers.
func (m *Manager) notify(event Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
			log.Printf("Session event dropped for slow subscriber (type %s, user %d)",
				event.Type, event.Session.User.ID)
		}
	}
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. A malformed token or missing claim yields a zero time.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time.UTC()
}
