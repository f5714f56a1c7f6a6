package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeViewRefreshed      MessageType = "view.refreshed"
	TypeViewRefreshError   MessageType = "view.refresh_error"
	TypeMutationRolledBack MessageType = "mutation.rolled_back"
	TypeSessionSaved       MessageType = "session.saved"
	TypeSessionCleared     MessageType = "session.cleared"
	TypeSessionExpired     MessageType = "session.expired"
	TypeChatMessage        MessageType = "chat.message"
	TypeNotification       MessageType = "notification"

	// Client -> Server command types
	TypePing MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ViewRefreshedPayload is the payload for view.refreshed events.
type ViewRefreshedPayload struct {
	UserID    int64     `json:"user_id"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ViewRefreshErrorPayload is the payload for view.refresh_error events.
type ViewRefreshErrorPayload struct {
	UserID  int64  `json:"user_id"`
	Message string `json:"message"`
}

// MutationRolledBackPayload is the payload for mutation.rolled_back events.
// Mutation is one of "toggle_favorite", "request_booking", "cancel_booking",
// "delete_listing". TargetID is the property ID, except for cancellations
// where it is the booking ID.
type MutationRolledBackPayload struct {
	UserID   int64  `json:"user_id"`
	TargetID int64  `json:"target_id"`
	Mutation string `json:"mutation"`
	Reason   string `json:"reason"`
}

// SessionPayload is the payload for session.* events.
type SessionPayload struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// ChatMessagePayload is the payload for chat.message events.
type ChatMessagePayload struct {
	ChatID   int64     `json:"chat_id"`
	SenderID int64     `json:"sender_id"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sent_at"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
