package websocket

import (
	"log"
	"time"

	"github.com/rentease/gateway/internal/session"
)

// EventBroadcaster handles broadcasting typed gateway events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// ViewRefreshed notifies a user's clients that their merged view changed.
func (b *EventBroadcaster) ViewRefreshed(userID int64, records int, fetchedAt time.Time) {
	payload := ViewRefreshedPayload{
		UserID:    userID,
		Records:   records,
		FetchedAt: fetchedAt,
	}
	b.sendToUser(userID, NewMessage(TypeViewRefreshed, payload))
}

// ViewRefreshFailed notifies a user's clients that a background refresh
// failed and the view may be stale.
func (b *EventBroadcaster) ViewRefreshFailed(userID int64, err error) {
	payload := ViewRefreshErrorPayload{
		UserID:  userID,
		Message: err.Error(),
	}
	b.sendToUser(userID, NewMessage(TypeViewRefreshError, payload))
}

// MutationRolledBack notifies a user's clients that an optimistic change was
// reverted.
func (b *EventBroadcaster) MutationRolledBack(userID, targetID int64, mutation string, err error) {
	payload := MutationRolledBackPayload{
		UserID:   userID,
		TargetID: targetID,
		Mutation: mutation,
		Reason:   err.Error(),
	}
	b.sendToUser(userID, NewMessage(TypeMutationRolledBack, payload))
}

// SessionEvent forwards a session state change to the affected user.
func (b *EventBroadcaster) SessionEvent(event session.Event) {
	var msgType MessageType
	switch event.Type {
	case session.EventSaved:
		msgType = TypeSessionSaved
	case session.EventCleared:
		msgType = TypeSessionCleared
	case session.EventExpired:
		msgType = TypeSessionExpired
	default:
		return
	}

	payload := SessionPayload{
		UserID:    event.Session.User.ID,
		Email:     event.Session.User.Email,
		Role:      string(event.Session.User.Role),
		ExpiresAt: event.Session.ExpiresAt,
	}
	b.sendToUser(event.Session.User.ID, NewMessage(msgType, payload))
}

// ChatMessage notifies a chat participant of a new message.
func (b *EventBroadcaster) ChatMessage(recipientID, chatID, senderID int64, content string, sentAt time.Time) {
	payload := ChatMessagePayload{
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
		SentAt:   sentAt,
	}
	b.sendToUser(recipientID, NewMessage(TypeChatMessage, payload))
}

// Notify sends a notification to all connected clients.
func (b *EventBroadcaster) Notify(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}
	b.broadcast(NewMessage(TypeNotification, payload))
}

func (b *EventBroadcaster) sendToUser(userID int64, msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.SendToUser(userID, data)
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
