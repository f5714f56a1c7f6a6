package websocket

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/session"
)

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()

	deadline := time.After(time.Second)
	for hub.ClientCount() != want {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %d clients, have %d", want, hub.ClientCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// envelope mirrors Message with a raw payload so tests can decode the
// payload into its typed form.
type envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func receive(t *testing.T, client *Client) envelope {
	t.Helper()

	select {
	case raw := <-client.Send():
		var msg envelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("decoding message: %v", err)
		}
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a message")
		return envelope{}
	}
}

func expectSilence(t *testing.T, client *Client) {
	t.Helper()

	select {
	case raw := <-client.Send():
		t.Fatalf("unexpected message: %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSendToUserTargetsOnlyThatUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := NewClient(hub, 7)
	bob := NewClient(hub, 8)
	hub.Register(alice)
	hub.Register(bob)
	waitForClients(t, hub, 2)

	hub.SendToUser(7, []byte(`{"type":"notification"}`))

	msg := receive(t, alice)
	if msg.Type != TypeNotification {
		t.Errorf("expected notification, got %s", msg.Type)
	}
	expectSilence(t, bob)
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := NewClient(hub, 7)
	anonymous := NewClient(hub, 0)
	hub.Register(alice)
	hub.Register(anonymous)
	waitForClients(t, hub, 2)

	hub.Broadcast([]byte(`{"type":"view.refreshed"}`))

	if msg := receive(t, alice); msg.Type != TypeViewRefreshed {
		t.Errorf("expected view.refreshed, got %s", msg.Type)
	}
	if msg := receive(t, anonymous); msg.Type != TypeViewRefreshed {
		t.Errorf("anonymous clients receive broadcasts, got %s", msg.Type)
	}
}

func TestEventBroadcasterMutationRollback(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, 7)
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster := NewEventBroadcaster(hub)
	broadcaster.MutationRolledBack(7, 42, "toggle_favorite", errors.New("backend rejected"))

	msg := receive(t, client)
	if msg.Type != TypeMutationRolledBack {
		t.Fatalf("expected mutation.rolled_back, got %s", msg.Type)
	}

	var payload MutationRolledBackPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if payload.TargetID != 42 || payload.Mutation != "toggle_favorite" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestEventBroadcasterSessionEvents(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, 7)
	hub.Register(client)
	waitForClients(t, hub, 1)

	broadcaster := NewEventBroadcaster(hub)
	broadcaster.SessionEvent(session.Event{
		Type:    session.EventExpired,
		Session: session.Session{User: rentease.User{ID: 7}},
	})

	msg := receive(t, client)
	if msg.Type != TypeSessionExpired {
		t.Errorf("expected session.expired, got %s", msg.Type)
	}
}
