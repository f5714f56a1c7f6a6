package rentease

import (
	"context"
	"fmt"
)

// ChatRequest is the body for opening a conversation about a property.
type ChatRequest struct {
	PropertyID int64 `json:"propertyId"`
	TenantID   int64 `json:"tenantId"`
	LandlordID int64 `json:"landlordId"`
}

// MessageRequest is the body for sending a chat message.
type MessageRequest struct {
	SenderID int64  `json:"senderId"`
	Content  string `json:"content"`
}

// ListLandlordChats returns all conversations involving a landlord.
func (c *Client) ListLandlordChats(ctx context.Context, landlordID int64) ([]Chat, error) {
	var chats []Chat
	path := fmt.Sprintf("/chats/landlord/%d", landlordID)
	if err := c.get(ctx, path, nil, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// ListMessages returns the messages in a conversation.
func (c *Client) ListMessages(ctx context.Context, chatID int64) ([]Message, error) {
	var messages []Message
	path := fmt.Sprintf("/chats/%d/messages", chatID)
	if err := c.get(ctx, path, nil, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts a message into a conversation.
func (c *Client) SendMessage(ctx context.Context, chatID int64, req MessageRequest) (*Message, error) {
	var message Message
	path := fmt.Sprintf("/chats/%d/messages", chatID)
	if err := c.postJSON(ctx, path, req, &message); err != nil {
		return nil, err
	}
	return &message, nil
}

// CreateChat opens a conversation between a tenant and a landlord about a
// property, or returns the existing one.
func (c *Client) CreateChat(ctx context.Context, req ChatRequest) (*Chat, error) {
	var chat Chat
	if err := c.postJSON(ctx, "/chats", req, &chat); err != nil {
		return nil, err
	}
	return &chat, nil
}
