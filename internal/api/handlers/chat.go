package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rentease/gateway/internal/api/middleware"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/websocket"
)

// ListChats returns the signed-in landlord's conversations.
func ListChats(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to view chats")
			return
		}

		chats, err := client.ListLandlordChats(r.Context(), s.User.ID)
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}
		if chats == nil {
			chats = []rentease.Chat{}
		}
		writeJSON(w, chats)
	}
}

// ListMessages returns the messages in a conversation.
func ListMessages(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chatID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid chat ID")
			return
		}

		messages, err := client.ListMessages(r.Context(), chatID)
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}
		if messages == nil {
			messages = []rentease.Message{}
		}
		writeJSON(w, messages)
	}
}

// SendMessage posts a message and pushes it to the other participant's
// websocket clients.
func SendMessage(client *rentease.Client, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to send messages")
			return
		}

		chatID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid chat ID")
			return
		}

		var req struct {
			Content     string `json:"content"`
			RecipientID int64  `json:"recipientId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "content is required")
			return
		}

		message, err := client.SendMessage(r.Context(), chatID, rentease.MessageRequest{
			SenderID: s.User.ID,
			Content:  req.Content,
		})
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		if broadcaster != nil && req.RecipientID != 0 {
			broadcaster.ChatMessage(req.RecipientID, message.ChatID, message.SenderID,
				message.Content, message.CreatedAt)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(message)
	}
}

// CreateChat opens (or returns) the conversation between the signed-in
// tenant and a property's landlord.
func CreateChat(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Sign in to start a chat")
			return
		}

		var req struct {
			PropertyID int64 `json:"propertyId"`
			LandlordID int64 `json:"landlordId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PropertyID == 0 || req.LandlordID == 0 {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "propertyId and landlordId are required")
			return
		}

		chat, err := client.CreateChat(r.Context(), rentease.ChatRequest{
			PropertyID: req.PropertyID,
			TenantID:   s.User.ID,
			LandlordID: req.LandlordID,
		})
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(chat)
	}
}
