// Package chat implements the shared chat room: persisted message history
// and live fan-out of new messages to SSE subscribers.
package chat

import "time"

// ChatMessage is a persisted chat message.
type ChatMessage struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageView is a chat message joined with its author's username, as
// returned by the history endpoint and pushed to stream subscribers.
type MessageView struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMessageRequest is the payload for posting a message.
type SendMessageRequest struct {
	UserID  int    `json:"user_id" example:"1"`
	Content string `json:"content" example:"hola"`
}

// SendMessageResponse acknowledges a stored message.
type SendMessageResponse struct {
	Status    string `json:"status" example:"ok"`
	MessageID int    `json:"message_id" example:"17"`
}
