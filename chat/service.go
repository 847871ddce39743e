package chat

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/kkcos-go/apperror"
)

// ChatService persists chat messages and publishes new ones to the
// broadcaster.
type ChatService struct {
	db          *pgxpool.Pool
	broadcaster *Broadcaster
}

// NewChatService creates a new ChatService.
func NewChatService(db *pgxpool.Pool, broadcaster *Broadcaster) *ChatService {
	return &ChatService{db: db, broadcaster: broadcaster}
}

// Broadcaster exposes the broadcaster for the SSE handler.
func (s *ChatService) Broadcaster() *Broadcaster {
	return s.broadcaster
}

// GetMessages returns the latest limit messages in chronological order
// (oldest first), each joined with its author's username.
func (s *ChatService) GetMessages(ctx context.Context, limit int) ([]MessageView, error) {
	// The newest messages are selected first, then the page is reversed so
	// clients render it oldest-to-newest.
	query := `SELECT m.id, m.user_id, u.username, m.content, m."timestamp"
              FROM chat_messages m
              JOIN users u ON u.id = m.user_id
              ORDER BY m."timestamp" DESC, m.id DESC
              LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to query chat messages", err)
	}
	defer rows.Close()

	messages := make([]MessageView, 0, limit)
	for rows.Next() {
		var msg MessageView
		if err := rows.Scan(&msg.ID, &msg.UserID, &msg.Username, &msg.Content, &msg.Timestamp); err != nil {
			return nil, apperror.NewDatabaseError("failed to scan chat message", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to query chat messages", err)
	}

	reverse(messages)
	return messages, nil
}

// SendMessage stores a message for the given user and fans it out to stream
// subscribers.
func (s *ChatService) SendMessage(ctx context.Context, req SendMessageRequest) (*MessageView, error) {
	var username string
	err := s.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, req.UserID).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with id %d not found", req.UserID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to look up user", err)
	}

	msg := MessageView{
		UserID:   req.UserID,
		Username: username,
		Content:  req.Content,
	}
	query := `INSERT INTO chat_messages (user_id, content)
              VALUES ($1, $2)
              RETURNING id, "timestamp"`
	if err := s.db.QueryRow(ctx, query, req.UserID, req.Content).Scan(&msg.ID, &msg.Timestamp); err != nil {
		return nil, apperror.NewDatabaseError("failed to store chat message", err)
	}

	s.broadcaster.Publish(msg)
	return &msg, nil
}

// reverse flips a message slice in place.
func reverse(messages []MessageView) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}
