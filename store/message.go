package store

import "context"

// MessageRole identifies who produced a Message (spec §3).
type MessageRole string

const (
	MessageRoleUser MessageRole = "user"
	MessageRoleBot  MessageRole = "bot"
	MessageRoleSale MessageRole = "sale"
)

// Message is one turn appended to a Conversation's history (spec §3).
type Message struct {
	ID             string
	ConversationID string
	Role           MessageRole
	Content        string
	ContentType    string // default "text/plain"
	CreatedTs      int64
}

type FindMessage struct {
	ConversationID *string
	Role           *MessageRole
	Limit          int
}

func (s *Store) CreateMessage(ctx context.Context, create *Message) (*Message, error) {
	if create.ContentType == "" {
		create.ContentType = "text/plain"
	}
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}
