package store

import "context"

// ConversationStatus is the lifecycle state of a Conversation (spec §3).
type ConversationStatus string

const (
	ConversationStatusActive      ConversationStatus = "active"
	ConversationStatusEnded       ConversationStatus = "ended"
	ConversationStatusPaused      ConversationStatus = "paused"
	ConversationStatusTransferred ConversationStatus = "transferred"
)

// Conversation is a platform-scoped thread of messages owned by a Bot (spec §3).
type Conversation struct {
	ID             string
	ConversationID string // external, platform-scoped identifier
	BotID          string
	Status         ConversationStatus
	Context        map[string]any
	History        string // last fully-processed history string (I3)
	MessageCount   int
	CreatedTs      int64
	UpdatedTs      int64
}

type FindConversation struct {
	ID             *string
	ConversationID *string
	BotID          *string
	Status         *ConversationStatus
}

type UpdateConversation struct {
	ID           string
	Status       *ConversationStatus
	Context      map[string]any
	History      *string
	MessageCount *int
}

func (s *Store) CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error) {
	if create.Status == "" {
		create.Status = ConversationStatusActive
	}
	return s.driver.CreateConversation(ctx, create)
}

func (s *Store) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	return s.driver.GetConversation(ctx, id)
}

// GetConversationByExternalID looks up a Conversation by its platform-scoped
// conversation_id, the identifier callers of the orchestrator pass.
func (s *Store) GetConversationByExternalID(ctx context.Context, conversationID string) (*Conversation, error) {
	return s.driver.GetConversationByExternalID(ctx, conversationID)
}

func (s *Store) ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error) {
	return s.driver.ListConversations(ctx, find)
}

// UpdateConversation applies a partial update. History is append-only at
// the application level (I3); callers must never pass a shorter history.
func (s *Store) UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error) {
	return s.driver.UpdateConversation(ctx, update)
}

func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	return s.driver.DeleteConversation(ctx, id)
}
