// Package store is the data-access facade for chatrelay's admin-managed
// entities: CoreAI, Platform, PlatformAction, Bot, Conversation, and
// Message. It wraps a pluggable Driver with straight passthrough; the
// read-through caching and typed defaults the dispatch hot path needs
// live one layer up, in configstore (spec §4.1).
package store

import "context"

// Driver is implemented by each supported backend (postgres, sqlite).
type Driver interface {
	CreateCoreAI(ctx context.Context, create *CoreAI) (*CoreAI, error)
	GetCoreAI(ctx context.Context, id string) (*CoreAI, error)
	ListCoreAIs(ctx context.Context, find *FindCoreAI) ([]*CoreAI, error)
	UpdateCoreAI(ctx context.Context, update *UpdateCoreAI) (*CoreAI, error)
	DeleteCoreAI(ctx context.Context, id string) error

	CreatePlatform(ctx context.Context, create *Platform) (*Platform, error)
	GetPlatform(ctx context.Context, id string) (*Platform, error)
	ListPlatforms(ctx context.Context, find *FindPlatform) ([]*Platform, error)
	UpdatePlatform(ctx context.Context, update *UpdatePlatform) (*Platform, error)
	DeletePlatform(ctx context.Context, id string) error

	CreatePlatformAction(ctx context.Context, create *PlatformAction) (*PlatformAction, error)
	ListPlatformActions(ctx context.Context, find *FindPlatformAction) ([]*PlatformAction, error)
	UpdatePlatformAction(ctx context.Context, update *UpdatePlatformAction) (*PlatformAction, error)
	DeletePlatformAction(ctx context.Context, id string) error

	CreateBot(ctx context.Context, create *Bot) (*Bot, error)
	GetBot(ctx context.Context, id string) (*Bot, error)
	ListBots(ctx context.Context, find *FindBot) ([]*Bot, error)
	UpdateBot(ctx context.Context, update *UpdateBot) (*Bot, error)
	DeleteBot(ctx context.Context, id string) error

	CreateConversation(ctx context.Context, create *Conversation) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	GetConversationByExternalID(ctx context.Context, conversationID string) (*Conversation, error)
	ListConversations(ctx context.Context, find *FindConversation) ([]*Conversation, error)
	UpdateConversation(ctx context.Context, update *UpdateConversation) (*Conversation, error)
	DeleteConversation(ctx context.Context, id string) error

	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)

	Close() error
}

// Store wraps a Driver with the entity-shaped methods the admin surface
// and configstore program against.
type Store struct {
	driver Driver
}

// New wraps driver with the Store facade.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

func (s *Store) Close() error {
	return s.driver.Close()
}
