package store

import "context"

// Bot binds one CoreAI and one Platform for a set of conversations (spec §3).
type Bot struct {
	ID         string
	Name       string
	Language   string
	IsActive   bool
	CoreAIID   string
	PlatformID string
	CreatedTs  int64
	UpdatedTs  int64
}

type FindBot struct {
	ID       *string
	Name     *string
	IsActive *bool
}

type UpdateBot struct {
	ID         string
	Name       *string
	Language   *string
	IsActive   *bool
	CoreAIID   *string
	PlatformID *string
}

func (s *Store) CreateBot(ctx context.Context, create *Bot) (*Bot, error) {
	if create.Language == "" {
		create.Language = "vi"
	}
	return s.driver.CreateBot(ctx, create)
}

func (s *Store) GetBot(ctx context.Context, id string) (*Bot, error) {
	return s.driver.GetBot(ctx, id)
}

func (s *Store) ListBots(ctx context.Context, find *FindBot) ([]*Bot, error) {
	return s.driver.ListBots(ctx, find)
}

func (s *Store) UpdateBot(ctx context.Context, update *UpdateBot) (*Bot, error) {
	b, err := s.driver.UpdateBot(ctx, update)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// DeleteBot fails with ErrConflict if any Conversation still references the
// bot (spec §3: "Cannot be deleted while referenced by a Conversation").
func (s *Store) DeleteBot(ctx context.Context, id string) error {
	return s.driver.DeleteBot(ctx, id)
}
