package store

import "context"

// Platform is an outbound messaging/CRM platform configuration (spec §3).
type Platform struct {
	ID                 string
	Name               string
	BaseURL            string
	RateLimitPerMinute int
	AuthRequired       bool
	AuthToken          string
	IsActive           bool
	MetaData           map[string]any
	CreatedTs          int64
	UpdatedTs          int64
}

type FindPlatform struct {
	ID       *string
	Name     *string
	IsActive *bool
}

type UpdatePlatform struct {
	ID                 string
	Name               *string
	BaseURL            *string
	RateLimitPerMinute *int
	AuthRequired       *bool
	AuthToken          *string
	IsActive           *bool
	MetaData           map[string]any
}

func (s *Store) CreatePlatform(ctx context.Context, create *Platform) (*Platform, error) {
	return s.driver.CreatePlatform(ctx, create)
}

func (s *Store) GetPlatform(ctx context.Context, id string) (*Platform, error) {
	return s.driver.GetPlatform(ctx, id)
}

func (s *Store) ListPlatforms(ctx context.Context, find *FindPlatform) ([]*Platform, error) {
	return s.driver.ListPlatforms(ctx, find)
}

func (s *Store) UpdatePlatform(ctx context.Context, update *UpdatePlatform) (*Platform, error) {
	p, err := s.driver.UpdatePlatform(ctx, update)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePlatform hard-deletes a Platform and its PlatformActions. The
// Driver refuses with ErrConflict while any Bot still references it.
func (s *Store) DeletePlatform(ctx context.Context, id string) error {
	if err := s.driver.DeletePlatform(ctx, id); err != nil {
		return err
	}
	return nil
}
