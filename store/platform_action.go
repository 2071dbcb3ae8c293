package store

import "context"

// PlatformActionMethod is the HTTP method a PlatformAction performs.
type PlatformActionMethod string

const (
	PlatformActionMethodGet    PlatformActionMethod = "GET"
	PlatformActionMethodPost   PlatformActionMethod = "POST"
	PlatformActionMethodPut    PlatformActionMethod = "PUT"
	PlatformActionMethodDelete PlatformActionMethod = "DELETE"
)

// PlatformAction is a single callable route on a Platform (spec §3).
type PlatformAction struct {
	ID         string
	PlatformID string
	Name       string
	Method     PlatformActionMethod
	Path       string
	IsActive   bool
	CreatedTs  int64
	UpdatedTs  int64
}

type FindPlatformAction struct {
	ID         *string
	PlatformID *string
	IsActive   *bool
}

type UpdatePlatformAction struct {
	ID       string
	Name     *string
	Method   *PlatformActionMethod
	Path     *string
	IsActive *bool
}

func (s *Store) CreatePlatformAction(ctx context.Context, create *PlatformAction) (*PlatformAction, error) {
	return s.driver.CreatePlatformAction(ctx, create)
}

func (s *Store) ListPlatformActions(ctx context.Context, find *FindPlatformAction) ([]*PlatformAction, error) {
	return s.driver.ListPlatformActions(ctx, find)
}

func (s *Store) UpdatePlatformAction(ctx context.Context, update *UpdatePlatformAction) (*PlatformAction, error) {
	return s.driver.UpdatePlatformAction(ctx, update)
}

// DeletePlatformAction hard-deletes a PlatformAction (spec §3: always hard-deletable).
func (s *Store) DeletePlatformAction(ctx context.Context, id string) error {
	return s.driver.DeletePlatformAction(ctx, id)
}
