package store

import "context"

// CoreAI is an AI inference endpoint configuration (spec §3).
type CoreAI struct {
	ID             string
	Name           string
	APIEndpoint    string
	AuthRequired   bool
	AuthToken      string
	TimeoutSeconds int
	IsActive       bool
	MetaData       map[string]any
	CreatedTs      int64
	UpdatedTs      int64
}

// FindCoreAI filters CoreAI lookups.
type FindCoreAI struct {
	ID       *string
	Name     *string
	IsActive *bool
}

// UpdateCoreAI carries partial updates to a CoreAI record.
type UpdateCoreAI struct {
	ID             string
	Name           *string
	APIEndpoint    *string
	AuthRequired   *bool
	AuthToken      *string
	TimeoutSeconds *int
	IsActive       *bool
	MetaData       map[string]any
}

func (s *Store) CreateCoreAI(ctx context.Context, create *CoreAI) (*CoreAI, error) {
	return s.driver.CreateCoreAI(ctx, create)
}

func (s *Store) GetCoreAI(ctx context.Context, id string) (*CoreAI, error) {
	return s.driver.GetCoreAI(ctx, id)
}

func (s *Store) ListCoreAIs(ctx context.Context, find *FindCoreAI) ([]*CoreAI, error) {
	return s.driver.ListCoreAIs(ctx, find)
}

func (s *Store) UpdateCoreAI(ctx context.Context, update *UpdateCoreAI) (*CoreAI, error) {
	ai, err := s.driver.UpdateCoreAI(ctx, update)
	if err != nil {
		return nil, err
	}
	return ai, nil
}

// DeleteCoreAI hard-deletes a CoreAI record. The Driver refuses with
// ErrConflict while any Bot, active or not, still references it.
func (s *Store) DeleteCoreAI(ctx context.Context, id string) error {
	if err := s.driver.DeleteCoreAI(ctx, id); err != nil {
		return err
	}
	return nil
}
