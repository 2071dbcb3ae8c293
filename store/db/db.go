// Package db selects and constructs the store.Driver backing a Profile.
package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/internal/profile"
	"github.com/hrygo/chatrelay/store"
	"github.com/hrygo/chatrelay/store/db/postgres"
	"github.com/hrygo/chatrelay/store/db/sqlite"
)

// NewDriver dispatches to the backend named by profile.Driver.
func NewDriver(ctx context.Context, p *profile.Profile) (store.Driver, error) {
	switch p.Driver {
	case "postgres":
		return postgres.NewDB(ctx, p)
	case "sqlite":
		return sqlite.NewDB(ctx, p)
	default:
		return nil, errors.Errorf("unsupported db driver: %s", p.Driver)
	}
}
