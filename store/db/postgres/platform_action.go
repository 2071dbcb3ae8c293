package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreatePlatformAction(ctx context.Context, create *store.PlatformAction) (*store.PlatformAction, error) {
	stmt := `INSERT INTO platform_action (id, platform_id, name, method, path, is_active, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)`
	_, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.PlatformID, create.Name, create.Method, create.Path, create.IsActive, create.CreatedTs, create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create platform_action")
	}
	return create, nil
}

func (d *DB) ListPlatformActions(ctx context.Context, find *store.FindPlatformAction) ([]*store.PlatformAction, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.PlatformID != nil {
		where, args = append(where, "platform_id = "+placeholder(len(args)+1)), append(args, *find.PlatformID)
	}
	if find.IsActive != nil {
		where, args = append(where, "is_active = "+placeholder(len(args)+1)), append(args, *find.IsActive)
	}

	query := `SELECT id, platform_id, name, method, path, is_active, created_ts, updated_ts
		FROM platform_action WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list platform_action")
	}
	defer rows.Close()

	list := make([]*store.PlatformAction, 0)
	for rows.Next() {
		a := &store.PlatformAction{}
		if err := rows.Scan(&a.ID, &a.PlatformID, &a.Name, &a.Method, &a.Path, &a.IsActive, &a.CreatedTs, &a.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan platform_action")
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (d *DB) UpdatePlatformAction(ctx context.Context, update *store.UpdatePlatformAction) (*store.PlatformAction, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Method != nil {
		set, args = append(set, "method = "+placeholder(len(args)+1)), append(args, *update.Method)
	}
	if update.Path != nil {
		set, args = append(set, "path = "+placeholder(len(args)+1)), append(args, *update.Path)
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = "+placeholder(len(args)+1)), append(args, *update.IsActive)
	}

	if len(set) == 0 {
		list, err := d.ListPlatformActions(ctx, &store.FindPlatformAction{ID: &update.ID})
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, store.ErrNotFound
		}
		return list[0], nil
	}

	args = append(args, update.ID)
	stmt := `UPDATE platform_action SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, platform_id, name, method, path, is_active, created_ts, updated_ts`

	a := &store.PlatformAction{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&a.ID, &a.PlatformID, &a.Name, &a.Method, &a.Path, &a.IsActive, &a.CreatedTs, &a.UpdatedTs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update platform_action")
	}
	return a, nil
}

func (d *DB) DeletePlatformAction(ctx context.Context, id string) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM platform_action WHERE id = "+placeholder(1), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete platform_action")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
