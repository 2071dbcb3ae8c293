package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreatePlatform(ctx context.Context, create *store.Platform) (*store.Platform, error) {
	meta, err := json.Marshal(create.MetaData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `INSERT INTO platform (id, name, base_url, rate_limit_per_minute, auth_required, auth_token, is_active, metadata, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID, create.Name, create.BaseURL, create.RateLimitPerMinute, create.AuthRequired,
		create.AuthToken, create.IsActive, meta, create.CreatedTs, create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create platform")
	}
	return create, nil
}

func (d *DB) GetPlatform(ctx context.Context, id string) (*store.Platform, error) {
	list, err := d.ListPlatforms(ctx, &store.FindPlatform{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) ListPlatforms(ctx context.Context, find *store.FindPlatform) ([]*store.Platform, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.Name != nil {
		where, args = append(where, "name = ?"), append(args, *find.Name)
	}
	if find.IsActive != nil {
		where, args = append(where, "is_active = ?"), append(args, *find.IsActive)
	}

	query := `SELECT id, name, base_url, rate_limit_per_minute, auth_required, auth_token, is_active, metadata, created_ts, updated_ts
		FROM platform WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list platform")
	}
	defer rows.Close()

	list := make([]*store.Platform, 0)
	for rows.Next() {
		p := &store.Platform{}
		var meta []byte
		if err := rows.Scan(&p.ID, &p.Name, &p.BaseURL, &p.RateLimitPerMinute, &p.AuthRequired,
			&p.AuthToken, &p.IsActive, &meta, &p.CreatedTs, &p.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan platform")
		}
		if err := json.Unmarshal(meta, &p.MetaData); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal metadata")
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (d *DB) UpdatePlatform(ctx context.Context, update *store.UpdatePlatform) (*store.Platform, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = ?"), append(args, *update.Name)
	}
	if update.BaseURL != nil {
		set, args = append(set, "base_url = ?"), append(args, *update.BaseURL)
	}
	if update.RateLimitPerMinute != nil {
		set, args = append(set, "rate_limit_per_minute = ?"), append(args, *update.RateLimitPerMinute)
	}
	if update.AuthRequired != nil {
		set, args = append(set, "auth_required = ?"), append(args, *update.AuthRequired)
	}
	if update.AuthToken != nil {
		set, args = append(set, "auth_token = ?"), append(args, *update.AuthToken)
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = ?"), append(args, *update.IsActive)
	}
	if update.MetaData != nil {
		meta, err := json.Marshal(update.MetaData)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal metadata")
		}
		set, args = append(set, "metadata = ?"), append(args, meta)
	}

	if len(set) == 0 {
		return d.GetPlatform(ctx, update.ID)
	}

	args = append(args, update.ID)
	stmt := `UPDATE platform SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update platform")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, store.ErrNotFound
	}
	return d.GetPlatform(ctx, update.ID)
}

func (d *DB) DeletePlatform(ctx context.Context, id string) error {
	var refCount int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM bot WHERE platform_id = ?", id).Scan(&refCount); err != nil {
		return errors.Wrap(err, "failed to check platform references")
	}
	if refCount > 0 {
		return store.ErrConflict
	}

	if _, err := d.db.ExecContext(ctx, "DELETE FROM platform_action WHERE platform_id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete platform actions")
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM platform WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete platform")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
