package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreateCoreAI(ctx context.Context, create *store.CoreAI) (*store.CoreAI, error) {
	meta, err := json.Marshal(create.MetaData)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal metadata")
	}

	stmt := `INSERT INTO core_ai (id, name, api_endpoint, auth_required, auth_token, timeout_seconds, is_active, metadata, created_ts, updated_ts)
		VALUES (` + placeholders(10) + `)`
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID, create.Name, create.APIEndpoint, create.AuthRequired, create.AuthToken,
		create.TimeoutSeconds, create.IsActive, meta, create.CreatedTs, create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create core_ai")
	}
	return create, nil
}

func (d *DB) GetCoreAI(ctx context.Context, id string) (*store.CoreAI, error) {
	list, err := d.ListCoreAIs(ctx, &store.FindCoreAI{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) ListCoreAIs(ctx context.Context, find *store.FindCoreAI) ([]*store.CoreAI, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.Name != nil {
		where, args = append(where, "name = "+placeholder(len(args)+1)), append(args, *find.Name)
	}
	if find.IsActive != nil {
		where, args = append(where, "is_active = "+placeholder(len(args)+1)), append(args, *find.IsActive)
	}

	query := `SELECT id, name, api_endpoint, auth_required, auth_token, timeout_seconds, is_active, metadata, created_ts, updated_ts
		FROM core_ai WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list core_ai")
	}
	defer rows.Close()

	list := make([]*store.CoreAI, 0)
	for rows.Next() {
		c := &store.CoreAI{}
		var meta []byte
		if err := rows.Scan(&c.ID, &c.Name, &c.APIEndpoint, &c.AuthRequired, &c.AuthToken,
			&c.TimeoutSeconds, &c.IsActive, &meta, &c.CreatedTs, &c.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan core_ai")
		}
		if err := json.Unmarshal(meta, &c.MetaData); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal metadata")
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (d *DB) UpdateCoreAI(ctx context.Context, update *store.UpdateCoreAI) (*store.CoreAI, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.APIEndpoint != nil {
		set, args = append(set, "api_endpoint = "+placeholder(len(args)+1)), append(args, *update.APIEndpoint)
	}
	if update.AuthRequired != nil {
		set, args = append(set, "auth_required = "+placeholder(len(args)+1)), append(args, *update.AuthRequired)
	}
	if update.AuthToken != nil {
		set, args = append(set, "auth_token = "+placeholder(len(args)+1)), append(args, *update.AuthToken)
	}
	if update.TimeoutSeconds != nil {
		set, args = append(set, "timeout_seconds = "+placeholder(len(args)+1)), append(args, *update.TimeoutSeconds)
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = "+placeholder(len(args)+1)), append(args, *update.IsActive)
	}
	if update.MetaData != nil {
		meta, err := json.Marshal(update.MetaData)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal metadata")
		}
		set, args = append(set, "metadata = "+placeholder(len(args)+1)), append(args, meta)
	}

	if len(set) == 0 {
		return d.GetCoreAI(ctx, update.ID)
	}

	args = append(args, update.ID)
	stmt := `UPDATE core_ai SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, name, api_endpoint, auth_required, auth_token, timeout_seconds, is_active, metadata, created_ts, updated_ts`

	c := &store.CoreAI{}
	var meta []byte
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&c.ID, &c.Name, &c.APIEndpoint, &c.AuthRequired, &c.AuthToken,
		&c.TimeoutSeconds, &c.IsActive, &meta, &c.CreatedTs, &c.UpdatedTs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update core_ai")
	}
	if err := json.Unmarshal(meta, &c.MetaData); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal metadata")
	}
	return c, nil
}

func (d *DB) DeleteCoreAI(ctx context.Context, id string) error {
	var refCount int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM bot WHERE core_ai_id = "+placeholder(1), id).Scan(&refCount); err != nil {
		return errors.Wrap(err, "failed to check core_ai references")
	}
	if refCount > 0 {
		return store.ErrConflict
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM core_ai WHERE id = "+placeholder(1), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete core_ai")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
