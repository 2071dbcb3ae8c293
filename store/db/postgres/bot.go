package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreateBot(ctx context.Context, create *store.Bot) (*store.Bot, error) {
	stmt := `INSERT INTO bot (id, name, language, is_active, core_ai_id, platform_id, created_ts, updated_ts)
		VALUES (` + placeholders(8) + `)`
	_, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.Name, create.Language, create.IsActive, create.CoreAIID, create.PlatformID, create.CreatedTs, create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create bot")
	}
	return create, nil
}

func (d *DB) GetBot(ctx context.Context, id string) (*store.Bot, error) {
	list, err := d.ListBots(ctx, &store.FindBot{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) ListBots(ctx context.Context, find *store.FindBot) ([]*store.Bot, error) {
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

	query := `SELECT id, name, language, is_active, core_ai_id, platform_id, created_ts, updated_ts
		FROM bot WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list bot")
	}
	defer rows.Close()

	list := make([]*store.Bot, 0)
	for rows.Next() {
		b := &store.Bot{}
		if err := rows.Scan(&b.ID, &b.Name, &b.Language, &b.IsActive, &b.CoreAIID, &b.PlatformID, &b.CreatedTs, &b.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan bot")
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (d *DB) UpdateBot(ctx context.Context, update *store.UpdateBot) (*store.Bot, error) {
	set, args := []string{}, []any{}

	if update.Name != nil {
		set, args = append(set, "name = "+placeholder(len(args)+1)), append(args, *update.Name)
	}
	if update.Language != nil {
		set, args = append(set, "language = "+placeholder(len(args)+1)), append(args, *update.Language)
	}
	if update.IsActive != nil {
		set, args = append(set, "is_active = "+placeholder(len(args)+1)), append(args, *update.IsActive)
	}
	if update.CoreAIID != nil {
		set, args = append(set, "core_ai_id = "+placeholder(len(args)+1)), append(args, *update.CoreAIID)
	}
	if update.PlatformID != nil {
		set, args = append(set, "platform_id = "+placeholder(len(args)+1)), append(args, *update.PlatformID)
	}

	if len(set) == 0 {
		return d.GetBot(ctx, update.ID)
	}

	args = append(args, update.ID)
	stmt := `UPDATE bot SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, name, language, is_active, core_ai_id, platform_id, created_ts, updated_ts`

	b := &store.Bot{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&b.ID, &b.Name, &b.Language, &b.IsActive, &b.CoreAIID, &b.PlatformID, &b.CreatedTs, &b.UpdatedTs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to update bot")
	}
	return b, nil
}

func (d *DB) DeleteBot(ctx context.Context, id string) error {
	var refCount int
	if err := d.db.QueryRowContext(ctx, "SELECT count(*) FROM conversation WHERE bot_id = "+placeholder(1), id).Scan(&refCount); err != nil {
		return errors.Wrap(err, "failed to check bot references")
	}
	if refCount > 0 {
		return store.ErrConflict
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM bot WHERE id = "+placeholder(1), id)
	if err != nil {
		return errors.Wrap(err, "failed to delete bot")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
