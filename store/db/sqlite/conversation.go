package sqlite

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreateConversation(ctx context.Context, create *store.Conversation) (*store.Conversation, error) {
	ctxData, err := json.Marshal(create.Context)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal context")
	}

	stmt := `INSERT INTO conversation (id, conversation_id, bot_id, status, context, history, message_count, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = d.db.ExecContext(ctx, stmt,
		create.ID, create.ConversationID, create.BotID, create.Status, ctxData, create.History,
		create.MessageCount, create.CreatedTs, create.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create conversation")
	}
	return create, nil
}

func (d *DB) GetConversation(ctx context.Context, id string) (*store.Conversation, error) {
	list, err := d.ListConversations(ctx, &store.FindConversation{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) GetConversationByExternalID(ctx context.Context, conversationID string) (*store.Conversation, error) {
	list, err := d.ListConversations(ctx, &store.FindConversation{ConversationID: &conversationID})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

func (d *DB) ListConversations(ctx context.Context, find *store.FindConversation) ([]*store.Conversation, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = ?"), append(args, *find.ID)
	}
	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.BotID != nil {
		where, args = append(where, "bot_id = ?"), append(args, *find.BotID)
	}
	if find.Status != nil {
		where, args = append(where, "status = ?"), append(args, *find.Status)
	}

	query := `SELECT id, conversation_id, bot_id, status, context, history, message_count, created_ts, updated_ts
		FROM conversation WHERE ` + strings.Join(where, " AND ") + ` ORDER BY updated_ts DESC`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conversation")
	}
	defer rows.Close()

	list := make([]*store.Conversation, 0)
	for rows.Next() {
		c := &store.Conversation{}
		var ctxData []byte
		if err := rows.Scan(&c.ID, &c.ConversationID, &c.BotID, &c.Status, &ctxData, &c.History,
			&c.MessageCount, &c.CreatedTs, &c.UpdatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation")
		}
		if err := json.Unmarshal(ctxData, &c.Context); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal context")
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

func (d *DB) UpdateConversation(ctx context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	set, args := []string{}, []any{}

	if update.Status != nil {
		set, args = append(set, "status = ?"), append(args, *update.Status)
	}
	if update.Context != nil {
		ctxData, err := json.Marshal(update.Context)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal context")
		}
		set, args = append(set, "context = ?"), append(args, ctxData)
	}
	if update.History != nil {
		set, args = append(set, "history = ?"), append(args, *update.History)
	}
	if update.MessageCount != nil {
		set, args = append(set, "message_count = ?"), append(args, *update.MessageCount)
	}

	if len(set) == 0 {
		return d.GetConversation(ctx, update.ID)
	}

	args = append(args, update.ID)
	stmt := `UPDATE conversation SET ` + strings.Join(set, ", ") + ` WHERE id = ?`
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update conversation")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, store.ErrNotFound
	}
	return d.GetConversation(ctx, update.ID)
}

func (d *DB) DeleteConversation(ctx context.Context, id string) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM message WHERE conversation_id = ?", id); err != nil {
		return errors.Wrap(err, "failed to delete conversation messages")
	}

	result, err := d.db.ExecContext(ctx, "DELETE FROM conversation WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "failed to delete conversation")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return store.ErrNotFound
	}
	return nil
}
