package sqlite

import (
	"context"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/chatrelay/store"
)

func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	stmt := `INSERT INTO message (id, conversation_id, role, content, content_type, created_ts)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err := d.db.ExecContext(ctx, stmt,
		create.ID, create.ConversationID, create.Role, create.Content, create.ContentType, create.CreatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create message")
	}
	return create, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ConversationID != nil {
		where, args = append(where, "conversation_id = ?"), append(args, *find.ConversationID)
	}
	if find.Role != nil {
		where, args = append(where, "role = ?"), append(args, *find.Role)
	}

	query := `SELECT id, conversation_id, role, content, content_type, created_ts
		FROM message WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts ASC`
	if find.Limit > 0 {
		query += " LIMIT " + strconv.Itoa(find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list message")
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		m := &store.Message{}
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.ContentType, &m.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
