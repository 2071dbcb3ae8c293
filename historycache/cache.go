// Package historycache persists each conversation's last fully-processed
// history string in the shared store (spec §6.5 processed_history:{convID}),
// the cache the Message Handler consults before the DB (§4.7 step 1) and
// advances after a job completes (§4.4 step 4).
package historycache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hrygo/chatrelay/sharedstore"
)

// TTL matches the processed-history cache entry's lifetime (§5, §6.5).
const TTL = time.Hour

const keyPrefix = "processed_history:"

func key(conversationID string) string {
	return keyPrefix + conversationID
}

// entry is the JSON shape stored at processed_history:{convID} (§6.5).
type entry struct {
	History        string `json:"history"`
	ProcessedAt    int64  `json:"processed_at"`
	ConversationID string `json:"conversation_id"`
}

// Cache wraps the shared store for processed-history reads and writes.
type Cache struct {
	store sharedstore.Store
}

func New(store sharedstore.Store) *Cache {
	return &Cache{store: store}
}

// Get returns the cached processed history for conversationID, or
// ok=false on a cache miss (the caller then falls back to the DB per
// §4.7 step 1).
func (c *Cache) Get(ctx context.Context, conversationID string) (history string, ok bool, err error) {
	raw, err := c.store.Get(ctx, key(conversationID))
	if err != nil {
		if errors.Is(err, sharedstore.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, pkgerrors.Wrap(err, "historycache: get")
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return "", false, pkgerrors.Wrap(err, "historycache: unmarshal")
	}
	return e.History, true, nil
}

// Set caches the full history string that triggered the current job
// (§4.7 step 7: "note the full H, not ΔH").
func (c *Cache) Set(ctx context.Context, conversationID, history string) error {
	e := entry{History: history, ProcessedAt: time.Now().Unix(), ConversationID: conversationID}
	raw, err := json.Marshal(e)
	if err != nil {
		return pkgerrors.Wrap(err, "historycache: marshal")
	}
	if err := c.store.Set(ctx, key(conversationID), raw, TTL); err != nil {
		return pkgerrors.Wrap(err, "historycache: set")
	}
	return nil
}
