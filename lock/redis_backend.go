package lock

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/hrygo/chatrelay/sharedstore"
)

const keyPrefix = "msg_lock:"

// RedisBackend persists lock records in the distributed shared store
// (§6.5: "msg_lock:{convID}", SET NX EX 3600).
type RedisBackend struct {
	store sharedstore.Store
}

func NewRedisBackend(store sharedstore.Store) *RedisBackend {
	return &RedisBackend{store: store}
}

func key(conv string) string {
	return keyPrefix + conv
}

func (b *RedisBackend) Get(ctx context.Context, conv string) (*Record, bool, error) {
	raw, err := b.store.Get(ctx, key(conv))
	if err != nil {
		if errors.Is(err, sharedstore.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(err, "lock: redis get")
	}
	rec := &Record{}
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, false, pkgerrors.Wrap(err, "lock: unmarshal record")
	}
	return rec, true, nil
}

func (b *RedisBackend) TryAcquire(ctx context.Context, conv string, rec *Record) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, pkgerrors.Wrap(err, "lock: marshal record")
	}
	ok, err := b.store.SetNX(ctx, key(conv), raw, TTL)
	if err != nil {
		return false, pkgerrors.Wrap(err, "lock: redis setnx")
	}
	return ok, nil
}

func (b *RedisBackend) Write(ctx context.Context, conv string, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return pkgerrors.Wrap(err, "lock: marshal record")
	}
	// Keep the lock's original expiry: the TTL runs from rec.CreatedAt.
	ttl := TTL - time.Since(time.Unix(rec.CreatedAt, 0))
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := b.store.Set(ctx, key(conv), raw, ttl); err != nil {
		return pkgerrors.Wrap(err, "lock: redis set")
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, conv string) (bool, error) {
	ok, err := b.store.Delete(ctx, key(conv))
	if err != nil {
		return false, pkgerrors.Wrap(err, "lock: redis del")
	}
	return ok, nil
}

func (b *RedisBackend) List(ctx context.Context) ([]*Record, error) {
	keys, err := b.store.Keys(ctx, keyPrefix+"*")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "lock: redis keys")
	}

	records := make([]*Record, 0, len(keys))
	for _, k := range keys {
		conv := strings.TrimPrefix(k, keyPrefix)
		rec, ok, err := b.Get(ctx, conv)
		if err != nil {
			return nil, err
		}
		if ok {
			records = append(records, rec)
		}
	}
	return records, nil
}
