// Package configstore implements the Config Store (spec §4.1): a
// read-through cache over store.Store for the three lookups the
// orchestrator's hot path performs on every inbound message — Bot,
// CoreAI, Platform — each falling back to a typed default rather than
// ever returning an error.
package configstore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/chatrelay/store"
	"github.com/hrygo/chatrelay/store/cache"
)

const (
	cacheSize = 1024
	cacheTTL  = 300 * time.Second
)

// Store is the Config Store. Safe for concurrent use.
type Store struct {
	db *store.Store

	botByConv *cache.LRUCache[string, *store.Bot]
	botByID   *cache.LRUCache[string, *store.Bot]
	coreAI    *cache.LRUCache[string, *store.CoreAI]
	platform  *cache.LRUCache[string, *store.Platform]

	sf singleflight.Group

	warnOnce sync.Map // key -> struct{}, logs each dependency-failure kind once
}

// New wraps db with the Config Store's read-through caches.
func New(db *store.Store) *Store {
	return &Store{
		db:        db,
		botByConv: cache.NewLRUCache[string, *store.Bot](cacheSize, cacheTTL),
		botByID:   cache.NewLRUCache[string, *store.Bot](cacheSize, cacheTTL),
		coreAI:    cache.NewLRUCache[string, *store.CoreAI](cacheSize, cacheTTL),
		platform:  cache.NewLRUCache[string, *store.Platform](cacheSize, cacheTTL),
	}
}

// ClearCache invalidates every cached entry (admin-triggered, spec §4.1).
func (s *Store) ClearCache() {
	s.botByConv.Clear()
	s.botByID.Clear()
	s.coreAI.Clear()
	s.platform.Clear()
}

func (s *Store) warnOnceFor(kind string, err error) {
	if _, loaded := s.warnOnce.LoadOrStore(kind, struct{}{}); !loaded {
		slog.Warn("configstore: dependency failure, substituting default", "kind", kind, "error", err)
	}
}

// GetBotForConversation resolves the Bot bound to the conversation
// identified by its external, platform-scoped conversationID. A missing
// conversation or Bot, or an inactive Bot, yields DefaultBot — never an
// error.
func (s *Store) GetBotForConversation(ctx context.Context, conversationID string) *store.Bot {
	if conversationID == "" {
		return DefaultBot
	}
	if b, ok := s.botByConv.Get(conversationID); ok {
		return b
	}

	v, err, _ := s.sf.Do("conv:"+conversationID, func() (any, error) {
		conv, err := s.db.GetConversationByExternalID(ctx, conversationID)
		if err != nil {
			return nil, err
		}
		return s.db.GetBot(ctx, conv.BotID)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.warnOnceFor("bot", err)
		}
		s.botByConv.Set(conversationID, DefaultBot, cacheTTL)
		return DefaultBot
	}

	bot := v.(*store.Bot)
	result := DefaultBot
	if bot.IsActive {
		result = bot
	}
	s.botByConv.Set(conversationID, result, cacheTTL)
	return result
}

// GetBotByID resolves a Bot by its own id, bypassing conversation lookup —
// used when the caller supplies an explicit bot_id (spec §6.1 request
// shape).
func (s *Store) GetBotByID(ctx context.Context, id string) *store.Bot {
	if id == "" {
		return DefaultBot
	}
	if b, ok := s.botByID.Get(id); ok {
		return b
	}

	v, err, _ := s.sf.Do("bot:"+id, func() (any, error) {
		return s.db.GetBot(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.warnOnceFor("bot", err)
		}
		s.botByID.Set(id, DefaultBot, cacheTTL)
		return DefaultBot
	}

	bot := v.(*store.Bot)
	result := DefaultBot
	if bot.IsActive {
		result = bot
	}
	s.botByID.Set(id, result, cacheTTL)
	return result
}

// GetCoreAI resolves a CoreAI by id. An empty id, a missing record, an
// inactive record, or a DB failure all yield DefaultCoreAI (spec §4.1:
// "an inactive reference falls back to a hard-coded default").
func (s *Store) GetCoreAI(ctx context.Context, id string) *store.CoreAI {
	if id == "" {
		return DefaultCoreAI
	}
	if c, ok := s.coreAI.Get(id); ok {
		return c
	}

	v, err, _ := s.sf.Do("coreai:"+id, func() (any, error) {
		return s.db.GetCoreAI(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.warnOnceFor("core_ai", err)
		}
		s.coreAI.Set(id, DefaultCoreAI, cacheTTL)
		return DefaultCoreAI
	}

	ai := v.(*store.CoreAI)
	result := DefaultCoreAI
	if ai.IsActive {
		result = ai
	}
	s.coreAI.Set(id, result, cacheTTL)
	return result
}

// GetPlatform resolves a Platform by id, with the same default-on-miss
// semantics as GetCoreAI.
func (s *Store) GetPlatform(ctx context.Context, id string) *store.Platform {
	if id == "" {
		return DefaultPlatform
	}
	if p, ok := s.platform.Get(id); ok {
		return p
	}

	v, err, _ := s.sf.Do("platform:"+id, func() (any, error) {
		return s.db.GetPlatform(ctx, id)
	})
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.warnOnceFor("platform", err)
		}
		s.platform.Set(id, DefaultPlatform, cacheTTL)
		return DefaultPlatform
	}

	p := v.(*store.Platform)
	result := DefaultPlatform
	if p.IsActive {
		result = p
	}
	s.platform.Set(id, result, cacheTTL)
	return result
}
