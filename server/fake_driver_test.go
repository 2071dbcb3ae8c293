package server_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/hrygo/chatrelay/store"
)

// memDriver is a hand-rolled in-memory store.Driver, grounded on the
// orchestrator package's noopDriver test fixture but backed by real maps
// so the admin CRUD handlers have something to read back.
type memDriver struct {
	mu          sync.Mutex
	coreAIs     map[string]*store.CoreAI
	platforms   map[string]*store.Platform
	actions     map[string]*store.PlatformAction
	bots        map[string]*store.Bot
	convs       map[string]*store.Conversation
	convsByExt  map[string]string
	messages    []*store.Message
}

func newMemDriver() *memDriver {
	return &memDriver{
		coreAIs:    map[string]*store.CoreAI{},
		platforms:  map[string]*store.Platform{},
		actions:    map[string]*store.PlatformAction{},
		bots:       map[string]*store.Bot{},
		convs:      map[string]*store.Conversation{},
		convsByExt: map[string]string{},
	}
}

func (d *memDriver) CreateCoreAI(_ context.Context, create *store.CoreAI) (*store.CoreAI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.coreAIs[create.ID] = create
	return create, nil
}

func (d *memDriver) GetCoreAI(_ context.Context, id string) (*store.CoreAI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if ai, ok := d.coreAIs[id]; ok {
		return ai, nil
	}
	return nil, store.ErrNotFound
}

func (d *memDriver) ListCoreAIs(_ context.Context, _ *store.FindCoreAI) ([]*store.CoreAI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*store.CoreAI, 0, len(d.coreAIs))
	for _, v := range d.coreAIs {
		out = append(out, v)
	}
	return out, nil
}

func (d *memDriver) UpdateCoreAI(_ context.Context, update *store.UpdateCoreAI) (*store.CoreAI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ai, ok := d.coreAIs[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.IsActive != nil {
		ai.IsActive = *update.IsActive
	}
	if update.Name != nil {
		ai.Name = *update.Name
	}
	return ai, nil
}

func (d *memDriver) DeleteCoreAI(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range d.bots {
		if b.CoreAIID == id && b.IsActive {
			return store.ErrConflict
		}
	}
	delete(d.coreAIs, id)
	return nil
}

func (d *memDriver) CreatePlatform(_ context.Context, create *store.Platform) (*store.Platform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.platforms[create.ID] = create
	return create, nil
}

func (d *memDriver) GetPlatform(_ context.Context, id string) (*store.Platform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.platforms[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (d *memDriver) ListPlatforms(_ context.Context, _ *store.FindPlatform) ([]*store.Platform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*store.Platform, 0, len(d.platforms))
	for _, v := range d.platforms {
		out = append(out, v)
	}
	return out, nil
}

func (d *memDriver) UpdatePlatform(_ context.Context, update *store.UpdatePlatform) (*store.Platform, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.platforms[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.IsActive != nil {
		p.IsActive = *update.IsActive
	}
	return p, nil
}

func (d *memDriver) DeletePlatform(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.platforms, id)
	return nil
}

func (d *memDriver) CreatePlatformAction(_ context.Context, create *store.PlatformAction) (*store.PlatformAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.actions[create.ID] = create
	return create, nil
}

func (d *memDriver) ListPlatformActions(_ context.Context, find *store.FindPlatformAction) ([]*store.PlatformAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := []*store.PlatformAction{}
	for _, a := range d.actions {
		if find.PlatformID != nil && a.PlatformID != *find.PlatformID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (d *memDriver) UpdatePlatformAction(_ context.Context, update *store.UpdatePlatformAction) (*store.PlatformAction, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, ok := d.actions[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.IsActive != nil {
		a.IsActive = *update.IsActive
	}
	return a, nil
}

func (d *memDriver) DeletePlatformAction(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.actions, id)
	return nil
}

func (d *memDriver) CreateBot(_ context.Context, create *store.Bot) (*store.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.bots[create.ID] = create
	return create, nil
}

func (d *memDriver) GetBot(_ context.Context, id string) (*store.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if b, ok := d.bots[id]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}

func (d *memDriver) ListBots(_ context.Context, _ *store.FindBot) ([]*store.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*store.Bot, 0, len(d.bots))
	for _, b := range d.bots {
		out = append(out, b)
	}
	return out, nil
}

func (d *memDriver) UpdateBot(_ context.Context, update *store.UpdateBot) (*store.Bot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	b, ok := d.bots[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.IsActive != nil {
		b.IsActive = *update.IsActive
	}
	return b, nil
}

func (d *memDriver) DeleteBot(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.convs {
		if c.BotID == id {
			return store.ErrConflict
		}
	}
	delete(d.bots, id)
	return nil
}

func (d *memDriver) CreateConversation(_ context.Context, create *store.Conversation) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.convs[create.ID] = create
	d.convsByExt[create.ConversationID] = create.ID
	return create, nil
}

func (d *memDriver) GetConversation(_ context.Context, id string) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if c, ok := d.convs[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (d *memDriver) GetConversationByExternalID(_ context.Context, conversationID string) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.convsByExt[conversationID]; ok {
		return d.convs[id], nil
	}
	return nil, store.ErrNotFound
}

func (d *memDriver) ListConversations(_ context.Context, _ *store.FindConversation) ([]*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*store.Conversation, 0, len(d.convs))
	for _, c := range d.convs {
		out = append(out, c)
	}
	return out, nil
}

func (d *memDriver) UpdateConversation(_ context.Context, update *store.UpdateConversation) (*store.Conversation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.convs[update.ID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if update.History != nil {
		c.History = *update.History
	}
	if update.Status != nil {
		c.Status = *update.Status
	}
	return c, nil
}

func (d *memDriver) DeleteConversation(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.convs, id)
	return nil
}

func (d *memDriver) CreateMessage(_ context.Context, create *store.Message) (*store.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	create.ID = uuid.NewString()
	d.messages = append(d.messages, create)
	return create, nil
}

func (d *memDriver) ListMessages(_ context.Context, _ *store.FindMessage) ([]*store.Message, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.messages, nil
}

func (d *memDriver) Close() error { return nil }
