package configstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/configstore"
	"github.com/hrygo/chatrelay/store"
)

// fakeDriver is a minimal in-memory store.Driver for configstore tests.
type fakeDriver struct {
	bots          map[string]*store.Bot
	coreAIs       map[string]*store.CoreAI
	platforms     map[string]*store.Platform
	conversations map[string]*store.Conversation

	getCoreAICalls int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		bots:          map[string]*store.Bot{},
		coreAIs:       map[string]*store.CoreAI{},
		platforms:     map[string]*store.Platform{},
		conversations: map[string]*store.Conversation{},
	}
}

func (f *fakeDriver) CreateCoreAI(context.Context, *store.CoreAI) (*store.CoreAI, error) { return nil, nil }
func (f *fakeDriver) GetCoreAI(_ context.Context, id string) (*store.CoreAI, error) {
	f.getCoreAICalls++
	if c, ok := f.coreAIs[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeDriver) ListCoreAIs(context.Context, *store.FindCoreAI) ([]*store.CoreAI, error) {
	return nil, nil
}
func (f *fakeDriver) UpdateCoreAI(context.Context, *store.UpdateCoreAI) (*store.CoreAI, error) {
	return nil, nil
}
func (f *fakeDriver) DeleteCoreAI(context.Context, string) error { return nil }

func (f *fakeDriver) CreatePlatform(context.Context, *store.Platform) (*store.Platform, error) {
	return nil, nil
}
func (f *fakeDriver) GetPlatform(_ context.Context, id string) (*store.Platform, error) {
	if p, ok := f.platforms[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeDriver) ListPlatforms(context.Context, *store.FindPlatform) ([]*store.Platform, error) {
	return nil, nil
}
func (f *fakeDriver) UpdatePlatform(context.Context, *store.UpdatePlatform) (*store.Platform, error) {
	return nil, nil
}
func (f *fakeDriver) DeletePlatform(context.Context, string) error { return nil }

func (f *fakeDriver) CreatePlatformAction(context.Context, *store.PlatformAction) (*store.PlatformAction, error) {
	return nil, nil
}
func (f *fakeDriver) ListPlatformActions(context.Context, *store.FindPlatformAction) ([]*store.PlatformAction, error) {
	return nil, nil
}
func (f *fakeDriver) UpdatePlatformAction(context.Context, *store.UpdatePlatformAction) (*store.PlatformAction, error) {
	return nil, nil
}
func (f *fakeDriver) DeletePlatformAction(context.Context, string) error { return nil }

func (f *fakeDriver) CreateBot(context.Context, *store.Bot) (*store.Bot, error) { return nil, nil }
func (f *fakeDriver) GetBot(_ context.Context, id string) (*store.Bot, error) {
	if b, ok := f.bots[id]; ok {
		return b, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeDriver) ListBots(context.Context, *store.FindBot) ([]*store.Bot, error) { return nil, nil }
func (f *fakeDriver) UpdateBot(context.Context, *store.UpdateBot) (*store.Bot, error) {
	return nil, nil
}
func (f *fakeDriver) DeleteBot(context.Context, string) error { return nil }

func (f *fakeDriver) CreateConversation(context.Context, *store.Conversation) (*store.Conversation, error) {
	return nil, nil
}
func (f *fakeDriver) GetConversation(context.Context, string) (*store.Conversation, error) {
	return nil, nil
}
func (f *fakeDriver) GetConversationByExternalID(_ context.Context, conversationID string) (*store.Conversation, error) {
	if c, ok := f.conversations[conversationID]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeDriver) ListConversations(context.Context, *store.FindConversation) ([]*store.Conversation, error) {
	return nil, nil
}
func (f *fakeDriver) UpdateConversation(context.Context, *store.UpdateConversation) (*store.Conversation, error) {
	return nil, nil
}
func (f *fakeDriver) DeleteConversation(context.Context, string) error { return nil }

func (f *fakeDriver) CreateMessage(context.Context, *store.Message) (*store.Message, error) {
	return nil, nil
}
func (f *fakeDriver) ListMessages(context.Context, *store.FindMessage) ([]*store.Message, error) {
	return nil, nil
}

func (f *fakeDriver) Close() error { return nil }

func TestGetCoreAIFallsBackToDefaultOnMissing(t *testing.T) {
	cs := configstore.New(store.New(newFakeDriver()))
	ai := cs.GetCoreAI(context.Background(), "unknown")
	assert.Same(t, configstore.DefaultCoreAI, ai)
}

func TestGetCoreAIFallsBackWhenInactive(t *testing.T) {
	d := newFakeDriver()
	d.coreAIs["a1"] = &store.CoreAI{ID: "a1", Name: "inactive-ai", IsActive: false}
	cs := configstore.New(store.New(d))

	ai := cs.GetCoreAI(context.Background(), "a1")
	assert.Same(t, configstore.DefaultCoreAI, ai)
}

func TestGetCoreAIReturnsActiveRecordAndCaches(t *testing.T) {
	d := newFakeDriver()
	d.coreAIs["a1"] = &store.CoreAI{ID: "a1", Name: "prod-ai", IsActive: true, APIEndpoint: "https://ai.example.com"}
	cs := configstore.New(store.New(d))
	ctx := context.Background()

	ai := cs.GetCoreAI(ctx, "a1")
	require.Equal(t, "prod-ai", ai.Name)

	ai2 := cs.GetCoreAI(ctx, "a1")
	assert.Same(t, ai, ai2)
	assert.Equal(t, 1, d.getCoreAICalls, "second lookup should be served from cache")
}

func TestGetBotForConversationResolvesThroughBotID(t *testing.T) {
	d := newFakeDriver()
	d.conversations["c1"] = &store.Conversation{ConversationID: "c1", BotID: "b1"}
	d.bots["b1"] = &store.Bot{ID: "b1", Name: "sales-bot", IsActive: true}
	cs := configstore.New(store.New(d))

	bot := cs.GetBotForConversation(context.Background(), "c1")
	assert.Equal(t, "sales-bot", bot.Name)
}

func TestGetBotForConversationDefaultsWhenConversationUnknown(t *testing.T) {
	cs := configstore.New(store.New(newFakeDriver()))
	bot := cs.GetBotForConversation(context.Background(), "never-seen")
	assert.Same(t, configstore.DefaultBot, bot)
}

func TestClearCacheForcesReload(t *testing.T) {
	d := newFakeDriver()
	d.coreAIs["a1"] = &store.CoreAI{ID: "a1", Name: "v1", IsActive: true}
	cs := configstore.New(store.New(d))
	ctx := context.Background()

	_ = cs.GetCoreAI(ctx, "a1")
	cs.ClearCache()
	d.coreAIs["a1"].Name = "v2"
	ai := cs.GetCoreAI(ctx, "a1")

	assert.Equal(t, "v2", ai.Name)
	assert.Equal(t, 2, d.getCoreAICalls)
}
