package orchestrator_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/configstore"
	"github.com/hrygo/chatrelay/historycache"
	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/lock"
	"github.com/hrygo/chatrelay/orchestrator"
	"github.com/hrygo/chatrelay/sharedstore/faketest"
	"github.com/hrygo/chatrelay/store"
)

// noopDriver satisfies store.Driver with not-found reads, sufficient for
// orchestrator tests that never pre-seed a Conversation/Bot row (they
// exercise the default-config fallback paths instead).
type noopDriver struct{}

func (noopDriver) CreateCoreAI(context.Context, *store.CoreAI) (*store.CoreAI, error) { return nil, nil }
func (noopDriver) GetCoreAI(context.Context, string) (*store.CoreAI, error)            { return nil, store.ErrNotFound }
func (noopDriver) ListCoreAIs(context.Context, *store.FindCoreAI) ([]*store.CoreAI, error) {
	return nil, nil
}
func (noopDriver) UpdateCoreAI(context.Context, *store.UpdateCoreAI) (*store.CoreAI, error) {
	return nil, nil
}
func (noopDriver) DeleteCoreAI(context.Context, string) error { return nil }

func (noopDriver) CreatePlatform(context.Context, *store.Platform) (*store.Platform, error) {
	return nil, nil
}
func (noopDriver) GetPlatform(context.Context, string) (*store.Platform, error) {
	return nil, store.ErrNotFound
}
func (noopDriver) ListPlatforms(context.Context, *store.FindPlatform) ([]*store.Platform, error) {
	return nil, nil
}
func (noopDriver) UpdatePlatform(context.Context, *store.UpdatePlatform) (*store.Platform, error) {
	return nil, nil
}
func (noopDriver) DeletePlatform(context.Context, string) error { return nil }

func (noopDriver) CreatePlatformAction(context.Context, *store.PlatformAction) (*store.PlatformAction, error) {
	return nil, nil
}
func (noopDriver) ListPlatformActions(context.Context, *store.FindPlatformAction) ([]*store.PlatformAction, error) {
	return nil, nil
}
func (noopDriver) UpdatePlatformAction(context.Context, *store.UpdatePlatformAction) (*store.PlatformAction, error) {
	return nil, nil
}
func (noopDriver) DeletePlatformAction(context.Context, string) error { return nil }

func (noopDriver) CreateBot(context.Context, *store.Bot) (*store.Bot, error) { return nil, nil }
func (noopDriver) GetBot(context.Context, string) (*store.Bot, error)        { return nil, store.ErrNotFound }
func (noopDriver) ListBots(context.Context, *store.FindBot) ([]*store.Bot, error) {
	return nil, nil
}
func (noopDriver) UpdateBot(context.Context, *store.UpdateBot) (*store.Bot, error) { return nil, nil }
func (noopDriver) DeleteBot(context.Context, string) error                        { return nil }

func (noopDriver) CreateConversation(context.Context, *store.Conversation) (*store.Conversation, error) {
	return nil, nil
}
func (noopDriver) GetConversation(context.Context, string) (*store.Conversation, error) {
	return nil, store.ErrNotFound
}
func (noopDriver) GetConversationByExternalID(context.Context, string) (*store.Conversation, error) {
	return nil, store.ErrNotFound
}
func (noopDriver) ListConversations(context.Context, *store.FindConversation) ([]*store.Conversation, error) {
	return nil, nil
}
func (noopDriver) UpdateConversation(context.Context, *store.UpdateConversation) (*store.Conversation, error) {
	return nil, nil
}
func (noopDriver) DeleteConversation(context.Context, string) error { return nil }

func (noopDriver) CreateMessage(context.Context, *store.Message) (*store.Message, error) {
	return nil, nil
}
func (noopDriver) ListMessages(context.Context, *store.FindMessage) ([]*store.Message, error) {
	return nil, nil
}

func (noopDriver) Close() error { return nil }

// recordingLauncher captures the job ids handed to Launch instead of
// actually running the worker pool, so tests can assert on orchestration
// behavior in isolation from AI/platform HTTP calls.
type recordingLauncher struct {
	mu       sync.Mutex
	launched []string
}

func (l *recordingLauncher) Launch(jobID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.launched = append(l.launched, jobID)
}

func newHandler(t *testing.T) (*orchestrator.Handler, *recordingLauncher) {
	t.Helper()
	sharedStore := faketest.New()
	db := store.New(noopDriver{})
	cfg := configstore.New(db)
	locks := lock.NewManager(lock.NewMemoryBackend(), lock.NewMemoryBackend(), nil)
	registry := jobs.NewRegistry(sharedStore)
	hc := historycache.New(sharedStore)
	launcher := &recordingLauncher{}
	return orchestrator.New(db, cfg, locks, registry, hc, launcher), launcher
}

func TestHandleSingleMessageColdCache(t *testing.T) {
	h, launcher := newHandler(t)
	ctx := context.Background()

	resp := h.Handle(ctx, orchestrator.Request{
		ConversationID: "c1",
		History:        "<USER>hi</USER><br>",
	})

	require.True(t, resp.Success)
	assert.Equal(t, orchestrator.StatusStarted, resp.Status)
	assert.Equal(t, 1, resp.ConsolidatedCount)
	assert.Empty(t, resp.CancelledPreviousJob)
	assert.NotEmpty(t, resp.AIJobID)
	assert.NotEmpty(t, resp.LockID)
	assert.Len(t, launcher.launched, 1)
	assert.Equal(t, resp.AIJobID, launcher.launched[0])
}

func TestHandleSupersessionCancelsPreviousJob(t *testing.T) {
	h, launcher := newHandler(t)
	ctx := context.Background()

	first := h.Handle(ctx, orchestrator.Request{
		ConversationID: "c2",
		History:        "<USER>a</USER><br>",
	})
	require.True(t, first.Success)

	second := h.Handle(ctx, orchestrator.Request{
		ConversationID: "c2",
		History:        "<USER>a</USER><br><USER>b</USER><br>",
	})
	require.True(t, second.Success)

	assert.Equal(t, orchestrator.StatusReprocessing, second.Status)
	assert.True(t, second.Reprocessing)
	assert.Equal(t, first.AIJobID, second.CancelledPreviousJob)
	assert.Equal(t, 2, second.ConsolidatedCount)
	assert.Equal(t, first.LockID, second.LockID)
	assert.Len(t, launcher.launched, 2)
}

func TestHandleIncrementalDispatchOnlySeesNewMessages(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()

	first := h.Handle(ctx, orchestrator.Request{
		ConversationID: "c3",
		History:        "<USER>hi</USER><br>",
	})
	require.True(t, first.Success)

	// The first Handle call already cached its full history (§4.7 step 7),
	// so the second call diffs against it even though no worker ran in
	// this test.
	second := h.Handle(ctx, orchestrator.Request{
		ConversationID: "c3",
		History:        "<USER>hi</USER><br><BOT>hello</BOT><br><USER>how are you</USER><br>",
	})
	require.True(t, second.Success)
	// The lock is still held by job 1 (never released in this test), so
	// this is a supersession, carrying only the delta's two new messages.
	assert.Equal(t, 2, second.ConsolidatedMessages)
}

func TestHandleEmptyHistoryStillAcquiresLockAndCreatesJob(t *testing.T) {
	h, launcher := newHandler(t)
	ctx := context.Background()

	resp := h.Handle(ctx, orchestrator.Request{ConversationID: "c4", History: ""})

	require.True(t, resp.Success)
	assert.Equal(t, 0, resp.ConsolidatedMessages)
	assert.NotEmpty(t, resp.AIJobID)
	assert.Len(t, launcher.launched, 1)
}

func TestHandleGeneratesConversationIDWhenAbsent(t *testing.T) {
	h, _ := newHandler(t)
	resp := h.Handle(context.Background(), orchestrator.Request{History: "<USER>hi</USER><br>"})
	require.True(t, resp.Success)
	assert.NotEmpty(t, resp.ConversationID)
}
