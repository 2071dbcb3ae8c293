package lock_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/lock"
)

func newTestManager() *lock.Manager {
	primary := lock.NewMemoryBackend()
	fallback := lock.NewMemoryBackend()
	return lock.NewManager(primary, fallback, nil)
}

func TestCheckAndAcquireFreshLock(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	decision, err := m.CheckAndAcquire(ctx, "c1", "<USER>hi</USER><br>")
	require.NoError(t, err)
	assert.Equal(t, lock.DecisionAcquired, decision.Kind)
	assert.Equal(t, 1, decision.ConsolidatedCount)
	assert.NotEmpty(t, decision.LockID)
}

func TestCheckAndAcquireSupersedesExistingLock(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	first, err := m.CheckAndAcquire(ctx, "c2", "<USER>a</USER><br>")
	require.NoError(t, err)
	require.NoError(t, m.AttachJob(ctx, "c2", "job-1"))

	second, err := m.CheckAndAcquire(ctx, "c2", "<USER>a</USER><br><USER>b</USER><br>")
	require.NoError(t, err)

	assert.Equal(t, lock.DecisionSuperseded, second.Kind)
	assert.Equal(t, first.LockID, second.LockID)
	assert.Equal(t, "job-1", second.PreviousAIJobID)
	assert.Equal(t, 2, second.ConsolidatedCount)
}

func TestAttachJobThenGetInfo(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.CheckAndAcquire(ctx, "c3", "<USER>hi</USER><br>")
	require.NoError(t, err)
	require.NoError(t, m.AttachJob(ctx, "c3", "job-42"))

	rec, err := m.GetInfo(ctx, "c3")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "job-42", rec.AIJobID)
}

func TestReleaseDeletesLock(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	_, err := m.CheckAndAcquire(ctx, "c4", "<USER>hi</USER><br>")
	require.NoError(t, err)

	ok, err := m.Release(ctx, "c4")
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := m.GetInfo(ctx, "c4")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNumericIndexFallsBackToNowOnNonNumericID(t *testing.T) {
	idx := lock.NumericIndex("not-a-number")
	assert.Greater(t, idx, int64(0))
}

func TestNumericIndexParsesNumericID(t *testing.T) {
	assert.Equal(t, int64(42), lock.NumericIndex("42"))
}
