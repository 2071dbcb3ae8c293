package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/sharedstore/faketest"
)

func TestCreateJobThenGetStatus(t *testing.T) {
	reg := jobs.NewRegistry(faketest.New())
	ctx := context.Background()

	jobID, err := reg.CreateJob(ctx, jobs.Payload{ConversationID: "c1", LockID: "l1"})
	require.NoError(t, err)
	require.NotEmpty(t, jobID)

	rec, err := reg.GetStatus(ctx, jobID)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, jobs.StatusPending, rec.Status)
	assert.Equal(t, "c1", rec.ConversationID)
}

func TestUpdateStatusIsLastWriterWins(t *testing.T) {
	reg := jobs.NewRegistry(faketest.New())
	ctx := context.Background()

	jobID, err := reg.CreateJob(ctx, jobs.Payload{ConversationID: "c2"})
	require.NoError(t, err)

	require.NoError(t, reg.UpdateStatus(ctx, jobID, jobs.StatusProcessing, nil))
	require.NoError(t, reg.UpdateStatus(ctx, jobID, jobs.StatusCompleted, &jobs.StatusUpdate{ProcessingTimeMs: 120}))

	rec, err := reg.GetStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCompleted, rec.Status)
	assert.EqualValues(t, 120, rec.ProcessingTimeMs)
}

func TestCancelJobMarksCancelled(t *testing.T) {
	reg := jobs.NewRegistry(faketest.New())
	ctx := context.Background()

	jobID, err := reg.CreateJob(ctx, jobs.Payload{ConversationID: "c3"})
	require.NoError(t, err)

	ok, err := reg.CancelJob(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, ok)

	rec, err := reg.GetStatus(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusCancelled, rec.Status)
}

func TestCancelJobOnUnknownIDReturnsFalse(t *testing.T) {
	reg := jobs.NewRegistry(faketest.New())
	ok, err := reg.CancelJob(context.Background(), "does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
}
