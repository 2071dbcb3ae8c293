// Package worker implements the Background Worker (spec §4.4): one
// goroutine per in-flight AI job, bounded by a semaphore so that
// cross-conversation parallelism stays within a configured pool size
// rather than spawning unbounded goroutines (spec §5).
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/hrygo/chatrelay/aiclient"
	"github.com/hrygo/chatrelay/dispatch"
	"github.com/hrygo/chatrelay/history"
	"github.com/hrygo/chatrelay/historycache"
	"github.com/hrygo/chatrelay/jobs"
	"github.com/hrygo/chatrelay/lock"
)

// DefaultPoolSize bounds concurrent AI job goroutines when the caller
// does not configure one explicitly.
const DefaultPoolSize = 32

// Recorder is the optional metrics hook the worker calls on every terminal
// job status. Satisfied by *metrics.PrometheusExporter; nil by default.
type Recorder interface {
	RecordJobOutcome(status string, latency time.Duration)
}

// Worker runs the per-job lifecycle: load, call AI, supersession guard,
// dispatch, release lock, advance processed-history cache (§4.4 steps 1-5).
type Worker struct {
	registry   *jobs.Registry
	locks      *lock.Manager
	ai         *aiclient.Client
	dispatcher *dispatch.Dispatcher
	history    *historycache.Cache
	sem        *semaphore.Weighted
	metrics    Recorder
}

// New constructs a Worker with a bounded pool of size poolSize (<=0 uses
// DefaultPoolSize).
func New(registry *jobs.Registry, locks *lock.Manager, ai *aiclient.Client, dispatcher *dispatch.Dispatcher, hc *historycache.Cache, poolSize int) *Worker {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Worker{
		registry:   registry,
		locks:      locks,
		ai:         ai,
		dispatcher: dispatcher,
		history:    hc,
		sem:        semaphore.NewWeighted(int64(poolSize)),
	}
}

// WithMetrics attaches a Recorder, returning the Worker for chaining.
func (w *Worker) WithMetrics(m Recorder) *Worker {
	w.metrics = m
	return w
}

// Launch schedules jobID to run on the worker pool. It returns
// immediately; the job runs asynchronously on its own goroutine once a
// pool slot is available (§4.4: "one goroutine/task per active job
// suffices; cross-conversation parallelism is unbounded [in the model],
// bounded by a worker pool in practice").
func (w *Worker) Launch(jobID string) {
	go func() {
		ctx := context.Background()
		if err := w.sem.Acquire(ctx, 1); err != nil {
			slog.Error("worker: failed to acquire pool slot", "job_id", jobID, "error", err)
			return
		}
		defer w.sem.Release(1)
		w.RunSync(ctx, jobID)
	}()
}

// RunSync executes the worker loop for one job synchronously (§4.4 steps
// 1-5). Launch calls this on its own goroutine; it is exported separately
// so tests can drive a job deterministically without a pool slot race.
func (w *Worker) RunSync(ctx context.Context, jobID string) {
	rec, err := w.registry.GetStatus(ctx, jobID)
	if err != nil || rec == nil {
		slog.Error("worker: job not found at start", "job_id", jobID, "error", err)
		return
	}
	convID := rec.ConversationID
	lockID := rec.LockID
	logFields := []any{"conversation_id", convID, "lock_id", lockID, "job_id", jobID}

	if err := w.registry.UpdateStatus(ctx, jobID, jobs.StatusProcessing, nil); err != nil {
		slog.Error("worker: failed to mark job processing", append(logFields, "error", err)...)
		return
	}

	payload := rec.Payload
	messages := make([]history.Message, len(payload.Messages))
	for i, m := range payload.Messages {
		messages[i] = history.Message{Role: m.Role, Content: m.Content, Timestamp: m.Timestamp}
	}

	start := time.Now()
	result := w.ai.Call(ctx, aiclient.Request{
		ConversationID: convID,
		LockIndex:      lock.NumericIndex(lockID),
		Messages:       messages,
		Resources:      payload.Resources,
		Config:         payload.AIConfig,
	})
	elapsed := time.Since(start).Milliseconds()

	if cancelled, err := w.jobWasCancelled(ctx, jobID); err != nil {
		slog.Error("worker: failed to re-check job status", append(logFields, "error", err)...)
	} else if cancelled {
		w.finishSuperseded(ctx, jobID, convID, logFields)
		return
	}

	if !result.Success {
		w.finishFailed(ctx, jobID, convID, result.Error, elapsed, logFields)
		return
	}

	// Supersession guard (§4.4 step 3): a newer arrival may have attached
	// a different job id to the lock while the AI call was in flight.
	current, err := w.locks.GetInfo(ctx, convID)
	if err != nil {
		slog.Error("worker: failed to re-read lock before dispatch", append(logFields, "error", err)...)
		w.finishFailed(ctx, jobID, convID, "failed to re-read lock before dispatch", elapsed, logFields)
		return
	}
	if current == nil || current.AIJobID != jobID {
		w.finishSuperseded(ctx, jobID, convID, logFields)
		return
	}

	dispatchResult := w.dispatcher.Dispatch(ctx, dispatch.Request{
		ConversationID: convID,
		JobID:          jobID,
		Action:         result.Action,
		Data:           result.Data,
		Platform:       payload.PlatformConfig,
	})

	fields := map[string]any{"action": result.Action, "dispatch_status": dispatchResult.Status}
	if !dispatchResult.Success {
		fields["dispatch_error"] = dispatchResult.Error
	}

	if err := w.registry.UpdateStatus(ctx, jobID, jobs.StatusCompleted, &jobs.StatusUpdate{
		Result:           fields,
		ProcessingTimeMs: elapsed,
	}); err != nil {
		slog.Error("worker: failed to mark job completed", append(logFields, "error", err)...)
	}
	if w.metrics != nil {
		w.metrics.RecordJobOutcome(jobs.StatusCompleted, time.Duration(elapsed)*time.Millisecond)
	}

	if _, err := w.locks.Release(ctx, convID); err != nil {
		slog.Error("worker: failed to release lock", append(logFields, "error", err)...)
	}

	if payload.FullHistory != "" {
		if err := w.history.Set(ctx, convID, payload.FullHistory); err != nil {
			slog.Error("worker: failed to advance processed-history cache", append(logFields, "error", err)...)
		}
	}
}

func (w *Worker) jobWasCancelled(ctx context.Context, jobID string) (bool, error) {
	rec, err := w.registry.GetStatus(ctx, jobID)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Status == jobs.StatusCancelled, nil
}

func (w *Worker) finishSuperseded(ctx context.Context, jobID, convID string, logFields []any) {
	if err := w.registry.UpdateStatus(ctx, jobID, jobs.StatusFailed, &jobs.StatusUpdate{Error: "superseded"}); err != nil {
		slog.Error("worker: failed to mark job superseded", append(logFields, "error", err)...)
	}
	if w.metrics != nil {
		w.metrics.RecordJobOutcome("superseded", 0)
	}
	slog.Info("worker: job superseded before dispatch", logFields...)
}

func (w *Worker) finishFailed(ctx context.Context, jobID, convID, reason string, elapsed int64, logFields []any) {
	if err := w.registry.UpdateStatus(ctx, jobID, jobs.StatusFailed, &jobs.StatusUpdate{
		Error:            reason,
		ProcessingTimeMs: elapsed,
	}); err != nil {
		slog.Error("worker: failed to mark job failed", append(logFields, "error", err)...)
	}
	if w.metrics != nil {
		w.metrics.RecordJobOutcome(jobs.StatusFailed, time.Duration(elapsed)*time.Millisecond)
	}
	if _, err := w.locks.Release(ctx, convID); err != nil {
		slog.Error("worker: failed to release lock after failure", append(logFields, "error", err)...)
	}
}

// lockChecker adapts *lock.Manager to dispatch.LockChecker.
type lockChecker struct{ locks *lock.Manager }

// NewDispatchLockChecker exposes locks as a dispatch.LockChecker for
// wiring the Dispatcher's supersession guard (§4.6).
func NewDispatchLockChecker(locks *lock.Manager) dispatch.LockChecker {
	return lockChecker{locks: locks}
}

func (c lockChecker) CurrentJobID(ctx context.Context, conversationID string) (string, bool, error) {
	rec, err := c.locks.GetInfo(ctx, conversationID)
	if err != nil {
		return "", false, err
	}
	if rec == nil || rec.AIJobID == "" {
		return "", false, nil
	}
	return rec.AIJobID, true, nil
}
