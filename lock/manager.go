package lock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// FallbackRecorder is the optional metrics hook Manager calls whenever it
// has to fall back to the in-memory backend. Minting a fallback lock id on
// a contested acquire is logged but not recorded here.
type FallbackRecorder interface {
	IncLockBackendFallback()
}

// Manager implements the Lock Manager (§4.3) over a preferred distributed
// Backend with an in-process MemoryBackend fallback on dependency failure.
type Manager struct {
	primary  Backend
	fallback Backend
	metrics  FallbackRecorder
}

// NewManager composes primary (normally a *RedisBackend) with fallback
// (normally a *MemoryBackend). metrics may be nil.
func NewManager(primary Backend, fallback Backend, metrics FallbackRecorder) *Manager {
	return &Manager{primary: primary, fallback: fallback, metrics: metrics}
}

func hashHistory(h string) string {
	sum := sha256.Sum256([]byte(h))
	return hex.EncodeToString(sum[:])
}

// useFallback is called after the primary backend errored on the current
// call: it logs a warning, records telemetry and returns the in-memory
// fallback backend.
func (m *Manager) useFallback(reason error) Backend {
	slog.Warn("lock: primary backend unavailable, using in-memory fallback", "error", reason)
	if m.metrics != nil {
		m.metrics.IncLockBackendFallback()
	}
	return m.fallback
}

// CheckAndAcquire implements §4.3's CheckAndAcquire.
func (m *Manager) CheckAndAcquire(ctx context.Context, convID, h string) (*Decision, error) {
	backend := m.primary
	rec, ok, err := backend.Get(ctx, convID)
	if err != nil {
		backend = m.useFallback(err)
		rec, ok, err = backend.Get(ctx, convID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now().Unix()

	if !ok {
		candidate := &Record{
			ConversationID:    convID,
			LockID:            shortuuid.New(),
			HistoryHash:       hashHistory(h),
			CreatedAt:         now,
			UpdatedAt:         now,
			ConsolidatedCount: 1,
		}
		acquired, err := backend.TryAcquire(ctx, convID, candidate)
		if err != nil {
			return nil, err
		}
		if acquired {
			return &Decision{Kind: DecisionAcquired, LockID: candidate.LockID, ConsolidatedCount: 1}, nil
		}

		// Conditional write lost the race. Retry the read once.
		rec, ok, err = backend.Get(ctx, convID)
		if err != nil {
			return nil, err
		}
		if ok {
			// Still contested: guarantee forward progress with a fresh
			// fallback lock rather than failing the caller outright.
			fallbackRec := &Record{
				ConversationID:    convID,
				LockID:            "fallback-" + shortuuid.New(),
				HistoryHash:       hashHistory(h),
				CreatedAt:         now,
				UpdatedAt:         now,
				ConsolidatedCount: 1,
			}
			slog.Warn("lock: acquire contested after retry, minting fallback lock", "conversation_id", convID)
			if err := backend.Write(ctx, convID, fallbackRec); err != nil {
				return nil, err
			}
			return &Decision{Kind: DecisionAcquired, LockID: fallbackRec.LockID, ConsolidatedCount: 1, UsedFallbackLock: true}, nil
		}
		// The contender released between our failed acquire and the retry read.
		return &Decision{Kind: DecisionAcquired, LockID: candidate.LockID, ConsolidatedCount: 1}, nil
	}

	updated := &Record{
		ConversationID:    convID,
		LockID:            rec.LockID,
		HistoryHash:       hashHistory(h),
		CreatedAt:         rec.CreatedAt,
		UpdatedAt:         now,
		AIJobID:           rec.AIJobID,
		PreviousAIJobID:   rec.AIJobID,
		ConsolidatedCount: rec.ConsolidatedCount + 1,
	}
	if err := backend.Write(ctx, convID, updated); err != nil {
		return nil, err
	}
	return &Decision{
		Kind:              DecisionSuperseded,
		LockID:            rec.LockID,
		PreviousAIJobID:   rec.AIJobID,
		ConsolidatedCount: updated.ConsolidatedCount,
	}, nil
}

// AttachJob mutates the lock to set ai_job_id. Idempotent.
func (m *Manager) AttachJob(ctx context.Context, convID, jobID string) error {
	backend := m.primary
	rec, ok, err := backend.Get(ctx, convID)
	if err != nil {
		backend = m.useFallback(err)
		rec, ok, err = backend.Get(ctx, convID)
		if err != nil {
			return err
		}
	}
	if !ok {
		return nil
	}
	rec.AIJobID = jobID
	rec.UpdatedAt = time.Now().Unix()
	return backend.Write(ctx, convID, rec)
}

// Release deletes the lock unconditionally.
func (m *Manager) Release(ctx context.Context, convID string) (bool, error) {
	backend := m.primary
	ok, err := backend.Delete(ctx, convID)
	if err != nil {
		backend = m.useFallback(err)
		return backend.Delete(ctx, convID)
	}
	return ok, nil
}

// GetInfo is a read-only lookup of the current lock for convID.
func (m *Manager) GetInfo(ctx context.Context, convID string) (*Record, error) {
	backend := m.primary
	rec, ok, err := backend.Get(ctx, convID)
	if err != nil {
		backend = m.useFallback(err)
		rec, ok, err = backend.Get(ctx, convID)
		if err != nil {
			return nil, err
		}
	}
	if !ok {
		return nil, nil
	}
	return rec, nil
}

// CleanupStale deletes every lock whose created_at is older than maxAge,
// returning the number removed.
func (m *Manager) CleanupStale(ctx context.Context, maxAge time.Duration) (int, error) {
	backend := m.primary
	records, err := backend.List(ctx)
	if err != nil {
		backend = m.useFallback(err)
		records, err = backend.List(ctx)
		if err != nil {
			return 0, err
		}
	}

	cutoff := time.Now().Add(-maxAge).Unix()
	n := 0
	for _, rec := range records {
		if rec.CreatedAt < cutoff {
			if _, err := backend.Delete(ctx, rec.ConversationID); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
