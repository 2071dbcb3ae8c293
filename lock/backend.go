package lock

import "context"

// Backend is the storage contract Manager composes (§9 "LockBackend"):
// a distributed implementation and a process-local fallback share this
// interface so Manager can treat them interchangeably.
type Backend interface {
	// Get returns the current record for conv, or ok=false if absent.
	Get(ctx context.Context, conv string) (rec *Record, ok bool, err error)
	// TryAcquire writes rec only if no record currently exists for conv
	// (the conditional branch of CheckAndAcquire). Returns true on success.
	TryAcquire(ctx context.Context, conv string, rec *Record) (bool, error)
	// Write unconditionally overwrites the record for conv, preserving TTL.
	Write(ctx context.Context, conv string, rec *Record) error
	// Delete removes the record for conv, returning true if it existed.
	Delete(ctx context.Context, conv string) (bool, error)
	// List returns every lock record currently held, for CleanupStale.
	List(ctx context.Context) ([]*Record, error)
}
