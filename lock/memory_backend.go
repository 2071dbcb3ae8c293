package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is the process-local fallback used when the distributed
// store is unreachable (§4.3 "Failure fallback") and directly in tests.
// It preserves I1 within one process but not across instances.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string]*Record
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string]*Record)}
}

func (b *MemoryBackend) expired(rec *Record) bool {
	return time.Now().Unix()-rec.CreatedAt > int64(TTL.Seconds())
}

func (b *MemoryBackend) Get(ctx context.Context, conv string) (*Record, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, ok := b.data[conv]
	if !ok || b.expired(rec) {
		return nil, false, nil
	}
	cp := *rec
	return &cp, true, nil
}

func (b *MemoryBackend) TryAcquire(ctx context.Context, conv string, rec *Record) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.data[conv]; ok && !b.expired(existing) {
		return false, nil
	}
	cp := *rec
	b.data[conv] = &cp
	return true, nil
}

func (b *MemoryBackend) Write(ctx context.Context, conv string, rec *Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := *rec
	b.data[conv] = &cp
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, conv string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.data[conv]
	delete(b.data, conv)
	return ok, nil
}

func (b *MemoryBackend) List(ctx context.Context) ([]*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	records := make([]*Record, 0, len(b.data))
	for _, rec := range b.data {
		if !b.expired(rec) {
			cp := *rec
			records = append(records, &cp)
		}
	}
	return records, nil
}
