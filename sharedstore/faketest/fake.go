// Package faketest provides an in-memory sharedstore.Store for tests
// that need lock/job semantics without a live Redis instance.
package faketest

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/hrygo/chatrelay/sharedstore"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// Store is a goroutine-safe in-memory implementation of sharedstore.Store.
type Store struct {
	mu   sync.Mutex
	data map[string]entry
}

// New returns an empty fake store.
func New() *Store {
	return &Store{data: make(map[string]entry)}
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return nil, sharedstore.ErrKeyNotFound
	}
	return e.value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = s.newEntry(value, ttl)
	return nil
}

func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.data[key]; ok && !s.expired(e) {
		return false, nil
	}
	s.data[key] = s.newEntry(value, ttl)
	return true, nil
}

func (s *Store) newEntry(value []byte, ttl time.Duration) entry {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	return e
}

func (s *Store) Delete(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	delete(s.data, key)
	return ok && !s.expired(e), nil
}

func (s *Store) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k, e := range s.data {
		if s.expired(e) {
			continue
		}
		if matched, _ := filepath.Match(pattern, k); matched {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }
