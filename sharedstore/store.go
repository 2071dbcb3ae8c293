// Package sharedstore wraps the Redis-semantics shared store used by
// lock, jobs and historycache's processed-history cache: atomic
// conditional writes, key TTLs, and simple get/set/delete.
package sharedstore

import (
	"context"
	"time"
)

// Store is the shared-store contract every dependent package programs
// against, so a Redis-backed implementation and an in-memory fake are
// interchangeable in tests.
type Store interface {
	// Get returns the raw value stored at key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value at key with the given TTL (0 = no expiry).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value at key only if key does not already exist,
	// returning true if the write happened.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes key, returning true if it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Keys returns all keys matching a glob-style pattern (e.g. "msg_lock:*").
	Keys(ctx context.Context, pattern string) ([]string, error)
	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) error
	Close() error
}

// ErrKeyNotFound is returned by Get when the key does not exist.
var ErrKeyNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "sharedstore: key not found" }
