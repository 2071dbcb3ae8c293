package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/store"
)

// TestLRUCache_Creation tests cache creation with various configurations.
func TestLRUCache_Creation(t *testing.T) {
	testCases := []struct {
		name       string
		capacity   int
		defaultTTL time.Duration
		expectSize int
	}{
		{"default values", 0, 0, 0},
		{"custom capacity", 500, 0, 0},
		{"custom TTL", 0, 10 * time.Minute, 0},
		{"both custom", 200, 15 * time.Minute, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cache := NewLRUCache[string, *store.Bot](tc.capacity, tc.defaultTTL)
			assert.Equal(t, tc.expectSize, cache.Size())
		})
	}
}

// TestLRUCache_BasicSetGet tests the Get/Set path configstore exercises
// for a conversation id -> *store.Bot lookup.
func TestLRUCache_BasicSetGet(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](100, time.Minute)

	t.Run("Set and Get returns value", func(t *testing.T) {
		bot := &store.Bot{ID: "bot-1", Name: "sales-bot", IsActive: true}

		cache.Set("conv-1", bot, 0)
		result, ok := cache.Get("conv-1")

		require.True(t, ok, "expected key to exist")
		assert.Same(t, bot, result)
	})

	t.Run("Get non-existent key returns false", func(t *testing.T) {
		_, ok := cache.Get("conv-missing")
		assert.False(t, ok)
	})

	t.Run("Set with TTL", func(t *testing.T) {
		bot := &store.Bot{ID: "bot-2", Name: "support-bot", IsActive: true}

		cache.Set("conv-2", bot, 100*time.Millisecond)
		result, ok := cache.Get("conv-2")

		require.True(t, ok)
		assert.Same(t, bot, result)
	})

	t.Run("Update existing key", func(t *testing.T) {
		bot1 := &store.Bot{ID: "bot-3", Name: "v1", IsActive: true}
		bot2 := &store.Bot{ID: "bot-3", Name: "v2", IsActive: true}

		cache.Set("conv-3", bot1, 0)
		cache.Set("conv-3", bot2, 0)

		result, ok := cache.Get("conv-3")
		require.True(t, ok)
		assert.Same(t, bot2, result)
	})
}

// TestLRUCache_TTLExpiration tests TTL-based expiration, matching the
// 300s default configstore uses for config lookups (spec §4.1).
func TestLRUCache_TTLExpiration(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](100, 50*time.Millisecond)

	t.Run("value expires after TTL", func(t *testing.T) {
		bot := &store.Bot{ID: "bot-1"}

		cache.Set("conv-1", bot, 50*time.Millisecond)

		// Should exist immediately
		_, ok := cache.Get("conv-1")
		assert.True(t, ok, "key should exist immediately after Set")

		// Wait for expiration
		time.Sleep(60 * time.Millisecond)

		_, ok = cache.Get("conv-1")
		assert.False(t, ok, "key should be expired after TTL")
	})

	t.Run("custom TTL overrides default", func(t *testing.T) {
		cache := NewLRUCache[string, *store.Bot](100, 10*time.Millisecond)

		// Set with longer TTL
		cache.Set("conv-long", &store.Bot{ID: "bot-long"}, 100*time.Millisecond)

		// Default TTL expires
		time.Sleep(20 * time.Millisecond)

		// Long TTL key should still exist
		_, ok := cache.Get("conv-long")
		assert.True(t, ok, "key with custom TTL should persist after default TTL")
	})
}

// TestLRUCache_LRUEviction tests LRU eviction policy.
func TestLRUCache_LRUEviction(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](3, time.Minute)

	t.Run("evicts least recently used when full", func(t *testing.T) {
		// Fill cache
		cache.Set("conv-1", &store.Bot{ID: "bot-1"}, 0)
		cache.Set("conv-2", &store.Bot{ID: "bot-2"}, 0)
		cache.Set("conv-3", &store.Bot{ID: "bot-3"}, 0)

		assert.Equal(t, 3, cache.Size(), "cache should be at capacity")

		// Access conv-1 to make it recently used
		cache.Get("conv-1")

		// Add new entry - should evict conv-2 (LRU)
		cache.Set("conv-4", &store.Bot{ID: "bot-4"}, 0)

		assert.Equal(t, 3, cache.Size(), "cache size should remain at capacity")

		// conv-2 should be evicted
		_, ok := cache.Get("conv-2")
		assert.False(t, ok, "LRU key should be evicted")

		// conv-1 should still exist (was accessed)
		_, ok = cache.Get("conv-1")
		assert.True(t, ok, "recently accessed key should exist")
	})

	t.Run("eviction respects update time", func(t *testing.T) {
		cache := NewLRUCache[string, *store.Bot](3, time.Minute)

		cache.Set("conv-1", &store.Bot{ID: "bot-1"}, 0)
		cache.Set("conv-2", &store.Bot{ID: "bot-2"}, 0)
		cache.Set("conv-3", &store.Bot{ID: "bot-3"}, 0)

		// Update conv-2 to make it more recent
		cache.Set("conv-2", &store.Bot{ID: "bot-2-updated"}, 0)

		// Add new entry - should evict conv-1 (oldest)
		cache.Set("conv-4", &store.Bot{ID: "bot-4"}, 0)

		_, ok := cache.Get("conv-1")
		assert.False(t, ok, "oldest key should be evicted")

		_, ok = cache.Get("conv-2")
		assert.True(t, ok, "updated key should exist")
	})
}

// TestLRUCache_Clearing tests the Clear path configstore's ClearCache
// (admin-triggered invalidation, spec §4.1) relies on.
func TestLRUCache_Clearing(t *testing.T) {
	cache := NewLRUCache[string, *store.CoreAI](100, time.Minute)

	for i := 0; i < 10; i++ {
		key := string(rune('a' + i))
		cache.Set(key, &store.CoreAI{ID: key}, 0)
	}

	assert.Equal(t, 10, cache.Size())

	cache.Clear()

	assert.Equal(t, 0, cache.Size(), "cache should be empty after Clear")

	// Verify all keys are gone
	for i := 0; i < 10; i++ {
		_, ok := cache.Get(string(rune('a' + i)))
		assert.False(t, ok, "all entries should be cleared")
	}
}

// TestLRUCache_ThreadSafety tests thread safety under the concurrent
// Get/Set access configstore's singleflight-guarded hot path produces.
func TestLRUCache_ThreadSafety(t *testing.T) {
	cache := NewLRUCache[string, *store.Platform](1000, time.Minute)
	var wg sync.WaitGroup

	// Concurrent writers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Set(key, &store.Platform{ID: key}, 0)
		}(i)
	}

	// Concurrent readers
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%26))
			cache.Get(key)
		}(i)
	}

	wg.Wait()
	// Should not panic or deadlock
}

// TestLRUCache_SizeMethod tests Size method.
func TestLRUCache_SizeMethod(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](100, time.Minute)

	assert.Equal(t, 0, cache.Size(), "new cache should be empty")

	for i := 0; i < 10; i++ {
		key := string(rune('a' + i))
		cache.Set(key, &store.Bot{ID: key}, 0)
	}

	assert.Equal(t, 10, cache.Size())
}

// TestLRUCache_ZeroCapacityHandling tests behavior with zero capacity.
func TestLRUCache_ZeroCapacityHandling(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](0, time.Minute)

	cache.Set("conv-1", &store.Bot{ID: "bot-1"}, 0)
	_, ok := cache.Get("conv-1")

	// With zero capacity (defaulted to 1000), should work
	assert.True(t, ok, "cache with default capacity should store values")
}

// TestLRUCache_GetPromotion tests that Get promotes entry to front.
func TestLRUCache_GetPromotion(t *testing.T) {
	cache := NewLRUCache[string, *store.Bot](3, time.Minute)

	// Fill cache
	cache.Set("conv-1", &store.Bot{ID: "bot-1"}, 0)
	cache.Set("conv-2", &store.Bot{ID: "bot-2"}, 0)
	cache.Set("conv-3", &store.Bot{ID: "bot-3"}, 0)

	// Access conv-1 to promote it
	cache.Get("conv-1")

	// Add new entry - should evict conv-2 (not conv-1)
	cache.Set("conv-4", &store.Bot{ID: "bot-4"}, 0)

	_, ok := cache.Get("conv-1")
	assert.True(t, ok, "promoted entry should exist")

	_, ok = cache.Get("conv-2")
	assert.False(t, ok, "LRU entry should be evicted")
}

// BenchmarkLRUCache_Set benchmarks Set operation.
func BenchmarkLRUCache_Set(b *testing.B) {
	cache := NewLRUCache[string, *store.Bot](10000, time.Minute)
	bot := &store.Bot{ID: "bot-1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := string(rune('a' + i%26))
		cache.Set(key, bot, 0)
	}
}

// BenchmarkLRUCache_Get benchmarks Get operation.
func BenchmarkLRUCache_Get(b *testing.B) {
	cache := NewLRUCache[string, *store.Bot](10000, time.Minute)
	cache.Set("conv-1", &store.Bot{ID: "bot-1"}, 0)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cache.Get("conv-1")
	}
}

// BenchmarkLRUCache_SetAndEvict benchmarks Set with eviction.
func BenchmarkLRUCache_SetAndEvict(b *testing.B) {
	cache := NewLRUCache[string, *store.Bot](100, time.Minute)
	bot := &store.Bot{ID: "bot-1"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := string(rune('a' + i%100))
		cache.Set(key, bot, 0)
	}
}
