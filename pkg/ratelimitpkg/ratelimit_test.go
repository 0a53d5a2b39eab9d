package ratelimitpkg

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowWithinWindow(t *testing.T) {
	limiter := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("key"))
	}

	require.False(t, limiter.Allow("key"))
	require.False(t, limiter.Allow("key"))
}

func TestWindowReset(t *testing.T) {
	now := time.Now()

	limiter := New(2, time.Minute)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.Allow("key"))
	require.True(t, limiter.Allow("key"))
	require.False(t, limiter.Allow("key"))

	// A new window grants a fresh budget; the old count does not carry over.
	now = now.Add(time.Minute)

	require.True(t, limiter.Allow("key"))
	require.True(t, limiter.Allow("key"))
	require.False(t, limiter.Allow("key"))
}

func TestKeysAreIndependent(t *testing.T) {
	limiter := New(1, time.Minute)

	require.True(t, limiter.Allow("first"))
	require.False(t, limiter.Allow("first"))
	require.True(t, limiter.Allow("second"))
}

func TestAllowConcurrent(t *testing.T) {
	const (
		limit      = 50
		goroutines = 200
	)

	limiter := New(limit, time.Minute)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if limiter.Allow("key") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	require.Equal(t, limit, allowed)
}

func TestAllowConcurrentDistinctKeys(t *testing.T) {
	limiter := New(1, time.Minute)

	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	var wg sync.WaitGroup

	results := make([]bool, len(keys))

	for i, key := range keys {
		wg.Add(1)

		go func(i int, key string) {
			defer wg.Done()
			results[i] = limiter.Allow(key)
		}(i, key)
	}

	wg.Wait()

	for i := range keys {
		require.True(t, results[i])
	}
}
