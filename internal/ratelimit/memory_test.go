package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests step time deterministically.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter(max int, window time.Duration) (*MemoryLimiter, *fakeClock) {
	limiter := NewMemoryLimiter(max, window, 5*time.Minute)
	clock := newFakeClock()
	limiter.now = clock.Now
	return limiter, clock
}

func TestNewMemoryLimiter(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Minute, 5*time.Minute)
	defer limiter.Close()

	assert.NotNil(t, limiter)
}

func TestMemoryLimiter_Allow_UnderLimit(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Minute, 5*time.Minute)
	defer limiter.Close()

	allowed, info := limiter.Allow("192.168.1.1")
	assert.True(t, allowed)
	assert.Equal(t, 5, info.Limit)
	assert.Equal(t, 4, info.Remaining)
	assert.False(t, info.ResetAt.IsZero())
}

func TestMemoryLimiter_Allow_ExceedsLimit(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)
	defer limiter.Close()

	key := "192.168.1.1"

	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(key)
		require.True(t, allowed, "request %d should be allowed", i+1)
		clock.Advance(time.Second)
	}

	allowed, info := limiter.Allow(key)
	assert.False(t, allowed)
	assert.True(t, info.RetryAfter > 0)
}

func TestMemoryLimiter_Allow_WindowSlides(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)
	defer limiter.Close()

	key := "client"

	// Fill the window at t, t+1s, ..., t+4s
	for i := 0; i < 5; i++ {
		allowed, _ := limiter.Allow(key)
		require.True(t, allowed)
		clock.Advance(time.Second)
	}

	// At t+5s the window is full
	allowed, _ := limiter.Allow(key)
	require.False(t, allowed)

	// At t+61s the first two entries (t, t+1s) have aged out
	clock.Advance(56 * time.Second)
	allowed, info := limiter.Allow(key)
	assert.True(t, allowed)
	assert.Equal(t, 1, info.Remaining)
}

func TestMemoryLimiter_Allow_ExclusiveBoundary(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)
	defer limiter.Close()

	key := "client"

	allowed, _ := limiter.Allow(key)
	require.True(t, allowed)

	// One nanosecond before the boundary the entry still counts
	clock.Advance(time.Minute - time.Nanosecond)
	allowed, _ = limiter.Allow(key)
	assert.False(t, allowed)

	// At exactly one window of age the entry is expired
	clock.Advance(time.Nanosecond)
	allowed, _ = limiter.Allow(key)
	assert.True(t, allowed)
}

func TestMemoryLimiter_Allow_DeniedNotRecorded(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)
	defer limiter.Close()

	key := "client"

	limiter.Allow(key)
	limiter.Allow(key)

	// Hammer the limiter while denied; these must not extend the penalty
	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow(key)
		require.False(t, allowed)
		clock.Advance(time.Second)
	}

	// 10s have passed; the first admission ages out at t+60s
	clock.Advance(50 * time.Second)
	allowed, _ := limiter.Allow(key)
	assert.True(t, allowed, "denied attempts must not count against the window")
}

func TestMemoryLimiter_Allow_RetryAfter(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)
	defer limiter.Close()

	key := "client"
	limiter.Allow(key)

	clock.Advance(20 * time.Second)
	allowed, info := limiter.Allow(key)
	require.False(t, allowed)
	assert.Equal(t, 40*time.Second, info.RetryAfter)
	assert.Equal(t, clock.Now().Add(40*time.Second), info.ResetAt)
}

func TestMemoryLimiter_Allow_DifferentKeys(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	defer limiter.Close()

	// Exhaust key1
	limiter.Allow("key1")
	limiter.Allow("key1")
	allowed1, _ := limiter.Allow("key1")
	assert.False(t, allowed1, "key1 should be denied")

	// key2 should still be allowed
	allowed2, _ := limiter.Allow("key2")
	assert.True(t, allowed2, "key2 should be allowed")
}

func TestMemoryLimiter_ConcurrentAccess(t *testing.T) {
	limiter := NewMemoryLimiter(1000, time.Minute, 5*time.Minute)
	defer limiter.Close()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%5)
			for j := 0; j < 10; j++ {
				limiter.Allow(key)
			}
		}(i)
	}
	wg.Wait()
}

func TestMemoryLimiter_ConcurrentAdmissionCount(t *testing.T) {
	limiter, _ := newTestLimiter(5, time.Minute)
	defer limiter.Close()

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("shared"); allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted, "exactly max requests should be admitted")
}

func TestMemoryLimiter_EvictStale(t *testing.T) {
	limiter, clock := newTestLimiter(5, time.Minute)
	defer limiter.Close()

	limiter.Allow("idle-key")
	limiter.Allow("busy-key")

	// Past the 2x cleanup interval threshold for idle-key
	clock.Advance(11 * time.Minute)
	limiter.Allow("busy-key")

	limiter.evictStale()

	limiter.mu.Lock()
	_, idleExists := limiter.history["idle-key"]
	_, busyExists := limiter.history["busy-key"]
	limiter.mu.Unlock()

	assert.False(t, idleExists, "idle key should be evicted")
	assert.True(t, busyExists, "recently active key should survive")
}

func TestMemoryLimiter_Close_Idempotent(t *testing.T) {
	limiter := NewMemoryLimiter(5, time.Minute, 5*time.Minute)
	limiter.Close()
	limiter.Close()
}
