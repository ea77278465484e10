package ratelimit

import (
	"sync"
	"time"
)

// MemoryLimiter is an in-memory sliding-window limiter. Each key owns an
// ordered log of admission timestamps; a request is admitted while fewer
// than max timestamps fall inside the trailing window. The window boundary
// is exclusive: an entry aged exactly one window no longer counts. A
// background goroutine periodically evicts keys that have gone idle.
type MemoryLimiter struct {
	max             int
	window          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time

	mu      sync.Mutex
	history map[string][]time.Time
	done    chan struct{}
	closed  bool
}

// NewMemoryLimiter creates a limiter admitting at most maxRequests per key
// within the trailing window. It starts a background goroutine for eviction.
func NewMemoryLimiter(maxRequests int, window, cleanupInterval time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		max:             maxRequests,
		window:          window,
		cleanupInterval: cleanupInterval,
		now:             time.Now,
		history:         make(map[string][]time.Time),
		done:            make(chan struct{}),
	}
	go m.cleanup()
	return m
}

// Allow checks whether a request from the given key should be admitted.
// Denied requests leave the key's log untouched apart from pruning.
func (m *MemoryLimiter) Allow(key string) (bool, Info) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	live := prune(m.history[key], now, m.window)

	info := Info{Limit: m.max}

	if len(live) >= m.max {
		m.history[key] = live
		oldest := live[0]
		info.ResetAt = oldest.Add(m.window)
		info.RetryAfter = m.window - now.Sub(oldest)
		return false, info
	}

	live = append(live, now)
	m.history[key] = live

	info.Remaining = m.max - len(live)
	info.ResetAt = live[0].Add(m.window)
	return true, info
}

// prune drops timestamps that have left the window. An entry aged exactly
// window is expired. Entries are ordered, so only a prefix is dropped.
func prune(ts []time.Time, now time.Time, window time.Duration) []time.Time {
	idx := 0
	for idx < len(ts) && now.Sub(ts[idx]) >= window {
		idx++
	}
	if idx == 0 {
		return ts
	}
	live := make([]time.Time, len(ts)-idx)
	copy(live, ts[idx:])
	return live
}

// Close stops the background cleanup goroutine.
func (m *MemoryLimiter) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.done)
	}
}

// cleanup periodically evicts keys whose newest entry is older than
// 2x the cleanup interval.
func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.evictStale()
		}
	}
}

func (m *MemoryLimiter) evictStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-2 * m.cleanupInterval)
	for key, ts := range m.history {
		if len(ts) == 0 || ts[len(ts)-1].Before(cutoff) {
			delete(m.history, key)
		}
	}
}
