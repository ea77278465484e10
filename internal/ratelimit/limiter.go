// Package ratelimit provides per-client rate limiting using a sliding
// window over the timestamps of recently admitted requests. State is
// process-local; each server instance enforces its own limit.
package ratelimit

import "time"

// Limiter defines the rate limiting contract. Implementations must be safe
// for concurrent use.
type Limiter interface {
	// Allow checks whether a request identified by key should be admitted.
	// Returns whether the request is admitted and rate information for
	// populating response headers. A denied request is not recorded.
	Allow(key string) (allowed bool, info Info)

	// Close stops background goroutines and releases resources.
	Close()
}

// Info contains rate limit state for populating response headers.
type Info struct {
	Limit      int           // Maximum requests per window
	Remaining  int           // Requests left in the current window
	ResetAt    time.Time     // When the oldest counted request leaves the window
	RetryAfter time.Duration // How long to wait (meaningful only when denied)
}
