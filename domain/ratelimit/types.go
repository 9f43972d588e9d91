// Package ratelimit provides domain types for rate limiting.
package ratelimit

import (
	"time"
)

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerWindow is the maximum number of requests allowed in the window.
	RequestsPerWindow int
	// WindowSize is the duration of the sliding window.
	WindowSize time.Duration
}

// Result represents the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is when the rate limit window resets.
	ResetAt time.Time
	// RetryAfter is the duration to wait before retrying (only set when not allowed).
	RetryAfter time.Duration
}

// MiddlewareConfig configures the rate limiting middleware.
type MiddlewareConfig struct {
	// UserConfig applies to authenticated callers, keyed by user ID.
	UserConfig Config
	// IPConfig applies when no user ID is available.
	IPConfig Config
	// KeyPrefix is the prefix for all rate limit keys in Redis.
	KeyPrefix string
}

// DefaultMiddlewareConfig returns a configuration allowing requests per window for
// each user, and the same budget per client IP for unauthenticated requests.
func DefaultMiddlewareConfig(requests int, window time.Duration) MiddlewareConfig {
	cfg := Config{RequestsPerWindow: requests, WindowSize: window}
	return MiddlewareConfig{
		UserConfig: cfg,
		IPConfig:   cfg,
		KeyPrefix:  "tasks:ratelimit:",
	}
}
