package ratelimiter

// RateLimiter decides whether one more request may pass right now.
type RateLimiter interface {
	// Allow returns true if the request is allowed.
	Allow() bool
}
