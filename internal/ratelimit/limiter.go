// Package ratelimit wraps golang.org/x/time/rate with named limiters.
package ratelimit

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Limiter throttles outgoing requests to one remote API. The name shows up
// in errors and logs.
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// New creates a rate limiter allowing requestsPerSecond sustained requests,
// with an equal burst size.
func New(name string, requestsPerSecond int) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		name:    name,
	}
}

// Wait blocks until the limiter allows a request, or the context is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait for %s: %w", l.name, err)
	}
	return nil
}

// Allow reports whether a request may proceed without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// Name returns the limiter's name.
func (l *Limiter) Name() string {
	return l.name
}
