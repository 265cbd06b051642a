package utils

import (
	"context"
	"sync"
	"time"
)

// RateLimiter spaces outgoing provider requests by a fixed delay. Each caller
// reserves the next available slot, so concurrent workers are serialized
// against the provider's rate budget without holding a lock while sleeping.
type RateLimiter struct {
	mu       sync.Mutex
	nextSlot time.Time
	delay    time.Duration
}

// NewRateLimiter creates a new RateLimiter with the given delay in milliseconds
func NewRateLimiter(delayMs int) *RateLimiter {
	return &RateLimiter{
		delay: time.Duration(delayMs) * time.Millisecond,
	}
}

// Wait blocks until the caller's reserved slot arrives or the context ends.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	slot := r.nextSlot
	if slot.Before(now) {
		slot = now
	}
	r.nextSlot = slot.Add(r.delay)
	r.mu.Unlock()

	wait := time.Until(slot)
	if wait <= 0 {
		return nil
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
