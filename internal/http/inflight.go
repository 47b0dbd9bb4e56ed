package http

import (
	"context"
	"sync/atomic"
	"time"
)

// InFlightTracker counts requests currently being served. The composition root
// owns one instance, hands it to the router, and drains it during graceful
// shutdown after the listener stops accepting.
type InFlightTracker struct {
	count atomic.Int64
}

// NewInFlightTracker returns a tracker with a zero count.
func NewInFlightTracker() *InFlightTracker {
	return &InFlightTracker{}
}

// Add records a request entering the router.
func (t *InFlightTracker) Add() {
	t.count.Add(1)
}

// Done records a request completing.
func (t *InFlightTracker) Done() {
	t.count.Add(-1)
}

// Count returns the number of requests currently in flight.
func (t *InFlightTracker) Count() int64 {
	return t.count.Load()
}

// Drain blocks until the count reaches zero or ctx is done, re-checking every
// checkInterval.
func (t *InFlightTracker) Drain(ctx context.Context, checkInterval time.Duration) error {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()
	for {
		if t.Count() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
