package http

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// TestInFlightTracker_Count verifies bookkeeping under concurrent requests.
func TestInFlightTracker_Count(t *testing.T) {
	tracker := NewInFlightTracker()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Add()
		}()
	}
	wg.Wait()

	if got := tracker.Count(); got != 50 {
		t.Fatalf("Count() = %d, want 50", got)
	}

	for i := 0; i < 50; i++ {
		tracker.Done()
	}
	if got := tracker.Count(); got != 0 {
		t.Errorf("Count() after drain = %d, want 0", got)
	}
}

// TestInFlightTracker_Drain verifies that Drain returns once outstanding
// requests complete.
func TestInFlightTracker_Drain(t *testing.T) {
	tracker := NewInFlightTracker()
	tracker.Add()

	go func() {
		time.Sleep(20 * time.Millisecond)
		tracker.Done()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tracker.Drain(ctx, time.Millisecond); err != nil {
		t.Errorf("Drain() error = %v", err)
	}
}

// TestInFlightTracker_DrainTimeout verifies that Drain gives up when the
// context expires with requests still outstanding.
func TestInFlightTracker_DrainTimeout(t *testing.T) {
	tracker := NewInFlightTracker()
	tracker.Add()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tracker.Drain(ctx, time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Drain() error = %v, want DeadlineExceeded", err)
	}
	if got := tracker.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1 still outstanding", got)
	}
}
