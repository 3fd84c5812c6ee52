package crawler

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// FetchGate bounds the number of simultaneously in-flight fetches. Every
// successful Acquire must be paired with exactly one Release.
type FetchGate struct {
	sem      *semaphore.Weighted
	capacity int

	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewFetchGate returns a gate with the given capacity. A non-positive
// capacity falls back to DefaultMaxInFlight.
func NewFetchGate(capacity int) *FetchGate {
	if capacity <= 0 {
		capacity = DefaultMaxInFlight
	}

	return &FetchGate{
		sem:      semaphore.NewWeighted(int64(capacity)),
		capacity: capacity,
	}
}

// Acquire blocks until a permit is available or ctx is done.
func (g *FetchGate) Acquire(ctx context.Context) error {
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	n := g.inFlight.Add(1)
	for {
		peak := g.peak.Load()
		if n <= peak || g.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	return nil
}

// Release returns a permit to the gate.
func (g *FetchGate) Release() {
	g.inFlight.Add(-1)
	g.sem.Release(1)
}

// Capacity returns the maximum number of concurrent permits.
func (g *FetchGate) Capacity() int { return g.capacity }

// InFlight returns the number of permits currently held.
func (g *FetchGate) InFlight() int { return int(g.inFlight.Load()) }

// Peak returns the highest number of permits ever held at the same time.
func (g *FetchGate) Peak() int { return int(g.peak.Load()) }
