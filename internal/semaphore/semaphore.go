// Package semaphore implements the timeout semaphore (C2): bounded
// concurrency with a wait-deadline and FIFO fairness, built on top of
// golang.org/x/sync/semaphore's weighted semaphore, which already queues
// blocked Acquire calls in FIFO order and wakes the longest-waiting caller
// first.
package semaphore

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned by Acquire when the deadline elapses before a
// permit becomes available.
var ErrTimeout = errors.New("semaphore: timed out waiting for permit")

// ErrClosed is returned by Acquire/TryAcquire once Close has been called.
var ErrClosed = errors.New("semaphore: closed")

// Semaphore is a counting semaphore with a bounded number of permits.
// Safe for concurrent use.
type Semaphore struct {
	weighted    *semaphore.Weighted
	max         int64
	outstanding atomic.Int64
	closed      chan struct{}
}

// New creates a Semaphore with the given number of permits.
func New(permits int) *Semaphore {
	if permits < 1 {
		permits = 1
	}
	return &Semaphore{
		weighted: semaphore.NewWeighted(int64(permits)),
		max:      int64(permits),
		closed:   make(chan struct{}),
	}
}

// Permit represents one outstanding unit of concurrency. Release must be
// called exactly once; it is safe to defer.
type Permit struct {
	sem      *Semaphore
	released bool
}

// Release returns the permit to the semaphore. Calling Release more than
// once is a no-op after the first call.
func (p *Permit) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	p.sem.outstanding.Add(-1)
	p.sem.weighted.Release(1)
}

// Acquire blocks until a permit is available, the timeout elapses, or the
// semaphore is closed. A timeout of zero means "no wait" (equivalent to
// TryAcquire), per spec §8's boundary behavior.
func (s *Semaphore) Acquire(ctx context.Context, timeout time.Duration) (*Permit, error) {
	select {
	case <-s.closed:
		return nil, ErrClosed
	default:
	}

	if timeout <= 0 {
		return s.TryAcquire()
	}

	acquireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- s.weighted.Acquire(acquireCtx, 1)
	}()

	select {
	case <-s.closed:
		// Cancel the in-flight Acquire and wait for it to unwind before
		// returning, so a permit can never be granted to a caller we've
		// already told ErrClosed (which would leak it forever).
		cancel()
		<-done
		return nil, ErrClosed
	case err := <-done:
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrTimeout
			}
			return nil, err
		}
		s.outstanding.Add(1)
		return &Permit{sem: s}, nil
	}
}

// TryAcquire attempts to acquire a permit without blocking.
func (s *Semaphore) TryAcquire() (*Permit, error) {
	select {
	case <-s.closed:
		return nil, ErrClosed
	default:
	}
	if !s.weighted.TryAcquire(1) {
		return nil, ErrTimeout
	}
	s.outstanding.Add(1)
	return &Permit{sem: s}, nil
}

// Close marks the semaphore closed; subsequent Acquire/TryAcquire calls
// return ErrClosed. Already-issued permits remain valid to Release.
func (s *Semaphore) Close() {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
}

// Outstanding returns the number of permits currently checked out. Intended
// for tests and diagnostics, not the hot path.
func (s *Semaphore) Outstanding() int64 {
	return s.outstanding.Load()
}

// Max returns the configured number of permits.
func (s *Semaphore) Max() int64 {
	return s.max
}
