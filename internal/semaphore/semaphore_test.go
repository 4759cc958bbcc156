package semaphore

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestAcquireReleaseBasic(t *testing.T) {
	s := New(2)
	ctx := context.Background()

	p1, err := s.Acquire(ctx, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, err := s.Acquire(ctx, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Outstanding() != 2 {
		t.Fatalf("expected 2 outstanding, got %d", s.Outstanding())
	}

	p1.Release()
	p2.Release()
	if s.Outstanding() != 0 {
		t.Fatalf("expected 0 outstanding after release, got %d", s.Outstanding())
	}
}

func TestAcquireTimesOut(t *testing.T) {
	s := New(1)
	ctx := context.Background()

	p, err := s.Acquire(ctx, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer p.Release()

	_, err = s.Acquire(ctx, 50*time.Millisecond)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestZeroTimeoutBehavesAsTryAcquire(t *testing.T) {
	s := New(1)
	ctx := context.Background()

	p, err := s.Acquire(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error acquiring free permit with zero timeout: %v", err)
	}
	if p == nil {
		t.Fatal("expected a permit")
	}

	_, err = s.Acquire(ctx, 0)
	if err != ErrTimeout {
		t.Fatalf("expected ErrTimeout for contended zero-timeout acquire, got %v", err)
	}
	p.Release()
}

func TestAtMostKOutstanding(t *testing.T) {
	const k = 3
	s := New(k)
	var wg sync.WaitGroup
	var mu sync.Mutex
	maxSeen := int64(0)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.Acquire(context.Background(), time.Second)
			if err != nil {
				return
			}
			defer p.Release()

			mu.Lock()
			if o := s.Outstanding(); o > maxSeen {
				maxSeen = o
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
		}()
	}
	wg.Wait()

	if maxSeen > k {
		t.Fatalf("observed %d outstanding permits, want <= %d", maxSeen, k)
	}
}

func TestDoubleReleaseIsNoop(t *testing.T) {
	s := New(1)
	p, err := s.Acquire(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p.Release()
	p.Release()
	if s.Outstanding() != 0 {
		t.Fatalf("expected 0 outstanding, got %d", s.Outstanding())
	}
}

func TestClosedSemaphoreRejectsAcquire(t *testing.T) {
	s := New(1)
	s.Close()
	_, err := s.Acquire(context.Background(), time.Second)
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	_, err = s.TryAcquire()
	if err != ErrClosed {
		t.Fatalf("expected ErrClosed from TryAcquire, got %v", err)
	}
}
