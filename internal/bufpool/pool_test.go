package bufpool

import "testing"

func TestAcquireAllocatesWhenEmpty(t *testing.T) {
	p := New()
	lease := p.Acquire(100)
	if cap(lease.Bytes()) < 100 {
		t.Fatalf("expected capacity >= 100, got %d", cap(lease.Bytes()))
	}
	if len(lease.Bytes()) != 0 {
		t.Fatalf("expected zero length lease, got %d", len(lease.Bytes()))
	}
}

func TestReleaseClearsLength(t *testing.T) {
	p := New()
	lease := p.Acquire(64)
	lease.Set(append(lease.Bytes(), []byte("hello")...))
	if len(lease.Bytes()) == 0 {
		t.Fatal("expected non-zero length before release")
	}
	lease.Release()
	if len(lease.Bytes()) != 0 {
		t.Fatalf("expected length zero after release, got %d", len(lease.Bytes()))
	}
}

func TestReleaseReusesSameClass(t *testing.T) {
	p := New()
	first := p.Acquire(64)
	first.Release()

	p.mu.Lock()
	n := len(p.classes[capClass(64)])
	p.mu.Unlock()
	if n != 1 {
		t.Fatalf("expected released buffer to be pooled, class has %d entries", n)
	}

	second := p.Acquire(64)
	if cap(second.Bytes()) < 64 {
		t.Fatalf("expected reused buffer with capacity >= 64, got %d", cap(second.Bytes()))
	}
}

func TestReleaseDropsOversizedBuffer(t *testing.T) {
	p := New(WithReuseThreshold(128))
	lease := p.Acquire(1024)
	lease.Release()

	p.mu.Lock()
	n := len(p.classes[capClass(1024)])
	p.mu.Unlock()
	if n != 0 {
		t.Fatalf("expected oversized buffer to be dropped, found %d in class", n)
	}
}

func TestClassPoolSizeBound(t *testing.T) {
	p := New(WithClassPoolSize(2))
	var leases []*Lease
	for i := 0; i < 5; i++ {
		leases = append(leases, p.Acquire(64))
	}
	for _, l := range leases {
		l.Release()
	}

	p.mu.Lock()
	n := len(p.classes[capClass(64)])
	p.mu.Unlock()
	if n != 2 {
		t.Fatalf("expected class to cap at 2 buffers, got %d", n)
	}
}

func TestCapClass(t *testing.T) {
	cases := map[int]int{
		1:    64,
		64:   64,
		65:   128,
		100:  128,
		129:  256,
		1000: 1024,
	}
	for in, want := range cases {
		if got := capClass(in); got != want {
			t.Errorf("capClass(%d) = %d, want %d", in, got, want)
		}
	}
}
