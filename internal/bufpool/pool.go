// Package bufpool implements the reusable byte-buffer pool (C1) shared by the
// SSH channel's read loop. Buffers are bucketed into capacity classes (the
// next power of two at or above the requested capacity) so unrelated callers
// asking for similar sizes end up sharing a class instead of fragmenting the
// pool one-size-per-caller.
package bufpool

import "sync"

const (
	// defaultClassPoolSize bounds how many buffers a single capacity class
	// will hold onto; anything beyond this is dropped instead of pushed back.
	defaultClassPoolSize = 16

	// defaultReuseThreshold is the largest capacity, in bytes, that is worth
	// keeping around for reuse. Leases larger than this are simply dropped on
	// release rather than retained indefinitely.
	defaultReuseThreshold = 1 << 20 // 1 MiB
)

// Pool is a capacity-classed pool of reusable byte slices. The zero value is
// not usable; construct with New. Safe for concurrent use.
type Pool struct {
	mu             sync.Mutex
	classes        map[int][][]byte
	classPoolSize  int
	reuseThreshold int
}

// Option configures a Pool.
type Option func(*Pool)

// WithClassPoolSize overrides how many buffers each capacity class retains.
func WithClassPoolSize(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.classPoolSize = n
		}
	}
}

// WithReuseThreshold overrides the largest capacity considered worth pooling.
func WithReuseThreshold(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.reuseThreshold = n
		}
	}
}

// New creates a Pool ready for use.
func New(opts ...Option) *Pool {
	p := &Pool{
		classes:        make(map[int][][]byte),
		classPoolSize:  defaultClassPoolSize,
		reuseThreshold: defaultReuseThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Lease is a borrowed byte slice. The caller must call Release when done;
// correctness of the program never depends on the release actually reusing
// the buffer, only on Bytes being valid until Release is called.
type Lease struct {
	pool  *Pool
	class int
	buf   []byte
}

// Bytes returns the leased buffer. Its length is always zero on acquire; the
// caller grows it with append or re-slices up to cap(Bytes()).
func (l *Lease) Bytes() []byte { return l.buf }

// Set replaces the lease's current slice (e.g. after an append that may have
// reallocated). On Release, the slice set here is what returns to the pool if
// its capacity qualifies.
func (l *Lease) Set(b []byte) { l.buf = b }

// Release clears the buffer and returns it to the pool if it still qualifies
// for reuse (§4.1: capacity <= reuse threshold and the class has room).
func (l *Lease) Release() {
	if l == nil || l.pool == nil {
		return
	}
	l.pool.release(l)
	l.pool = nil
}

// capClass rounds n up to the next power of two, with a floor of 64 bytes.
func capClass(n int) int {
	const floor = 64
	if n <= floor {
		return floor
	}
	c := floor
	for c < n {
		c <<= 1
	}
	return c
}

// Acquire returns a lease with capacity >= minCapacity. If the pool has no
// spare buffer in the matching class, a new one is allocated.
func (p *Pool) Acquire(minCapacity int) *Lease {
	class := capClass(minCapacity)

	p.mu.Lock()
	stack := p.classes[class]
	var buf []byte
	if n := len(stack); n > 0 {
		buf = stack[n-1]
		p.classes[class] = stack[:n-1]
	}
	p.mu.Unlock()

	if buf == nil {
		buf = make([]byte, 0, class)
	}
	return &Lease{pool: p, class: class, buf: buf[:0]}
}

// release implements the C1 release contract: clear the length, and push
// back onto the class stack only if the capacity is within the reuse
// threshold and the class isn't already full.
func (p *Pool) release(l *Lease) {
	l.buf = l.buf[:0]
	buf := l.buf
	if cap(buf) > p.reuseThreshold {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	stack := p.classes[l.class]
	if len(stack) >= p.classPoolSize {
		return
	}
	p.classes[l.class] = append(stack, buf)
}
