package parallel

import (
	"sync"
	"time"

	"github.com/netvendor/netdev/device"
	"github.com/netvendor/netdev/devicetype"
)

// cacheKey identifies one device endpoint, per spec §3's connection cache
// key `(user, host, port, device_type)`.
type cacheKey struct {
	user       string
	host       string
	port       int
	deviceType devicetype.Tag
}

func keyFor(cfg device.Config) cacheKey {
	return cacheKey{user: cfg.Username, host: cfg.Host, port: cfg.Port, deviceType: cfg.DeviceType}
}

type cacheEntry struct {
	dev        device.Device
	checkedOut bool
	lastUsed   time.Time
}

// ConnectionCache is the Parallel Execution Manager's shared connection
// cache (spec §3/§5): a single mapping guarded by one lock held only for
// lookup/insert/remove, never for the connect/command call itself. A
// connection handle is either in the cache or checked out, never both,
// generalizing the teacher's ssh_session_pool.go from a free-list-per-
// address pool to a single-owner-per-key cache.
type ConnectionCache struct {
	mu          sync.Mutex
	entries     map[cacheKey]*cacheEntry
	idleTimeout time.Duration
	closed      bool
	stopReap    chan struct{}
}

// NewConnectionCache creates a cache that reaps unchecked-out entries idle
// for longer than idleTimeout. A non-positive idleTimeout disables reaping.
func NewConnectionCache(idleTimeout time.Duration) *ConnectionCache {
	c := &ConnectionCache{
		entries:     make(map[cacheKey]*cacheEntry),
		idleTimeout: idleTimeout,
		stopReap:    make(chan struct{}),
	}
	if idleTimeout > 0 {
		go c.reapLoop()
	}
	return c
}

func (c *ConnectionCache) reapLoop() {
	interval := c.idleTimeout / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.reapIdle()
		case <-c.stopReap:
			return
		}
	}
}

func (c *ConnectionCache) reapIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	for k, e := range c.entries {
		if !e.checkedOut && now.Sub(e.lastUsed) >= c.idleTimeout {
			e.dev.Close()
			delete(c.entries, k)
		}
	}
}

// Checkout returns a connected Device for cfg, reusing a cached, healthy
// connection when one exists or calling connect to create one otherwise.
// The bool result reports whether an existing connection was reused, per
// spec §8 testable property 6: reused connections are health-probed first
// (SetBasePrompt re-sends an empty line and re-matches the prompt); a
// failing probe evicts the entry and falls through to a fresh connect.
func (c *ConnectionCache) Checkout(cfg device.Config, connect func() (device.Device, error)) (device.Device, bool, error) {
	key := keyFor(cfg)

	c.mu.Lock()
	entry, ok := c.entries[key]
	if ok && !entry.checkedOut {
		entry.checkedOut = true
		c.mu.Unlock()

		if _, err := entry.dev.SetBasePrompt(); err == nil {
			return entry.dev, true, nil
		}
		entry.dev.Close()
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
	} else {
		c.mu.Unlock()
	}

	dev, err := connect()
	if err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{dev: dev, checkedOut: true, lastUsed: time.Now()}
	c.mu.Unlock()
	return dev, false, nil
}

// Return hands a checked-out connection back. When keep is true the entry
// stays cached for reuse; otherwise it is closed and dropped.
func (c *ConnectionCache) Return(cfg device.Config, dev device.Device, keep bool) {
	key := keyFor(cfg)
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || entry.dev != dev {
		if !keep {
			dev.Close()
		}
		return
	}
	if !keep || c.closed {
		delete(c.entries, key)
		c.mu.Unlock()
		dev.Close()
		c.mu.Lock()
		return
	}
	entry.checkedOut = false
	entry.lastUsed = time.Now()
}

// Discard closes and drops a checked-out connection unconditionally, used
// when a task determines the connection failed mid-use.
func (c *ConnectionCache) Discard(cfg device.Config, dev device.Device) {
	key := keyFor(cfg)
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && entry.dev == dev {
		delete(c.entries, key)
	}
	c.mu.Unlock()
	dev.Close()
}

// Close stops idle reaping and closes every cached connection.
func (c *ConnectionCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	entries := c.entries
	c.entries = make(map[cacheKey]*cacheEntry)
	c.mu.Unlock()

	close(c.stopReap)
	for _, e := range entries {
		e.dev.Close()
	}
}
