// Package parallel implements the Parallel Execution Manager (C9): bounded-
// concurrency fan-out across many devices, a shared connection cache, and
// per-device failure strategies, per spec §4.9/§5. It is grounded on the
// teacher's ssh_session_pool.go checkout/return semantics and retry.go's
// failure-classification idiom, generalized from one RTX address to many
// heterogeneous devices scheduled concurrently.
package parallel

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/netvendor/netdev/device"
	"github.com/netvendor/netdev/internal/semaphore"
	"github.com/netvendor/netdev/internal/settings"
	"github.com/netvendor/netdev/result"
	"github.com/netvendor/netdev/transport"
)

// Config tunes one Manager, per spec §4.9's recognized options.
type Config struct {
	MaxConcurrency        int
	CommandTimeout        time.Duration
	ConnectTimeout        time.Duration
	PermitAcquireTimeout  time.Duration
	ConnectionIdleTimeout time.Duration
	FailureStrategy       Strategy
	ReuseConnections      bool
}

// ConfigFromSettings derives a Config from a Settings snapshot's
// Concurrency/Network groups, leaving FailureStrategy at its zero value
// (ContinueDevice) and ReuseConnections false; callers override both
// explicitly since neither has a natural settings-tree home.
func ConfigFromSettings(s settings.Settings) Config {
	return Config{
		MaxConcurrency:        s.Concurrency.MaxConnections,
		CommandTimeout:        s.Network.CommandTimeout,
		ConnectTimeout:        s.Network.ConnectTimeout,
		PermitAcquireTimeout:  s.Concurrency.PermitAcquireTimeout,
		ConnectionIdleTimeout: s.Concurrency.IdleTimeout,
		FailureStrategy:       ContinueDevice,
		ReuseConnections:      false,
	}
}

// Manager schedules a Job's per-device queues across bounded concurrency,
// per spec §4.9's algorithm.
type Manager struct {
	cfg       Config
	settings  settings.Settings
	sem       *semaphore.Semaphore
	cache     *ConnectionCache
	connectFn func(device.Config, settings.Settings) (device.Device, error)
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithConnectFunc overrides how a Manager connects a device, mirroring the
// teacher's ConnectionFactory/WithConnectionFactory pattern for injecting a
// fake connection in tests without a live SSH server.
func WithConnectFunc(fn func(device.Config, settings.Settings) (device.Device, error)) Option {
	return func(m *Manager) { m.connectFn = fn }
}

// New creates a Manager. s is threaded into every connection the manager
// opens, so device-level timeouts (command/read/connect) stay consistent
// with the rest of the process.
func New(cfg Config, s settings.Settings, opts ...Option) *Manager {
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}
	m := &Manager{
		cfg:       cfg,
		settings:  s,
		sem:       semaphore.New(cfg.MaxConcurrency),
		cache:     NewConnectionCache(cfg.ConnectionIdleTimeout),
		connectFn: connectDevice,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Close releases the manager's semaphore and connection cache. Safe to
// call once execution has finished.
func (m *Manager) Close() {
	m.sem.Close()
	m.cache.Close()
}

// Execute runs job to completion and returns a fully populated
// BatchCommandResults, per spec §7's "every batch returns a fully
// populated result set even if every command failed".
func (m *Manager) Execute(ctx context.Context, job Job) (*result.BatchCommandResults, error) {
	token := NewCancelToken()
	perDevice := make([][]result.CommandResult, len(job.Queues))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range job.Queues {
		i, q := i, q
		g.Go(func() error {
			results, abortAll := m.runDeviceQueue(gctx, token, q)
			perDevice[i] = results
			if abortAll {
				token.Cancel()
				return errAbortAll
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, errAbortAll) {
		return nil, err
	}

	batch := &result.BatchCommandResults{}
	for _, rs := range perDevice {
		batch.Results = append(batch.Results, rs...)
	}
	return batch, nil
}

// errAbortAll is returned by a device task to trip errgroup's shared
// context cancellation for StopAll, and is never surfaced to callers.
var errAbortAll = errors.New("parallel: stop all devices")

// runDeviceQueue drives one device's command queue to completion (or to
// the point its failure strategy cuts it short) and reports whether a
// StopAll-triggering failure occurred.
func (m *Manager) runDeviceQueue(ctx context.Context, token *CancelToken, q DeviceQueue) ([]result.CommandResult, bool) {
	id := q.id()
	deviceType := q.Config.DeviceType

	if token.Cancelled() || ctx.Err() != nil {
		return skipAll(id, deviceType, q.Commands), false
	}

	permit, err := m.sem.Acquire(ctx, m.cfg.PermitAcquireTimeout)
	if err != nil {
		if token.Cancelled() || ctx.Err() != nil {
			return skipAll(id, deviceType, q.Commands), false
		}
		return timeoutAll(id, deviceType, q.Commands, err), false
	}
	defer permit.Release()

	cfg := q.Config
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = m.cfg.ConnectTimeout
	}

	dev, _, err := m.cache.Checkout(cfg, func() (device.Device, error) {
		return m.connectFn(cfg, m.settings)
	})
	if err != nil {
		return failAll(id, deviceType, q.Commands, err), false
	}

	results := make([]result.CommandResult, 0, len(q.Commands))
	abortAll := false
	healthy := true

	for i, cmd := range q.Commands {
		if token.Cancelled() || ctx.Err() != nil {
			results = append(results, skipAll(id, deviceType, q.Commands[i:])...)
			break
		}

		opts := q.Options
		if opts.ReadTimeout <= 0 {
			opts.ReadTimeout = m.cfg.CommandTimeout
		}

		start := time.Now()
		out, cmdErr := dev.SendCommand(cmd, opts)
		end := time.Now()

		r := result.CommandResult{
			DeviceID: id, DeviceType: deviceType, Command: cmd,
			Output: out, StartedAt: start, EndedAt: end,
		}
		if cmdErr == nil {
			r.Status = result.Success
		} else {
			r.Error = cmdErr.Error()
			r.Status = classify(cmdErr)
			if connectionBroken(cmdErr) {
				healthy = false
			}
		}
		results = append(results, r)

		if cmdErr != nil {
			switch m.cfg.FailureStrategy {
			case ContinueDevice:
				continue
			case StopDevice:
				results = append(results, skipAll(id, deviceType, q.Commands[i+1:])...)
			case StopAll:
				results = append(results, skipAll(id, deviceType, q.Commands[i+1:])...)
				abortAll = true
			}
			break
		}
	}

	if abortAll || !healthy {
		m.cache.Discard(cfg, dev)
	} else {
		m.cache.Return(cfg, dev, m.cfg.ReuseConnections)
	}
	return results, abortAll
}

// connectDevice constructs and connects a device.Device for cfg, used as
// the ConnectionCache's fill function on a cache miss.
func connectDevice(cfg device.Config, s settings.Settings) (device.Device, error) {
	dev, err := device.New(cfg, s)
	if err != nil {
		return nil, err
	}
	if err := dev.Connect(); err != nil {
		return nil, err
	}
	return dev, nil
}

// classify maps an error from SendCommand to a CommandResult status, per
// spec §7's propagation policy: a PatternTimeoutError becomes Timeout,
// everything else becomes Failed. An error matching ErrorPattern surfaces
// as *device.ConfigError, which also classifies as Failed.
func classify(err error) result.Status {
	var pt *transport.PatternTimeoutError
	if errors.As(err, &pt) {
		return result.Timeout
	}
	return result.Failed
}

// connectionBroken reports whether err indicates the underlying channel
// itself is no longer usable (as opposed to a config/prompt-level failure
// that leaves the session intact), so the connection cache knows whether
// to evict the entry or return it for reuse.
func connectionBroken(err error) bool {
	if errors.Is(err, transport.ErrClosed) {
		return true
	}
	var ioErr *transport.IoError
	return errors.As(err, &ioErr)
}

