package parallel

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netvendor/netdev/device"
	"github.com/netvendor/netdev/devicetype"
)

func cfgFor(host string) device.Config {
	return device.Config{
		DeviceType: devicetype.CiscoIOS,
		Host:       host,
		Username:   "admin",
		Port:       22,
	}
}

func TestConnectionCacheCheckoutMissCallsConnect(t *testing.T) {
	c := NewConnectionCache(0)
	defer c.Close()

	dev := newFakeDevice(devicetype.CiscoIOS)
	calls := 0
	got, reused, err := c.Checkout(cfgFor("r1"), func() (device.Device, error) {
		calls++
		return dev, nil
	})
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, 1, calls)
	assert.Same(t, dev, got)
}

func TestConnectionCacheReturnThenCheckoutReusesHealthyEntry(t *testing.T) {
	c := NewConnectionCache(0)
	defer c.Close()

	dev := newFakeDevice(devicetype.CiscoIOS)
	cfg := cfgFor("r1")
	_, _, err := c.Checkout(cfg, func() (device.Device, error) { return dev, nil })
	require.NoError(t, err)
	c.Return(cfg, dev, true)

	calls := 0
	got, reused, err := c.Checkout(cfg, func() (device.Device, error) {
		calls++
		return nil, errors.New("connect should not be called on reuse")
	})
	require.NoError(t, err)
	assert.True(t, reused)
	assert.Equal(t, 0, calls)
	assert.Same(t, dev, got)
}

func TestConnectionCacheEvictsEntryFailingHealthProbe(t *testing.T) {
	c := NewConnectionCache(0)
	defer c.Close()

	bad := newFakeDevice(devicetype.CiscoIOS)
	bad.probeErr = errors.New("prompt mismatch")
	cfg := cfgFor("r1")
	_, _, err := c.Checkout(cfg, func() (device.Device, error) { return bad, nil })
	require.NoError(t, err)
	c.Return(cfg, bad, true)

	fresh := newFakeDevice(devicetype.CiscoIOS)
	got, reused, err := c.Checkout(cfg, func() (device.Device, error) { return fresh, nil })
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Same(t, fresh, got)
	assert.Equal(t, 1, bad.closed, "unhealthy cached connection should be closed on eviction")
}

func TestConnectionCacheReturnWithKeepFalseCloses(t *testing.T) {
	c := NewConnectionCache(0)
	defer c.Close()

	dev := newFakeDevice(devicetype.CiscoIOS)
	cfg := cfgFor("r1")
	_, _, err := c.Checkout(cfg, func() (device.Device, error) { return dev, nil })
	require.NoError(t, err)
	c.Return(cfg, dev, false)

	assert.Equal(t, 1, dev.closed)

	calls := 0
	_, reused, err := c.Checkout(cfg, func() (device.Device, error) {
		calls++
		return newFakeDevice(devicetype.CiscoIOS), nil
	})
	require.NoError(t, err)
	assert.False(t, reused)
	assert.Equal(t, 1, calls)
}

func TestConnectionCacheDiscardClosesAndDrops(t *testing.T) {
	c := NewConnectionCache(0)
	defer c.Close()

	dev := newFakeDevice(devicetype.CiscoIOS)
	cfg := cfgFor("r1")
	_, _, err := c.Checkout(cfg, func() (device.Device, error) { return dev, nil })
	require.NoError(t, err)

	c.Discard(cfg, dev)
	assert.Equal(t, 1, dev.closed)

	calls := 0
	_, _, err = c.Checkout(cfg, func() (device.Device, error) {
		calls++
		return newFakeDevice(devicetype.CiscoIOS), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestConnectionCacheReapsIdleEntries(t *testing.T) {
	c := NewConnectionCache(20 * time.Millisecond)
	defer c.Close()

	dev := newFakeDevice(devicetype.CiscoIOS)
	cfg := cfgFor("r1")
	_, _, err := c.Checkout(cfg, func() (device.Device, error) { return dev, nil })
	require.NoError(t, err)
	c.Return(cfg, dev, true)

	deadline := time.Now().Add(2 * time.Second)
	for dev.closed == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 1, dev.closed, "idle-reaped connection should have been closed")
}

func TestConnectionCacheCloseClosesAllCachedEntries(t *testing.T) {
	c := NewConnectionCache(0)
	dev1 := newFakeDevice(devicetype.CiscoIOS)
	dev2 := newFakeDevice(devicetype.CiscoNXOS)

	_, _, err := c.Checkout(cfgFor("r1"), func() (device.Device, error) { return dev1, nil })
	require.NoError(t, err)
	c.Return(cfgFor("r1"), dev1, true)

	_, _, err = c.Checkout(cfgFor("r2"), func() (device.Device, error) { return dev2, nil })
	require.NoError(t, err)
	c.Return(cfgFor("r2"), dev2, true)

	c.Close()
	assert.Equal(t, 1, dev1.closed)
	assert.Equal(t, 1, dev2.closed)
}
