package parallel

import (
	"fmt"
	"sync"

	"github.com/netvendor/netdev/device"
	"github.com/netvendor/netdev/devicetype"
	"github.com/netvendor/netdev/internal/settings"
)

// fakeDevice is an in-memory device.Device for testing the Manager without
// a live SSH server, mirroring the teacher's ConnectionFactory test doubles
// in ssh_session_pool_test.go.
type fakeDevice struct {
	mu         sync.Mutex
	deviceType devicetype.Tag
	responses  map[string]string
	errs       map[string]error
	gate       map[string]chan struct{}
	connected  bool
	closed     int
	sent       []string
	probeErr   error
}

func newFakeDevice(deviceType devicetype.Tag) *fakeDevice {
	return &fakeDevice{
		deviceType: deviceType,
		responses:  make(map[string]string),
		errs:       make(map[string]error),
		gate:       make(map[string]chan struct{}),
	}
}

func (f *fakeDevice) Connect() error        { f.connected = true; return nil }
func (f *fakeDevice) Close() error          { f.connected = false; f.closed++; return nil }
func (f *fakeDevice) IsConnected() bool     { return f.connected }
func (f *fakeDevice) DeviceType() string    { return string(f.deviceType) }
func (f *fakeDevice) CheckConfigMode() bool { return false }

func (f *fakeDevice) SendCommand(cmd string, _ device.SendCommandOptions) (string, error) {
	if ch, ok := f.gate[cmd]; ok {
		<-ch
	}
	f.mu.Lock()
	f.sent = append(f.sent, cmd)
	f.mu.Unlock()
	if err, ok := f.errs[cmd]; ok {
		return "", err
	}
	return f.responses[cmd], nil
}

func (f *fakeDevice) SendCommands(cmds []string, opts device.SendCommandOptions) ([]string, error) {
	out := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		o, err := f.SendCommand(cmd, opts)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeDevice) SendConfigSet(cmds []string, opts device.SendConfigSetOptions) (string, error) {
	out, err := f.SendCommands(cmds, opts.SendCommandOptions)
	joined := ""
	for _, o := range out {
		joined += o + "\n"
	}
	return joined, err
}

func (f *fakeDevice) EnterConfigMode(string) error   { return nil }
func (f *fakeDevice) ExitConfigMode(string) error    { return nil }
func (f *fakeDevice) SaveConfiguration(string) error { return nil }
func (f *fakeDevice) SetTerminalWidth(int) error     { return nil }
func (f *fakeDevice) DisablePaging() error           { return nil }
func (f *fakeDevice) SetBasePrompt() (string, error) {
	if f.probeErr != nil {
		return "", f.probeErr
	}
	return "fake", nil
}

var _ device.Device = (*fakeDevice)(nil)

// fakeConnectFunc builds a Manager connect function that returns pre-built
// fakeDevices keyed by host, so each test device keeps a stable identity
// across cache checkout/return cycles.
func fakeConnectFunc(devices map[string]*fakeDevice) func(device.Config, settings.Settings) (device.Device, error) {
	return func(cfg device.Config, _ settings.Settings) (device.Device, error) {
		dev, ok := devices[cfg.Host]
		if !ok {
			return nil, fmt.Errorf("no fake device registered for host %q", cfg.Host)
		}
		dev.Connect()
		return dev, nil
	}
}
