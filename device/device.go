// Package device implements the vendor state machine, base connection and
// device factory (C5/C6/C7): the per-vendor mode transitions, the
// command/response contract, and dispatch from a device-type tag to a
// concrete, connected Device.
package device

import "github.com/netvendor/netdev/internal/settings"

// Device is the public capability set every vendor exposes uniformly, per
// spec §6's "NetworkDeviceConnection capability set".
type Device interface {
	Connect() error
	Close() error
	IsConnected() bool

	SendCommand(cmd string, opts SendCommandOptions) (string, error)
	SendCommands(cmds []string, opts SendCommandOptions) ([]string, error)
	SendConfigSet(cmds []string, opts SendConfigSetOptions) (string, error)

	EnterConfigMode(cmd string) error
	ExitConfigMode(cmd string) error
	CheckConfigMode() bool
	SaveConfiguration(label string) error

	SetTerminalWidth(width int) error
	DisablePaging() error
	SetBasePrompt() (string, error)

	DeviceType() string
}

// device wraps a *BaseConnection with the resolved device-type tag for
// Device's DeviceType() accessor, and implements lazy connect semantics:
// Connect/Close can be invoked independently of construction.
type device struct {
	cfg      Config
	settings settings.Settings
	vendor   VendorMachine
	conn     *BaseConnection
}
