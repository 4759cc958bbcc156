package device

import (
	"context"

	"github.com/netvendor/netdev/autodetect"
	"github.com/netvendor/netdev/devicetype"
	"github.com/netvendor/netdev/internal/settings"
	"github.com/netvendor/netdev/transport"
)

// New resolves cfg.DeviceType to a concrete vendor state machine and
// returns an unconnected Device, per spec §4.7's "pure dispatch" Device
// Factory. If DeviceType is devicetype.Autodetect, Connect runs the
// autodetector first and recurses with the resolved tag.
func New(cfg Config, s settings.Settings) (Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.DeviceType == devicetype.Autodetect {
		return &device{cfg: cfg, settings: s}, nil
	}
	vendor, err := vendorFor(cfg.DeviceType)
	if err != nil {
		return nil, err
	}
	return &device{cfg: cfg, settings: s, vendor: vendor}, nil
}

func vendorFor(tag devicetype.Tag) (VendorMachine, error) {
	switch tag {
	case devicetype.CiscoIOS:
		return newIOSMachine(), nil
	case devicetype.CiscoIOSXE:
		return newIOSXEMachine(), nil
	case devicetype.CiscoNXOS:
		return newNXOSMachine(), nil
	case devicetype.CiscoIOSXR:
		return newXRMachine(), nil
	case devicetype.CiscoASA:
		return newASAMachine(), nil
	case devicetype.AristaEOS:
		return newEOSMachine(), nil
	case devicetype.JuniperJunos:
		return newJunosMachine(), nil
	default:
		return nil, &UnknownDeviceTypeError{Tag: tag}
	}
}

func (d *device) Connect() error {
	if d.vendor == nil {
		resolved, err := d.resolveAutodetect(d.settings)
		if err != nil {
			return err
		}
		d.vendor = resolved
	}

	conn, err := Connect(d.cfg, d.vendor, d.settings)
	if err != nil {
		return err
	}
	d.conn = conn
	return nil
}

// resolveAutodetect runs the autodetector once over the same dial
// parameters Connect would use, then maps the resolved tag to a vendor
// machine, per spec §4.7/§4.8.
func (d *device) resolveAutodetect(s settings.Settings) (VendorMachine, error) {
	timeout := d.cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = s.Network.ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	tag, err := autodetect.Detect(ctx, transport.DialParams{
		Host:             d.cfg.Host,
		Port:             d.cfg.port(),
		User:             d.cfg.Username,
		Password:         d.cfg.Password,
		PrivateKeyPEM:    d.cfg.PrivateKeyPEM,
		PrivateKeyPath:   d.cfg.PrivateKeyPath,
		UseSSHAgent:      d.cfg.UseSSHAgent,
		KnownHostsPath:   d.cfg.KnownHostsPath,
		SkipHostKeyCheck: d.cfg.SkipHostKeyCheck,
		ConnectTimeout:   timeout,
	}, s.Network.PatternMatchTimeout)
	if err != nil {
		return nil, err
	}
	return vendorFor(tag)
}

func (d *device) Close() error {
	if d.conn == nil {
		return nil
	}
	return d.conn.Close()
}

func (d *device) IsConnected() bool {
	return d.conn != nil && d.conn.IsConnected()
}

func (d *device) SendCommand(cmd string, opts SendCommandOptions) (string, error) {
	return d.conn.SendCommand(cmd, opts)
}

func (d *device) SendCommands(cmds []string, opts SendCommandOptions) ([]string, error) {
	results := make([]string, 0, len(cmds))
	for _, cmd := range cmds {
		out, err := d.conn.SendCommand(cmd, opts)
		if err != nil {
			return results, err
		}
		results = append(results, out)
	}
	return results, nil
}

func (d *device) SendConfigSet(cmds []string, opts SendConfigSetOptions) (string, error) {
	return d.conn.SendConfigSet(cmds, opts)
}

func (d *device) EnterConfigMode(cmd string) error { return d.conn.EnterConfigMode(cmd) }
func (d *device) ExitConfigMode(cmd string) error  { return d.conn.ExitConfigMode(cmd) }
func (d *device) CheckConfigMode() bool            { return d.conn.CheckConfigMode() }
func (d *device) SaveConfiguration(label string) error {
	return d.conn.SaveConfiguration(label)
}

func (d *device) SetTerminalWidth(width int) error { return d.conn.SetTerminalWidth(width) }
func (d *device) DisablePaging() error             { return d.conn.DisablePaging() }
func (d *device) SetBasePrompt() (string, error)   { return d.conn.SetBasePrompt() }

func (d *device) DeviceType() string {
	if d.vendor != nil {
		return string(d.vendor.Tag())
	}
	return string(d.cfg.DeviceType)
}

