package device

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/netvendor/netdev/devicetype"
)

var validate = validator.New()

// Config is the immutable description of one device to connect to, per
// spec §3's DeviceConfig. DeviceType is either devicetype.Autodetect or a
// known tag; Validate enforces that plus the field-level constraints.
type Config struct {
	DeviceType devicetype.Tag `validate:"required"`
	Host       string         `validate:"required,hostname_port|hostname|ip"`
	Username   string         `validate:"required"`
	Password   string
	Secret     string // enable/privileged-mode secret, vendor-dependent

	Port           int `validate:"omitempty,min=1,max=65535"`
	ConnectTimeout time.Duration

	PrivateKeyPEM  []byte
	PrivateKeyPath string
	UseSSHAgent    bool

	KnownHostsPath   string
	SkipHostKeyCheck bool

	SessionLogPath string
	SessionLogBin  bool

	// ASAAutoEnable toggles whether BaseConnection issues "enable" before
	// privileged show commands on ASA devices during session preparation.
	// See DESIGN.md's Open Question decision: defaults to false.
	ASAAutoEnable bool
}

// Validate checks field constraints and the device-type invariant.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.DeviceType != devicetype.Autodetect && !devicetype.IsKnown(c.DeviceType) {
		return &UnknownDeviceTypeError{Tag: c.DeviceType}
	}
	return nil
}

func (c Config) port() int {
	if c.Port == 0 {
		return 22
	}
	return c.Port
}
