package device

import (
	"testing"

	"github.com/netvendor/netdev/devicetype"
)

func TestConfigValidateRequiresHostAndUsername(t *testing.T) {
	c := Config{DeviceType: devicetype.CiscoIOS}
	if err := c.Validate(); err == nil {
		t.Fatal("expected validation error for missing host/username")
	}
}

func TestConfigValidateAcceptsAutodetect(t *testing.T) {
	c := Config{DeviceType: devicetype.Autodetect, Host: "10.0.0.1", Username: "admin"}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestConfigValidateRejectsUnknownTag(t *testing.T) {
	c := Config{DeviceType: devicetype.Tag("made_up"), Host: "10.0.0.1", Username: "admin"}
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if _, ok := err.(*UnknownDeviceTypeError); !ok {
		t.Fatalf("expected *UnknownDeviceTypeError, got %T (%v)", err, err)
	}
}

func TestConfigPortDefaultsTo22(t *testing.T) {
	c := Config{DeviceType: devicetype.CiscoIOS, Host: "10.0.0.1", Username: "admin"}
	if c.port() != 22 {
		t.Fatalf("got %d, want 22", c.port())
	}
}
