package device

import (
	"testing"

	"github.com/netvendor/netdev/devicetype"
)

func TestVendorMachineTable(t *testing.T) {
	cases := []struct {
		name              string
		m                 VendorMachine
		tag               devicetype.Tag
		suffix            string
		requiresEnable    bool
		save              string
		transactionalSave bool
	}{
		{"ios", newIOSMachine(), devicetype.CiscoIOS, ">#", true, "write memory", false},
		{"iosxe", newIOSXEMachine(), devicetype.CiscoIOSXE, ">#", true, "write memory", false},
		{"nxos", newNXOSMachine(), devicetype.CiscoNXOS, "#$", true, "copy running-config startup-config", false},
		{"xr", newXRMachine(), devicetype.CiscoIOSXR, ">#", false, "", true},
		{"asa", newASAMachine(), devicetype.CiscoASA, ">#", true, "write memory", false},
		{"eos", newEOSMachine(), devicetype.AristaEOS, ">#", true, "write memory", false},
		{"junos", newJunosMachine(), devicetype.JuniperJunos, ">#%$", false, "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.m.Tag() != tc.tag {
				t.Errorf("Tag() = %v, want %v", tc.m.Tag(), tc.tag)
			}
			if tc.m.PromptSuffixClass() != tc.suffix {
				t.Errorf("PromptSuffixClass() = %q, want %q", tc.m.PromptSuffixClass(), tc.suffix)
			}
			if tc.m.RequiresEnable() != tc.requiresEnable {
				t.Errorf("RequiresEnable() = %v, want %v", tc.m.RequiresEnable(), tc.requiresEnable)
			}
			if tc.m.SupportsTransactionalCommit() != tc.transactionalSave {
				t.Errorf("SupportsTransactionalCommit() = %v, want %v", tc.m.SupportsTransactionalCommit(), tc.transactionalSave)
			}
			if !tc.transactionalSave && tc.m.SaveCommand() != tc.save {
				t.Errorf("SaveCommand() = %q, want %q", tc.m.SaveCommand(), tc.save)
			}
			if len(tc.m.SessionPrepCommands(511)) == 0 {
				t.Error("expected at least one session prep command")
			}
		})
	}
}

func TestXRCommitCommandHonorsLabel(t *testing.T) {
	m := newXRMachine()
	if got := m.CommitCommand(""); got != "commit" {
		t.Errorf("got %q, want %q", got, "commit")
	}
	if got := m.CommitCommand("rollout1"); got != "commit label rollout1" {
		t.Errorf("got %q, want %q", got, "commit label rollout1")
	}
}

func TestJunosConfigModeCommandHonorsOverride(t *testing.T) {
	m := newJunosMachine()
	if got := m.ConfigModeCommand(""); got != "configure" {
		t.Errorf("got %q, want %q", got, "configure")
	}
	if got := m.ConfigModeCommand("configure exclusive"); got != "configure exclusive" {
		t.Errorf("got %q, want %q", got, "configure exclusive")
	}
}

func TestVendorForUnknownTagFails(t *testing.T) {
	_, err := vendorFor(devicetype.Tag("totally_unknown"))
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := err.(*UnknownDeviceTypeError); !ok {
		t.Fatalf("expected *UnknownDeviceTypeError, got %T", err)
	}
}
