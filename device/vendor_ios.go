package device

import "github.com/netvendor/netdev/devicetype"

// iosMachine covers both Cisco IOS and IOS-XE, which share prompt grammar
// and mode commands (spec §4.6: "IOS / IOS-XE").
type iosMachine struct {
	tag devicetype.Tag
}

func newIOSMachine() VendorMachine   { return &iosMachine{tag: devicetype.CiscoIOS} }
func newIOSXEMachine() VendorMachine { return &iosMachine{tag: devicetype.CiscoIOSXE} }

func (m *iosMachine) Tag() devicetype.Tag       { return m.tag }
func (m *iosMachine) PromptSuffixClass() string { return ">#" }

func (m *iosMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"terminal length 0",
		"terminal width 511",
	}
}

func (m *iosMachine) RequiresEnable() bool             { return true }
func (m *iosMachine) EnableCommand() string            { return "enable" }
func (m *iosMachine) EnableSecretPromptPattern() string { return `(?i)password:\s*$` }

func (m *iosMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure terminal"
}

func (m *iosMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "end"
}

func (m *iosMachine) SaveCommand() string { return "write memory" }

func (m *iosMachine) SupportsTransactionalCommit() bool { return false }
func (m *iosMachine) CommitCommand(label string) string { return "" }
func (m *iosMachine) AbortCommand() string              { return "" }
