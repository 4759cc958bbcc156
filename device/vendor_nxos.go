package device

import "github.com/netvendor/netdev/devicetype"

// nxosMachine covers Cisco NX-OS (spec §4.6: "NX-OS").
type nxosMachine struct{}

func newNXOSMachine() VendorMachine { return &nxosMachine{} }

func (m *nxosMachine) Tag() devicetype.Tag       { return devicetype.CiscoNXOS }
func (m *nxosMachine) PromptSuffixClass() string { return "#$" }

func (m *nxosMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"terminal length 0",
		"terminal width 511",
		"no terminal color evaluate-expression",
	}
}

func (m *nxosMachine) RequiresEnable() bool             { return true }
func (m *nxosMachine) EnableCommand() string            { return "enable" }
func (m *nxosMachine) EnableSecretPromptPattern() string { return `(?i)password:\s*$` }

func (m *nxosMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure terminal"
}

func (m *nxosMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "end"
}

func (m *nxosMachine) SaveCommand() string { return "copy running-config startup-config" }

func (m *nxosMachine) SupportsTransactionalCommit() bool { return false }
func (m *nxosMachine) CommitCommand(label string) string { return "" }
func (m *nxosMachine) AbortCommand() string              { return "" }
