package device

import "github.com/netvendor/netdev/devicetype"

// asaMachine covers Cisco ASA (spec §4.6: "ASA"). Enable is required for
// most show commands; BaseConnection consults Config.ASAAutoEnable to
// decide whether to issue it automatically during session preparation.
type asaMachine struct{}

func newASAMachine() VendorMachine { return &asaMachine{} }

func (m *asaMachine) Tag() devicetype.Tag       { return devicetype.CiscoASA }
func (m *asaMachine) PromptSuffixClass() string { return ">#" }

func (m *asaMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"terminal pager 0",
		"terminal width 511",
	}
}

func (m *asaMachine) RequiresEnable() bool             { return true }
func (m *asaMachine) EnableCommand() string            { return "enable" }
func (m *asaMachine) EnableSecretPromptPattern() string { return `(?i)password:\s*$` }

func (m *asaMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure terminal"
}

func (m *asaMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "end"
}

func (m *asaMachine) SaveCommand() string { return "write memory" }

func (m *asaMachine) SupportsTransactionalCommit() bool { return false }
func (m *asaMachine) CommitCommand(label string) string { return "" }
func (m *asaMachine) AbortCommand() string              { return "" }
