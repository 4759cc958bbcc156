package device

import "github.com/netvendor/netdev/devicetype"

// eosMachine covers Arista EOS, which shares the IOS-family command
// surface closely enough that spec §4.6 groups it under the general
// outer capability set without calling out further quirks.
type eosMachine struct{}

func newEOSMachine() VendorMachine { return &eosMachine{} }

func (m *eosMachine) Tag() devicetype.Tag       { return devicetype.AristaEOS }
func (m *eosMachine) PromptSuffixClass() string { return ">#" }

func (m *eosMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"terminal length 0",
		"terminal width 511",
	}
}

func (m *eosMachine) RequiresEnable() bool             { return true }
func (m *eosMachine) EnableCommand() string            { return "enable" }
func (m *eosMachine) EnableSecretPromptPattern() string { return `(?i)password:\s*$` }

func (m *eosMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure terminal"
}

func (m *eosMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "end"
}

func (m *eosMachine) SaveCommand() string { return "write memory" }

func (m *eosMachine) SupportsTransactionalCommit() bool { return false }
func (m *eosMachine) CommitCommand(label string) string { return "" }
func (m *eosMachine) AbortCommand() string              { return "" }
