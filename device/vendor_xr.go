package device

import "github.com/netvendor/netdev/devicetype"

// xrMachine covers Cisco IOS-XR, whose config commit is transactional
// (spec §4.6: "IOS-XR"). XR has no distinct enable step: the session
// starts privileged once authenticated.
type xrMachine struct{}

func newXRMachine() VendorMachine { return &xrMachine{} }

func (m *xrMachine) Tag() devicetype.Tag       { return devicetype.CiscoIOSXR }
func (m *xrMachine) PromptSuffixClass() string { return ">#" }

func (m *xrMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"terminal length 0",
		"terminal width 511",
	}
}

func (m *xrMachine) RequiresEnable() bool             { return false }
func (m *xrMachine) EnableCommand() string            { return "" }
func (m *xrMachine) EnableSecretPromptPattern() string { return "" }

func (m *xrMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure terminal"
}

func (m *xrMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "end"
}

// SaveCommand is unused for XR; SupportsTransactionalCommit routes
// save_configuration through CommitCommand instead.
func (m *xrMachine) SaveCommand() string { return "" }

func (m *xrMachine) SupportsTransactionalCommit() bool { return true }

func (m *xrMachine) CommitCommand(label string) string {
	if label != "" {
		return "commit label " + label
	}
	return "commit"
}

func (m *xrMachine) AbortCommand() string { return "abort" }
