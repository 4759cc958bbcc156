package device

import "github.com/netvendor/netdev/devicetype"

// junosMachine covers Juniper Junos (spec §4.6: "Junos"). Junos has no
// enable step: modes are operational (>), configure (#), and an optional
// shell ($), all reachable from an authenticated session.
type junosMachine struct{}

func newJunosMachine() VendorMachine { return &junosMachine{} }

func (m *junosMachine) Tag() devicetype.Tag       { return devicetype.JuniperJunos }
func (m *junosMachine) PromptSuffixClass() string { return ">#%$" }

func (m *junosMachine) SessionPrepCommands(termWidth int) []string {
	return []string{
		"set cli screen-length 0",
		"set cli screen-width 511",
	}
}

func (m *junosMachine) RequiresEnable() bool              { return false }
func (m *junosMachine) EnableCommand() string             { return "" }
func (m *junosMachine) EnableSecretPromptPattern() string { return "" }

func (m *junosMachine) ConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "configure"
}

func (m *junosMachine) ExitConfigModeCommand(cmd string) string {
	if cmd != "" {
		return cmd
	}
	return "exit configuration-mode"
}

func (m *junosMachine) SaveCommand() string { return "commit" }

func (m *junosMachine) SupportsTransactionalCommit() bool { return true }

func (m *junosMachine) CommitCommand(label string) string {
	if label != "" {
		return "commit comment \"" + label + "\""
	}
	return "commit"
}

func (m *junosMachine) AbortCommand() string { return "rollback" }
