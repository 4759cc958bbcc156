package device

import "github.com/netvendor/netdev/devicetype"

// VendorMachine captures the behaviorally distinct pieces of spec §4.6's
// transition matrix: prompt grammar, enable/config-mode commands, and
// save/commit semantics. BaseConnection drives the actual I/O; a
// VendorMachine only supplies vendor-specific strings and booleans.
type VendorMachine interface {
	Tag() devicetype.Tag

	// PromptSuffixClass returns the character class (without brackets) that
	// terminates this vendor's prompt, e.g. ">#" for IOS, "#$" for NX-OS.
	PromptSuffixClass() string

	// SessionPrepCommands returns the commands issued once, in order,
	// during session preparation (paging off, terminal width, etc.), after
	// the base prompt is first captured and before it is re-captured.
	SessionPrepCommands(termWidth int) []string

	// RequiresEnable reports whether entering privileged mode is a
	// distinct step from connecting (true for IOS-family/ASA/NX-OS/EOS;
	// false for Junos and IOS-XR, which start privileged).
	RequiresEnable() bool

	// EnableCommand returns the command that requests privileged mode.
	EnableCommand() string

	// EnableSecretPromptPattern matches the secret/password prompt that
	// follows EnableCommand, if any.
	EnableSecretPromptPattern() string

	// ConfigModeCommand returns the command used to enter configuration
	// mode, honoring an explicit override if cmd is non-empty.
	ConfigModeCommand(cmd string) string

	// ExitConfigModeCommand returns the command used to leave
	// configuration mode, honoring an explicit override if cmd is
	// non-empty.
	ExitConfigModeCommand(cmd string) string

	// SaveCommand returns the command that persists the running
	// configuration, per the per-vendor save semantics in spec §4.6.
	SaveCommand() string

	// SupportsTransactionalCommit reports whether commit/rollback
	// (IOS-XR style) applies instead of a plain save.
	SupportsTransactionalCommit() bool

	// CommitCommand and AbortCommand apply only when
	// SupportsTransactionalCommit is true.
	CommitCommand(label string) string
	AbortCommand() string
}
