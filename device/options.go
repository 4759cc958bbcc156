package device

import (
	"regexp"
	"time"
)

// SendCommandOptions configures a single send_command call, per spec §4.5.
type SendCommandOptions struct {
	ExpectString    *regexp.Regexp
	ReadTimeout     time.Duration
	AutoFindPrompt  bool
	StripPrompt     bool
	StripCommand    bool
	Normalize       bool
	CmdVerify       bool
	AutoClearBuffer bool
}

// DefaultSendCommandOptions matches spec §4.5's documented defaults.
func DefaultSendCommandOptions() SendCommandOptions {
	return SendCommandOptions{
		StripPrompt:  true,
		StripCommand: true,
		Normalize:    true,
	}
}

// SendConfigSetOptions configures a send_config_set call, per spec §4.5.
type SendConfigSetOptions struct {
	SendCommandOptions

	EnterConfigMode   bool
	ExitConfigMode    bool
	ConfigModeCommand string
	ErrorPattern      *regexp.Regexp
	Terminator        string
	BypassCommands    *regexp.Regexp
	FastCLI           bool
}

// DefaultSendConfigSetOptions enters and exits config mode by default and
// otherwise inherits SendCommandOptions defaults.
func DefaultSendConfigSetOptions() SendConfigSetOptions {
	return SendConfigSetOptions{
		SendCommandOptions: DefaultSendCommandOptions(),
		EnterConfigMode:    true,
		ExitConfigMode:     true,
	}
}
