package device

import (
	"fmt"

	"github.com/netvendor/netdev/devicetype"
)

// PromptError reports that session preparation could not establish a base
// prompt, per spec §7.
type PromptError struct {
	Output []byte
	Err    error
}

func (e *PromptError) Error() string {
	return fmt.Sprintf("prompt detection failed: %v (output %q)", e.Err, string(e.Output))
}

func (e *PromptError) Unwrap() error { return e.Err }

// ConfigError reports that a configuration command's output matched the
// caller-supplied error pattern during send_config_set.
type ConfigError struct {
	Line             string
	CumulativeOutput string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration command produced an error-pattern match: %q", e.Line)
}

// ModeErrorKind names which transition was attempted from an incompatible
// state.
type ModeErrorKind string

const (
	ModeEnterEnable       ModeErrorKind = "enter_enable"
	ModeEnterConfig       ModeErrorKind = "enter_config_mode"
	ModeExitConfig        ModeErrorKind = "exit_config_mode"
	ModeSaveConfiguration ModeErrorKind = "save_configuration"
)

// ModeError reports a state-machine transition requested from a state that
// does not permit it, per spec §4.6/§7.
type ModeError struct {
	Kind    ModeErrorKind
	Current SessionState
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("cannot %s from state %+v", e.Kind, e.Current)
}

// UnknownDeviceTypeError reports a Config/Factory request for a tag the
// factory does not recognize.
type UnknownDeviceTypeError struct {
	Tag devicetype.Tag
}

func (e *UnknownDeviceTypeError) Error() string {
	return fmt.Sprintf("unknown device type %q", string(e.Tag))
}
