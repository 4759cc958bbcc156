package device

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/netvendor/netdev/devicetype"
	"github.com/netvendor/netdev/internal/logging"
	"github.com/netvendor/netdev/internal/sessionlog"
	"github.com/netvendor/netdev/internal/settings"
	"github.com/netvendor/netdev/transport"
)

// crlfNormalizer implements the line-ending part of spec §6's wire
// normalization: CRLF -> LF, lone CR removed. Trailing whitespace is
// stripped separately in finishOutput.
var crlfNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "")

// BaseConnection is the command/response contract from spec §4.5. It owns
// exactly one transport.Channel and drives it through a VendorMachine's
// mode transitions; it never aliases the channel elsewhere.
type BaseConnection struct {
	channel *transport.Channel
	vendor  VendorMachine
	cfg     Config
	s       settings.Settings

	state  SessionState
	prompt PromptModel
}

// Connect dials, authenticates, opens the shell channel and runs session
// preparation, per spec §4.5/§4.6.
func Connect(cfg Config, vendor VendorMachine, s settings.Settings) (*BaseConnection, error) {
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = s.Network.ConnectTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	ch, err := transport.Dial(ctx, transport.DialParams{
		Host:             cfg.Host,
		Port:             cfg.port(),
		User:             cfg.Username,
		Password:         cfg.Password,
		PrivateKeyPEM:    cfg.PrivateKeyPEM,
		PrivateKeyPath:   cfg.PrivateKeyPath,
		UseSSHAgent:      cfg.UseSSHAgent,
		KnownHostsPath:   cfg.KnownHostsPath,
		SkipHostKeyCheck: cfg.SkipHostKeyCheck,
		ConnectTimeout:   connectTimeout,
		SessionLog:       sessionLogConfig(cfg, s),
	})
	if err != nil {
		return nil, err
	}

	bc := &BaseConnection{
		channel: ch,
		vendor:  vendor,
		cfg:     cfg,
		s:       s,
		state:   SessionState{Connected: true},
	}

	if err := bc.prepareSession(); err != nil {
		ch.Close()
		return nil, err
	}
	return bc, nil
}

func sessionLogConfigEnabled(cfg Config, s settings.Settings) bool {
	return cfg.SessionLogPath != "" || s.Logging.EnableSessionLog
}

func sessionLogConfig(cfg Config, s settings.Settings) sessionlog.Config {
	dir := cfg.SessionLogPath
	if dir == "" {
		dir = s.Logging.SessionLogPath
	}
	return sessionlog.Config{
		Enabled:       sessionLogConfigEnabled(cfg, s),
		Directory:     dir,
		LogBinaryData: cfg.SessionLogBin || s.Logging.LogBinaryData,
	}
}

// prepareSession runs once after connect: establish the prompt, issue
// vendor-specific paging/width commands, then re-establish the prompt
// regex, per spec §4.6's "Session preparation" paragraph.
func (bc *BaseConnection) prepareSession() error {
	deadline := time.Now().Add(bc.timeout(bc.s.Network.PatternMatchTimeout))
	if err := bc.channel.WriteChannel([]byte("\n")); err != nil {
		return err
	}
	out, err := bc.channel.ReadChannel(deadline)
	if err != nil && len(out) == 0 {
		return &PromptError{Output: out, Err: err}
	}

	base, err := capturePrompt(lastNonEmptyLine(out), bc.vendor.PromptSuffixClass())
	if err != nil {
		return &PromptError{Output: out, Err: err}
	}
	bc.prompt = PromptModel{BasePrompt: base, Regex: compilePromptRegex(base, bc.vendor.PromptSuffixClass())}
	bc.state.Privileged = !bc.vendor.RequiresEnable()

	if bc.vendor.Tag() == devicetype.CiscoASA && bc.cfg.ASAAutoEnable {
		if err := bc.enterEnable(); err != nil {
			return err
		}
	}

	for _, cmd := range bc.vendor.SessionPrepCommands(511) {
		if _, err := bc.SendCommand(cmd, DefaultSendCommandOptions()); err != nil {
			return fmt.Errorf("session prep command %q: %w", cmd, err)
		}
	}

	// Re-establish the prompt regex in case terminal-width changes reflowed
	// the trailing line.
	refreshed, err := bc.SendCommand("", SendCommandOptions{StripCommand: false, StripPrompt: false, Normalize: true})
	if err == nil {
		if base2, err2 := capturePrompt(lastNonEmptyLine([]byte(refreshed)), bc.vendor.PromptSuffixClass()); err2 == nil {
			bc.prompt.BasePrompt = base2
			bc.prompt.Regex = compilePromptRegex(base2, bc.vendor.PromptSuffixClass())
		}
	}
	return nil
}

func (bc *BaseConnection) timeout(d time.Duration) time.Duration {
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// enterEnable issues the vendor's enable command and, if a secret is
// configured, answers the secret prompt, per spec §4.6's (F,F)->(T,F)
// transition.
func (bc *BaseConnection) enterEnable() error {
	if bc.state.Privileged {
		return nil
	}
	if !bc.vendor.RequiresEnable() {
		bc.state.Privileged = true
		return nil
	}
	if err := bc.channel.WriteChannel([]byte(bc.vendor.EnableCommand() + "\n")); err != nil {
		return err
	}
	if bc.cfg.Secret != "" && bc.vendor.EnableSecretPromptPattern() != "" {
		deadline := time.Now().Add(bc.timeout(bc.s.Network.PatternMatchTimeout))
		if _, err := bc.channel.ReadUntilPattern(regexp.MustCompile(bc.vendor.EnableSecretPromptPattern()), deadline); err != nil {
			return &ModeError{Kind: ModeEnterEnable, Current: bc.state}
		}
		if err := bc.channel.WriteChannel([]byte(bc.cfg.Secret + "\n")); err != nil {
			return err
		}
	}
	deadline := time.Now().Add(bc.timeout(bc.s.Network.PatternMatchTimeout))
	if _, err := bc.channel.ReadUntilPrompt(bc.prompt.Regex, deadline); err != nil {
		return &ModeError{Kind: ModeEnterEnable, Current: bc.state}
	}
	bc.state.Privileged = true
	return nil
}

// SendCommand implements spec §4.5's single-command contract.
func (bc *BaseConnection) SendCommand(cmd string, opts SendCommandOptions) (string, error) {
	logging.WithDevice(*logging.Global(), bc.cfg.Host, bc.vendor.Tag()).Debug().
		Str("command", logging.SanitizeString(cmd)).Msg("sending command")

	if opts.AutoClearBuffer {
		bc.channel.ReadBuffer(1<<16, time.Now().Add(10*time.Millisecond))
	}

	if err := bc.channel.WriteChannel([]byte(cmd + "\n")); err != nil {
		return "", err
	}

	if opts.CmdVerify {
		deadline := time.Now().Add(bc.timeout(bc.s.Network.PatternMatchTimeout))
		echoPattern := regexp.MustCompile(regexp.QuoteMeta(cmd))
		if _, err := bc.channel.ReadUntilPattern(echoPattern, deadline); err != nil {
			return "", err
		}
	}

	if d := bc.s.Network.CommandExecDelay; d > 0 {
		time.Sleep(d)
	}

	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = bc.timeout(bc.s.Network.CommandTimeout)
	}
	deadline := time.Now().Add(readTimeout)

	terminator := bc.prompt.Regex
	if opts.ExpectString != nil {
		terminator = opts.ExpectString
	}
	if terminator == nil {
		return "", &PromptError{Err: fmt.Errorf("no prompt established and no expect_string given")}
	}

	raw, err := bc.channel.ReadUntilPrompt(terminator, deadline)
	if err != nil {
		return "", err
	}

	return bc.finishOutput(raw, cmd, opts), nil
}

func (bc *BaseConnection) finishOutput(raw []byte, cmd string, opts SendCommandOptions) string {
	text := string(raw)
	if opts.Normalize {
		text = crlfNormalizer.Replace(text)
		lines := strings.Split(text, "\n")
		for i, l := range lines {
			lines[i] = strings.TrimRight(l, " \t")
		}
		text = strings.Join(lines, "\n")
	}
	if opts.StripCommand {
		text = strings.TrimPrefix(text, cmd)
		text = strings.TrimPrefix(text, "\n")
	}
	if opts.StripPrompt {
		lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
		if n := len(lines); n > 0 && bc.prompt.Regex != nil && bc.prompt.Regex.MatchString(lines[n-1]) {
			lines = lines[:n-1]
		}
		text = strings.Join(lines, "\n")
	}
	return strings.Trim(text, "\n")
}

// EnterConfigMode implements the (T,F)->(T,T) transition.
func (bc *BaseConnection) EnterConfigMode(cmd string) error {
	if !bc.state.Privileged {
		return &ModeError{Kind: ModeEnterConfig, Current: bc.state}
	}
	if bc.state.Configuring {
		return nil
	}
	if _, err := bc.SendCommand(bc.vendor.ConfigModeCommand(cmd), DefaultSendCommandOptions()); err != nil {
		return err
	}
	bc.state.Configuring = true
	return nil
}

// ExitConfigMode implements the (T,T)->(T,F) transition. It sends the
// vendor's exit command once and then marks the session as not
// configuring; it does not check the resulting prompt and sends no further
// "exit" commands.
func (bc *BaseConnection) ExitConfigMode(cmd string) error {
	if !bc.state.Configuring {
		return nil
	}
	if _, err := bc.SendCommand(bc.vendor.ExitConfigModeCommand(cmd), DefaultSendCommandOptions()); err != nil {
		return err
	}
	bc.state.Configuring = false
	return nil
}

// CheckConfigMode reports whether the connection currently believes it is
// in configuration mode.
func (bc *BaseConnection) CheckConfigMode() bool { return bc.state.Configuring }

// SendConfigSet implements spec §4.5's multi-command configuration
// contract.
func (bc *BaseConnection) SendConfigSet(commands []string, opts SendConfigSetOptions) (string, error) {
	var out strings.Builder

	if opts.EnterConfigMode {
		if err := bc.EnterConfigMode(opts.ConfigModeCommand); err != nil {
			return "", err
		}
	}

	for _, cmd := range commands {
		cmdOpts := opts.SendCommandOptions
		if opts.BypassCommands != nil && opts.BypassCommands.MatchString(cmd) {
			cmdOpts.CmdVerify = false
		} else {
			cmdOpts.CmdVerify = !opts.FastCLI
		}

		result, err := bc.SendCommand(cmd, cmdOpts)
		if err != nil {
			return out.String(), err
		}
		out.WriteString(result)
		out.WriteString("\n")

		if opts.ErrorPattern != nil {
			for _, line := range strings.Split(result, "\n") {
				if opts.ErrorPattern.MatchString(line) {
					return out.String(), &ConfigError{Line: line, CumulativeOutput: out.String()}
				}
			}
		}
	}

	if opts.ExitConfigMode {
		if err := bc.ExitConfigMode(opts.ConfigModeCommand); err != nil {
			return out.String(), err
		}
	}

	return out.String(), nil
}

// SaveConfiguration persists the running configuration, using a
// transactional commit for vendors that require it (IOS-XR, Junos), per
// spec §4.6's save/commit row.
func (bc *BaseConnection) SaveConfiguration(label string) error {
	if !bc.state.Privileged {
		return &ModeError{Kind: ModeSaveConfiguration, Current: bc.state}
	}
	if bc.vendor.SupportsTransactionalCommit() {
		_, err := bc.SendCommand(bc.vendor.CommitCommand(label), DefaultSendCommandOptions())
		return err
	}
	_, err := bc.SendCommand(bc.vendor.SaveCommand(), DefaultSendCommandOptions())
	return err
}

// SetTerminalWidth re-issues the vendor's width command outside of session
// preparation, for callers that want to change it mid-session.
func (bc *BaseConnection) SetTerminalWidth(width int) error {
	for _, cmd := range bc.vendor.SessionPrepCommands(width) {
		if strings.Contains(cmd, "width") {
			_, err := bc.SendCommand(cmd, DefaultSendCommandOptions())
			return err
		}
	}
	return nil
}

// DisablePaging re-issues the vendor's paging-off command.
func (bc *BaseConnection) DisablePaging() error {
	for _, cmd := range bc.vendor.SessionPrepCommands(511) {
		if strings.Contains(cmd, "length") || strings.Contains(cmd, "pager") || strings.Contains(cmd, "screen-length") {
			_, err := bc.SendCommand(cmd, DefaultSendCommandOptions())
			return err
		}
	}
	return nil
}

// SetBasePrompt re-captures the prompt, e.g. after a hostname change.
func (bc *BaseConnection) SetBasePrompt() (string, error) {
	out, err := bc.SendCommand("", SendCommandOptions{StripPrompt: false, StripCommand: false, Normalize: true})
	if err != nil {
		return "", err
	}
	base, err := capturePrompt(lastNonEmptyLine([]byte(out)), bc.vendor.PromptSuffixClass())
	if err != nil {
		return "", &PromptError{Output: []byte(out), Err: err}
	}
	bc.prompt = PromptModel{BasePrompt: base, Regex: compilePromptRegex(base, bc.vendor.PromptSuffixClass())}
	return base, nil
}

// IsConnected reports whether Close has not yet been called.
func (bc *BaseConnection) IsConnected() bool { return bc.state.Connected }

// Close terminates the underlying channel.
func (bc *BaseConnection) Close() error {
	bc.state.Connected = false
	return bc.channel.Close()
}
