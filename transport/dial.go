package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/netvendor/netdev/internal/bufpool"
	"github.com/netvendor/netdev/internal/logging"
	"github.com/netvendor/netdev/internal/sessionlog"
)

// DialParams carries exactly what the SSH channel needs to connect and
// authenticate. It intentionally excludes vendor/device-type information so
// that both the device package and the autodetect package can depend on
// transport without depending on each other.
type DialParams struct {
	Host    string
	Port    int
	User    string
	Password string

	// PrivateKeyPEM, if set, is used instead of the SSH agent; password and
	// keyboard-interactive auth are still offered after it when Password is set.
	PrivateKeyPEM []byte
	// PrivateKeyPath, if set and PrivateKeyPEM is empty, is read from disk.
	PrivateKeyPath string

	// UseSSHAgent tries SSH_AUTH_SOCK when no explicit key is provided.
	UseSSHAgent bool

	// KnownHostsPath, if set, is used for strict host-key verification.
	// If empty, SkipHostKeyCheck controls the fallback behavior.
	KnownHostsPath   string
	SkipHostKeyCheck bool

	ConnectTimeout time.Duration

	// TermWidth/TermHeight size the PTY requested on the new channel.
	// Spec §4.5 calls for a typical width 511, length 1000.
	TermWidth  int
	TermHeight int

	SessionLog sessionlog.Config
	SessionID  string

	Pool *bufpool.Pool
}

func (p DialParams) addr() string {
	port := p.Port
	if port == 0 {
		port = 22
	}
	return fmt.Sprintf("%s:%d", p.Host, port)
}

// Dial establishes a TCP connection, performs the SSH handshake and
// authentication, opens one channel, requests a PTY and starts a shell,
// per spec §4.5's connect() procedure.
func Dial(ctx context.Context, p DialParams) (*Channel, error) {
	logger := logging.FromContext(ctx)

	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	sshConfig := &ssh.ClientConfig{
		User:            p.User,
		Auth:            buildAuthMethods(p),
		HostKeyCallback: hostKeyCallback(p),
		Timeout:         timeout,
	}

	logger.Debug().Str("addr", p.addr()).Msg("dialing SSH")
	client, err := dialContext(ctx, "tcp", p.addr(), sshConfig)
	if err != nil {
		kind := ConnectNetwork
		msg := err.Error()
		if strings.Contains(msg, "auth") || strings.Contains(msg, "permission denied") || strings.Contains(msg, "unable to authenticate") {
			kind = ConnectAuth
		} else if strings.Contains(msg, "i/o timeout") || strings.Contains(msg, "deadline exceeded") || ctx.Err() == context.DeadlineExceeded {
			kind = ConnectTimeout
		}
		return nil, &ConnectError{Kind: kind, Err: err}
	}

	ch, err := newChannel(client, p)
	if err != nil {
		client.Close()
		return nil, &ConnectError{Kind: ConnectChannelOpen, Err: err}
	}
	return ch, nil
}

// dialContext dials TCP with context support. The context bounds the TCP
// dial and the SSH handshake only: if it ends first, the connection is
// closed and an error returned; a client that completed the handshake stays
// open after the context ends.
func dialContext(ctx context.Context, network, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	d := &net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if !stop() && err == nil {
		_ = c.Close()
		err = ctx.Err()
	}
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake (addr %s): %w", addr, err)
	}
	return ssh.NewClient(c, chans, reqs), nil
}

// buildAuthMethods assembles authentication methods in priority order:
// explicit key, then SSH agent (only if no explicit key), then password
// and keyboard-interactive as a fallback, mirroring the teacher's
// sshDialer.buildAuthMethods.
func buildAuthMethods(p DialParams) []ssh.AuthMethod {
	var methods []ssh.AuthMethod

	hasExplicitKey := len(p.PrivateKeyPEM) > 0 || p.PrivateKeyPath != ""

	if !hasExplicitKey && p.UseSSHAgent {
		if auth := sshAgentAuth(); auth != nil {
			methods = append(methods, auth)
		}
	}

	if hasExplicitKey {
		if signer := loadPrivateKey(p); signer != nil {
			methods = append(methods, ssh.PublicKeys(signer))
		}
	}

	if p.Password != "" {
		methods = append(methods, ssh.Password(p.Password))
		methods = append(methods, ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
			answers := make([]string, len(questions))
			for i := range questions {
				answers[i] = p.Password
			}
			return answers, nil
		}))
	}

	return methods
}

func sshAgentAuth() ssh.AuthMethod {
	sock := os.Getenv("SSH_AUTH_SOCK")
	if sock == "" {
		return nil
	}
	conn, err := net.Dial("unix", sock)
	if err != nil {
		return nil
	}
	a := agent.NewClient(conn)
	return ssh.PublicKeysCallback(a.Signers)
}

func loadPrivateKey(p DialParams) ssh.Signer {
	keyData := p.PrivateKeyPEM
	if len(keyData) == 0 && p.PrivateKeyPath != "" {
		path := p.PrivateKeyPath
		if strings.HasPrefix(path, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil
			}
			path = home + path[1:]
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		keyData = data
	}
	if len(keyData) == 0 {
		return nil
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil
	}
	return signer
}

func hostKeyCallback(p DialParams) ssh.HostKeyCallback {
	if p.KnownHostsPath != "" {
		cb, err := knownhosts.New(p.KnownHostsPath)
		if err == nil {
			return cb
		}
		logging.Global().Warn().Err(err).Str("path", p.KnownHostsPath).Msg("failed to load known_hosts, falling back")
	}
	if p.SkipHostKeyCheck {
		return ssh.InsecureIgnoreHostKey()
	}
	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		return fmt.Errorf("host key verification required for %s: configure KnownHostsPath or SkipHostKeyCheck", hostname)
	}
}
